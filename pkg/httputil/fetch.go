package httputil

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/mosaic/pkg/buildinfo"
	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/observability"
)

// Defaults for [Fetcher].
const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 8 << 20
	cacheNamespace  = "dataset"
)

// Fetcher downloads small documents over HTTP with caching and retries.
type Fetcher struct {
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	maxBytes int64
	attempts int
	delay    time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option { return func(f *Fetcher) { f.http = c } }

// WithTTL sets how long fetched bodies are cached.
func WithTTL(ttl time.Duration) Option { return func(f *Fetcher) { f.ttl = ttl } }

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(n int64) Option { return func(f *Fetcher) { f.maxBytes = n } }

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(f *Fetcher) { f.attempts, f.delay = attempts, delay }
}

// NewFetcher creates a Fetcher. A nil cache disables caching and a nil keyer
// uses [cache.DefaultKeyer].
func NewFetcher(c cache.Cache, keyer cache.Keyer, opts ...Option) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	f := &Fetcher{
		http:     &http.Client{Timeout: DefaultTimeout},
		cache:    c,
		keyer:    keyer,
		ttl:      cache.TTLHTTP,
		maxBytes: DefaultMaxBytes,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get returns the body at rawURL, from cache when available.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := f.GetWithCacheInfo(ctx, rawURL, false)
	return body, err
}

// GetWithCacheInfo is like Get but reports whether the body came from cache.
// refresh bypasses the cache lookup but still stores the fresh body.
func (f *Fetcher) GetWithCacheInfo(ctx context.Context, rawURL string, refresh bool) ([]byte, bool, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, false, err
	}
	key := f.keyer.HTTPKey(cacheNamespace, rawURL)

	if !refresh {
		if data, ok, err := f.cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, cache.KeyType(key))
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyType(key))
	}

	var body []byte
	err := cache.Retry(ctx, f.attempts, f.delay, func() error {
		var err error
		body, err = f.do(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if err := f.cache.Set(ctx, key, body, f.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, cache.KeyType(key), len(body))
	}
	return body, false, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL")
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent()+" (+https://github.com/matzehuels/mosaic)")

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := f.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", rawURL)
		}
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", rawURL))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, rawURL); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", rawURL))
	}
	if int64(len(data)) > f.maxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d bytes", rawURL, f.maxBytes)
	}
	return data, nil
}

func checkStatus(resp *http.Response, rawURL string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeFileNotFound, "%s: not found", rawURL)
	case code == http.StatusTooManyRequests:
		retry, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return errors.Wrap(errors.ErrCodeRateLimited, &errors.RateLimitedError{RetryAfter: retry}, "fetch %s", rawURL)
	case code >= 500:
		return cache.Retryable(errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", rawURL, code))
	default:
		return errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", rawURL, code)
	}
}
