// Package httputil fetches remote chart datasets.
//
// [Fetcher] performs GET requests with a timeout, retries transient failures
// (network errors and 5xx responses) with exponential backoff, and keeps
// successful bodies in a [cache.Cache] under an "http:" key so that
// re-rendering a chart from a URL does not hit the network again.
//
//	f := httputil.NewFetcher(c, cache.NewDefaultKeyer())
//	body, err := f.Get(ctx, "https://example.com/caffeine.yaml")
//
// Non-2xx responses are reported as structured errors: 404 maps to
// FILE_NOT_FOUND, 429 to RATE_LIMITED and everything else to NETWORK_ERROR.
package httputil
