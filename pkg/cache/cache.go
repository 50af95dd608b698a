// Package cache stores computed layouts, rendered artifacts and fetched
// datasets behind a small byte-oriented interface.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for the
// HTTP service and [NullCache] when caching is disabled. [MemoryCache] backs
// tests and single-process servers. Keys are produced by a [Keyer] so that
// the same inputs always map to the same entry.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get returns (nil, false, nil) on a miss. Expired entries are misses.
// A TTL of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per key type.
const (
	TTLHTTP     = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key type prefixes, also reported to the cache observability hooks.
const (
	KeyTypeHTTP     = "http"
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey identifies a fetched response.
	HTTPKey(namespace, key string) string
	// LayoutKey identifies the layout computed from a definition hash.
	LayoutKey(defHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered artifact of a layout hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout parameters that change the computed geometry.
type LayoutKeyOpts struct {
	VizType string  `json:"viz_type"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Margin  float64 `json:"margin"`
}

// ArtifactKeyOpts are the render parameters that change the output bytes.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Style  string `json:"style"`
	Legend bool   `json:"legend"`
	Seed   uint64 `json:"seed"`
	// Scale is the PNG resolution multiplier; zero for other formats.
	Scale float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes the key options together with the input hash.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return KeyTypeHTTP + ":" + namespace + ":" + key
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(defHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, defHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}

// KeyType returns the type prefix of a key produced by a Keyer, skipping any
// scope prefix.
func KeyType(key string) string {
	for _, part := range strings.Split(key, ":") {
		switch part {
		case KeyTypeLayout, KeyTypeArtifact, KeyTypeHTTP:
			return part
		}
	}
	return "unknown"
}
