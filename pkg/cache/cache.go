// Package cache provides the byte cache used to skip repeated work.
//
// The pipeline caches computed layout positions keyed by the blake3 hash of
// the wire payload they were computed for, so decoding the same payload twice
// lays it out once. Backends:
//   - [NullCache]: never stores anything
//   - [FileCache]: one JSON file per key under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//
// Keys come from a [Keyer]; [ScopedKeyer] prefixes them so several tenants
// can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A zero ttl keeps the entry until it is deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// TTLLayout is how long computed layouts are kept.
const TTLLayout = 7 * 24 * time.Hour

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey is the key of the layout computed for the payload with the
	// given content hash.
	LayoutKey(payloadHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts are the layout options that change the computed positions.
type LayoutKeyOpts struct {
	NodeWidth  float64 `json:"w"`
	NodeHeight float64 `json:"h"`
	RankSep    float64 `json:"rs"`
	NodeSep    float64 `json:"ns"`
	MarginX    float64 `json:"mx"`
	MarginY    float64 `json:"my"`
	Jitter     float64 `json:"j"`
	Seed       uint64  `json:"seed"`
	Sweeps     int     `json:"sweeps"`
}

// DefaultKeyer produces "layout:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey hashes the payload hash together with opts.
func (DefaultKeyer) LayoutKey(payloadHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", payloadHash, opts)
}

// ScopedKeyer prefixes the keys of another Keyer so several deployments
// can share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(payloadHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(payloadHash, opts)
}

// NullCache disables caching: every Get misses and Set drops the value.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
