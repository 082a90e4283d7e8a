// Package cache stores rendered translation results keyed by source text.
//
// Two backends are provided: an in-process LRU bounded in bytes and a Redis
// backend for sharing results across decoder processes.
package cache

import (
	"context"
	"fmt"

	"github.com/hupe1980/phrasego/internal/hash"
)

// Key identifies a cached result. It must be stable across processes.
type Key uint64

// String returns the key in hexadecimal.
func (k Key) String() string { return fmt.Sprintf("%016x", uint64(k)) }

// KeyFor derives the key of a sentence decoded under a configuration
// fingerprint. Results decoded with different models or search parameters
// never share a key.
func KeyFor(fingerprint, sentence string) Key {
	d := hash.NewDigest()
	d.AddString(fingerprint)
	d.AddString(sentence)
	return Key(d.Sum64())
}

// Cache is a byte-oriented result cache.
// Implementations must be safe for concurrent use. Returned slices must be
// treated as read-only.
type Cache interface {
	// Get returns a cached value. ok=false if missing.
	Get(ctx context.Context, key Key) (b []byte, ok bool, err error)
	// Set caches a value. Implementations may retain b; the caller must not
	// modify it afterwards.
	Set(ctx context.Context, key Key, b []byte) error
	// Close releases the backend.
	Close() error
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
}
