package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// LRU implements Cache in process memory. It holds at most capacity bytes
// of values and drops the least recently used results first.
type LRU struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	ttl      time.Duration
	now      func() time.Time
	index    map[Key]*list.Element
	order    *list.List // front is most recently used

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	key     Key
	value   []byte
	expires time.Time // zero without a ttl
}

// LRUOption is a configuration option for LRU.
type LRUOption func(*LRU)

// WithExpiry drops results older than ttl on access, the way a Redis TTL
// does. 0 keeps them until evicted.
func WithExpiry(ttl time.Duration) LRUOption {
	return func(c *LRU) {
		c.ttl = ttl
	}
}

// NewLRU creates an LRU holding up to capacity bytes.
func NewLRU(capacity int64, opts ...LRUOption) *LRU {
	c := &LRU{
		capacity: capacity,
		now:      time.Now,
		index:    make(map[Key]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements Cache.
func (c *LRU) Get(_ context.Context, key Key) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if ok {
		if e := el.Value.(*lruEntry); !e.expires.IsZero() && !c.now().Before(e.expires) {
			c.remove(el)
			ok = false
		}
	}
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).value, true, nil
}

// Set implements Cache. A value larger than the capacity is not cached and
// drops any older value of key.
func (c *LRU) Set(_ context.Context, key Key, b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, exists := c.index[key]
	if int64(len(b)) > c.capacity {
		if exists {
			c.remove(el)
		}
		return nil
	}

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}
	if exists {
		e := el.Value.(*lruEntry)
		c.size += int64(len(b) - len(e.value))
		e.value, e.expires = b, expires
		c.order.MoveToFront(el)
	} else {
		c.index[key] = c.order.PushFront(&lruEntry{key: key, value: b, expires: expires})
		c.size += int64(len(b))
	}

	// The newest entry is at the front and fits on its own.
	for c.size > c.capacity {
		c.remove(c.order.Back())
	}
	return nil
}

func (c *LRU) remove(el *list.Element) {
	e := c.order.Remove(el).(*lruEntry)
	delete(c.index, e.key)
	c.size -= int64(len(e.value))
}

// Close implements Cache.
func (c *LRU) Close() error { return nil }

// Stats returns the hit and miss counters.
func (c *LRU) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Size returns the bytes held.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}
