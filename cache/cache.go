// Package cache holds the in-memory TTL caches used for verification keys and
// verification results.
package cache

import (
	"time"

	"github.com/karlseguin/ccache/v3"
)

// Cache is a size bounded key/value cache with per-entry expiry.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	SetWithTTL(key string, value T, ttl time.Duration)
	// Fetch returns the cached value or stores the result of load. Errors are
	// returned to the caller and not cached.
	Fetch(key string, load func() (T, error)) (T, error)
	Delete(key string)
	Clear()
	Len() int
}

type memory[T any] struct {
	items *ccache.Cache[T]
	ttl   time.Duration
}

// NewInMemoryCache creates a ccache backed cache holding at most size entries,
// each living ttl unless set with SetWithTTL.
func NewInMemoryCache[T any](size int64, ttl time.Duration) Cache[T] {
	return &memory[T]{
		items: ccache.New(ccache.Configure[T]().MaxSize(size)),
		ttl:   ttl,
	}
}

// Get retrieves an item from the cache by its key.
func (c *memory[T]) Get(key string) (T, bool) {
	item := c.items.Get(key)
	if item == nil || item.Expired() {
		var zero T
		return zero, false
	}
	return item.Value(), true
}

// Set adds an item with the default TTL.
func (c *memory[T]) Set(key string, value T) {
	c.items.Set(key, value, c.ttl)
}

// SetWithTTL adds an item living ttl, or the default TTL when ttl is not positive.
func (c *memory[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.items.Set(key, value, ttl)
}

// Fetch returns the cached item or stores the result of load.
func (c *memory[T]) Fetch(key string, load func() (T, error)) (T, error) {
	item, err := c.items.Fetch(key, c.ttl, load)
	if err != nil {
		var zero T
		return zero, err
	}
	return item.Value(), nil
}

// Delete removes an item from the cache by its key.
func (c *memory[T]) Delete(key string) {
	c.items.Delete(key)
}

// Clear removes all items from the cache.
func (c *memory[T]) Clear() {
	c.items.Clear()
}

// Len returns the number of cached items.
func (c *memory[T]) Len() int {
	return c.items.ItemCount()
}

// Disabled returns a cache that never stores anything.
func Disabled[T any]() Cache[T] {
	return nop[T]{}
}

type nop[T any] struct{}

func (nop[T]) Get(string) (T, bool) {
	var zero T
	return zero, false
}

func (nop[T]) Set(string, T) {}
func (nop[T]) SetWithTTL(string, T, time.Duration) {}
func (nop[T]) Fetch(_ string, load func() (T, error)) (T, error) { return load() }
func (nop[T]) Delete(string) {}
func (nop[T]) Clear() {}
func (nop[T]) Len() int { return 0 }
