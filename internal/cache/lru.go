// Package cache keeps small lookup tables close to a slow backend.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU holds at most capacity values, each valid for ttl after it was last
// stored. A zero capacity is unbounded and a zero ttl never expires.
type LRU[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	index    map[string]*list.Element
	order    *list.List // front is most recently used
}

type entry[T any] struct {
	key      string
	value    T
	deadline time.Time
}

func NewLRU[T any](capacity int, ttl time.Duration) *LRU[T] {
	return &LRU[T]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	e := el.Value.(*entry[T])
	if c.stale(e, c.now()) {
		c.drop(el)
		var zero T
		return zero, false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

// Set stores value under key. When the cache is full, expired entries go
// first and then the least recently used one.
func (c *LRU[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e := &entry[T]{key: key, value: value}
	if c.ttl > 0 {
		e.deadline = now.Add(c.ttl)
	}

	if el, ok := c.index[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(e)

	if c.capacity <= 0 || c.order.Len() <= c.capacity {
		return
	}
	if c.sweep(now) > 0 {
		return
	}
	c.drop(c.order.Back())
}

func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.drop(el)
	}
}

// Purge empties the cache.
func (c *LRU[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.index)
	c.order.Init()
}

// Len counts stored entries, expired ones included until they are swept.
func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU[T]) sweep(now time.Time) int {
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.stale(el.Value.(*entry[T]), now) {
			c.drop(el)
			removed++
		}
		el = prev
	}
	return removed
}

func (c *LRU[T]) stale(e *entry[T], now time.Time) bool {
	return !e.deadline.IsZero() && now.After(e.deadline)
}

func (c *LRU[T]) drop(el *list.Element) {
	delete(c.index, el.Value.(*entry[T]).key)
	c.order.Remove(el)
}
