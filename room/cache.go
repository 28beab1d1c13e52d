package room

import (
	"container/list"
	"sync"
)

type (
	recentCache[T any] struct {
		entries map[string]*list.Element
		lru     *list.List
		maxSize int
		mu      sync.Mutex
	}

	cacheEntry[T any] struct {
		value T
		key   string
	}
)

const DefaultRecentSize = 64

func newRecentCache[T any](maxSize int) *recentCache[T] {
	if maxSize <= 0 {
		maxSize = DefaultRecentSize
	}
	return &recentCache[T]{
		entries: map[string]*list.Element{},
		lru:     list.New(),
		maxSize: maxSize,
	}
}

func (c *recentCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry[T]).value, true
}

func (c *recentCache[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry[T]).value = value
		c.lru.MoveToFront(elem)
		return
	}

	c.entries[key] = c.lru.PushFront(&cacheEntry[T]{key: key, value: value})
	if c.lru.Len() > c.maxSize {
		c.evictLast()
	}
}

func (c *recentCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *recentCache[T]) evictLast() {
	back := c.lru.Back()
	if back != nil {
		c.lru.Remove(back)
		delete(c.entries, back.Value.(*cacheEntry[T]).key)
	}
}
