package translate

import (
	"container/list"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/storylingo/storylingo/internal/entity"
)

// Cache is the lookup cache consulted before the upstream dictionary.
type Cache interface {
	Get(key string) (*entity.TranslationResult, bool)
	Put(key string, value *entity.TranslationResult)
	Len() int
}

// CacheKey builds the canonical cache key for a lookup. The query is
// lowercased so "Haus" and "haus" share an entry.
func CacheKey(src, dst, query string) string {
	return fmt.Sprintf("%s:%s:%s", src, dst, strings.ToLower(query))
}

type cacheEntry struct {
	key       string
	value     *entity.TranslationResult
	expiresAt time.Time
}

// TTLCache is a fixed-capacity cache with per-entry TTL. Expired
// entries are dropped lazily on read; inserting at capacity evicts the
// least recently used entry. Last write wins.
type TTLCache struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	ll       *list.List // front = most recently used
	items    map[string]*list.Element
	now      func() time.Time
}

func NewTTLCache(capacity int, ttl time.Duration) *TTLCache {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TTLCache{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get also refreshes the entry's recency, so it takes the write lock.
func (c *TTLCache) Get(key string) (*entity.TranslationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.ll.Remove(el)
		delete(c.items, key)
		return nil, false
	}
	c.ll.MoveToFront(el)
	return entry.value, true
}

func (c *TTLCache) Put(key string, value *entity.TranslationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.value = value
		entry.expiresAt = c.now().Add(c.ttl)
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	})
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ll.Len()
}
