package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a cached file body stays valid.
	DefaultTTL = 60 * time.Second

	// DefaultCapacity is the number of file bodies kept before eviction.
	DefaultCapacity = 1000
)

// LoadFunc reads the current content for key on a cache miss.
type LoadFunc func(ctx context.Context, key string) (string, error)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// ContentCache memoizes decoded file text keyed by path.
//
// Entries expire after a fixed TTL. When the number of entries exceeds the
// capacity, the oldest insertion is evicted (FIFO, not LRU: reads do not
// refresh an entry's position). Storing a key again counts as a new insertion.
//
// Loads run outside the lock, so concurrent misses on the same key may both
// read the file; the later write wins. Entries are immutable once stored.
type ContentCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      Clock
	entries  map[string]*list.Element
	order    *list.List // front = oldest insertion
}

type entry struct {
	key      string
	text     string
	storedAt time.Time
}

// Option configures a ContentCache.
type Option func(*ContentCache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *ContentCache) { c.ttl = ttl }
}

// WithCapacity sets the maximum number of entries.
func WithCapacity(n int) Option {
	return func(c *ContentCache) { c.capacity = n }
}

// WithClock replaces time.Now.
func WithClock(clock Clock) Option {
	return func(c *ContentCache) { c.now = clock }
}

// NewContentCache creates a cache with DefaultTTL and DefaultCapacity unless
// overridden.
func NewContentCache(opts ...Option) *ContentCache {
	c := &ContentCache{
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		now:      time.Now,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.capacity < 1 {
		c.capacity = 1
	}
	return c
}

// Get returns the cached text for key if it is still within TTL.
func (c *ContentCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return "", false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.storedAt) >= c.ttl {
		return "", false
	}
	return e.text, true
}

// Put stores text for key and evicts the oldest entries past capacity.
// It returns the number of evicted entries.
func (c *ContentCache) Put(key, text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
	c.entries[key] = c.order.PushBack(&entry{key: key, text: text, storedAt: c.now()})

	evicted := 0
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
		evicted++
	}
	return evicted
}

// GetOrLoad returns cached text within TTL, otherwise calls load and stores
// the result. Load errors are returned and nothing is stored.
func (c *ContentCache) GetOrLoad(ctx context.Context, key string, load LoadFunc) (string, error) {
	if text, ok := c.Get(key); ok {
		return text, nil
	}
	text, err := load(ctx, key)
	if err != nil {
		return "", err
	}
	c.Put(key, text)
	return text, nil
}

// Invalidate drops key from the cache. Unknown keys are ignored.
func (c *ContentCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// InvalidateAll empties the cache.
func (c *ContentCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of stored entries, expired ones included.
func (c *ContentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys returns stored keys from oldest to newest insertion.
func (c *ContentCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry).key)
	}
	return keys
}
