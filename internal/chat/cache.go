package chat

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Backing is the storage behind the response cache. Implementations must
// be safe for concurrent use.
type Backing interface {
	Get(key string) (string, bool)
	Add(key, value string)
}

// Cache memoizes validated chat responses keyed by token, page, and the
// normalized message.
type Cache struct {
	backing Backing
}

// NewCache creates a cache over the given backing.
func NewCache(backing Backing) *Cache {
	return &Cache{backing: backing}
}

// Key builds the cache key. The message must already be normalized
// (trimmed, lowercased) by the caller.
func Key(token, page, message string) string {
	return strings.Join([]string{token, page, message}, ":")
}

// Get returns the cached response for a key.
func (c *Cache) Get(key string) (string, bool) {
	return c.backing.Get(key)
}

// Add stores a validated response.
func (c *Cache) Add(key, value string) {
	c.backing.Add(key, value)
}

// ── backings ────────────────────────────────────────────────

// MapBacking is an unbounded in-process backing. Suited to tests and
// small deployments.
type MapBacking struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMapBacking creates an empty map backing.
func NewMapBacking() *MapBacking {
	return &MapBacking{m: make(map[string]string)}
}

func (b *MapBacking) Get(key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[key]
	return v, ok
}

func (b *MapBacking) Add(key, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
}

// LRUBacking bounds the cache to a fixed number of entries with
// least-recently-used eviction.
type LRUBacking struct {
	cache *lru.Cache[string, string]
}

// NewLRUBacking creates a bounded backing holding at most size entries.
func NewLRUBacking(size int) (*LRUBacking, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LRUBacking{cache: cache}, nil
}

func (b *LRUBacking) Get(key string) (string, bool) {
	return b.cache.Get(key)
}

func (b *LRUBacking) Add(key, value string) {
	b.cache.Add(key, value)
}
