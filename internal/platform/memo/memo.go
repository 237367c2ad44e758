// Package memo is the in-process cache used by the coordinate and route
// resolvers. It is safe for concurrent use; concurrent misses on the same key
// are not coalesced and the last writer wins.
package memo

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const numShards = 32

// TTLFunc returns how long a value stays fresh; zero or less means forever.
type TTLFunc[V any] func(V) time.Duration

type Options[K comparable, V any] struct {
	// Capacity bounds the number of entries with LRU eviction. Zero keeps
	// every entry for the life of the process.
	Capacity int
	// Hash spreads keys over shards of the unbounded store.
	Hash func(K) uint64
	TTL  TTLFunc[V]
	Now  func() time.Time
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

type store[K comparable, V any] interface {
	get(k K) (entry[V], bool)
	put(k K, e entry[V])
	remove(k K)
	len() int
}

type Cache[K comparable, V any] struct {
	s   store[K, V]
	ttl TTLFunc[V]
	now func() time.Time
}

func New[K comparable, V any](opts Options[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{ttl: opts.TTL, now: opts.Now}
	if c.now == nil {
		c.now = time.Now
	}

	if opts.Capacity > 0 {
		// lru.New only fails for a non-positive size.
		l, _ := lru.New[K, entry[V]](opts.Capacity)
		c.s = &lruStore[K, V]{l: l}
	} else {
		c.s = newShardedStore[K, V](opts.Hash)
	}

	return c
}

// Get returns the cached value, treating expired entries as missing.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	e, ok := c.s.get(k)
	if !ok {
		var zero V
		return zero, false
	}

	if c.ttl != nil {
		if ttl := c.ttl(e.value); ttl > 0 && c.now().Sub(e.storedAt) >= ttl {
			c.s.remove(k)
			var zero V
			return zero, false
		}
	}

	return e.value, true
}

func (c *Cache[K, V]) Add(k K, v V) {
	c.s.put(k, entry[V]{value: v, storedAt: c.now()})
}

func (c *Cache[K, V]) Len() int { return c.s.len() }

type lruStore[K comparable, V any] struct {
	l *lru.Cache[K, entry[V]]
}

func (s *lruStore[K, V]) get(k K) (entry[V], bool) { return s.l.Get(k) }
func (s *lruStore[K, V]) put(k K, e entry[V])      { s.l.Add(k, e) }
func (s *lruStore[K, V]) remove(k K)               { s.l.Remove(k) }
func (s *lruStore[K, V]) len() int                 { return s.l.Len() }

type shard[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]entry[V]
}

type shardedStore[K comparable, V any] struct {
	hash   func(K) uint64
	shards [numShards]shard[K, V]
}

func newShardedStore[K comparable, V any](hash func(K) uint64) *shardedStore[K, V] {
	s := &shardedStore[K, V]{hash: hash}
	for i := range s.shards {
		s.shards[i].m = make(map[K]entry[V])
	}
	return s
}

func (s *shardedStore[K, V]) pick(k K) *shard[K, V] {
	if s.hash == nil {
		return &s.shards[0]
	}
	return &s.shards[s.hash(k)%numShards]
}

func (s *shardedStore[K, V]) get(k K) (entry[V], bool) {
	sh := s.pick(k)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.m[k]
	return e, ok
}

func (s *shardedStore[K, V]) put(k K, e entry[V]) {
	sh := s.pick(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.m[k] = e
}

func (s *shardedStore[K, V]) remove(k K) {
	sh := s.pick(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.m, k)
}

func (s *shardedStore[K, V]) len() int {
	n := 0
	for i := range s.shards {
		s.shards[i].mu.RLock()
		n += len(s.shards[i].m)
		s.shards[i].mu.RUnlock()
	}
	return n
}

// StringHash is a Hash for string keys.
func StringHash(s string) uint64 { return xxhash.Sum64String(s) }
