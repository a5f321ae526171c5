// Package triestore wraps an immutable trie.Trie with a reader-friendly
// concurrency protocol: many concurrent readers observe a consistent
// snapshot, while at most one writer serialises Put/Remove calls.
package triestore

import (
	"sync"
	"sync/atomic"

	"wickerdb/trie"
)

// Store wraps a current Trie plus two mutual-exclusion primitives: a root
// lock guarding short critical sections around loading/storing the root
// handle, and a writer lock that serialises mutations. The root lock is never
// held across a lookup or a trie allocation; the writer lock is held for a
// whole Put/Remove, including building the new trie.
type Store[V any] struct {
	rootMu     sync.Mutex
	root       trie.Trie[V]
	generation atomic.Uint64

	writerMu sync.Mutex

	cache               *lookupCache[V]
	maxStaleGenerations uint64
}

// New returns an empty store with no read-through cache.
func New[V any]() *Store[V] {
	return &Store[V]{}
}

// NewWithLookupCache returns an empty store backed by a ristretto read-through
// cache in front of Get. maxCost bounds the cache's tracked cost (roughly,
// its entry count, since every entry is inserted with cost 1).
// maxStaleGenerations bounds how many Put/Remove generations may have
// elapsed since a cached entry was resolved before Get treats it as a miss
// and re-walks the trie; 0 means only an entry from the exact current
// generation may be served from cache.
func NewWithLookupCache[V any](maxCost int64, maxStaleGenerations uint64) (*Store[V], error) {
	cache, err := newLookupCache[V](maxCost)
	if err != nil {
		return nil, err
	}
	return &Store[V]{cache: cache, maxStaleGenerations: maxStaleGenerations}, nil
}

func (s *Store[V]) currentRoot() (trie.Trie[V], uint64) {
	s.rootMu.Lock()
	defer s.rootMu.Unlock()
	return s.root, s.generation.Load()
}

func (s *Store[V]) swapRoot(newRoot trie.Trie[V]) {
	s.rootMu.Lock()
	s.root = newRoot
	s.rootMu.Unlock()
	s.generation.Add(1)
}

// Get acquires the root lock only long enough to copy the current root
// handle, then performs the lookup against that snapshot without holding
// any lock.
func (s *Store[V]) Get(key string) (ValueGuard[V], bool) {
	if entry, ok := s.cache.get(key); ok {
		if s.generation.Load()-entry.generation <= s.maxStaleGenerations {
			return ValueGuard[V]{snapshot: entry.snapshot, value: entry.value}, true
		}
	}

	snapshot, generation := s.currentRoot()
	value, ok := snapshot.Get(key)
	if !ok {
		return ValueGuard[V]{}, false
	}

	s.cache.set(key, cachedEntry[V]{snapshot: snapshot, value: value, generation: generation})
	return ValueGuard[V]{snapshot: snapshot, value: value}, true
}

// Put installs key -> value, serialised against every other writer.
func (s *Store[V]) Put(key string, value V) {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	snapshot, _ := s.currentRoot()
	newRoot := snapshot.Put(key, value)
	s.swapRoot(newRoot)
}

// Remove deletes key, serialised against every other writer.
func (s *Store[V]) Remove(key string) {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	snapshot, _ := s.currentRoot()
	newRoot := snapshot.Remove(key)
	s.swapRoot(newRoot)
}

// Snapshot returns the trie currently installed as root, for callers that
// want to walk it directly (e.g. iterating all keys under a prefix).
func (s *Store[V]) Snapshot() trie.Trie[V] {
	snapshot, _ := s.currentRoot()
	return snapshot
}
