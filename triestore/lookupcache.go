package triestore

import (
	"github.com/cespare/xxhash/v2"
	ristretto "github.com/dgraph-io/ristretto/v2"

	"wickerdb/trie"
)

// cachedEntry pins the snapshot a value was resolved against alongside the
// generation counter of the root it came from, so a later Get can decide
// whether the entry is still fresh enough to serve without walking the trie.
type cachedEntry[V any] struct {
	snapshot   trie.Trie[V]
	value      V
	generation uint64
}

// lookupCache is a thin, generation-aware wrapper around a ristretto cache,
// keyed by the xxhash of the lookup key rather than the key itself so that
// ristretto's admission and cost-tracking machinery never has to hash a
// caller-supplied []byte/string on every access. A nil *lookupCache behaves
// as an always-miss cache, so Store works identically whether or not a
// cache was configured.
type lookupCache[V any] struct {
	cache *ristretto.Cache[uint64, cachedEntry[V]]
}

func newLookupCache[V any](maxCost int64) (*lookupCache[V], error) {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, cachedEntry[V]]{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &lookupCache[V]{cache: cache}, nil
}

func (c *lookupCache[V]) get(key string) (cachedEntry[V], bool) {
	if c == nil {
		var zero cachedEntry[V]
		return zero, false
	}
	return c.cache.Get(xxhash.Sum64String(key))
}

func (c *lookupCache[V]) set(key string, entry cachedEntry[V]) {
	if c == nil {
		return
	}
	c.cache.Set(xxhash.Sum64String(key), entry, 1)
}
