package triestore

import "wickerdb/trie"

// ValueGuard is a scoped handle returned by Store.Get: it keeps the trie
// snapshot the value was resolved against alive (via the ordinary Go
// reference graph) for as long as the guard itself is reachable, so the
// value it carries is stable even if concurrent Puts/Removes swap the
// store's current root out from under it.
type ValueGuard[V any] struct {
	snapshot trie.Trie[V]
	value    V
}

// Value returns the value the guard was resolved with.
func (g ValueGuard[V]) Value() V {
	return g.value
}
