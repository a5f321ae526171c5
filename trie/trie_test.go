package trie

import "testing"

func TestPutThenGet(t *testing.T) {
	tr := New[int]()
	tr = tr.Put("abc", 1)

	got, ok := tr.Get("abc")
	if !ok || got != 1 {
		t.Fatalf("Get(abc) = %v, %v; want 1, true", got, ok)
	}
}

func TestGetAsTypeMismatch(t *testing.T) {
	tr := New[any]()
	tr = tr.Put("abc", uint32(1))

	if v, ok := GetAs[uint32](tr, "abc"); !ok || v != 1 {
		t.Fatalf("GetAs[uint32](abc) = %v, %v; want 1, true", v, ok)
	}
	if _, ok := GetAs[string](tr, "abc"); ok {
		t.Fatalf("GetAs[string](abc) should have failed on type mismatch")
	}
}

func TestPutDoesNotDisturbOtherKeys(t *testing.T) {
	tr := New[int]()
	tr = tr.Put("k1", 1).Put("k2", 2)

	if got, ok := tr.Get("k1"); !ok || got != 1 {
		t.Fatalf("Get(k1) = %v, %v; want 1, true", got, ok)
	}
	if got, ok := tr.Get("k2"); !ok || got != 2 {
		t.Fatalf("Get(k2) = %v, %v; want 2, true", got, ok)
	}
}

func TestRemoveRoundTrip(t *testing.T) {
	tr := New[int]()
	tr = tr.Put("k", 1)
	tr = tr.Remove("k")

	if _, ok := tr.Get("k"); ok {
		t.Fatalf("Get(k) should be absent after Remove")
	}
}

func TestRemoveUnknownKeyIsNoop(t *testing.T) {
	tr := New[int]().Put("a", 1)
	same := tr.Remove("nope")
	if same.root != tr.root {
		t.Fatalf("Remove of an absent key must return the same root pointer")
	}
}

// TestRemoveLeavesInteriorNode covers scenario 2 from the spec: removing "a"
// must not disturb "ab", which stays reachable through a now-non-value node
// at "a".
func TestRemoveLeavesInteriorNode(t *testing.T) {
	tr := New[int]()
	tr = tr.Put("a", 1)
	tr = tr.Put("ab", 2)
	tr = tr.Remove("a")

	if _, ok := tr.Get("a"); ok {
		t.Fatalf("Get(a) should be absent after Remove")
	}
	if got, ok := tr.Get("ab"); !ok || got != 2 {
		t.Fatalf("Get(ab) = %v, %v; want 2, true", got, ok)
	}

	// "a" must still exist as a plain interior node so that "ab" is reachable.
	if tr.root == nil {
		t.Fatalf("root should not be nil, ab must still be reachable")
	}
	aNode := tr.root.children['a']
	if aNode == nil {
		t.Fatalf("node at 'a' should still exist")
	}
	if aNode.isValue {
		t.Fatalf("node at 'a' should no longer be a value node")
	}
}

func TestRemovePrunesEmptyInteriorNodes(t *testing.T) {
	tr := New[int]().Put("ab", 1)
	tr = tr.Remove("ab")

	if tr.root != nil {
		t.Fatalf("removing the only key should leave the trie fully pruned, got root=%v", tr.root)
	}
}

func TestEmptyKeyPreservesChildren(t *testing.T) {
	tr := New[int]()
	tr = tr.Put("ab", 1)
	tr = tr.Put("", 99)

	if got, ok := tr.Get(""); !ok || got != 99 {
		t.Fatalf("Get(\"\") = %v, %v; want 99, true", got, ok)
	}
	if got, ok := tr.Get("ab"); !ok || got != 1 {
		t.Fatalf("Get(ab) = %v, %v; want 1, true", got, ok)
	}
}

func TestRemoveEmptyKeyKeepsChildrenAsInterior(t *testing.T) {
	tr := New[int]().Put("", 1).Put("ab", 2)
	tr = tr.Remove("")

	if _, ok := tr.Get(""); ok {
		t.Fatalf("Get(\"\") should be absent after Remove")
	}
	if got, ok := tr.Get("ab"); !ok || got != 2 {
		t.Fatalf("Get(ab) = %v, %v; want 2, true", got, ok)
	}
}

// TestStructuralSharing checks that a Put along one key leaves every subtree
// off that key's spine referenced (by pointer) by both the old and the new
// trie.
func TestStructuralSharing(t *testing.T) {
	t1 := New[int]().Put("xy", 1).Put("xz", 2)
	t2 := t1.Put("xy", 100)

	oldXZ := t1.root.children['x'].children['z']
	newXZ := t2.root.children['x'].children['z']

	if oldXZ != newXZ {
		t.Fatalf("subtree at 'xz' should be shared by pointer between t1 and t2")
	}
	if t2.root == t1.root {
		t.Fatalf("roots must differ after Put")
	}
}

func TestKeysWithSharedPrefixDoNotShadow(t *testing.T) {
	tr := New[string]()
	tr = tr.Put("test", "4").Put("te", "2").Put("tes", "3")

	for key, want := range map[string]string{"test": "4", "te": "2", "tes": "3"} {
		got, ok := tr.Get(key)
		if !ok || got != want {
			t.Fatalf("Get(%q) = %v, %v; want %v, true", key, got, ok, want)
		}
	}
}
