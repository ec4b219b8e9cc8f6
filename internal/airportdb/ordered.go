package airportdb

import "github.com/google/btree"

const orderedMapDegree = 32

type orderedItem[V any] struct {
	key   string
	value V
}

func lessOrderedItem[V any](a, b orderedItem[V]) bool {
	return a.key < b.key
}

// orderedMap is a string-keyed B-tree map that iterates in key order.
type orderedMap[V any] struct {
	tree *btree.BTreeG[orderedItem[V]]
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{tree: btree.NewG(orderedMapDegree, lessOrderedItem[V])}
}

func (m *orderedMap[V]) Len() int {
	return m.tree.Len()
}

func (m *orderedMap[V]) Get(key string) (V, bool) {
	item, ok := m.tree.Get(orderedItem[V]{key: key})
	return item.value, ok
}

func (m *orderedMap[V]) Has(key string) bool {
	return m.tree.Has(orderedItem[V]{key: key})
}

// Insert adds key unless it is already present. It reports whether the
// value was inserted.
func (m *orderedMap[V]) Insert(key string, v V) bool {
	if m.tree.Has(orderedItem[V]{key: key}) {
		return false
	}
	m.tree.ReplaceOrInsert(orderedItem[V]{key: key, value: v})
	return true
}

func (m *orderedMap[V]) Delete(key string) bool {
	_, ok := m.tree.Delete(orderedItem[V]{key: key})
	return ok
}

// Each visits entries in key order until fn returns false. fn must not
// modify the map; use Keys for a stable snapshot.
func (m *orderedMap[V]) Each(fn func(key string, v V) bool) {
	m.tree.Ascend(func(item orderedItem[V]) bool {
		return fn(item.key, item.value)
	})
}

// Keys returns a copy of the keys in order.
func (m *orderedMap[V]) Keys() []string {
	out := make([]string, 0, m.tree.Len())
	m.tree.Ascend(func(item orderedItem[V]) bool {
		out = append(out, item.key)
		return true
	})
	return out
}

// Values returns the values in key order.
func (m *orderedMap[V]) Values() []V {
	out := make([]V, 0, m.tree.Len())
	m.tree.Ascend(func(item orderedItem[V]) bool {
		out = append(out, item.value)
		return true
	})
	return out
}

func (m *orderedMap[V]) Clear() {
	m.tree.Clear(false)
}
