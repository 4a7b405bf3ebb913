// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lattice

// KeyedMap is a map built on a Set[K]: values are indexed by the identity
// of the canonical key, not by K's Hash/Equal, so two input keys that
// merely compare Equal (but are distinct values) still resolve to the
// same slot once one of them has been canonicalized. Because K is
// constrained to comparable (in practice a pointer type), "identity" here
// is literally Go's == on the canonical key.
type KeyedMap[K Key[K], V any] struct {
	keys   *Set[K]
	values map[K]V
}

// NewKeyedMap builds an empty KeyedMap.
func NewKeyedMap[K Key[K], V any]() *KeyedMap[K, V] {
	return &KeyedMap[K, V]{keys: NewSet[K](), values: make(map[K]V)}
}

// Get looks up the value stored under the canonical key equal to k,
// without inserting k if absent.
func (m *KeyedMap[K, V]) Get(k K) (V, bool) {
	canon, ok := m.keys.find(k)
	if !ok {
		var zero V
		return zero, false
	}
	v, ok := m.values[canon]
	return v, ok
}

// Set stores v under the canonical key equal to k, inserting k into the
// key set if no equal key exists yet. Returns the canonical key.
func (m *KeyedMap[K, V]) Set(k K, v V) K {
	canon := m.keys.GetOrInsert(k)
	m.values[canon] = v
	return canon
}

// Update applies Set to every (key, value) pair and returns the list of
// canonical keys in input order, the Go analogue of Python's
// DeduplicatedKeysDict.update.
func (m *KeyedMap[K, V]) Update(keys []K, values []V) []K {
	canon := make([]K, len(keys))
	for i := range keys {
		canon[i] = m.Set(keys[i], values[i])
	}
	return canon
}

// Len returns the number of distinct canonical keys.
func (m *KeyedMap[K, V]) Len() int {
	return m.keys.Len()
}

// Keys returns the canonical keys in unspecified order.
func (m *KeyedMap[K, V]) Keys() []K {
	return m.keys.Values()
}

// CanonicalKeyFor reports the canonical key stored for k, used by callers
// that need to assert "this pointer already is the canonical one".
func (m *KeyedMap[K, V]) CanonicalKeyFor(k K) (K, bool) {
	return m.keys.find(k)
}

// KeyedMultimap is a KeyedMap specialization whose values are sets of V:
// Update unions the incoming value into the existing set for the
// canonical key, the Go analogue of Python's DeduplicatedKeysDictOfSets.
type KeyedMultimap[K Key[K], V comparable] struct {
	keys   *Set[K]
	values map[K]map[V]struct{}
}

// NewKeyedMultimap builds an empty KeyedMultimap.
func NewKeyedMultimap[K Key[K], V comparable]() *KeyedMultimap[K, V] {
	return &KeyedMultimap[K, V]{keys: NewSet[K](), values: make(map[K]map[V]struct{})}
}

// Get returns the set of values associated with the canonical key equal
// to k, as a slice in unspecified order.
func (m *KeyedMultimap[K, V]) Get(k K) ([]V, bool) {
	canon, ok := m.keys.find(k)
	if !ok {
		return nil, false
	}
	set, ok := m.values[canon]
	if !ok {
		return nil, false
	}
	out := make([]V, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out, true
}

// Add inserts value v under the canonical key equal to k, unioning it into
// any values already present, and returns the canonical key.
func (m *KeyedMultimap[K, V]) Add(k K, v V) K {
	canon := m.keys.GetOrInsert(k)
	set, ok := m.values[canon]
	if !ok {
		set = make(map[V]struct{})
		m.values[canon] = set
	}
	set[v] = struct{}{}
	return canon
}

// Update applies Add for every (key, value) pair and returns the list of
// canonical keys in input order.
func (m *KeyedMultimap[K, V]) Update(keys []K, values []V) []K {
	canon := make([]K, len(keys))
	for i := range keys {
		canon[i] = m.Add(keys[i], values[i])
	}
	return canon
}

// Len returns the number of distinct canonical keys.
func (m *KeyedMultimap[K, V]) Len() int {
	return m.keys.Len()
}
