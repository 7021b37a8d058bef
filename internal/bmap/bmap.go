// Package bmap implements a map keyed by byte slices.
//
// The lexer looks keywords up by slices of the input, the map avoids converting them to strings.
package bmap

// BMap maps byte keys to values. Keys are copied on insertion, they cannot be deleted.
type BMap[T any] struct {
	m map[string]T
}

// New creates a map, size is a capacity hint.
func New[T any](size int) *BMap[T] {
	return &BMap[T]{m: make(map[string]T, size)}
}

func (m *BMap[T]) Len() int {
	return len(m.m)
}

// Get returns the value stored for key and whether key is present.
func (m *BMap[T]) Get(key []byte) (T, bool) {
	v, found := m.m[string(key)]
	return v, found
}

func (m *BMap[T]) Set(key []byte, value T) {
	m.m[string(key)] = value
}

// Update replaces the value for key with f applied to the stored one (zero value if absent).
func (m *BMap[T]) Update(key []byte, f func(T) T) {
	k := string(key)
	m.m[k] = f(m.m[k])
}
