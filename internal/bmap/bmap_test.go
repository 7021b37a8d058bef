package bmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSet(t *testing.T) {
	m := New[int](2)
	_, found := m.Get([]byte("fn"))
	assert.False(t, found)

	m.Set([]byte("fn"), 1)
	m.Set(nil, 7)
	v, found := m.Get([]byte("fn"))
	assert.True(t, found)
	assert.Equal(t, 1, v)

	v, found = m.Get([]byte{})
	assert.True(t, found)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, m.Len())

	_, found = m.Get([]byte("f"))
	assert.False(t, found)
}

func TestKeysAreCopied(t *testing.T) {
	m := New[string](1)
	key := []byte("let")
	m.Set(key, "let")
	key[0] = 'b'

	v, found := m.Get([]byte("let"))
	assert.True(t, found)
	assert.Equal(t, "let", v)
	_, found = m.Get(key)
	assert.False(t, found)
}

func TestUpdate(t *testing.T) {
	m := New[[]int](1)
	add := func(i int) func([]int) []int {
		return func(is []int) []int { return append(is, i) }
	}
	m.Update([]byte("r"), add(3))
	m.Update([]byte("r"), add(5))
	v, _ := m.Get([]byte("r"))
	assert.Equal(t, []int{3, 5}, v)
}
