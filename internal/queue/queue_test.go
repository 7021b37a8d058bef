package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmpty(t *testing.T) {
	q := New[string]()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())

	v, ok := q.First()
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestOrder(t *testing.T) {
	q := New(1, 2)
	q.Append(3).Append(4, 5)
	assert.Equal(t, 5, q.Len())

	var got []int
	for !q.IsEmpty() {
		v, ok := q.First()
		assert.True(t, ok)
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
	assert.Equal(t, 0, q.head)
}

func TestInterleaved(t *testing.T) {
	q := New[int]()
	for i := 0; i < 100; i++ {
		q.Append(2*i, 2*i+1)
		v, ok := q.First()
		assert.True(t, ok)
		assert.Equal(t, i, v)
		assert.LessOrEqual(t, q.head*2, cap(q.items))
	}
	assert.Equal(t, 100, q.Len())
}

func TestReleasesItems(t *testing.T) {
	a, b := new(int), new(int)
	q := New(a, b)
	v, _ := q.First()
	assert.Same(t, a, v)
	assert.Nil(t, q.items[0])
}
