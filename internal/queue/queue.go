// Package queue implements a FIFO queue used for breadth-first walks over grammar graphs.
package queue

// Queue keeps items in a slice, consumed items are dropped when they take more than half of it.
type Queue[T any] struct {
	items []T
	head  int
}

func New[T any](items ...T) *Queue[T] {
	return &Queue[T]{items: append([]T(nil), items...)}
}

func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

func (q *Queue[T]) IsEmpty() bool {
	return q.head == len(q.items)
}

func (q *Queue[T]) Append(items ...T) *Queue[T] {
	q.items = append(q.items, items...)
	return q
}

// First removes and returns the oldest item, false means the queue is empty.
func (q *Queue[T]) First() (T, bool) {
	var zero T
	if q.IsEmpty() {
		return zero, false
	}

	res := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items, q.head = q.items[:0], 0
	} else if q.head*2 > cap(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items, q.head = q.items[:n], 0
	}
	return res, true
}
