// Package ints implements a dense set of small non-negative integers.
//
// Sets index terms and nonterminals of a compiled table, so items are
// expected to be small and tightly packed.
package ints

import (
	"fmt"
	"math/bits"
)

const wordBits = 64

// Set is a bit set. A zero Set is empty and ready to use.
type Set struct {
	words []uint64
}

func NewSet(items ...int) *Set {
	s := &Set{}
	return s.Add(items...)
}

func (s *Set) grow(item int) {
	need := item/wordBits + 1
	if need <= len(s.words) {
		return
	}
	if need <= cap(s.words) {
		s.words = s.words[:need]
		return
	}
	words := make([]uint64, need, need*2)
	copy(words, s.words)
	s.words = words
}

// Add inserts items and returns the set itself. Negative items panic.
func (s *Set) Add(items ...int) *Set {
	for _, item := range items {
		if item < 0 {
			panic(fmt.Sprintf("ints: negative item %d", item))
		}
		s.grow(item)
		s.words[item/wordBits] |= 1 << (uint(item) % wordBits)
	}
	return s
}

func (s *Set) Contains(item int) bool {
	if item < 0 || item/wordBits >= len(s.words) {
		return false
	}
	return s.words[item/wordBits]&(1<<(uint(item)%wordBits)) != 0
}

func (s *Set) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

func (s *Set) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// ToSlice returns items in ascending order.
func (s *Set) ToSlice() []int {
	res := make([]int, 0, s.Len())
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			res = append(res, i*wordBits+b)
			w &= w - 1
		}
	}
	return res
}
