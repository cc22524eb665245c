// Package slice implements a growable sequence on top of an arena.Allocator,
// demonstrating that the allocator façade is enough to build an ordinary
// generic container without the container needing to know anything about
// virtual memory or commit sizes.
package slice

import (
	"github.com/geoff-m/memory-pool/pkg/arena"
)

// Sequence is an append-only, growable sequence of T backed by an
// arena.Allocator[T]. Like the arena itself, a Sequence never shrinks or
// frees individual elements; its backing storage is reclaimed only when the
// underlying pool is closed.
//
// The zero value is not usable; construct one with New.
type Sequence[T any] struct {
	alloc arena.Allocator[T]
	data  []T
}

// New returns an empty Sequence drawing from alloc, growing its backing
// allocation from scratch on the first Push.
func New[T any](alloc arena.Allocator[T]) *Sequence[T] {
	return &Sequence[T]{alloc: alloc}
}

// NewWithCapacity returns an empty Sequence that reserves room for capacity
// elements up front, so that exactly capacity calls to Push never trigger a
// reallocation. Use this when the caller already knows the element count the
// backing pool was sized for.
func NewWithCapacity[T any](alloc arena.Allocator[T], capacity int) (*Sequence[T], error) {
	s := &Sequence[T]{alloc: alloc}
	if capacity > 0 {
		data, err := alloc.Allocate(capacity)
		if err != nil {
			return nil, err
		}
		s.data = data
	}
	return s, nil
}

// Len returns the number of elements pushed so far.
func (s *Sequence[T]) Len() int { return len(s.data) }

// At returns a pointer to the element at index i, valid until the backing
// pool is closed. It panics if i is out of range, matching slice indexing.
func (s *Sequence[T]) At(i int) *T { return &s.data[i] }

// Push appends v, growing the backing storage from the allocator if needed,
// and returns a pointer to the newly stored copy.
func (s *Sequence[T]) Push(v T) (*T, error) {
	if len(s.data) == cap(s.data) {
		if err := s.grow(); err != nil {
			return nil, err
		}
	}
	s.data = s.data[:len(s.data)+1]
	s.data[len(s.data)-1] = v
	return &s.data[len(s.data)-1], nil
}

// grow requests a new, larger backing allocation from the allocator and
// copies the existing elements into it. The old allocation is abandoned in
// place, per the arena's bulk-free model: it is reclaimed only when the
// whole pool is closed.
func (s *Sequence[T]) grow() error {
	next := nextCapacity(cap(s.data))
	fresh, err := s.alloc.Allocate(next)
	if err != nil {
		return err
	}
	fresh = fresh[:len(s.data)]
	copy(fresh, s.data)
	s.data = fresh
	return nil
}

func nextCapacity(c int) int {
	if c == 0 {
		return 1
	}
	return c * 2
}
