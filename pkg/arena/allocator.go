package arena

import (
	"github.com/geoff-m/memory-pool/pkg/xunsafe/layout"
)

// Allocator is a typed, copyable façade over a Pool, mirroring the shape of a
// C++-style polymorphic allocator: it does not own the Pool it points at, so
// copying an Allocator is cheap and shares the same underlying arena.
//
// The zero value is not usable; construct one with NewAllocator.
type Allocator[T any] struct {
	pool Pool
}

// NewAllocator returns an Allocator[T] backed by pool. pool must outlive
// every value allocated through the returned Allocator.
func NewAllocator[T any](pool Pool) Allocator[T] {
	return Allocator[T]{pool: pool}
}

// Pool returns the Pool this allocator draws from.
func (al Allocator[T]) Pool() Pool { return al.pool }

// Rebind returns an allocator over the same underlying Pool, typed for U
// instead of T. This is the Go analogue of a C++ allocator's rebind member,
// needed whenever a generic container built on Allocator[T] must allocate a
// node type distinct from its element type.
func Rebind[U, T any](al Allocator[T]) Allocator[U] {
	return Allocator[U]{pool: al.pool}
}

// Allocate reserves room for n contiguous values of type T, aligned to T's
// natural alignment, and returns it as a zero-length, n-capacity slice ready
// to be appended to. It returns OutOfCapacityError if the pool cannot
// satisfy the request.
func (al Allocator[T]) Allocate(n int) ([]T, error) {
	if n == 0 {
		return nil, nil
	}

	size := n * layout.Size[T]()
	b, err := al.pool.Allocate(size, layout.Align[T]())
	if err != nil {
		return nil, err
	}

	return unsafeBytesToSlice[T](b)[:0:n], nil
}

// Deallocate is a deliberate no-op, forwarded to the underlying Pool; see the
// Pool doc comment.
func (al Allocator[T]) Deallocate(s []T) {
	al.pool.Release(unsafeSliceToBytes(s))
}

// New allocates room for a single T, writes v into it, and returns a pointer
// into the pool. The pointer is valid until the pool is closed.
func (al Allocator[T]) New(v T) (*T, error) {
	s, err := al.Allocate(1)
	if err != nil {
		return nil, err
	}
	s = s[:1]
	s[0] = v
	return &s[0], nil
}

// Equal reports whether al and other draw from the same underlying Pool.
func (al Allocator[T]) Equal(other Allocator[T]) bool {
	return al.pool.Equal(other.pool)
}
