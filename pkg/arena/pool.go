// Package arena implements a bump-allocating memory pool backed by a single
// contiguous virtual-address reservation (see package vm), with physical
// pages committed lazily on demand.
//
// Three variants share the Pool contract: Single is the uncontended core (not
// safe for concurrent use), Locked wraps it behind a mutex for full mutual
// exclusion, and PerGoroutine replicates it per calling goroutine so that
// callers who partition work by goroutine pay no synchronization cost at all.
// CreateKind picks the right one from a Kind; Create builds a ThreadSafe one.
package arena

import "github.com/geoff-m/memory-pool/internal/debug"

// Pool is the allocation contract shared by every arena variant. A Pool is
// uniquely identified by its own address; Equal compares identity, not
// contents.
//
// Deallocation is intentionally a no-op: this is a bulk-free allocator, not a
// general-purpose one. Callers with destructor obligations on the values they
// place in a Pool must invoke those destructors themselves before the Pool is
// closed.
type Pool interface {
	// Allocate returns size bytes aligned to alignment, which must be >= 1
	// (it need not be a power of two). Returns OutOfCapacityError if the
	// request cannot fit in the remaining capacity, or a nil slice and a nil
	// error instead for a pool built with ReturnNil.
	Allocate(size, alignment int) ([]byte, error)

	// AllocateSize is Allocate(size, 1).
	AllocateSize(size int) ([]byte, error)

	// Release is a deliberate no-op: this pool only frees memory in bulk,
	// on Close. It exists to satisfy the Allocator façade's contract.
	Release(b []byte)

	// Capacity returns the pool's total declared capacity in bytes. For a
	// PerGoroutine pool this is the per-goroutine capacity, not an
	// aggregate across goroutines.
	Capacity() int

	// Used returns the number of bytes handed out so far, including
	// alignment skip.
	Used() int

	// AlignmentFragmentation returns the cumulative bytes wasted to
	// alignment skip across all allocations so far.
	AlignmentFragmentation() int

	// Close releases the pool's entire virtual-address reservation. Every
	// pointer previously returned by Allocate becomes invalid. Close does
	// not run destructors for values placed in the pool.
	Close() error

	// Equal reports whether other refers to the same pool.
	Equal(other Pool) bool
}

// Kind selects which concurrency discipline Create builds.
type Kind int

const (
	// ThreadSafe wraps the bump arena in a mutex; operations from any
	// number of goroutines linearize in mutex-acquisition order. This is
	// the default Kind.
	ThreadSafe Kind = iota
	// SingleThreaded is the bare bump arena: fast, but a data race if
	// used from more than one goroutine concurrently.
	SingleThreaded
	// PerGoroutine lazily materializes one bump arena per calling
	// goroutine, eliminating synchronization on the hot path for callers
	// who partition work by goroutine. See single.go and perthread.go.
	PerGoroutine
)

func (k Kind) String() string {
	switch k {
	case ThreadSafe:
		return "ThreadSafe"
	case SingleThreaded:
		return "SingleThreaded"
	case PerGoroutine:
		return "PerGoroutine"
	default:
		return "Kind(unknown)"
	}
}

// OnOutOfCapacity selects what Allocate does when a request does not fit in
// the pool's remaining capacity.
type OnOutOfCapacity int

const (
	// Throw is the default: Allocate returns a non-nil *OutOfCapacityError.
	Throw OnOutOfCapacity = iota
	// ReturnNil makes Allocate return (nil, nil) instead of an error,
	// leaving the caller to check for a nil result the way it would check
	// a malloc-style allocator for a null pointer.
	ReturnNil
)

func (b OnOutOfCapacity) String() string {
	switch b {
	case Throw:
		return "Throw"
	case ReturnNil:
		return "ReturnNil"
	default:
		return "OnOutOfCapacity(unknown)"
	}
}

// Create builds a ThreadSafe pool of the given capacity that returns
// OutOfCapacityError when exhausted.
//
// capacity must be strictly positive.
func Create(capacity int) (Pool, error) {
	return CreateKind(capacity, ThreadSafe)
}

// CreateKind builds a pool of the given capacity and concurrency discipline
// that returns OutOfCapacityError when exhausted.
//
// capacity must be strictly positive.
func CreateKind(capacity int, kind Kind) (Pool, error) {
	return CreateKindOnOOM(capacity, kind, Throw)
}

// CreateKindOnOOM builds a pool of the given capacity and concurrency
// discipline, with exhaustion behavior selected by onOOM.
//
// capacity must be strictly positive.
func CreateKindOnOOM(capacity int, kind Kind, onOOM OnOutOfCapacity) (Pool, error) {
	debug.Assert(capacity > 0, "capacity must be strictly positive, got %d", capacity)

	switch kind {
	case SingleThreaded:
		return newSingle(capacity, onOOM)
	case ThreadSafe:
		return newLocked(capacity, onOOM)
	case PerGoroutine:
		return newPerGoroutine(capacity, onOOM), nil
	default:
		debug.Assert(false, "unknown pool kind %v", kind)
		return newLocked(capacity, onOOM)
	}
}
