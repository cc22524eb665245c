package arena

import (
	"fmt"

	"github.com/geoff-m/memory-pool/internal/debug"
)

// OutOfCapacityError reports that an allocation would exceed the arena's
// total capacity. The arena remains usable after this error; a subsequent,
// smaller allocation may still succeed. This is the only error a caller is
// expected to branch on.
type OutOfCapacityError struct {
	// Requested is the number of bytes the failing allocation asked for,
	// not counting alignment skip.
	Requested int
	// Remaining is the number of bytes free in the arena at the time of
	// the failed allocation, before accounting for alignment skip.
	Remaining int
}

func (e *OutOfCapacityError) Error() string {
	return fmt.Sprintf("arena: out of capacity: %v", debug.Dict("", "requested", e.Requested, "remaining", e.Remaining))
}

// VMReserveError wraps a reservation failure from the vm package, raised
// only during pool construction; no pool is returned when this occurs.
type VMReserveError struct {
	Size  int
	Cause error
}

func (e *VMReserveError) Error() string {
	return fmt.Sprintf("arena: reserve %d bytes: %v", e.Size, e.Cause)
}

func (e *VMReserveError) Unwrap() error { return e.Cause }

// VMCommitError wraps a commit failure from the vm package, raised during
// allocation. The allocation that triggered it did not occur; bytesInUse and
// the arena's pointers are left unchanged.
type VMCommitError struct {
	Size  int
	Cause error
}

func (e *VMCommitError) Error() string {
	return fmt.Sprintf("arena: commit %d bytes: %v", e.Size, e.Cause)
}

func (e *VMCommitError) Unwrap() error { return e.Cause }

// VMReleaseError wraps a release failure from the vm package, raised when a
// pool is destroyed. Implementations are expected to treat this as fatal;
// Pool.Close surfaces it rather than panicking so callers with explicit
// lifetime management can decide what to do.
type VMReleaseError struct {
	Size  int
	Cause error
}

func (e *VMReleaseError) Error() string {
	return fmt.Sprintf("arena: release %d bytes: %v", e.Size, e.Cause)
}

func (e *VMReleaseError) Unwrap() error { return e.Cause }
