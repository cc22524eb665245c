package arena

import (
	"math/bits"
	"unsafe"

	"github.com/geoff-m/memory-pool/internal/debug"
	"github.com/geoff-m/memory-pool/pkg/vm"
	"github.com/geoff-m/memory-pool/pkg/xunsafe"
)

const oneMiB = 1 << 20

// Single is the uncontended bump arena: one virtual-address reservation,
// carved up by advancing a single pointer. It is the primitive the Locked
// and PerGoroutine variants reuse; using it directly from more than one
// goroutine concurrently is a data race by design.
//
// The zero value is not usable; construct one with newSingle.
type Single struct {
	_ xunsafe.NoCopy

	totalCapacity    int
	reservedCapacity int // actual VM reservation size, >= totalCapacity, page-rounded
	commitAheadBytes int
	onOOM            OnOutOfCapacity

	buffer               xunsafe.Addr[byte] // start of the reservation, page-aligned
	firstCommittedUnused xunsafe.Addr[byte] // first byte not yet handed out
	firstUncommitted     xunsafe.Addr[byte] // first byte of the uncommitted tail, page-aligned unless clamped to end()

	bytesInUse             int
	alignmentFragmentation int

	closed bool
}

var _ Pool = (*Single)(nil)

func newSingle(capacity int, onOOM OnOutOfCapacity) (*Single, error) {
	base, reserved, err := vm.Reserve(capacity)
	if err != nil {
		return nil, &VMReserveError{Size: capacity, Cause: err}
	}

	a := &Single{
		totalCapacity:    capacity,
		reservedCapacity: reserved,
		commitAheadBytes: roundUpPow2(max(vm.PageSize(), oneMiB)),
		onOOM:            onOOM,
		buffer:           xunsafe.Addr[byte](base),
	}
	a.firstCommittedUnused = a.buffer
	a.firstUncommitted = a.buffer

	// initial is the page-rounded size to physically commit; it may exceed
	// capacity, since commits must land on page boundaries. The bump
	// pointer bookkeeping below must still be clamped to capacity, the
	// pool's logical boundary, not to this physical, possibly larger size.
	initial := min(capacity, a.commitAheadBytes)
	initial = vm.RoundUpToPage(initial)
	initial = min(initial, reserved)

	if initial > 0 {
		if err := vm.Commit(uintptr(a.buffer), initial); err != nil {
			_ = vm.Release(uintptr(a.buffer), reserved)
			return nil, &VMReserveError{Size: capacity, Cause: err}
		}
	}
	a.firstUncommitted = a.buffer.Add(min(initial, capacity))

	debug.Log([]any{"%p", a}, "new", "cap=%d commitAhead=%d initial=%d", capacity, a.commitAheadBytes, initial)

	return a, nil
}

// end is the address one past the arena's declared capacity. The VM
// reservation itself may extend further, up to reservedCapacity.
func (a *Single) end() xunsafe.Addr[byte] {
	return a.buffer.Add(a.totalCapacity)
}

// Allocate runs a capacity pre-check, computes the alignment skip against
// the current bump pointer, works out a doubling commit-ahead target to
// amortize commit syscalls, commits ahead if needed (clipped to what
// remains of the reservation), re-checks capacity now that the alignment
// skip is known, and finally advances the bump pointer.
func (a *Single) Allocate(size, alignment int) ([]byte, error) {
	debug.Assert(alignment >= 1, "alignment must be >= 1, got %d", alignment)
	debug.Assert(size >= 0, "size must be >= 0, got %d", size)

	// Step 1: capacity pre-check (cheap gate, ignores alignment skip).
	if a.totalCapacity-a.bytesInUse < size {
		return a.outOfCapacity(size)
	}

	// Step 2: alignment skip.
	skip := alignmentSkip(uintptr(a.firstCommittedUnused), alignment)

	// Step 3: commit-ahead target.
	toCommitAhead := roundUp(skip+2*size, a.commitAheadBytes)

	// Step 4: commit if needed.
	if uintptr(a.firstCommittedUnused.Add(toCommitAhead)) > uintptr(a.firstUncommitted) {
		reservedTail := int(a.end() - a.firstUncommitted)

		var toCommit int
		if int(a.firstUncommitted-a.buffer)+toCommitAhead > a.totalCapacity {
			toCommit = reservedTail
		} else {
			toCommit = toCommitAhead
		}

		if toCommit > 0 {
			if err := vm.Commit(uintptr(a.firstUncommitted), toCommit); err != nil {
				return nil, &VMCommitError{Size: toCommit, Cause: err}
			}
			a.firstUncommitted = a.firstUncommitted.Add(toCommit)
		}
	}

	// Step 5: final capacity check. The alignment skip may have pushed us
	// over even though step 1 passed.
	newPointer := a.firstCommittedUnused.Add(skip + size)
	if uintptr(newPointer) > uintptr(a.end()) {
		return a.outOfCapacity(size)
	}

	// Step 6: bookkeeping.
	p := a.firstCommittedUnused.Add(skip)
	a.firstCommittedUnused = newPointer
	a.bytesInUse += skip + size
	a.alignmentFragmentation += skip

	debug.Log([]any{"%p", a}, "alloc", "size=%d align=%d skip=%d -> %v", size, alignment, skip, p)

	// Step 7: post-condition asserts.
	if a.bytesInUse == a.totalCapacity {
		debug.Assert(a.firstCommittedUnused == a.end() && a.firstUncommitted == a.end(),
			"arena exhausted but pointers do not both point at the end")
	} else {
		debug.Assert(a.firstCommittedUnused < a.firstUncommitted,
			"arena not exhausted but firstCommittedUnused >= firstUncommitted")
	}

	return unsafe.Slice(p.AssertValid(), size), nil
}

// AllocateSize is Allocate(size, 1).
func (a *Single) AllocateSize(size int) ([]byte, error) {
	return a.Allocate(size, 1)
}

// outOfCapacity reports a failed allocation according to a's OnOutOfCapacity
// policy: Throw returns an *OutOfCapacityError, ReturnNil swallows it and
// returns a nil slice with a nil error instead.
func (a *Single) outOfCapacity(requested int) ([]byte, error) {
	if a.onOOM == ReturnNil {
		return nil, nil
	}
	return nil, &OutOfCapacityError{Requested: requested, Remaining: a.totalCapacity - a.bytesInUse}
}

// Release is a no-op; see the Pool doc comment.
func (a *Single) Release([]byte) {}

// Capacity returns the arena's total declared capacity.
func (a *Single) Capacity() int { return a.totalCapacity }

// Used returns bytes handed out so far, including alignment skip.
func (a *Single) Used() int { return a.bytesInUse }

// AlignmentFragmentation returns cumulative alignment-skip bytes.
func (a *Single) AlignmentFragmentation() int { return a.alignmentFragmentation }

// Close releases the arena's entire virtual-address reservation.
func (a *Single) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	if err := vm.Release(uintptr(a.buffer), a.reservedCapacity); err != nil {
		return &VMReleaseError{Size: a.reservedCapacity, Cause: err}
	}
	return nil
}

// Equal reports whether other is the same arena as a.
func (a *Single) Equal(other Pool) bool {
	o, ok := other.(*Single)
	return ok && o == a
}

// alignmentSkip computes the number of bytes that must be skipped from addr
// to reach the next multiple of alignment. When alignment is a power of two
// this is done with a bitmask; otherwise with a plain modulo.
func alignmentSkip(addr uintptr, alignment int) int {
	if alignment == 1 {
		return 0
	}
	if isPow2(alignment) {
		mask := uintptr(alignment - 1)
		return int((uintptr(alignment) - (addr & mask)) & mask)
	}
	a := uintptr(alignment)
	rem := addr % a
	if rem == 0 {
		return 0
	}
	return int(a - rem)
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// roundUpPow2 rounds n up to the next power of two.
func roundUpPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// roundUp rounds n up to the next multiple of align, which must be a power
// of two.
func roundUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
