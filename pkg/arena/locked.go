package arena

import "sync"

// Locked wraps a Single behind a mutex. Every public method takes the lock,
// forwards to the embedded arena, and releases, including Capacity, so a
// concurrent reader always observes a linearizable view of the whole arena,
// even though totalCapacity itself never changes.
type Locked struct {
	mu sync.Mutex
	a  *Single
}

var _ Pool = (*Locked)(nil)

func newLocked(capacity int, onOOM OnOutOfCapacity) (*Locked, error) {
	a, err := newSingle(capacity, onOOM)
	if err != nil {
		return nil, err
	}
	return &Locked{a: a}, nil
}

// Allocate is linearizable: allocations from two goroutines produce disjoint
// regions in mutex-acquisition order.
func (l *Locked) Allocate(size, alignment int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Allocate(size, alignment)
}

// AllocateSize is Allocate(size, 1).
func (l *Locked) AllocateSize(size int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.AllocateSize(size)
}

// Release is a no-op; see the Pool doc comment.
func (l *Locked) Release(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Release(b)
}

// Capacity returns the arena's total declared capacity.
func (l *Locked) Capacity() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Capacity()
}

// Used returns bytes handed out so far, as observed at lock-acquisition
// time: it equals the sum of sizes (plus skips) of allocations ordered
// before this call in mutex order.
func (l *Locked) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Used()
}

// AlignmentFragmentation returns cumulative alignment-skip bytes.
func (l *Locked) AlignmentFragmentation() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.AlignmentFragmentation()
}

// Close releases the arena's entire virtual-address reservation.
func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Close()
}

// Equal reports whether other is the same locked pool as l.
func (l *Locked) Equal(other Pool) bool {
	o, ok := other.(*Locked)
	return ok && o == l
}
