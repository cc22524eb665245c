package arena

import (
	"sync"

	"github.com/timandy/routine"

	"github.com/geoff-m/memory-pool/internal/debug"
)

// PerGoroutine lazily materializes one Single arena per calling goroutine,
// keyed by goroutine-local storage. Go gives user code no stable OS-thread
// affinity, so routine.ThreadLocal's per-goroutine slot is the closest
// equivalent of a per-thread pool, and the one the rest of this module
// already depends on for debug logging.
//
// A goroutine's first call to Allocate reserves a fresh capacity-byte arena
// for that goroutine alone; every subsequent call from the same goroutine
// reuses it. Arenas are never torn down early: they all live until Close.
type PerGoroutine struct {
	capacity int
	onOOM    OnOutOfCapacity
	local    routine.ThreadLocal[*Single]

	mu    sync.Mutex
	all   []*Single
	count int // number of distinct goroutines that have allocated so far
}

var _ Pool = (*PerGoroutine)(nil)

func newPerGoroutine(capacity int, onOOM OnOutOfCapacity) *PerGoroutine {
	return &PerGoroutine{
		capacity: capacity,
		onOOM:    onOOM,
		local:    routine.NewThreadLocal[*Single](),
	}
}

// own returns (lazily creating) the calling goroutine's private arena.
func (p *PerGoroutine) own() (*Single, error) {
	if a := p.local.Get(); a != nil {
		return a, nil
	}

	a, err := newSingle(p.capacity, p.onOOM)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.all = append(p.all, a)
	p.count++
	p.mu.Unlock()

	p.local.Set(a)
	debug.Log([]any{"%p", p}, "spawn", "goroutine-local arena %p (count=%d)", a, p.count)

	return a, nil
}

func (p *PerGoroutine) Allocate(size, alignment int) ([]byte, error) {
	a, err := p.own()
	if err != nil {
		return nil, err
	}
	return a.Allocate(size, alignment)
}

func (p *PerGoroutine) AllocateSize(size int) ([]byte, error) {
	return p.Allocate(size, 1)
}

// Release is a no-op; see the Pool doc comment.
func (p *PerGoroutine) Release([]byte) {}

// Capacity returns the per-goroutine capacity, not an aggregate across every
// goroutine's private arena.
func (p *PerGoroutine) Capacity() int { return p.capacity }

// Used sums bytes in use across every goroutine that has allocated so far.
// It is a snapshot: a goroutine that allocates concurrently with this call
// may or may not be reflected, and one that has not yet allocated at all
// contributes nothing.
func (p *PerGoroutine) Used() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var total int
	for _, a := range p.all {
		total += a.Used()
	}
	return total
}

// AlignmentFragmentation sums fragmentation across every goroutine's arena,
// with the same snapshot caveat as Used.
func (p *PerGoroutine) AlignmentFragmentation() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var total int
	for _, a := range p.all {
		total += a.AlignmentFragmentation()
	}
	return total
}

// Close releases every goroutine's arena. It returns the first error
// encountered, after attempting to release all of them.
func (p *PerGoroutine) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for _, a := range p.all {
		if err := a.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Equal reports whether other is the same per-goroutine pool as p.
func (p *PerGoroutine) Equal(other Pool) bool {
	o, ok := other.(*PerGoroutine)
	return ok && o == p
}
