//go:build go1.22

package arena_test

import (
	"github.com/geoff-m/memory-pool/pkg/arena"
)

// fillPool allocates chunkSize-byte regions from p until its capacity is
// exhausted, writing to each one so the backing commit is actually touched
// rather than merely reserved.
func fillPool(p arena.Pool, chunkSize int) {
	for p.Used() < p.Capacity() {
		b, err := p.Allocate(chunkSize, 1)
		if err != nil {
			panic(err)
		}
		if b == nil {
			panic("fillPool: Allocate returned (nil, nil) before the pool was full")
		}
		useMemory(b)
	}
}

// useMemory writes a deterministic byte pattern across the whole slice, the
// way a real caller would touch every byte of a freshly allocated region.
func useMemory(b []byte) {
	for i := range b {
		b[i] = byte(i)
	}
}

// assertPoolFull reports whether p is exactly at capacity and whether the
// next allocation correctly signals exhaustion, either as a non-nil error
// (Throw) or as a nil slice (ReturnNil).
func assertPoolFull(p arena.Pool) (full bool, signaled bool) {
	if p.Used() != p.Capacity() {
		return false, false
	}
	b, err := p.Allocate(1, 1)
	return true, err != nil || b == nil
}
