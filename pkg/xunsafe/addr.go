package xunsafe

import (
	"fmt"
	"unsafe"

	"github.com/geoff-m/memory-pool/pkg/xunsafe/layout"
)

// Addr is a typed raw address: a uintptr that is known to either be zero, or
// to have come from a *T.
//
// Unlike a *T, an Addr[T] is not traced by the garbage collector. This is the
// point: the arena package reserves memory outside the Go heap via the OS, so
// pointers into it must never be stored as real Go pointers, or the GC will
// try to scan memory it does not own.
type Addr[T any] uintptr

// AddrOf gets the address of a pointer.
func AddrOf[P ~*E, E any](p P) Addr[E] {
	return Addr[E](unsafe.Pointer(p))
}

// AssertValid reinterprets this address as a *T.
//
// Callers are responsible for ensuring that the address actually points to
// live, accessible memory of the right shape; this function performs no
// checking whatsoever.
func (a Addr[T]) AssertValid() *T {
	return (*T)(unsafe.Pointer(a)) //nolint:govet
}

// Add adds the given offset, in units of T, to this address.
func (a Addr[T]) Add(n int) Addr[T] {
	return a + Addr[T](n*layout.Size[T]())
}

// Sub computes the difference between two addresses, in units of T.
func (a Addr[T]) Sub(b Addr[T]) int {
	return int(a-b) / layout.Size[T]()
}

// RoundDownTo rounds this address down to the nearest multiple of align,
// which must be a power of two.
func (a Addr[T]) RoundDownTo(align int) Addr[T] {
	return Addr[T](layout.RoundDown(uintptr(a), uintptr(align)))
}

// RoundUpTo rounds this address up to the nearest multiple of align, which
// must be a power of two.
func (a Addr[T]) RoundUpTo(align int) Addr[T] {
	return Addr[T](layout.RoundUp(uintptr(a), uintptr(align)))
}

// Misalign returns the byte offset needed to reach the previous ("prev") and
// next ("next") align-aligned address relative to a. align must be a power
// of two. If a is already aligned, both are zero.
func (a Addr[T]) Misalign(align int) (prev, next int) {
	addr := uintptr(a)
	prev = int(addr & uintptr(align-1))
	next = int((uintptr(align) - addr) & uintptr(align-1))
	return prev, next
}

// Format implements [fmt.Formatter], printing the address in hex.
func (a Addr[T]) Format(state fmt.State, verb rune) {
	if verb == 'v' {
		fmt.Fprintf(state, "%#x", uintptr(a))
		return
	}
	fmt.Fprintf(state, fmt.FormatString(state, verb), uintptr(a))
}
