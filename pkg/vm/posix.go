//go:build !windows

package vm

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// On POSIX systems a reservation is an anonymous, inaccessible mmap. Commit
// upgrades the access rights on a page-aligned subrange via mprotect; pages
// are lazily backed by the kernel on first touch, so mprotect alone realizes
// the commit step. Release unmaps the whole reservation.

var pageSizeOnce = sync.OnceValue(unix.Getpagesize)

func pageSize() int {
	return pageSizeOnce()
}

func reserve(size int) (uintptr, int, error) {
	size = RoundUpToPage(size)

	b, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, 0, &ReserveError{Size: size, Cause: err}
	}

	return uintptr(unsafe.Pointer(&b[0])), size, nil
}

func commit(base uintptr, size int) error {
	b := byteSliceAt(base, size)

	if err := unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return &CommitError{Base: base, Size: uintptr(size), Cause: err}
	}

	return nil
}

func release(base uintptr, size int) error {
	b := byteSliceAt(base, size)

	if err := unix.Munmap(b); err != nil {
		return &ReleaseError{Base: base, Size: uintptr(size), Cause: err}
	}

	return nil
}

// byteSliceAt reconstructs the []byte view over a raw reservation address
// that unix.Mprotect/Munmap expect. Munmap keys its internal bookkeeping off
// address and length equality, not slice identity, so this is safe as long as
// base and size match what Reserve actually returned.
func byteSliceAt(base uintptr, size int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
}
