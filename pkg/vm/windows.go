//go:build windows

package vm

import (
	"sync"

	"golang.org/x/sys/windows"
)

// On Windows, a reservation is a MEM_RESERVE VirtualAlloc with no committed
// pages. Commit promotes a page-aligned subrange to MEM_COMMIT with
// PAGE_READWRITE protection; VirtualAlloc is idempotent when re-committing an
// already-committed range. Release frees the entire reservation in one call,
// since VirtualFree(MEM_RELEASE) requires the original base address and a
// zero size.

var pageSizeOnce = sync.OnceValue(func() int {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return int(info.PageSize)
})

func pageSize() int {
	return pageSizeOnce()
}

func reserve(size int) (uintptr, int, error) {
	size = RoundUpToPage(size)

	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return 0, 0, &ReserveError{Size: size, Cause: err}
	}

	return addr, size, nil
}

func commit(base uintptr, size int) error {
	_, err := windows.VirtualAlloc(base, uintptr(size), windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return &CommitError{Base: base, Size: uintptr(size), Cause: err}
	}

	return nil
}

func release(base uintptr, _ int) error {
	if err := windows.VirtualFree(base, 0, windows.MEM_RELEASE); err != nil {
		return &ReleaseError{Base: base, Size: 0, Cause: err}
	}

	return nil
}
