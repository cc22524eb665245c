package arena

import "unsafe"

// unsafeBytesToSlice reinterprets a byte slice carved out of a pool as a
// slice of T, without copying. b's length must be a multiple of sizeof(T)
// and b's address must already satisfy alignof(T); Pool.Allocate guarantees
// both when called with layout.Size[T]() and layout.Align[T]().
func unsafeBytesToSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var z T
	n := len(b) / int(unsafe.Sizeof(z))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// unsafeSliceToBytes is the inverse of unsafeBytesToSlice.
func unsafeSliceToBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var z T
	n := len(s) * int(unsafe.Sizeof(z))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n)
}
