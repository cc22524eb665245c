// Package xunsafe provides a more convenient interface for performing unsafe
// pointer and address arithmetic than Go's built-in package unsafe, shared by
// the arena and vm packages.
package xunsafe

import (
	"sync"

	"github.com/geoff-m/memory-pool/pkg/xunsafe/layout"
)

// NoCopy is a type that go vet will complain about having been copied.
//
// It does so by being a zero-length array of [sync.Mutex], which vet's
// copylocks check treats as a lock.
type NoCopy [0]sync.Mutex

// Int is any integer type.
type Int = layout.Int
