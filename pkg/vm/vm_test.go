package vm_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/geoff-m/memory-pool/pkg/vm"
)

func unsafeBytes(base uintptr, size int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
}

func TestReserveCommitRelease(t *testing.T) {
	Convey("Given a fresh reservation", t, func() {
		base, size, err := vm.Reserve(3 * vm.PageSize())
		So(err, ShouldBeNil)
		So(base, ShouldNotEqual, 0)
		So(size, ShouldBeGreaterThanOrEqualTo, 3*vm.PageSize())
		Reset(func() {
			So(vm.Release(base, size), ShouldBeNil)
		})

		Convey("When a subrange is committed", func() {
			err := vm.Commit(base, vm.PageSize())
			So(err, ShouldBeNil)

			Convey("Then the committed bytes are readable and writable", func() {
				b := unsafeBytes(base, vm.PageSize())
				for i := range b {
					b[i] = byte(i)
				}
				for i := range b {
					So(b[i], ShouldEqual, byte(i))
				}
			})
		})

		Convey("When committed twice over the same range", func() {
			So(vm.Commit(base, vm.PageSize()), ShouldBeNil)
			err := vm.Commit(base, vm.PageSize())

			Convey("Then commit is idempotent", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestPageSize(t *testing.T) {
	Convey("Given the system page size", t, func() {
		ps := vm.PageSize()

		Convey("It is a positive power of two", func() {
			So(ps, ShouldBeGreaterThan, 0)
			So(ps&(ps-1), ShouldEqual, 0)
		})
	})
}

func TestContainingPage(t *testing.T) {
	Convey("Given an address in the middle of a page", t, func() {
		ps := uintptr(vm.PageSize())
		p := ps*5 + 17

		Convey("ContainingPage rounds it down to the page boundary", func() {
			So(vm.ContainingPage(p), ShouldEqual, ps*5)
		})
	})
}
