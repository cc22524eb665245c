//go:build go1.22

package arena_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/geoff-m/memory-pool/pkg/arena"
)

func TestSingle(t *testing.T) {
	Convey("Given a SingleThreaded pool sized for ten small allocations", t, func() {
		const elemSize = 64
		p, err := arena.CreateKind(10*elemSize, arena.SingleThreaded)
		So(err, ShouldBeNil)
		Reset(func() { So(p.Close(), ShouldBeNil) })

		Convey("When one allocation is made", func() {
			b, err := p.Allocate(elemSize, 8)
			So(err, ShouldBeNil)

			Convey("Then it has exactly the requested length", func() {
				So(len(b), ShouldEqual, elemSize)
				So(cap(b), ShouldEqual, elemSize)
			})

			Convey("Then it is writable end to end", func() {
				for i := range b {
					b[i] = byte(i)
				}
				for i := range b {
					So(b[i], ShouldEqual, byte(i))
				}
			})

			Convey("Then Used reflects the allocation", func() {
				So(p.Used(), ShouldEqual, elemSize)
			})
		})

		Convey("When ten allocations exactly fill the pool", func() {
			var ptrs []uintptr
			for i := 0; i < 10; i++ {
				b, err := p.Allocate(elemSize, 1)
				So(err, ShouldBeNil)
				ptrs = append(ptrs, uintptr(unsafe.Pointer(&b[0])))
			}

			Convey("Then every region is disjoint", func() {
				for i := range ptrs {
					for j := range ptrs {
						if i == j {
							continue
						}
						lo, hi := ptrs[i], ptrs[i]+elemSize
						So(ptrs[j] < lo || ptrs[j] >= hi, ShouldBeTrue)
					}
				}
			})

			Convey("Then Used equals the full capacity", func() {
				So(p.Used(), ShouldEqual, 10*elemSize)
			})

			Convey("Then an eleventh allocation fails with OutOfCapacityError", func() {
				_, err := p.Allocate(1, 1)
				So(err, ShouldBeError)
				var capErr *arena.OutOfCapacityError
				So(err, ShouldHaveSameTypeAs, capErr)
			})

			Convey("Then another elemSize allocation still fails", func() {
				_, err := p.Allocate(elemSize, 1)
				So(err, ShouldBeError)
			})
		})

		Convey("When an allocation larger than the whole pool is requested", func() {
			_, err := p.Allocate(10*elemSize+1, 1)

			Convey("Then it fails immediately without touching state", func() {
				So(err, ShouldBeError)
				So(p.Used(), ShouldEqual, 0)
			})
		})

		Convey("When allocations request increasing alignment", func() {
			_, err := p.Allocate(1, 1)
			So(err, ShouldBeNil)

			b, err := p.Allocate(8, 8)
			So(err, ShouldBeNil)

			Convey("Then the returned address is aligned", func() {
				So(uintptr(unsafe.Pointer(&b[0]))%8, ShouldEqual, uintptr(0))
			})

			Convey("Then fragmentation accounts for the skipped bytes", func() {
				So(p.AlignmentFragmentation(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When a zero-byte allocation is made", func() {
			b, err := p.Allocate(0, 1)

			Convey("Then it succeeds with an empty slice", func() {
				So(err, ShouldBeNil)
				So(len(b), ShouldEqual, 0)
			})
		})
	})

	Convey("Given two distinct SingleThreaded pools", t, func() {
		a, err := arena.CreateKind(64, arena.SingleThreaded)
		So(err, ShouldBeNil)
		b, err := arena.CreateKind(64, arena.SingleThreaded)
		So(err, ShouldBeNil)
		Reset(func() {
			So(a.Close(), ShouldBeNil)
			So(b.Close(), ShouldBeNil)
		})

		Convey("Then Equal distinguishes them", func() {
			So(a.Equal(b), ShouldBeFalse)
			So(a.Equal(a), ShouldBeTrue)
		})
	})

	Convey("Given a pool spanning many commit-ahead chunks", t, func() {
		const big = 8 * 1024 * 1024
		p, err := arena.CreateKind(big, arena.SingleThreaded)
		So(err, ShouldBeNil)
		Reset(func() { So(p.Close(), ShouldBeNil) })

		Convey("When it is filled with many small allocations", func() {
			const chunk = 4096
			n := big / chunk

			for i := 0; i < n; i++ {
				b, err := p.Allocate(chunk, 1)
				So(err, ShouldBeNil)
				b[0] = byte(i)
				b[chunk-1] = byte(i)
			}

			Convey("Then the pool is exactly exhausted", func() {
				So(p.Used(), ShouldEqual, big)
				_, err := p.Allocate(1, 1)
				So(err, ShouldBeError)
			})
		})
	})
}
