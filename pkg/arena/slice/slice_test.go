//go:build go1.22

package slice_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/geoff-m/memory-pool/pkg/arena"
	"github.com/geoff-m/memory-pool/pkg/arena/slice"
)

type record struct {
	ID   int64
	Name [8]byte
}

func TestSequence(t *testing.T) {
	Convey("Given a pool sized for exactly ten records", t, func() {
		const n = 10
		p, err := arena.Create(n * 16) // record is 16 bytes: int64 + [8]byte
		So(err, ShouldBeNil)
		Reset(func() { So(p.Close(), ShouldBeNil) })

		al := arena.NewAllocator[record](p)
		seq, err := slice.NewWithCapacity[record](al, n)
		So(err, ShouldBeNil)

		Convey("When ten records are pushed", func() {
			for i := 0; i < n; i++ {
				_, err := seq.Push(record{ID: int64(i)})
				So(err, ShouldBeNil)
			}

			Convey("Then Len reports all ten", func() {
				So(seq.Len(), ShouldEqual, n)
			})

			Convey("Then every element reads back its own value", func() {
				for i := 0; i < n; i++ {
					So(seq.At(i).ID, ShouldEqual, i)
				}
			})

			Convey("Then an eleventh push does not fit without growing", func() {
				_, err := seq.Push(record{ID: n})
				So(err, ShouldBeError)
			})
		})

		Convey("When a returned pointer is mutated after the push", func() {
			rec, err := seq.Push(record{ID: 1})
			So(err, ShouldBeNil)
			rec.ID = 99

			Convey("Then the sequence observes the mutation through At", func() {
				So(seq.At(0).ID, ShouldEqual, 99)
			})
		})
	})

	Convey("Given a Sequence that grows from empty", t, func() {
		p, err := arena.Create(4096)
		So(err, ShouldBeNil)
		Reset(func() { So(p.Close(), ShouldBeNil) })

		al := arena.NewAllocator[record](p)
		seq := slice.New[record](al)

		Convey("When more records are pushed than any single doubling step", func() {
			const n = 50
			for i := 0; i < n; i++ {
				_, err := seq.Push(record{ID: int64(i)})
				So(err, ShouldBeNil)
			}

			Convey("Then every element still reads back correctly after reallocation", func() {
				So(seq.Len(), ShouldEqual, n)
				for i := 0; i < n; i++ {
					So(seq.At(i).ID, ShouldEqual, i)
				}
			})
		})
	})
}
