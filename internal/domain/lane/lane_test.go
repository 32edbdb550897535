package lane_test

import (
	"testing"
	"time"

	"github.com/nvake/drift/internal/domain/lane"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAllocator(t *testing.T) {
	base := time.UnixMilli(0)

	Convey("Given a fresh allocator", t, func() {
		a := lane.NewAllocator(
			lane.WithLaneCount(8),
			lane.WithMinIdle(1200*time.Millisecond),
		)

		Convey("When allocating with all lanes unreserved", func() {
			l, fallback := a.Allocate(base)

			Convey("Then the lowest index wins the tie", func() {
				So(l, ShouldEqual, 0)
				So(fallback, ShouldBeFalse)
				So(a.Reserved(), ShouldEqual, 1)
			})
		})

		Convey("When allocating faster than the idle threshold", func() {
			// Twelve messages 100ms apart against 8 lanes, minIdle 1200ms:
			// the first 8 land on distinct lanes, then reuse proceeds
			// oldest-reservation-first.
			var lanes []int
			var fallbacks []bool
			for i := 0; i < 12; i++ {
				l, fb := a.Allocate(base.Add(time.Duration(i*100) * time.Millisecond))
				lanes = append(lanes, l)
				fallbacks = append(fallbacks, fb)
			}

			Convey("Then the first eight land in eight distinct lanes", func() {
				So(lanes[:8], ShouldResemble, []int{0, 1, 2, 3, 4, 5, 6, 7})
			})

			Convey("And the rest reuse oldest reservations in order, flagged as fallbacks", func() {
				So(lanes[8:], ShouldResemble, []int{0, 1, 2, 3})
				for _, fb := range fallbacks[8:] {
					So(fb, ShouldBeTrue)
				}
			})
		})

		Convey("When a lane has been idle past the threshold", func() {
			a.Allocate(base) // lane 0 at t=0

			l, fallback := a.Allocate(base.Add(2 * time.Second))

			Convey("Then the longest-idle lane is chosen without fallback", func() {
				So(l, ShouldNotEqual, 0)
				So(fallback, ShouldBeFalse)
			})
		})

		Convey("When a lane is released", func() {
			for i := 0; i < 8; i++ {
				a.Allocate(base.Add(time.Duration(i) * time.Millisecond))
			}
			So(a.Reserved(), ShouldEqual, 8)

			a.Release(3)

			Convey("Then it is immediately reusable without fallback", func() {
				So(a.Reserved(), ShouldEqual, 7)

				l, fallback := a.Allocate(base.Add(10 * time.Millisecond))
				So(l, ShouldEqual, 3)
				So(fallback, ShouldBeFalse)
			})
		})

		Convey("When the allocator is reset", func() {
			for i := 0; i < 8; i++ {
				a.Allocate(base)
			}

			a.Reset()

			Convey("Then all reservations are gone and allocation restarts at lane 0", func() {
				So(a.Reserved(), ShouldEqual, 0)
				l, fallback := a.Allocate(base.Add(time.Millisecond))
				So(l, ShouldEqual, 0)
				So(fallback, ShouldBeFalse)
			})
		})

		Convey("When releasing an out-of-range lane", func() {
			Convey("Then nothing panics", func() {
				So(func() { a.Release(-1) }, ShouldNotPanic)
				So(func() { a.Release(99) }, ShouldNotPanic)
			})
		})
	})

	Convey("Given an allocator with default options", t, func() {
		a := lane.NewAllocator()

		Convey("Then it should expose the default lane count", func() {
			So(a.LaneCount(), ShouldEqual, 8)
		})
	})
}
