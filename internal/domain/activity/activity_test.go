package activity_test

import (
	"testing"
	"time"

	"github.com/nvake/drift/internal/domain/activity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestControllerLevels(t *testing.T) {
	base := time.UnixMilli(0)

	Convey("Given an activity controller with default thresholds", t, func() {
		c := activity.NewController()

		Convey("When no messages have arrived", func() {
			So(c.Level(base), ShouldEqual, 1)
		})

		Convey("When counts cross each threshold", func() {
			// >2→2, >5→3, >10→4, >15→5
			expectations := map[int]int{
				1: 1, 2: 1, 3: 2, 5: 2, 6: 3,
				10: 3, 11: 4, 15: 4, 16: 5, 40: 5,
			}

			for count, want := range expectations {
				cc := activity.NewController()
				for i := 0; i < count; i++ {
					cc.Observe(base.Add(time.Duration(i) * time.Millisecond))
				}
				So(cc.Level(base.Add(time.Second)), ShouldEqual, want)
			}
		})

		Convey("When recomputing with unchanged input", func() {
			for i := 0; i < 7; i++ {
				c.Observe(base)
			}
			now := base.Add(time.Second)

			first := c.Level(now)

			Convey("Then the level never flaps", func() {
				for i := 0; i < 10; i++ {
					So(c.Level(now), ShouldEqual, first)
				}
			})
		})

		Convey("When timestamps age out of the window", func() {
			for i := 0; i < 20; i++ {
				c.Observe(base)
			}
			So(c.Level(base.Add(time.Second)), ShouldEqual, 5)

			Convey("Then the level settles back down", func() {
				So(c.Level(base.Add(31*time.Second)), ShouldEqual, 1)
			})
		})

		Convey("When the controller is reset", func() {
			for i := 0; i < 20; i++ {
				c.Observe(base)
			}
			c.Reset()

			So(c.Level(base.Add(time.Second)), ShouldEqual, 1)
		})
	})

	Convey("Given custom options", t, func() {
		Convey("When the window is shortened", func() {
			c := activity.NewController(activity.WithWindow(5 * time.Second))
			for i := 0; i < 20; i++ {
				c.Observe(base)
			}

			So(c.Level(base.Add(6*time.Second)), ShouldEqual, 1)
		})

		Convey("When thresholds are invalid", func() {
			c := activity.NewController(activity.WithThresholds(5, 5, 4, 3))
			for i := 0; i < 6; i++ {
				c.Observe(base)
			}

			Convey("Then the defaults remain in force", func() {
				So(c.Level(base.Add(time.Second)), ShouldEqual, 3)
			})
		})
	})
}

func TestLevelMonotonicMapping(t *testing.T) {
	base := time.UnixMilli(0)

	Convey("Given increasing counts in the window", t, func() {
		Convey("Then the computed level never decreases", func() {
			prev := 0
			for count := 0; count <= 50; count++ {
				c := activity.NewController()
				for i := 0; i < count; i++ {
					c.Observe(base)
				}
				level := c.Level(base.Add(time.Second))

				So(level, ShouldBeGreaterThanOrEqualTo, prev)
				So(level, ShouldBeBetweenOrEqual, activity.MinLevel, activity.MaxLevel)
				prev = level
			}
		})
	})
}
