package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func entry(id string, pos, neg int64, archivedAt time.Time) Entry {
	return Entry{
		MessageID:  id,
		Author:     "author-" + id,
		Text:       "text-" + id,
		Positive:   pos,
		Negative:   neg,
		CreatedAt:  archivedAt.Add(-10 * time.Second),
		ArchivedAt: archivedAt,
	}
}

func TestTreapArchiveAdd(t *testing.T) {
	Convey("Given an empty archive", t, func() {
		ctx := context.Background()
		s := NewTreapArchive()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When an entry with positive net engagement is added", func() {
			ok := s.Add(ctx, "general", entry("m1", 3, 1, now))

			Convey("Then it is stored", func() {
				So(ok, ShouldBeTrue)
				So(s.Count(ctx, "general"), ShouldEqual, 1)
			})
		})

		Convey("When an entry with zero net engagement is added", func() {
			ok := s.Add(ctx, "general", entry("m1", 2, 2, now))

			Convey("Then it is dropped", func() {
				So(ok, ShouldBeFalse)
				So(s.Count(ctx, "general"), ShouldEqual, 0)
			})
		})

		Convey("When an entry with negative net engagement is added", func() {
			ok := s.Add(ctx, "general", entry("m1", 1, 5, now))

			Convey("Then it is dropped", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the same message id is archived twice", func() {
			first := s.Add(ctx, "general", entry("m1", 3, 0, now))
			second := s.Add(ctx, "general", entry("m1", 9, 0, now))

			Convey("Then only the first wins", func() {
				So(first, ShouldBeTrue)
				So(second, ShouldBeFalse)
				So(s.Count(ctx, "general"), ShouldEqual, 1)

				top, err := s.TopN(ctx, "general", 1)
				So(err, ShouldBeNil)
				So(top[0].Net(), ShouldEqual, 3)
			})
		})

		Convey("When entries land in different channels", func() {
			So(s.Add(ctx, "general", entry("m1", 3, 0, now)), ShouldBeTrue)
			So(s.Add(ctx, "random", entry("m2", 4, 0, now)), ShouldBeTrue)

			Convey("Then partitions are independent", func() {
				So(s.Count(ctx, "general"), ShouldEqual, 1)
				So(s.Count(ctx, "random"), ShouldEqual, 1)
			})
		})
	})
}

func TestTreapArchiveTopN(t *testing.T) {
	Convey("Given an archive with several entries", t, func() {
		ctx := context.Background()
		s := NewTreapArchive()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		So(s.Add(ctx, "general", entry("mid", 5, 0, now)), ShouldBeTrue)
		So(s.Add(ctx, "general", entry("low", 1, 0, now)), ShouldBeTrue)
		So(s.Add(ctx, "general", entry("high", 9, 0, now)), ShouldBeTrue)

		Convey("When TopN is queried", func() {
			top, err := s.TopN(ctx, "general", 10)

			Convey("Then entries come back by net engagement desc", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].MessageID, ShouldEqual, "high")
				So(top[1].MessageID, ShouldEqual, "mid")
				So(top[2].MessageID, ShouldEqual, "low")
				So(top[0].Rank, ShouldEqual, 1)
				So(top[1].Rank, ShouldEqual, 2)
				So(top[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When the limit is smaller than the partition", func() {
			top, err := s.TopN(ctx, "general", 2)

			Convey("Then only the best entries are returned", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 2)
				So(top[0].MessageID, ShouldEqual, "high")
				So(top[1].MessageID, ShouldEqual, "mid")
			})
		})

		Convey("When entries tie on net engagement", func() {
			So(s.Add(ctx, "general", entry("aaa", 9, 0, now)), ShouldBeTrue)

			top, err := s.TopN(ctx, "general", 10)

			Convey("Then ties share a rank and break by id asc", func() {
				So(err, ShouldBeNil)
				So(top[0].MessageID, ShouldEqual, "aaa")
				So(top[1].MessageID, ShouldEqual, "high")
				So(top[0].Rank, ShouldEqual, 1)
				So(top[1].Rank, ShouldEqual, 1)
				So(top[2].Rank, ShouldEqual, 2)
			})
		})

		Convey("When the limit is invalid", func() {
			_, err := s.TopN(ctx, "general", 0)

			Convey("Then ErrInvalidLimit is returned", func() {
				So(err, ShouldEqual, ErrInvalidLimit)
			})
		})

		Convey("When an unknown channel is queried", func() {
			top, err := s.TopN(ctx, "nowhere", 5)

			Convey("Then the result is empty", func() {
				So(err, ShouldBeNil)
				So(top, ShouldBeEmpty)
			})
		})
	})
}

func TestTreapArchivePrune(t *testing.T) {
	Convey("Given an archive with entries spread over time", t, func() {
		ctx := context.Background()
		s := NewTreapArchive()
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		So(s.Add(ctx, "general", entry("old", 5, 0, base)), ShouldBeTrue)
		So(s.Add(ctx, "general", entry("mid", 3, 0, base.Add(30*time.Minute))), ShouldBeTrue)
		So(s.Add(ctx, "general", entry("new", 7, 0, base.Add(59*time.Minute))), ShouldBeTrue)

		Convey("When pruning with a cutoff just past the oldest creation time", func() {
			removed := s.Prune(ctx, "general", base.Add(-9*time.Second))

			Convey("Then only entries created before the cutoff are dropped", func() {
				So(removed, ShouldEqual, 1)
				So(s.Count(ctx, "general"), ShouldEqual, 2)

				top, err := s.TopN(ctx, "general", 10)
				So(err, ShouldBeNil)
				So(top[0].MessageID, ShouldEqual, "new")
				So(top[1].MessageID, ShouldEqual, "mid")
			})
		})

		Convey("When pruning with a cutoff past everything", func() {
			removed := s.Prune(ctx, "general", base.Add(2*time.Hour))

			Convey("Then the partition empties", func() {
				So(removed, ShouldEqual, 3)
				So(s.Count(ctx, "general"), ShouldEqual, 0)
			})
		})

		Convey("When pruning an unknown channel", func() {
			removed := s.Prune(ctx, "nowhere", base)

			Convey("Then nothing happens", func() {
				So(removed, ShouldEqual, 0)
			})
		})
	})
}

func TestTreapArchiveReset(t *testing.T) {
	Convey("Given an archive with entries on two channels", t, func() {
		ctx := context.Background()
		s := NewTreapArchive()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		So(s.Add(ctx, "general", entry("g1", 5, 0, now)), ShouldBeTrue)
		So(s.Add(ctx, "general", entry("g2", 3, 1, now)), ShouldBeTrue)
		So(s.Add(ctx, "vibes", entry("v1", 2, 0, now)), ShouldBeTrue)

		Convey("When one channel is reset", func() {
			s.Reset(ctx, "general")

			Convey("Then its partition is empty", func() {
				So(s.Count(ctx, "general"), ShouldEqual, 0)
				top, err := s.TopN(ctx, "general", 10)
				So(err, ShouldBeNil)
				So(top, ShouldBeEmpty)
			})

			Convey("Then the other channel is untouched", func() {
				So(s.Count(ctx, "vibes"), ShouldEqual, 1)
				top, err := s.TopN(ctx, "vibes", 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 1)
				So(top[0].MessageID, ShouldEqual, "v1")
			})
		})
	})
}

func TestTreapArchiveOrderingUnderChurn(t *testing.T) {
	Convey("Given many entries inserted and partially pruned", t, func() {
		ctx := context.Background()
		s := NewTreapArchive()
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		for i := 0; i < 200; i++ {
			e := entry(fmt.Sprintf("m%03d", i), int64(i%37+1), 0, base.Add(time.Duration(i)*time.Second))
			So(s.Add(ctx, "general", e), ShouldBeTrue)
		}
		s.Prune(ctx, "general", base.Add(100*time.Second))

		Convey("When the full ranking is read back", func() {
			top, err := s.TopN(ctx, "general", 500)

			Convey("Then the order is net desc with id asc tie-break", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 100)
				for i := 1; i < len(top); i++ {
					prev, cur := top[i-1], top[i]
					if prev.Net() == cur.Net() {
						So(prev.MessageID, ShouldBeLessThan, cur.MessageID)
					} else {
						So(prev.Net(), ShouldBeGreaterThan, cur.Net())
					}
				}
			})
		})
	})
}
