package transport

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nvake/drift/internal/domain/model"
)

func msg(id, channel string, createdAt time.Time) model.Message {
	return model.Message{
		ID:        id,
		ChannelID: channel,
		Author:    "author-" + id,
		Text:      "text-" + id,
		CreatedAt: createdAt,
	}
}

func recv(c C, ch <-chan Event) Event {
	select {
	case ev, ok := <-ch:
		c.So(ok, ShouldBeTrue)
		return ev
	case <-time.After(time.Second):
		c.So("timed out waiting for event", ShouldBeEmpty)
		return Event{}
	}
}

func TestMemoryTransportEvents(t *testing.T) {
	Convey("Given a memory transport with a subscriber", t, func(c C) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		tr := NewMemory()
		defer tr.Close()

		events, err := tr.Subscribe(ctx)
		So(err, ShouldBeNil)

		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When a message is appended", func(c C) {
			So(tr.Append(ctx, msg("m1", "general", now)), ShouldBeNil)

			Convey("Then a created event is delivered", func(c C) {
				ev := recv(c, events)
				So(ev.Kind, ShouldEqual, EventCreated)
				So(ev.Message.ID, ShouldEqual, "m1")
			})
		})

		Convey("When reactions change on a known message", func(c C) {
			So(tr.Append(ctx, msg("m1", "general", now)), ShouldBeNil)
			recv(c, events)

			So(tr.React(ctx, "general", "m1", 4, 1), ShouldBeNil)

			Convey("Then a changed event carries the new counts", func(c C) {
				ev := recv(c, events)
				So(ev.Kind, ShouldEqual, EventChanged)
				So(ev.Message.Reactions.Positive, ShouldEqual, 4)
				So(ev.Message.Reactions.Negative, ShouldEqual, 1)
			})
		})

		Convey("When reactions target an unknown message", func(c C) {
			err := tr.React(ctx, "general", "never-seen", 1, 0)

			Convey("Then ErrUnknownMessage is returned", func(c C) {
				So(err, ShouldEqual, ErrUnknownMessage)
			})
		})

		Convey("When the subscriber context is cancelled", func(c C) {
			cancel()

			Convey("Then the stream closes", func(c C) {
				select {
				case _, ok := <-events:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					So("stream never closed", ShouldBeEmpty)
				}
			})
		})
	})
}

func TestMemoryTransportRecent(t *testing.T) {
	Convey("Given a memory transport with history in two channels", t, func() {
		ctx := context.Background()
		tr := NewMemory()
		defer tr.Close()

		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		So(tr.Append(ctx, msg("m1", "general", base)), ShouldBeNil)
		So(tr.Append(ctx, msg("m2", "general", base.Add(10*time.Second))), ShouldBeNil)
		So(tr.Append(ctx, msg("m3", "random", base.Add(20*time.Second))), ShouldBeNil)
		So(tr.React(ctx, "general", "m2", 2, 0), ShouldBeNil)

		Convey("When querying the recent window", func() {
			out, err := tr.Recent(ctx, "general", base.Add(5*time.Second))

			Convey("Then only in-window messages for that channel return, with current reactions", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 1)
				So(out[0].ID, ShouldEqual, "m2")
				So(out[0].Reactions.Positive, ShouldEqual, 2)
			})
		})

		Convey("When the window covers everything", func() {
			out, err := tr.Recent(ctx, "general", base)

			Convey("Then messages come back oldest first", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 2)
				So(out[0].ID, ShouldEqual, "m1")
				So(out[1].ID, ShouldEqual, "m2")
			})
		})
	})
}

func TestMemoryTransportClose(t *testing.T) {
	Convey("Given a closed memory transport", t, func() {
		ctx := context.Background()
		tr := NewMemory()
		events, err := tr.Subscribe(ctx)
		So(err, ShouldBeNil)
		So(tr.Close(), ShouldBeNil)

		Convey("Then appends are refused and the stream is closed", func() {
			So(tr.Append(ctx, msg("m1", "general", time.Now())), ShouldEqual, ErrClosed)
			_, ok := <-events
			So(ok, ShouldBeFalse)

			_, err := tr.Subscribe(ctx)
			So(err, ShouldEqual, ErrClosed)
		})
	})
}
