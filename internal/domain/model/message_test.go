package model_test

import (
	"testing"
	"time"

	"github.com/nvake/drift/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func validMessage() model.Message {
	return model.Message{
		ID:        "msg-1",
		ChannelID: "vibes",
		Author:    "ada",
		Text:      "hello there",
		CreatedAt: time.UnixMilli(1_700_000_000_000),
	}
}

func TestMessageValidate(t *testing.T) {
	Convey("Given a message", t, func() {
		Convey("When all required fields are present", func() {
			m := validMessage()

			Convey("Then it should validate", func() {
				So(m.Validate(), ShouldBeNil)
			})
		})

		Convey("When the id is missing", func() {
			m := validMessage()
			m.ID = "  "

			Convey("Then it should be rejected", func() {
				So(m.Validate(), ShouldEqual, model.ErrMissingID)
			})
		})

		Convey("When the channel is missing", func() {
			m := validMessage()
			m.ChannelID = ""

			Convey("Then it should be rejected", func() {
				So(m.Validate(), ShouldEqual, model.ErrMissingChannel)
			})
		})

		Convey("When the author is missing", func() {
			m := validMessage()
			m.Author = ""

			Convey("Then it should be rejected", func() {
				So(m.Validate(), ShouldEqual, model.ErrMissingAuthor)
			})
		})

		Convey("When the text is empty", func() {
			m := validMessage()
			m.Text = "   "

			Convey("Then it should be rejected", func() {
				So(m.Validate(), ShouldEqual, model.ErrMissingText)
			})
		})

		Convey("When the text is the deleted placeholder", func() {
			m := validMessage()
			m.Text = "[deleted]"

			Convey("Then it should be rejected", func() {
				So(m.Validate(), ShouldEqual, model.ErrPlaceholderText)
			})
		})

		Convey("When the creation timestamp is zero", func() {
			m := validMessage()
			m.CreatedAt = time.Time{}

			Convey("Then it should be rejected", func() {
				So(m.Validate(), ShouldEqual, model.ErrMissingTimestamp)
			})
		})
	})
}

func TestReactions(t *testing.T) {
	Convey("Given reaction counters", t, func() {
		Convey("When computing net engagement", func() {
			So(model.Reactions{Positive: 3, Negative: 1}.Net(), ShouldEqual, 2)
			So(model.Reactions{Positive: 1, Negative: 1}.Net(), ShouldEqual, 0)
			So(model.Reactions{Negative: 2}.Net(), ShouldEqual, -2)
		})
	})
}
