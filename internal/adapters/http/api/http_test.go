package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nvake/drift/internal/adapters/repository"
	"github.com/nvake/drift/internal/adapters/transport"
	session "github.com/nvake/drift/internal/app"
	"github.com/nvake/drift/internal/domain/model"
	"github.com/nvake/drift/pkg/clock"
	"github.com/nvake/drift/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestServer() (*httptest.Server, *transport.Memory, *session.Session, *clock.Fake) {
	fake := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	tr := transport.NewMemory()
	s := session.New("vibes", repository.NewTreapArchive(), session.WithClock(fake))

	mux := http.NewServeMux()
	NewServer(tr, s).Register(mux)
	return httptest.NewServer(mux), tr, s, fake
}

func postJSON(ts *httptest.Server, path, body string) *http.Response {
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	So(err, ShouldBeNil)
	return resp
}

func TestPostMessage(t *testing.T) {
	Convey("Given the API over a memory transport", t, func() {
		ts, tr, _, _ := newTestServer()
		defer ts.Close()
		defer tr.Close()

		Convey("When a valid message is posted", func() {
			resp := postJSON(ts, "/messages", `{"channel":"vibes","author":"ada","text":"hello"}`)
			defer resp.Body.Close()

			Convey("Then it is accepted with a minted id and lands on the transport", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

				var got struct {
					ID        string    `json:"id"`
					CreatedAt time.Time `json:"created_at"`
				}
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got.ID, ShouldNotBeEmpty)
				So(got.CreatedAt.IsZero(), ShouldBeFalse)

				recent, err := tr.Recent(context.Background(), "vibes", time.Time{})
				So(err, ShouldBeNil)
				So(len(recent), ShouldEqual, 1)
				So(recent[0].ID, ShouldEqual, got.ID)
			})
		})

		Convey("When the body is not JSON", func() {
			resp := postJSON(ts, "/messages", `{{{`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a required field is missing", func() {
			resp := postJSON(ts, "/messages", `{"channel":"vibes","text":"hello"}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the message targets an inactive channel", func() {
			resp := postJSON(ts, "/messages", `{"channel":"lounge","author":"ada","text":"hello"}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusConflict)
		})

		Convey("When the method is wrong", func() {
			resp, err := http.Get(ts.URL + "/messages")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPostReaction(t *testing.T) {
	Convey("Given the API with one message on the transport", t, func() {
		ts, tr, _, _ := newTestServer()
		defer ts.Close()
		defer tr.Close()

		ctx := context.Background()
		So(tr.Append(ctx, model.Message{
			ID:        "m1",
			ChannelID: "vibes",
			Author:    "ada",
			Text:      "hello",
			CreatedAt: time.Now().UTC(),
		}), ShouldBeNil)

		Convey("When a reaction increment is posted", func() {
			resp := postJSON(ts, "/reactions", `{"channel":"vibes","message_id":"m1","positive":1}`)
			defer resp.Body.Close()

			Convey("Then the counter moves atomically", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				recent, err := tr.Recent(ctx, "vibes", time.Time{})
				So(err, ShouldBeNil)
				So(recent[0].Reactions.Positive, ShouldEqual, 1)
			})
		})

		Convey("When the message id is unknown", func() {
			resp := postJSON(ts, "/reactions", `{"channel":"vibes","message_id":"nope","positive":1}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When both increments are zero", func() {
			resp := postJSON(ts, "/reactions", `{"channel":"vibes","message_id":"m1"}`)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetActiveAndActivity(t *testing.T) {
	Convey("Given a session with one active message", t, func() {
		ts, tr, s, fake := newTestServer()
		defer ts.Close()
		defer tr.Close()

		ctx := context.Background()
		So(s.Admit(ctx, model.Message{
			ID:        "m1",
			ChannelID: "vibes",
			Author:    "ada",
			Text:      "hello",
			CreatedAt: fake.Now(),
		}), ShouldBeTrue)
		So(s.DrainOne(ctx), ShouldBeTrue)

		Convey("When the active set is fetched", func() {
			resp, err := http.Get(ts.URL + "/active")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then placements are included", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got struct {
					Channel  string `json:"channel"`
					Messages []struct {
						ID        string `json:"id"`
						Placement struct {
							Progress float64 `json:"progress"`
							Expired  bool    `json:"expired"`
						} `json:"placement"`
					} `json:"messages"`
				}
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got.Channel, ShouldEqual, "vibes")
				So(len(got.Messages), ShouldEqual, 1)
				So(got.Messages[0].ID, ShouldEqual, "m1")
				So(got.Messages[0].Placement.Expired, ShouldBeFalse)
			})
		})

		Convey("When the activity level is fetched", func() {
			resp, err := http.Get(ts.URL + "/activity")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the level is within bounds", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got struct {
					Level int `json:"level"`
				}
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got.Level, ShouldBeBetweenOrEqual, 1, 5)
			})
		})

		Convey("When stats are fetched", func() {
			resp, err := http.Get(ts.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the snapshot names the channel", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got map[string]any
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got["channel"], ShouldEqual, "vibes")
			})
		})
	})
}

func TestGetTop(t *testing.T) {
	Convey("Given a session whose archive holds one entry", t, func() {
		ts, tr, s, fake := newTestServer()
		defer ts.Close()
		defer tr.Close()

		ctx := context.Background()
		m := model.Message{
			ID:        "m1",
			ChannelID: "vibes",
			Author:    "ada",
			Text:      "hello",
			CreatedAt: fake.Now(),
			Reactions: model.Reactions{Positive: 2},
		}
		So(s.Admit(ctx, m), ShouldBeTrue)
		So(s.DrainOne(ctx), ShouldBeTrue)
		fake.Advance(26 * time.Second)
		s.Sweep(ctx)

		Convey("When the top list is fetched", func() {
			resp, err := http.Get(ts.URL + "/top?limit=10")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the archived entry is returned with its rank", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got []struct {
					Rank      int    `json:"rank"`
					MessageID string `json:"message_id"`
				}
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0].MessageID, ShouldEqual, "m1")
				So(got[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When the limit is missing or invalid", func() {
			resp, err := http.Get(ts.URL + "/top")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the maximum", func() {
			resp, err := http.Get(ts.URL + "/top?limit=100000")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestHealthz(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts, tr, _, _ := newTestServer()
		defer ts.Close()
		defer tr.Close()

		Convey("When /healthz is scraped", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the Prometheus registry is served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
