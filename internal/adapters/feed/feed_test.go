package feed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/okian/crowdguess/internal/adapters/feed"
	"github.com/okian/crowdguess/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type fakeReddit struct {
	server       *httptest.Server
	tokenCalls   atomic.Int32
	hotCalls     atomic.Int32
	commentCalls atomic.Int32
	failComments atomic.Bool
}

func newFakeReddit() *fakeReddit {
	f := &fakeReddit{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		id, secret, ok := r.BasicAuth()
		if !ok || id != "cid" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/r/AskReddit/hot.json", func(w http.ResponseWriter, r *http.Request) {
		f.hotCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"children":[
			{"data":{"id":"pinned","title":"Rules","stickied":true}},
			{"data":{"id":"abc","title":"What is the best pet?"}},
			{"data":{"id":"def","title":"Worst food?"}}
		]}}`))
	})
	mux.HandleFunc("/r/AskReddit/comments/abc.json", func(w http.ResponseWriter, r *http.Request) {
		f.commentCalls.Add(1)
		if f.failComments.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("sort") != "top" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[
			{"data":{"children":[{"kind":"t3","data":{}}]}},
			{"data":{"children":[
				{"kind":"t1","data":{"body":"Dogs, obviously","score":500}},
				{"kind":"t1","data":{"body":"A rock","score":-3}},
				{"kind":"more","data":{}}
			]}}
		]`))
	})
	f.server = httptest.NewServer(mux)
	return f
}

func TestRedditProvider(t *testing.T) {
	ctx := context.Background()

	Convey("Given a Reddit provider against a fake API", t, func() {
		fake := newFakeReddit()
		defer fake.server.Close()

		p := feed.NewReddit("cid", "secret",
			feed.WithEndpoints(fake.server.URL+"/api/v1/access_token", fake.server.URL),
			feed.WithHTTPClient(fake.server.Client()),
		)

		Convey("When the first question is requested", func() {
			q, err := p.Question(ctx, 0)

			Convey("Then stickied posts are skipped and comments become the corpus", func() {
				So(err, ShouldBeNil)
				So(q.ID, ShouldEqual, "abc")
				So(q.Title, ShouldEqual, "What is the best pet?")
				So(q.Corpus.Len(), ShouldEqual, 2)
				So(q.Corpus.At(0).Text, ShouldEqual, "Dogs, obviously")
				So(q.Corpus.At(0).Popularity, ShouldEqual, 500)
				So(q.Corpus.At(1).Popularity, ShouldEqual, 0)
			})

			Convey("And repeated requests reuse the token, listing and comments", func() {
				_, err := p.Question(ctx, 0)
				So(err, ShouldBeNil)
				So(fake.tokenCalls.Load(), ShouldEqual, 1)
				So(fake.hotCalls.Load(), ShouldEqual, 1)
				So(fake.commentCalls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When an index past the listing is requested", func() {
			_, err := p.Question(ctx, 2)

			Convey("Then ErrNotFound is returned", func() {
				So(err, ShouldEqual, feed.ErrNotFound)
			})
		})

		Convey("When a post's comments cannot be fetched", func() {
			fake.failComments.Store(true)
			_, err := p.Question(ctx, 0)

			Convey("Then the error is surfaced", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "status 500")
			})
		})
	})

	Convey("Given bad credentials", t, func() {
		fake := newFakeReddit()
		defer fake.server.Close()

		p := feed.NewReddit("cid", "wrong",
			feed.WithEndpoints(fake.server.URL+"/api/v1/access_token", fake.server.URL),
		)

		Convey("Then authentication fails", func() {
			_, err := p.Question(ctx, 0)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "reddit auth")
		})
	})
}

func TestStaticProvider(t *testing.T) {
	ctx := context.Background()

	Convey("Given a YAML question bank", t, func() {
		path := filepath.Join(t.TempDir(), "bank.yaml")
		So(os.WriteFile(path, []byte(`
questions:
  - id: pets
    title: What is the best pet?
    answers:
      - text: Dogs
        popularity: 120
      - text: Cats
        popularity: 80
  - title: Untitled id
    answers: []
`), 0o600), ShouldBeNil)

		p, err := feed.LoadFile(path)
		So(err, ShouldBeNil)

		Convey("Then questions are served in order", func() {
			So(p.Len(), ShouldEqual, 2)
			q, err := p.Question(ctx, 0)
			So(err, ShouldBeNil)
			So(q.ID, ShouldEqual, "pets")
			So(q.Corpus.Len(), ShouldEqual, 2)
			So(q.Corpus.At(1).Popularity, ShouldEqual, 80)

			q, err = p.Question(ctx, 1)
			So(err, ShouldBeNil)
			So(q.ID, ShouldEqual, "q2")
			So(q.Playable(), ShouldBeFalse)
		})

		Convey("Then out of range indexes are not found", func() {
			_, err := p.Question(ctx, 2)
			So(err, ShouldEqual, feed.ErrNotFound)
			_, err = p.Question(ctx, -1)
			So(err, ShouldEqual, feed.ErrNotFound)
		})
	})

	Convey("Given malformed YAML", t, func() {
		_, err := feed.ParseBank([]byte("questions: [oops"))

		Convey("Then parsing fails", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := feed.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))

		Convey("Then loading fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
