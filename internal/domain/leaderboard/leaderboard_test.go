package leaderboard_test

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/okian/crowdguess/internal/adapters/repository"
	"github.com/okian/crowdguess/internal/domain/leaderboard"
	"github.com/okian/crowdguess/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var errBoom = errors.New("connection refused")

type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, int64) (int64, error) { return 0, errBoom }
func (brokenStore) Range(context.Context, int, int) ([]leaderboard.Entry, error) {
	return nil, errBoom
}
func (brokenStore) Score(context.Context, string) (int64, error) { return 0, errBoom }
func (brokenStore) Rank(context.Context, string) (int, error)    { return 0, errBoom }
func (brokenStore) Count(context.Context) (int, error)           { return 0, errBoom }
func (brokenStore) Close() error                                 { return nil }

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	Convey("Given an aggregator over a treap store", t, func() {
		store := repository.NewTreapStore(ctx)
		defer store.Close()
		lb := leaderboard.New(store)

		Convey("When alice scores 100 then 50", func() {
			t1, err1 := lb.RecordScore(ctx, "alice", 100)
			t2, err2 := lb.RecordScore(ctx, "alice", 50)

			Convey("Then her total is 150 and she ranks first", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(t1, ShouldEqual, 100)
				So(t2, ShouldEqual, 150)

				score, err := lb.Score(ctx, "alice")
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 150)

				rank, err := lb.Rank(ctx, "alice")
				So(err, ShouldBeNil)
				So(rank, ShouldEqual, 0)
			})
		})

		Convey("When several players score", func() {
			_, _ = lb.RecordScore(ctx, "alice", 150)
			_, _ = lb.RecordScore(ctx, "bob", 80)
			_, _ = lb.RecordScore(ctx, "carol", 80)
			_, _ = lb.RecordScore(ctx, "dave", 10)

			Convey("Then TopN is ordered by score then player id", func() {
				top, err := lb.TopN(ctx, 3)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].PlayerID, ShouldEqual, "alice")
				So(top[1].PlayerID, ShouldEqual, "bob")
				So(top[1].Rank, ShouldEqual, 1)
				So(top[2].PlayerID, ShouldEqual, "carol")
				So(top[2].Rank, ShouldEqual, 2)
			})

			Convey("Then TopN larger than the board returns everyone", func() {
				top, err := lb.TopN(ctx, 50)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 4)
			})

			Convey("Then View includes the requester's standing", func() {
				view, err := lb.View(ctx, "dave", 2)
				So(err, ShouldBeNil)
				So(len(view.Top), ShouldEqual, 2)
				So(view.Player, ShouldNotBeNil)
				So(view.Player.Rank, ShouldEqual, 3)
				So(view.Player.Score, ShouldEqual, 10)
			})

			Convey("Then View for an unknown player omits the standing", func() {
				view, err := lb.View(ctx, "ghost", 2)
				So(err, ShouldBeNil)
				So(view.Player, ShouldBeNil)
			})

			Convey("Then Count reports the players", func() {
				n, err := lb.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 4)
			})
		})

		Convey("When arguments are invalid", func() {
			_, errPoints := lb.RecordScore(ctx, "alice", -5)
			_, errLimit := lb.TopN(ctx, 0)
			_, errRank := lb.Rank(ctx, "ghost")
			_, errScore := lb.Score(ctx, "ghost")

			Convey("Then the matching errors are returned", func() {
				So(errPoints, ShouldEqual, leaderboard.ErrInvalidPoints)
				So(errLimit, ShouldEqual, leaderboard.ErrInvalidLimit)
				So(errors.Is(errRank, leaderboard.ErrPlayerNotFound), ShouldBeTrue)
				So(errors.Is(errScore, leaderboard.ErrPlayerNotFound), ShouldBeTrue)
			})
		})

		Convey("When many goroutines add to one player", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 25; j++ {
						_, _ = lb.RecordScore(ctx, "alice", 2)
					}
				}()
			}
			wg.Wait()

			Convey("Then no update is lost", func() {
				score, err := lb.Score(ctx, "alice")
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 1000)
			})
		})
	})

	Convey("Given an aggregator over a failing store", t, func() {
		lb := leaderboard.New(brokenStore{})

		Convey("Then every failure is a store-unavailable error", func() {
			_, err := lb.RecordScore(ctx, "alice", 1)
			So(errors.Is(err, model.ErrStoreUnavailable), ShouldBeTrue)
			So(errors.Is(err, errBoom), ShouldBeTrue)

			_, err = lb.TopN(ctx, 5)
			So(errors.Is(err, model.ErrStoreUnavailable), ShouldBeTrue)

			_, err = lb.Rank(ctx, "alice")
			So(errors.Is(err, model.ErrStoreUnavailable), ShouldBeTrue)
			So(errors.Is(err, leaderboard.ErrPlayerNotFound), ShouldBeFalse)

			_, err = lb.View(ctx, "alice", 5)
			So(errors.Is(err, model.ErrStoreUnavailable), ShouldBeTrue)

			_, err = lb.Count(ctx)
			So(errors.Is(err, model.ErrStoreUnavailable), ShouldBeTrue)
		})
	})
}

func TestAggregator_StoreBoundary(t *testing.T) {
	Convey("Given the package sources", t, func() {
		files, err := filepath.Glob("*.go")
		So(err, ShouldBeNil)

		Convey("Then no adapter package is imported", func() {
			fset := token.NewFileSet()
			for _, name := range files {
				if strings.HasSuffix(name, "_test.go") {
					continue
				}
				f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
				So(err, ShouldBeNil)
				for _, imp := range f.Imports {
					So(imp.Path.Value, ShouldNotContainSubstring, "/internal/adapters/")
				}
			}
		})
	})
}
