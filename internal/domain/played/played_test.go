package played_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/crowdguess/internal/domain/played"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryTracker(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new memory tracker", t, func() {
		tr := played.NewMemoryTracker()

		Convey("When nothing is marked", func() {
			ok, err := tr.HasPlayed(ctx, "alice", "q1")

			Convey("Then nothing is played", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(tr.Size(), ShouldEqual, 0)
			})
		})

		Convey("When a question is marked", func() {
			So(tr.MarkPlayed(ctx, "alice", "q1"), ShouldBeNil)
			So(tr.MarkPlayed(ctx, "alice", "q1"), ShouldBeNil)

			Convey("Then it is played for that player only", func() {
				ok, _ := tr.HasPlayed(ctx, "alice", "q1")
				So(ok, ShouldBeTrue)
				ok, _ = tr.HasPlayed(ctx, "bob", "q1")
				So(ok, ShouldBeFalse)
				ok, _ = tr.HasPlayed(ctx, "alice", "q2")
				So(ok, ShouldBeFalse)
				So(tr.Size(), ShouldEqual, 1)
			})
		})

		Convey("When ids contain the separator boundary", func() {
			So(tr.MarkPlayed(ctx, "a", "bq"), ShouldBeNil)

			Convey("Then different splits do not collide", func() {
				ok, _ := tr.HasPlayed(ctx, "ab", "q")
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given many markers across players", t, func() {
		tr := played.NewMemoryTracker()
		for i := 0; i < 1000; i++ {
			So(tr.MarkPlayed(ctx, fmt.Sprintf("p%d", i), "q1"), ShouldBeNil)
		}

		Convey("Then the earliest marker is still held", func() {
			So(tr.Size(), ShouldEqual, 1000)
			ok, _ := tr.HasPlayed(ctx, "p0", "q1")
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given concurrent markers", t, func() {
		tr := played.NewMemoryTracker()
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					_ = tr.MarkPlayed(ctx, "p", fmt.Sprintf("q%d", i))
				}
			}()
		}
		wg.Wait()

		Convey("Then each pair is stored once", func() {
			So(tr.Size(), ShouldEqual, 100)
		})
	})
}
