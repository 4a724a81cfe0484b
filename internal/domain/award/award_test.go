package award_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/crowdguess/internal/domain/award"
	"github.com/okian/crowdguess/internal/domain/model"
	"github.com/okian/crowdguess/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type failingStore struct{}

func (failingStore) Grant(context.Context, types.Badge) (bool, error) {
	return false, errors.New("disk full")
}

func (failingStore) List(context.Context, string) ([]types.Badge, error) { return nil, nil }

func TestGranter(t *testing.T) {
	ctx := context.Background()

	Convey("Given a granter over a memory store", t, func() {
		store := award.NewMemoryStore()
		g := award.NewGranter(store, nil)

		Convey("When a 100 point match is processed", func() {
			granted, err := g.Process(ctx, model.NewAwardEvent("alice", "q1", 100))

			Convey("Then the crowd whisperer badge is granted", func() {
				So(err, ShouldBeNil)
				So(len(granted), ShouldEqual, 1)
				So(granted[0].Badge, ShouldEqual, award.BadgeCrowdWhisperer)
				So(granted[0].Title, ShouldEqual, "Certified Crowd Whisperer")
				So(granted[0].QuestionID, ShouldEqual, "q1")
			})

			Convey("And a second one does not grant it again", func() {
				again, err := g.Process(ctx, model.NewAwardEvent("alice", "q2", 100))
				So(err, ShouldBeNil)
				So(again, ShouldBeEmpty)

				list, _ := store.List(ctx, "alice")
				So(len(list), ShouldEqual, 1)
				So(list[0].QuestionID, ShouldEqual, "q1")
			})
		})

		Convey("When a 1 point match is processed", func() {
			granted, err := g.Process(ctx, model.NewAwardEvent("bob", "q1", 1))

			Convey("Then the npc badge is granted", func() {
				So(err, ShouldBeNil)
				So(len(granted), ShouldEqual, 1)
				So(granted[0].Badge, ShouldEqual, award.BadgeNPCEnergy)
			})
		})

		Convey("When an ordinary score is processed", func() {
			granted, err := g.Process(ctx, model.NewAwardEvent("carol", "q1", 57))

			Convey("Then nothing is granted", func() {
				So(err, ShouldBeNil)
				So(granted, ShouldBeEmpty)
				list, _ := store.List(ctx, "carol")
				So(list, ShouldBeEmpty)
			})
		})

		Convey("When a player earns both badges", func() {
			e1 := model.NewAwardEvent("dave", "q1", 1)
			e2 := model.NewAwardEvent("dave", "q2", 100)
			e2.TS = e1.TS.Add(time.Second)
			_, _ = g.Process(ctx, e1)
			_, _ = g.Process(ctx, e2)

			Convey("Then they are listed oldest first", func() {
				list, err := store.List(ctx, "dave")
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].Badge, ShouldEqual, award.BadgeNPCEnergy)
				So(list[1].Badge, ShouldEqual, award.BadgeCrowdWhisperer)
			})
		})
	})

	Convey("Given a failing store", t, func() {
		g := award.NewGranter(failingStore{}, nil)

		Convey("Then the error is surfaced", func() {
			_, err := g.Process(ctx, model.NewAwardEvent("alice", "q1", 100))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "disk full")
		})
	})

	Convey("Given custom rules", t, func() {
		rules := []award.Rule{{Badge: "high", Title: "High", Applies: func(p int) bool { return p >= 90 }}}
		g := award.NewGranter(award.NewMemoryStore(), rules)

		Convey("Then only they apply", func() {
			granted, err := g.Process(ctx, model.NewAwardEvent("alice", "q1", 95))
			So(err, ShouldBeNil)
			So(len(granted), ShouldEqual, 1)
			So(granted[0].Badge, ShouldEqual, "high")
		})
	})
}
