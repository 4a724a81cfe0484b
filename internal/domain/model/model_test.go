package model_test

import (
	"testing"
	"time"

	"github.com/okian/crowdguess/internal/domain/corpus"
	"github.com/okian/crowdguess/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestQuestionPlayable(t *testing.T) {
	convey.Convey("Given questions", t, func() {
		convey.Convey("Then one with an id and answers is playable", func() {
			q := model.Question{ID: "abc", Title: "What is best?", Corpus: corpus.New(corpus.Entry{Text: "naps"})}
			convey.So(q.Playable(), convey.ShouldBeTrue)
		})

		convey.Convey("Then one without answers is not", func() {
			q := model.Question{ID: "abc", Title: "Crickets"}
			convey.So(q.Playable(), convey.ShouldBeFalse)
		})

		convey.Convey("Then one without an id is not", func() {
			q := model.Question{Corpus: corpus.New(corpus.Entry{Text: "naps"})}
			convey.So(q.Playable(), convey.ShouldBeFalse)
		})
	})
}

func TestNewAwardEvent(t *testing.T) {
	convey.Convey("Given two award events for the same round", t, func() {
		before := time.Now().UTC()
		a := model.NewAwardEvent("alice", "q1", 100)
		b := model.NewAwardEvent("alice", "q1", 100)

		convey.Convey("Then each gets a unique id", func() {
			convey.So(a.EventID, convey.ShouldNotBeEmpty)
			convey.So(a.EventID, convey.ShouldNotEqual, b.EventID)
		})

		convey.Convey("Then fields are carried over and stamped", func() {
			convey.So(a.PlayerID, convey.ShouldEqual, "alice")
			convey.So(a.QuestionID, convey.ShouldEqual, "q1")
			convey.So(a.Points, convey.ShouldEqual, 100)
			convey.So(a.TS, convey.ShouldHappenOnOrAfter, before)
		})
	})
}
