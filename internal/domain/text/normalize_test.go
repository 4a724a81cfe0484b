package text_test

import (
	"testing"

	"github.com/okian/crowdguess/internal/domain/text"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given the text normalizer", t, func() {
		Convey("When normalizing punctuation and case", func() {
			So(text.Normalize("Hello, World!"), ShouldEqual, "hello world")
			So(text.Normalize("  It's   a\tTRAP!!\n"), ShouldEqual, "its a trap")
		})

		Convey("When the input keeps digits and underscores", func() {
			So(text.Normalize("Route_66 rocks?"), ShouldEqual, "route_66 rocks")
		})

		Convey("When the input is accented", func() {
			So(text.Normalize("Crème Brûlée"), ShouldEqual, "creme brulee")
		})

		Convey("When the input has only punctuation or is empty", func() {
			So(text.Normalize("?!...,"), ShouldEqual, "")
			So(text.Normalize(""), ShouldEqual, "")
			So(text.Normalize("   "), ShouldEqual, "")
		})

		Convey("When whitespace surrounds removed punctuation", func() {
			So(text.Normalize("cats - and - dogs"), ShouldEqual, "cats and dogs")
		})

		Convey("When normalizing twice", func() {
			inputs := []string{
				"Hello, World!",
				"  multiple   spaces\tand\nnewlines ",
				"Ünïcödé ÇÀFÉ!",
				"emoji 🎉 party",
				"snake_case_THING",
				"a - b - c",
				"",
			}
			Convey("Then the result is stable", func() {
				for _, in := range inputs {
					once := text.Normalize(in)
					So(text.Normalize(once), ShouldEqual, once)
				}
			})
		})
	})
}
