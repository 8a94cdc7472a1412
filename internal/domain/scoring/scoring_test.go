package scoring_test

import (
	"errors"
	"testing"

	scoring "github.com/dspboard/driverrank/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLinear_Score(t *testing.T) {
	Convey("Given a linear scorer", t, func() {
		scorer := scoring.NewLinear()

		Convey("When the cohort has a single driver", func() {
			score, err := scorer.Score(1, 1)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 100.0)
		})

		Convey("When scoring the ends of a cohort", func() {
			first, err := scorer.Score(1, 12)
			So(err, ShouldBeNil)
			So(first, ShouldEqual, 100.0)

			last, err := scorer.Score(12, 12)
			So(err, ShouldBeNil)
			So(last, ShouldEqual, 0.0)
		})

		Convey("When scoring the middle of a three-driver cohort", func() {
			score, err := scorer.Score(2, 3)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 50.0)
		})

		Convey("When the score needs rounding", func() {
			score, err := scorer.Score(2, 4)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 66.67)

			score, err = scorer.Score(3, 4)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 33.33)
		})

		Convey("Then scores strictly decrease with rank", func() {
			prev := 101.0
			for rank := 1; rank <= 150; rank++ {
				score, err := scorer.Score(rank, 150)
				So(err, ShouldBeNil)
				So(score, ShouldBeLessThan, prev)
				prev = score
			}
		})

		Convey("When rank is out of range", func() {
			for _, in := range [][2]int{{0, 5}, {6, 5}, {1, 0}, {-1, 3}} {
				_, err := scorer.Score(in[0], in[1])
				So(errors.Is(err, scoring.ErrInvalidRank), ShouldBeTrue)
			}
		})
	})

	Convey("Given a scorer with a custom precision", t, func() {
		scorer := scoring.NewLinear(scoring.WithPrecision(0))
		score, err := scorer.Score(2, 4)
		So(err, ShouldBeNil)
		So(score, ShouldEqual, 67.0)

		Convey("When an invalid precision is supplied the default is kept", func() {
			s := scoring.NewLinear(scoring.WithPrecision(-3))
			score, err := s.Score(2, 4)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 66.67)
		})
	})
}
