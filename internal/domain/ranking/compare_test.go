package ranking_test

import (
	"testing"

	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func driver(id string, tier model.Tier, group model.QualityGroup) model.ClassifiedDriver {
	return model.ClassifiedDriver{
		Record: model.DriverMetricRecord{
			DriverID:               id,
			Tier:                   tier,
			DeliveryCompletionRate: 99.5,
			PODAcceptanceRate:      99.5,
			PackagesDelivered:      1000,
			Eligible:               true,
		},
		Group: group,
	}
}

func TestCompare(t *testing.T) {
	Convey("Given two classified drivers", t, func() {
		a := driver("a", model.TierGold, model.GroupNoFeedback)
		b := driver("b", model.TierGold, model.GroupNoFeedback)

		Convey("Tier decides before anything else", func() {
			a.Group = model.GroupPhotoQuality
			b.Record.Tier = model.TierSilver
			b.Group = model.GroupFlawless
			step, c := ranking.Explain(a, b)
			So(step, ShouldEqual, "tier")
			So(c, ShouldEqual, -1)
		})

		Convey("Quality group decides within a tier", func() {
			a.Group = model.GroupHasFeedback
			step, c := ranking.Explain(a, b)
			So(step, ShouldEqual, "qualityGroup")
			So(c, ShouldEqual, 1)
		})

		Convey("Lower DPMO ranks first", func() {
			a.Record.CDFDPMO = 1500
			b.Record.CDFDPMO = 500
			step, c := ranking.Explain(a, b)
			So(step, ShouldEqual, "cdfDpmo")
			So(c, ShouldEqual, 1)
		})

		Convey("Higher DCR ranks first", func() {
			a.Record.DeliveryCompletionRate = 99.9
			step, c := ranking.Explain(a, b)
			So(step, ShouldEqual, "deliveryCompletionRate")
			So(c, ShouldEqual, -1)
		})

		Convey("Fewer rushed DVICs rank first", func() {
			b.Record.DVICRushedCount = 1
			step, c := ranking.Explain(a, b)
			So(step, ShouldEqual, "dvicRushedCount")
			So(c, ShouldEqual, -1)
		})

		Convey("More packages rank first", func() {
			b.Record.PackagesDelivered = 1001
			step, c := ranking.Explain(a, b)
			So(step, ShouldEqual, "packagesDelivered")
			So(c, ShouldEqual, 1)
		})

		Convey("Identical metrics fall back to driver id", func() {
			step, c := ranking.Explain(a, b)
			So(step, ShouldEqual, "driverId")
			So(c, ShouldEqual, -1)
			So(ranking.Compare(b, a), ShouldEqual, 1)
		})

		Convey("A driver compares equal to itself", func() {
			step, c := ranking.Explain(a, a)
			So(step, ShouldBeEmpty)
			So(c, ShouldEqual, 0)
		})

		Convey("Unknown tiers rank after Poor", func() {
			a.Record.Tier = model.TierUnknown
			b.Record.Tier = model.TierPoor
			So(ranking.Compare(a, b), ShouldEqual, 1)
		})
	})
}
