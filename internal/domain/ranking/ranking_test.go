package ranking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dspboard/driverrank/internal/cohortgen"
	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

type rawOpt func(*model.RawRecord)

func raw(id, tier string, opts ...rawOpt) model.RawRecord {
	r := model.RawRecord{
		DriverID:               model.Text(id),
		Tier:                   model.Text(tier),
		DeliveryCompletionRate: model.Num(100),
		PODAcceptanceRate:      model.Num(100),
		CDFDPMO:                model.Num(0),
		NegativeFeedbackCount:  model.Num(0),
		PackagesDelivered:      model.Num(1500),
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func dcr(v float64) rawOpt {
	return func(r *model.RawRecord) { r.DeliveryCompletionRate = model.Num(v) }
}

func pod(v float64) rawOpt {
	return func(r *model.RawRecord) { r.PODAcceptanceRate = model.Num(v) }
}

func dpmo(v float64) rawOpt {
	return func(r *model.RawRecord) { r.CDFDPMO = model.Num(v) }
}

func feedback(v float64) rawOpt {
	return func(r *model.RawRecord) { r.NegativeFeedbackCount = model.Num(v) }
}

func dvic(v float64) rawOpt {
	return func(r *model.RawRecord) { r.DVICRushedCount = model.Num(v) }
}

func packages(v float64) rawOpt {
	return func(r *model.RawRecord) { r.PackagesDelivered = model.Num(v) }
}

func ids(ranked []model.RankedDriver) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.DriverID
	}
	return out
}

func TestEngine_Rank(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ranking engine", t, func() {
		engine := ranking.New()

		Convey("When ranking three Platinum drivers of different quality", func() {
			res, err := engine.Rank(ctx, []model.RawRecord{
				raw("C", "Platinum", dcr(99.5), pod(99.9), dpmo(2000), feedback(1)),
				raw("B", "Platinum", dcr(99.9), pod(99.9)),
				raw("A", "Platinum"),
			})

			Convey("Then groups, ranks and scores follow the policy", func() {
				So(err, ShouldBeNil)
				So(res.Ranked, ShouldResemble, []model.RankedDriver{
					{DriverID: "A", Tier: model.TierPlatinum, QualityGroup: model.GroupFlawless, Rank: 1, Score: 100},
					{DriverID: "B", Tier: model.TierPlatinum, QualityGroup: model.GroupNoFeedbackHighDCR, Rank: 2, Score: 50},
					{DriverID: "C", Tier: model.TierPlatinum, QualityGroup: model.GroupHasFeedback, Rank: 3, Score: 0},
				})
				So(res.Ineligible, ShouldBeEmpty)
			})
		})

		Convey("When a Platinum driver has a worse group than a Gold driver", func() {
			res, err := engine.Rank(ctx, []model.RawRecord{
				raw("gold-flawless", "Gold"),
				raw("plat-group3", "Platinum", dcr(98.0), pod(99.0)),
			})
			So(err, ShouldBeNil)
			So(res.Ranked[0].DriverID, ShouldEqual, "plat-group3")
			So(res.Ranked[0].QualityGroup, ShouldEqual, model.GroupNoFeedback)
			So(res.Ranked[1].QualityGroup, ShouldEqual, model.GroupFlawless)
		})

		Convey("When two drivers tie on tier and group but differ on DPMO", func() {
			res, err := engine.Rank(ctx, []model.RawRecord{
				raw("high", "Gold", dcr(99.0), dpmo(1500), feedback(1)),
				raw("low", "Gold", dcr(99.0), dpmo(500), feedback(1)),
			})
			So(err, ShouldBeNil)
			So(res.Ranked[0].QualityGroup, ShouldEqual, res.Ranked[1].QualityGroup)
			So(ids(res.Ranked), ShouldResemble, []string{"low", "high"})
		})

		Convey("When later cascade steps decide", func() {
			res, err := engine.Rank(ctx, []model.RawRecord{
				raw("e", "Silver", dcr(98.5), packages(900)),
				raw("d", "Silver", dcr(98.5), packages(1200)),
				raw("c", "Silver", dcr(98.5), dvic(2), packages(5000)),
				raw("b", "Silver", dcr(98.9)),
				raw("a", "Silver", dcr(98.5), packages(900)),
			})
			So(err, ShouldBeNil)
			So(ids(res.Ranked), ShouldResemble, []string{"b", "d", "a", "e", "c"})
		})

		Convey("When one of five records has no tier", func() {
			res, err := engine.Rank(ctx, []model.RawRecord{
				raw("1", "Gold"),
				raw("2", "Gold", dcr(99.0)),
				raw("3", "", dcr(99.0)),
				raw("4", "Silver"),
				raw("5", "Bronze"),
			})

			Convey("Then four drivers are ranked and one is reported", func() {
				So(err, ShouldBeNil)
				So(len(res.Ranked), ShouldEqual, 4)
				for i, r := range res.Ranked {
					So(r.Rank, ShouldEqual, i+1)
				}
				So(res.Ranked[3].Score, ShouldEqual, 0.0)
				So(res.Ranked[1].Score, ShouldEqual, 66.67)
				So(res.Ineligible, ShouldResemble, []model.Ineligible{{
					DriverID: "3", Reason: model.ReasonMissingTier, Field: "tier", Detail: "tier is missing", Index: 2,
				}})
			})
		})

		Convey("When a driver id appears twice", func() {
			res, err := engine.Rank(ctx, []model.RawRecord{
				raw("X", "Gold"),
				raw("X", "Platinum"),
			})
			So(err, ShouldBeNil)
			So(len(res.Ranked), ShouldEqual, 1)
			So(res.Ranked[0].Tier, ShouldEqual, model.TierGold)
			So(res.Ineligible[0].Reason, ShouldEqual, model.ReasonDuplicateDriverID)
			So(res.Ineligible[0].Index, ShouldEqual, 1)
		})

		Convey("When an ineligible record precedes a valid one with the same id", func() {
			res, err := engine.Rank(ctx, []model.RawRecord{
				raw("Y", "Gold", func(r *model.RawRecord) { r.PackagesDelivered = model.Value{} }),
				raw("Y", "Silver"),
			})
			So(err, ShouldBeNil)
			So(ids(res.Ranked), ShouldResemble, []string{"Y"})
			So(res.Ranked[0].Tier, ShouldEqual, model.TierSilver)
			So(len(res.Ineligible), ShouldEqual, 1)
			So(res.Ineligible[0].Reason, ShouldEqual, model.ReasonMissingPackages)
			So(res.Ineligible[0].Index, ShouldEqual, 0)
		})

		Convey("When only one driver is eligible", func() {
			res, err := engine.Rank(ctx, []model.RawRecord{
				raw("solo", "Poor", dcr(90), pod(90), dpmo(9000), feedback(4)),
				raw("broken", "Gold", func(r *model.RawRecord) { r.PackagesDelivered = model.Value{} }),
			})
			So(err, ShouldBeNil)
			So(len(res.Ranked), ShouldEqual, 1)
			So(res.Ranked[0].Score, ShouldEqual, 100.0)
			So(res.Ineligible[0].Reason, ShouldEqual, model.ReasonMissingPackages)
		})

		Convey("When the cohort is empty", func() {
			res, err := engine.Rank(ctx, nil)
			So(err, ShouldBeNil)
			So(res.Ranked, ShouldNotBeNil)
			So(res.Ranked, ShouldBeEmpty)
			So(res.Ineligible, ShouldNotBeNil)
		})

		Convey("When a tier label is unknown", func() {
			res, err := engine.Rank(ctx, []model.RawRecord{
				raw("mystery", "Diamond"),
				raw("poor", "Poor", dcr(95), pod(95), dpmo(5000), feedback(3)),
			})
			So(err, ShouldBeNil)
			So(ids(res.Ranked), ShouldResemble, []string{"poor", "mystery"})
			So(res.Ranked[1].Tier, ShouldEqual, model.TierUnknown)
			So(res.Diagnostics[0].Code, ShouldEqual, model.WarnUnknownTier)
		})

		Convey("When a record cannot be classified", func() {
			_, err := engine.Rank(ctx, []model.RawRecord{
				raw("ok", "Gold"),
				raw("gap", "Gold", dcr(99.5), pod(99.9), feedback(2)),
			})
			So(errors.Is(err, ranking.ErrInvariant), ShouldBeTrue)
		})
	})
}

func TestEngine_Properties(t *testing.T) {
	ctx := context.Background()

	Convey("Given generated cohorts", t, func() {
		engine := ranking.New()

		for seed := uint64(1); seed <= 20; seed++ {
			in := cohortgen.Generate(cohortgen.Config{Drivers: 25 + int(seed)*7, Ineligible: int(seed % 4), Seed: seed})

			first, err := engine.Rank(ctx, in.Records)
			So(err, ShouldBeNil)
			second, err := engine.Rank(ctx, in.Records)
			So(err, ShouldBeNil)

			// determinism
			So(second, ShouldResemble, first)

			n := len(first.Ranked)
			So(n+len(first.Ineligible), ShouldEqual, len(in.Records))
			So(first.Ranked[0].Score, ShouldEqual, 100.0)
			So(first.Ranked[n-1].Score, ShouldEqual, 0.0)
			for i := 1; i < n; i++ {
				So(first.Ranked[i].Rank, ShouldEqual, first.Ranked[i-1].Rank+1)
				So(first.Ranked[i].Score, ShouldBeLessThanOrEqualTo, first.Ranked[i-1].Score)
				So(first.Ranked[i].Tier.Ordinal(), ShouldBeGreaterThanOrEqualTo, first.Ranked[i-1].Tier.Ordinal())
			}
		}
	})

	Convey("Given a cohort and its reversal", t, func() {
		engine := ranking.New()
		in := cohortgen.Generate(cohortgen.Config{Drivers: 80, Seed: 99})
		reversed := make([]model.RawRecord, len(in.Records))
		for i, r := range in.Records {
			reversed[len(in.Records)-1-i] = r
		}

		a, err := engine.Rank(ctx, in.Records)
		So(err, ShouldBeNil)
		b, err := engine.Rank(ctx, reversed)
		So(err, ShouldBeNil)

		Convey("Then the ranking does not depend on input order", func() {
			So(b.Ranked, ShouldResemble, a.Ranked)
		})
	})
}
