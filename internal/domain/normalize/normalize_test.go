package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func completeRecord() model.RawRecord {
	return model.RawRecord{
		DriverID:               model.Text("DRV-1"),
		Tier:                   model.Text("Platinum"),
		DeliveryCompletionRate: model.Num(100),
		PODAcceptanceRate:      model.Num(100),
		CDFDPMO:                model.Num(0),
		NegativeFeedbackCount:  model.Num(0),
		EscalationDefects:      model.Num(0),
		DVICRushedCount:        model.Num(0),
		PackagesDelivered:      model.Num(1800),
	}
}

func codes(diags []model.Diagnostic) []model.Code {
	out := make([]model.Code, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestNormalize(t *testing.T) {
	Convey("Given a complete raw record", t, func() {
		raw := completeRecord()

		Convey("When normalizing", func() {
			rec, diags := normalize.Normalize(3, raw)

			Convey("Then it is eligible with typed fields", func() {
				So(rec.Eligible, ShouldBeTrue)
				So(rec.Index, ShouldEqual, 3)
				So(rec.DriverID, ShouldEqual, "DRV-1")
				So(rec.Tier, ShouldEqual, model.TierPlatinum)
				So(rec.DeliveryCompletionRate, ShouldEqual, 100.0)
				So(rec.PackagesDelivered, ShouldEqual, 1800)
				So(diags, ShouldBeEmpty)
			})
		})

		Convey("When numbers arrive as strings", func() {
			raw.DeliveryCompletionRate = model.Text(" 99.8% ")
			raw.PackagesDelivered = model.Text("1,204")
			raw.CDFDPMO = model.Text("1500.0")
			rec, diags := normalize.Normalize(0, raw)

			Convey("Then they are coerced", func() {
				So(rec.Eligible, ShouldBeTrue)
				So(rec.DeliveryCompletionRate, ShouldEqual, 99.8)
				So(rec.PackagesDelivered, ShouldEqual, 1204)
				So(rec.CDFDPMO, ShouldEqual, 1500)
				So(diags, ShouldBeEmpty)
			})
		})

		Convey("When optional counters are missing", func() {
			raw.EscalationDefects = model.Value{}
			raw.DVICRushedCount = model.Value{}
			raw.NegativeFeedbackCount = model.Text("")
			rec, diags := normalize.Normalize(0, raw)

			Convey("Then they default to zero", func() {
				So(rec.Eligible, ShouldBeTrue)
				So(rec.EscalationDefects, ShouldEqual, 0)
				So(rec.DVICRushedCount, ShouldEqual, 0)
				So(rec.NegativeFeedbackCount, ShouldEqual, 0)
				So(diags, ShouldBeEmpty)
			})
		})

		Convey("When the tier is missing", func() {
			raw.Tier = model.Value{}
			rec, diags := normalize.Normalize(0, raw)

			Convey("Then the record is ineligible", func() {
				So(rec.Eligible, ShouldBeFalse)
				So(rec.Reason, ShouldEqual, model.ReasonMissingTier)
				So(rec.Field, ShouldEqual, normalize.FieldTier)
				So(codes(diags), ShouldResemble, []model.Code{model.ReasonMissingTier})
				So(diags[0].Severity, ShouldEqual, model.SeverityError)
			})
		})

		Convey("When packages delivered is missing", func() {
			raw.PackagesDelivered = model.Value{}
			rec, _ := normalize.Normalize(0, raw)
			So(rec.Eligible, ShouldBeFalse)
			So(rec.Reason, ShouldEqual, model.ReasonMissingPackages)
		})

		Convey("When the driver id is blank", func() {
			raw.DriverID = model.Text("  ")
			rec, _ := normalize.Normalize(7, raw)
			So(rec.Eligible, ShouldBeFalse)
			So(rec.Reason, ShouldEqual, model.ReasonMissingDriverID)
			So(rec.Index, ShouldEqual, 7)
		})

		Convey("When the driver id is an object", func() {
			So(json.Unmarshal([]byte(`{"x":1}`), &raw.DriverID), ShouldBeNil)
			rec, diags := normalize.Normalize(2, raw)
			So(rec.Eligible, ShouldBeFalse)
			So(rec.Reason, ShouldEqual, model.ReasonInvalidValue)
			So(rec.Field, ShouldEqual, normalize.FieldDriverID)
			So(rec.DriverID, ShouldBeEmpty)
			So(codes(diags), ShouldResemble, []model.Code{model.ReasonInvalidValue})
		})

		Convey("When the tier is a boolean", func() {
			So(json.Unmarshal([]byte(`true`), &raw.Tier), ShouldBeNil)
			rec, diags := normalize.Normalize(0, raw)
			So(rec.Eligible, ShouldBeFalse)
			So(rec.Reason, ShouldEqual, model.ReasonInvalidValue)
			So(rec.Field, ShouldEqual, normalize.FieldTier)
			So(codes(diags), ShouldResemble, []model.Code{model.ReasonInvalidValue})
		})

		Convey("When a numeric field is not a number", func() {
			raw.CDFDPMO = model.Text("n/a")
			rec, diags := normalize.Normalize(0, raw)
			So(rec.Eligible, ShouldBeFalse)
			So(rec.Reason, ShouldEqual, model.ReasonInvalidNumber)
			So(rec.Field, ShouldEqual, normalize.FieldCDFDPMO)
			So(len(diags), ShouldEqual, 1)
		})

		Convey("When a count is negative or fractional", func() {
			raw.DVICRushedCount = model.Num(-1)
			rec, _ := normalize.Normalize(0, raw)
			So(rec.Reason, ShouldEqual, model.ReasonNegativeCount)

			raw = completeRecord()
			raw.PackagesDelivered = model.Num(10.5)
			rec, _ = normalize.Normalize(0, raw)
			So(rec.Reason, ShouldEqual, model.ReasonNonIntegerCount)
		})

		Convey("When several fields are bad", func() {
			raw.Tier = model.Value{}
			raw.PODAcceptanceRate = model.Text("abc")
			rec, diags := normalize.Normalize(0, raw)

			Convey("Then the first failure in field order is the reason and all are reported", func() {
				So(rec.Reason, ShouldEqual, model.ReasonMissingTier)
				So(codes(diags), ShouldResemble, []model.Code{model.ReasonMissingTier, model.ReasonInvalidNumber})
			})
		})

		Convey("When a rate is out of range", func() {
			raw.DeliveryCompletionRate = model.Num(101.5)
			raw.PODAcceptanceRate = model.Num(-2)
			rec, diags := normalize.Normalize(0, raw)

			Convey("Then it is clamped with a warning and stays eligible", func() {
				So(rec.Eligible, ShouldBeTrue)
				So(rec.DeliveryCompletionRate, ShouldEqual, 100.0)
				So(rec.PODAcceptanceRate, ShouldEqual, 0.0)
				So(codes(diags), ShouldResemble, []model.Code{model.WarnRateClamped, model.WarnRateClamped})
				So(diags[0].Severity, ShouldEqual, model.SeverityWarning)
			})
		})

		Convey("When the tier is not a known label", func() {
			raw.Tier = model.Text("Diamond")
			rec, diags := normalize.Normalize(0, raw)
			So(rec.Eligible, ShouldBeTrue)
			So(rec.Tier, ShouldEqual, model.TierUnknown)
			So(codes(diags), ShouldResemble, []model.Code{model.WarnUnknownTier})
		})

		Convey("When negative feedback is reported without DPMO", func() {
			raw.NegativeFeedbackCount = model.Num(2)
			rec, diags := normalize.Normalize(0, raw)
			So(rec.Eligible, ShouldBeTrue)
			So(codes(diags), ShouldResemble, []model.Code{model.WarnFeedbackWithoutDPMO})
		})
	})
}

func TestParseNumber(t *testing.T) {
	Convey("Given numeric-looking strings", t, func() {
		cases := map[string]float64{
			"42":        42,
			" 99.7 ":    99.7,
			"99.7%":     99.7,
			"1,234,567": 1234567,
			"1e3":       1000,
			".5":        0.5,
		}
		for in, want := range cases {
			got, err := normalize.ParseNumber(in)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}
	})

	Convey("Given values that are not plain numbers", t, func() {
		for _, in := range []string{"NaN", "Inf", "0x1p-2", "99,5", "twelve", "1,23", ""} {
			_, err := normalize.ParseNumber(in)
			So(err, ShouldNotBeNil)
		}
	})
}
