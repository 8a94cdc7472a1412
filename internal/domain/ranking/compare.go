// Package ranking orders a cohort of classified drivers with a fixed cascading
// policy and turns the order into ranks and scores.
package ranking

import (
	"cmp"
	"strings"

	"github.com/dspboard/driverrank/internal/domain/model"
)

// Key is one step of the ranking cascade.
type Key struct {
	Name    string
	Compare func(a, b *model.DriverMetricRecord, ga, gb model.QualityGroup) int
}

// Cascade lists the comparison steps in evaluation order. The first step
// that differentiates two drivers decides. driverId is the last step, so no
// two distinct drivers ever compare equal.
var Cascade = []Key{ //nolint:gochecknoglobals // fixed business policy
	{"tier", func(a, b *model.DriverMetricRecord, _, _ model.QualityGroup) int {
		return cmp.Compare(a.Tier.Ordinal(), b.Tier.Ordinal())
	}},
	{"qualityGroup", func(_, _ *model.DriverMetricRecord, ga, gb model.QualityGroup) int {
		return cmp.Compare(ga, gb)
	}},
	{"cdfDpmo", func(a, b *model.DriverMetricRecord, _, _ model.QualityGroup) int {
		return cmp.Compare(a.CDFDPMO, b.CDFDPMO)
	}},
	{"deliveryCompletionRate", func(a, b *model.DriverMetricRecord, _, _ model.QualityGroup) int {
		return cmp.Compare(b.DeliveryCompletionRate, a.DeliveryCompletionRate)
	}},
	{"dvicRushedCount", func(a, b *model.DriverMetricRecord, _, _ model.QualityGroup) int {
		return cmp.Compare(a.DVICRushedCount, b.DVICRushedCount)
	}},
	{"packagesDelivered", func(a, b *model.DriverMetricRecord, _, _ model.QualityGroup) int {
		return cmp.Compare(b.PackagesDelivered, a.PackagesDelivered)
	}},
	{"driverId", func(a, b *model.DriverMetricRecord, _, _ model.QualityGroup) int {
		return strings.Compare(a.DriverID, b.DriverID)
	}},
}

// Compare returns -1 when a ranks before b, 1 when after, and 0 only when both
// carry the same driver id and identical metrics.
func Compare(a, b model.ClassifiedDriver) int {
	_, c := Explain(a, b)
	return c
}

// Explain is Compare plus the name of the cascade step that decided. The
// step is empty when a and b tie on every step.
func Explain(a, b model.ClassifiedDriver) (string, int) {
	for _, k := range Cascade {
		if c := k.Compare(&a.Record, &b.Record, a.Group, b.Group); c != 0 {
			return k.Name, c
		}
	}
	return "", 0
}
