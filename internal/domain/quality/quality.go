// Package quality assigns eligible drivers to one of six ordinal quality
// groups. Rules are evaluated in order and the first match wins, so a rule
// only sees records every earlier rule rejected.
package quality

import (
	"fmt"

	"github.com/dspboard/driverrank/internal/domain/model"
)

// Classification thresholds.
const (
	PerfectRate       = 100.0
	HighDCRThreshold  = 99.8
	LowDPMOThreshold  = 1000
	PhotoPODThreshold = 99.7
)

// Rule is one step of the classification chain.
type Rule struct {
	Group model.QualityGroup
	Name  string
	Match func(r *model.DriverMetricRecord) bool
}

// Rules is the normative evaluation order. Reordering it changes outcomes.
var Rules = []Rule{ //nolint:gochecknoglobals // fixed business policy
	{
		Group: model.GroupFlawless,
		Name:  "no feedback, 100% DCR and 100% POD",
		Match: func(r *model.DriverMetricRecord) bool {
			return r.NegativeFeedbackCount == 0 && r.DeliveryCompletionRate == PerfectRate && r.PODAcceptanceRate == PerfectRate
		},
	},
	{
		Group: model.GroupNoFeedbackHighDCR,
		Name:  "no feedback, DCR >= 99.8",
		Match: func(r *model.DriverMetricRecord) bool {
			return r.NegativeFeedbackCount == 0 && r.DeliveryCompletionRate >= HighDCRThreshold
		},
	},
	{
		Group: model.GroupLowDPMOPerfect,
		Name:  "DPMO <= 1000, 100% DCR and 100% POD",
		Match: func(r *model.DriverMetricRecord) bool {
			return r.CDFDPMO <= LowDPMOThreshold && r.DeliveryCompletionRate == PerfectRate && r.PODAcceptanceRate == PerfectRate
		},
	},
	{
		Group: model.GroupNoFeedback,
		Name:  "no feedback",
		Match: func(r *model.DriverMetricRecord) bool {
			return r.NegativeFeedbackCount == 0
		},
	},
	{
		Group: model.GroupHasFeedback,
		Name:  "DPMO > 0",
		Match: func(r *model.DriverMetricRecord) bool {
			return r.CDFDPMO > 0
		},
	},
	{
		Group: model.GroupPhotoQuality,
		Name:  "POD < 99.7",
		Match: func(r *model.DriverMetricRecord) bool {
			return r.PODAcceptanceRate < PhotoPODThreshold
		},
	},
}

// Classify returns the quality group of an eligible record. A record that
// matches no rule is an invariant violation reported as ErrUnclassified; the
// only such shape is negative feedback with a DPMO of 0 and POD >= 99.7.
func Classify(r model.DriverMetricRecord) (model.QualityGroup, error) {
	if !r.Eligible {
		return 0, fmt.Errorf("%w: driver %q", ErrIneligible, r.DriverID)
	}
	for i := range Rules {
		if Rules[i].Match(&r) {
			return Rules[i].Group, nil
		}
	}
	return 0, fmt.Errorf("%w: driver %q (negativeFeedback=%d cdfDpmo=%d pod=%g)",
		ErrUnclassified, r.DriverID, r.NegativeFeedbackCount, r.CDFDPMO, r.PODAcceptanceRate)
}
