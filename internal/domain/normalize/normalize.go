// Package normalize validates raw driver metric records and coerces them into
// their canonical typed form. Data-quality problems never fail the call: they
// mark the record ineligible and are reported as diagnostics.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dspboard/driverrank/internal/domain/model"
)

// Rate bounds, in percent.
const (
	minRate = 0.0
	maxRate = 100.0
)

// Field names as they appear on the input schema.
const (
	FieldDriverID               = "driverId"
	FieldTier                   = "tier"
	FieldDeliveryCompletionRate = "deliveryCompletionRate"
	FieldPODAcceptanceRate      = "podAcceptanceRate"
	FieldCDFDPMO                = "cdfDpmo"
	FieldNegativeFeedbackCount  = "negativeFeedbackCount"
	FieldEscalationDefects      = "escalationDefects"
	FieldDVICRushedCount        = "dvicRushedCount"
	FieldPackagesDelivered      = "packagesDelivered"
)

var (
	plainNumber   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// normalizer accumulates the outcome for a single record.
type normalizer struct {
	rec   model.DriverMetricRecord
	diags []model.Diagnostic
}

// Normalize converts raw into a DriverMetricRecord. index is the record's
// position in its cohort and is carried through for reporting.
//
// Missing escalationDefects, dvicRushedCount and negativeFeedbackCount default
// to 0. A missing tier or packagesDelivered, a missing rate or DPMO, or any
// non-numeric value makes the record ineligible. Rates outside [0,100] are
// clamped and reported as warnings.
func Normalize(index int, raw model.RawRecord) (model.DriverMetricRecord, []model.Diagnostic) {
	n := &normalizer{rec: model.DriverMetricRecord{Index: index, Eligible: true}}
	switch {
	case !raw.DriverID.Scalar():
		n.fail(FieldDriverID, model.ReasonInvalidValue,
			fmt.Sprintf("driver id %s is not a string or number", raw.DriverID.String()))
	case raw.DriverID.Missing():
		n.fail(FieldDriverID, model.ReasonMissingDriverID, "driver id is missing")
	default:
		n.rec.DriverID = raw.DriverID.String()
	}

	n.tier(raw.Tier)
	n.rec.DeliveryCompletionRate = n.rate(FieldDeliveryCompletionRate, raw.DeliveryCompletionRate)
	n.rec.PODAcceptanceRate = n.rate(FieldPODAcceptanceRate, raw.PODAcceptanceRate)
	n.rec.CDFDPMO = n.count(FieldCDFDPMO, raw.CDFDPMO, true)
	n.rec.NegativeFeedbackCount = n.count(FieldNegativeFeedbackCount, raw.NegativeFeedbackCount, false)
	n.rec.EscalationDefects = n.count(FieldEscalationDefects, raw.EscalationDefects, false)
	n.rec.DVICRushedCount = n.count(FieldDVICRushedCount, raw.DVICRushedCount, false)
	n.rec.PackagesDelivered = n.count(FieldPackagesDelivered, raw.PackagesDelivered, true)

	if n.rec.Eligible && n.rec.NegativeFeedbackCount > 0 && n.rec.CDFDPMO == 0 {
		n.warn(FieldCDFDPMO, model.WarnFeedbackWithoutDPMO,
			fmt.Sprintf("%d negative feedback reported with a DPMO of 0", n.rec.NegativeFeedbackCount))
	}
	return n.rec, n.diags
}

func (n *normalizer) tier(v model.Value) {
	if v.Missing() {
		n.fail(FieldTier, model.ReasonMissingTier, "tier is missing")
		return
	}
	if !v.Scalar() {
		n.rec.Tier = model.TierUnknown
		n.fail(FieldTier, model.ReasonInvalidValue, fmt.Sprintf("tier %s is not a string", v.String()))
		return
	}
	t, ok := model.ParseTier(v.String())
	if !ok {
		n.warn(FieldTier, model.WarnUnknownTier, fmt.Sprintf("unrecognised tier %q ranks after Poor", v.String()))
	}
	n.rec.Tier = t
}

func (n *normalizer) rate(field string, v model.Value) float64 {
	if v.Missing() {
		n.fail(field, model.ReasonMissingField, field+" is missing")
		return 0
	}
	f, err := ParseNumber(v.String())
	if err != nil {
		n.fail(field, model.ReasonInvalidNumber, err.Error())
		return 0
	}
	if f < minRate || f > maxRate {
		clamped := math.Max(minRate, math.Min(maxRate, f))
		n.warn(field, model.WarnRateClamped, fmt.Sprintf("%s %g outside [0,100], clamped to %g", field, f, clamped))
		return clamped
	}
	return f
}

func (n *normalizer) count(field string, v model.Value, required bool) int64 {
	if v.Missing() {
		if !required {
			return 0
		}
		reason := model.ReasonMissingField
		if field == FieldPackagesDelivered {
			reason = model.ReasonMissingPackages
		}
		n.fail(field, reason, field+" is missing")
		return 0
	}
	f, err := ParseNumber(v.String())
	switch {
	case err != nil:
		n.fail(field, model.ReasonInvalidNumber, err.Error())
		return 0
	case f < 0:
		n.fail(field, model.ReasonNegativeCount, fmt.Sprintf("%s %g is negative", field, f))
		return 0
	case f != math.Trunc(f):
		n.fail(field, model.ReasonNonIntegerCount, fmt.Sprintf("%s %g is not a whole number", field, f))
		return 0
	case f >= math.MaxInt64:
		n.fail(field, model.ReasonInvalidNumber, fmt.Sprintf("%s %g is out of range", field, f))
		return 0
	}
	return int64(f)
}

// fail records an error diagnostic. The first failure decides the reason.
func (n *normalizer) fail(field string, code model.Code, msg string) {
	if n.rec.Eligible {
		n.rec.Eligible = false
		n.rec.Reason = code
		n.rec.Field = field
		n.rec.Detail = msg
	}
	n.diags = append(n.diags, n.diagnostic(field, code, model.SeverityError, msg))
}

func (n *normalizer) warn(field string, code model.Code, msg string) {
	n.diags = append(n.diags, n.diagnostic(field, code, model.SeverityWarning, msg))
}

func (n *normalizer) diagnostic(field string, code model.Code, sev model.Severity, msg string) model.Diagnostic {
	return model.Diagnostic{
		DriverID: n.rec.DriverID,
		Index:    n.rec.Index,
		Field:    field,
		Code:     code,
		Severity: sev,
		Message:  msg,
	}
}

// ParseNumber coerces a numeric-looking string. Surrounding spaces, a trailing
// percent sign and thousands separators (1,234) are accepted. NaN, infinities
// and hex forms are rejected.
func ParseNumber(s string) (float64, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimSpace(strings.TrimSuffix(t, "%"))
	if groupedNumber.MatchString(t) {
		t = strings.ReplaceAll(t, ",", "")
	}
	if !plainNumber.MatchString(t) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}
