// Package model contains the domain types shared by the ranking pipeline.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Value is a raw field as produced by the document-ingestion pipeline: a JSON
// number, a numeric-looking string, or absent/null. Coercion happens in the
// normalizer, never at decode time.
type Value struct {
	text    string
	present bool
	// composite marks an object, array or boolean.
	composite bool
}

// Num builds a Value from a number.
func Num(f float64) Value {
	return Value{text: strconv.FormatFloat(f, 'f', -1, 64), present: true}
}

// Text builds a Value from a string as it appeared in the source document.
func Text(s string) Value {
	return Value{text: s, present: true}
}

// Missing reports whether the value is absent, null or blank.
func (v Value) Missing() bool {
	return !v.present || strings.TrimSpace(v.text) == ""
}

// Scalar reports whether the value is missing, a string or a number.
func (v Value) Scalar() bool {
	return !v.composite
}

// String returns the trimmed raw text.
func (v Value) String() string {
	return strings.TrimSpace(v.text)
}

// UnmarshalJSON accepts any JSON value. Strings keep their content, null
// stays missing and everything else keeps its literal text. Objects, arrays
// and booleans are flagged so the normalizer can reject them.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	composite := len(data) > 0 && (data[0] == '{' || data[0] == '[' || data[0] == 't' || data[0] == 'f')
	*v = Value{text: string(data), present: true, composite: composite}
	return nil
}

// MarshalJSON emits numbers as numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(v.String(), 64); err == nil {
		return []byte(v.String()), nil
	}
	return json.Marshal(v.text)
}

// RawRecord is one driver's weekly metrics before validation.
type RawRecord struct {
	DriverID               Value `json:"driverId"`
	Tier                   Value `json:"tier"`
	DeliveryCompletionRate Value `json:"deliveryCompletionRate"`
	PODAcceptanceRate      Value `json:"podAcceptanceRate"`
	CDFDPMO                Value `json:"cdfDpmo"`
	NegativeFeedbackCount  Value `json:"negativeFeedbackCount"`
	EscalationDefects      Value `json:"escalationDefects"`
	DVICRushedCount        Value `json:"dvicRushedCount"`
	PackagesDelivered      Value `json:"packagesDelivered"`
}

// DriverMetricRecord is the canonical typed form of a RawRecord.
// Rates lie in [0,100] and counts are non-negative when Eligible is true.
type DriverMetricRecord struct {
	DriverID               string
	Tier                   Tier
	DeliveryCompletionRate float64
	PODAcceptanceRate      float64
	CDFDPMO                int64
	NegativeFeedbackCount  int64
	EscalationDefects      int64
	DVICRushedCount        int64
	PackagesDelivered      int64

	Eligible bool
	// Index is the record's position in the submitted cohort.
	Index int
	// Reason, Field and Detail describe why an ineligible record was excluded.
	Reason Code
	Field  string
	Detail string
}

// ClassifiedDriver is an eligible record together with its quality group.
type ClassifiedDriver struct {
	Record DriverMetricRecord
	Group  QualityGroup
}
