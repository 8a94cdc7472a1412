package model

// Code identifies a data-quality finding.
type Code string

// Ineligibility reasons.
const (
	ReasonMissingDriverID   Code = "missing_driver_id"
	ReasonDuplicateDriverID Code = "duplicate_driver_id"
	ReasonMissingTier       Code = "missing_tier"
	ReasonMissingPackages   Code = "missing_packages_delivered"
	ReasonMissingField      Code = "missing_field"
	ReasonInvalidNumber     Code = "invalid_number"
	ReasonNegativeCount     Code = "negative_count"
	ReasonNonIntegerCount   Code = "non_integer_count"
	ReasonInvalidValue      Code = "invalid_value"
)

// Warnings. They never remove a driver from ranking.
const (
	WarnRateClamped         Code = "rate_clamped"
	WarnUnknownTier         Code = "unknown_tier"
	WarnFeedbackWithoutDPMO Code = "feedback_without_dpmo"
)

// Severity of a Diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a single normalization finding for one record.
type Diagnostic struct {
	DriverID string   `json:"driverId"`
	Index    int      `json:"index"`
	Field    string   `json:"field,omitempty"`
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}
