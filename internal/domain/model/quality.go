package model

import "fmt"

// QualityGroup is an ordinal delivery-quality bucket, 0 best to 5 worst.
type QualityGroup int

const (
	// GroupFlawless: no negative feedback, 100% completion and 100% POD.
	GroupFlawless QualityGroup = iota
	// GroupNoFeedbackHighDCR: no negative feedback and completion of at least 99.8%.
	GroupNoFeedbackHighDCR
	// GroupLowDPMOPerfect: DPMO of at most 1000 with 100% completion and 100% POD.
	GroupLowDPMOPerfect
	// GroupNoFeedback: any other zero-feedback driver.
	GroupNoFeedback
	// GroupHasFeedback: negative feedback with a positive DPMO.
	GroupHasFeedback
	// GroupPhotoQuality: POD acceptance below 99.7%.
	GroupPhotoQuality
)

var groupLabels = [...]string{
	"flawless",
	"no_feedback_high_dcr",
	"low_dpmo_perfect",
	"no_feedback",
	"has_feedback",
	"photo_quality",
}

// Valid reports whether g is one of the six defined groups.
func (g QualityGroup) Valid() bool {
	return g >= GroupFlawless && g <= GroupPhotoQuality
}

// Label returns a stable machine-readable name for g.
func (g QualityGroup) Label() string {
	if !g.Valid() {
		return fmt.Sprintf("group_%d", int(g))
	}
	return groupLabels[g]
}
