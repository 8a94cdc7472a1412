package model

import (
	"fmt"
	"regexp"
	"strings"
)

var isoWeek = regexp.MustCompile(`^\d{4}-W(0[1-9]|[1-4]\d|5[0-3])$`)

// CohortKey identifies the drivers of one DSP station for one performance week.
type CohortKey struct {
	DSP     string `json:"dsp"`
	Station string `json:"station"`
	Week    string `json:"week"`
}

// Validate checks that every component is present, has no slash, and that
// Week is an ISO week such as 2025-W07.
func (k CohortKey) Validate() error {
	parts := []struct{ name, value string }{{"dsp", k.DSP}, {"station", k.Station}, {"week", k.Week}}
	for _, p := range parts {
		if strings.TrimSpace(p.value) == "" {
			return fmt.Errorf("%w: missing %s", ErrInvalidCohort, p.name)
		}
		if strings.Contains(p.value, "/") {
			return fmt.Errorf("%w: %s must not contain '/'", ErrInvalidCohort, p.name)
		}
	}
	if !isoWeek.MatchString(k.Week) {
		return fmt.Errorf("%w: week %q is not an ISO week (YYYY-Www)", ErrInvalidCohort, k.Week)
	}
	return nil
}

func (k CohortKey) String() string {
	return k.DSP + "/" + k.Station + "/" + k.Week
}

// RankedDriver is one eligible driver's position in a cohort ranking.
type RankedDriver struct {
	DriverID     string       `json:"driverId"`
	Tier         Tier         `json:"tier"`
	QualityGroup QualityGroup `json:"qualityGroup"`
	Rank         int          `json:"rank"`
	Score        float64      `json:"score"`
}

// Ineligible is a driver excluded from ranking, with the reason.
type Ineligible struct {
	DriverID string `json:"driverId"`
	Reason   Code   `json:"reason"`
	Field    string `json:"field,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Index    int    `json:"index"`
}

// Result is the output of one ranking run over a cohort.
type Result struct {
	Cohort      CohortKey      `json:"cohort"`
	RunID       string         `json:"runId,omitempty"`
	Ranked      []RankedDriver `json:"ranked"`
	Ineligible  []Ineligible   `json:"ineligible"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
}

// CohortInput pairs a cohort key with its raw records.
type CohortInput struct {
	Cohort  CohortKey   `json:"cohort"`
	Records []RawRecord `json:"records"`
}
