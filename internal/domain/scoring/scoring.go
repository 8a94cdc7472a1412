// Package scoring maps a driver's 1-based rank within a cohort to a
// continuous 0-100 score.
package scoring

import (
	"fmt"
	"math"
)

// Default scoring configuration constants.
const (
	maxScoreValue    = 100
	minScoreValue    = 0
	defaultPrecision = 2
	maxPrecision     = 6
)

// Option applies a configuration option to the Linear scorer.
type Option func(*Linear)

// WithPrecision sets the number of decimal places scores are rounded to.
func WithPrecision(decimals int) Option {
	return func(s *Linear) {
		if decimals >= 0 && decimals <= maxPrecision {
			s.precision = decimals
		}
	}
}

// Scorer computes a score from a rank and the eligible cohort size.
type Scorer interface {
	Score(rank, cohortSize int) (float64, error)
}

// Linear implements Scorer with linear normalization:
//
//	score = 100 - ((rank-1)/(cohortSize-1)) * 100
//
// A cohort of one scores 100. Rank 1 always scores 100 and the last rank 0.
type Linear struct {
	precision int
	scale     float64
}

// NewLinear creates a linear scorer with configuration options.
func NewLinear(opts ...Option) *Linear {
	s := &Linear{precision: defaultPrecision}
	for _, opt := range opts {
		opt(s)
	}
	s.scale = math.Pow(10, float64(s.precision))
	return s
}

// Score returns the score for rank within a cohort of cohortSize drivers.
func (s *Linear) Score(rank, cohortSize int) (float64, error) {
	if cohortSize < 1 || rank < 1 || rank > cohortSize {
		return 0, fmt.Errorf("%w: rank %d of %d", ErrInvalidRank, rank, cohortSize)
	}
	if cohortSize == 1 {
		return maxScoreValue, nil
	}
	score := maxScoreValue - (float64(rank-1)/float64(cohortSize-1))*maxScoreValue
	score = math.Max(minScoreValue, math.Min(maxScoreValue, score))
	return math.Round(score*s.scale) / s.scale, nil
}
