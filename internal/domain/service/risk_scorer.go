package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// RiskPolicy holds the thresholds and penalties of the property risk score.
// DSCR thresholds are strict lower bounds; LTV thresholds are strict upper bounds.
type RiskPolicy struct {
	BaseScore int

	DSCRSevereBelow   decimal.Decimal
	DSCRSeverePenalty int
	DSCRWatchBelow    decimal.Decimal
	DSCRWatchPenalty  int

	LTVSevereAbove   decimal.Decimal
	LTVSeverePenalty int
	LTVWatchAbove    decimal.Decimal
	LTVWatchPenalty  int
}

// DefaultRiskPolicy returns the standard underwriting thresholds.
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		BaseScore: 100,

		DSCRSevereBelow:   decimal.NewFromInt(1),
		DSCRSeverePenalty: 40,
		DSCRWatchBelow:    decimal.RequireFromString("1.25"),
		DSCRWatchPenalty:  20,

		LTVSevereAbove:   decimal.RequireFromString("0.80"),
		LTVSeverePenalty: 30,
		LTVWatchAbove:    decimal.RequireFromString("0.75"),
		LTVWatchPenalty:  15,
	}
}

// RiskScorer is a domain service that rates a property allocation from its
// coverage and leverage.
type RiskScorer struct {
	policy RiskPolicy
}

// NewRiskScorer creates a RiskScorer with the default policy.
func NewRiskScorer() *RiskScorer {
	return NewRiskScorerWithPolicy(DefaultRiskPolicy())
}

// NewRiskScorerWithPolicy creates a RiskScorer with custom thresholds.
func NewRiskScorerWithPolicy(policy RiskPolicy) *RiskScorer {
	return &RiskScorer{policy: policy}
}

// Policy returns the thresholds in use.
func (s *RiskScorer) Policy() RiskPolicy { return s.policy }

// Score returns a score in [0, 100] and a tier. Higher scores are safer.
// An uncapped DSCR takes no coverage penalty.
func (s *RiskScorer) Score(dscr valueobject.DSCR, ltv decimal.Decimal) (int, valueobject.RiskTier) {
	p := s.policy
	score := p.BaseScore

	// Rule: coverage.
	switch {
	case dscr.LessThan(p.DSCRSevereBelow):
		score -= p.DSCRSeverePenalty
	case dscr.LessThan(p.DSCRWatchBelow):
		score -= p.DSCRWatchPenalty
	}

	// Rule: leverage.
	switch {
	case ltv.GreaterThan(p.LTVSevereAbove):
		score -= p.LTVSeverePenalty
	case ltv.GreaterThan(p.LTVWatchAbove):
		score -= p.LTVWatchPenalty
	}

	// Clamp score to [0, 100].
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, s.tier(dscr, ltv)
}

func (s *RiskScorer) tier(dscr valueobject.DSCR, ltv decimal.Decimal) valueobject.RiskTier {
	p := s.policy
	switch {
	case dscr.AtLeast(p.DSCRWatchBelow) && ltv.LessThanOrEqual(p.LTVWatchAbove):
		return valueobject.RiskTierLow
	case dscr.LessThan(p.DSCRSevereBelow) || ltv.GreaterThan(p.LTVSevereAbove):
		return valueobject.RiskTierHigh
	default:
		return valueobject.RiskTierModerate
	}
}
