package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// WeightBasis – immutable value object
// ---------------------------------------------------------------------------

// WeightBasis selects the proportional seed a property contributes to the
// initial principal split.
type WeightBasis struct {
	value string
}

const (
	weightBasisByValue  = "BY_VALUE"
	weightBasisByIncome = "BY_INCOME"
)

var (
	WeightBasisByValue  = WeightBasis{value: weightBasisByValue}
	WeightBasisByIncome = WeightBasis{value: weightBasisByIncome}
)

var validWeightBases = map[string]WeightBasis{
	weightBasisByValue:  WeightBasisByValue,
	weightBasisByIncome: WeightBasisByIncome,
}

// NewWeightBasis creates a WeightBasis from a raw string. An empty string
// resolves to BY_VALUE.
func NewWeightBasis(s string) (WeightBasis, error) {
	if s == "" {
		return WeightBasisByValue, nil
	}
	v, ok := validWeightBases[s]
	if !ok {
		return WeightBasis{}, fmt.Errorf("invalid weight basis: %q", s)
	}
	return v, nil
}

// String returns the string representation of the basis.
func (w WeightBasis) String() string { return w.value }

// IsZero returns true if the basis has not been initialised.
func (w WeightBasis) IsZero() bool { return w.value == "" }

// Equal returns true when both bases carry the same value.
func (w WeightBasis) Equal(other WeightBasis) bool { return w.value == other.value }

// IsKnown reports whether the basis is unset or one of the defined bases.
func (w WeightBasis) IsKnown() bool {
	if w.IsZero() {
		return true
	}
	_, ok := validWeightBases[w.value]
	return ok
}

// ---------------------------------------------------------------------------
// RiskTier – immutable value object
// ---------------------------------------------------------------------------

// RiskTier is the coarse risk label attached to a property allocation.
type RiskTier struct {
	value string
}

const (
	riskTierLow      = "LOW"
	riskTierModerate = "MODERATE"
	riskTierHigh     = "HIGH"
)

var (
	RiskTierLow      = RiskTier{value: riskTierLow}
	RiskTierModerate = RiskTier{value: riskTierModerate}
	RiskTierHigh     = RiskTier{value: riskTierHigh}
)

var validRiskTiers = map[string]RiskTier{
	riskTierLow:      RiskTierLow,
	riskTierModerate: RiskTierModerate,
	riskTierHigh:     RiskTierHigh,
}

// NewRiskTier reconstructs a RiskTier from its string representation.
func NewRiskTier(s string) (RiskTier, error) {
	v, ok := validRiskTiers[s]
	if !ok {
		return RiskTier{}, fmt.Errorf("invalid risk tier: %q", s)
	}
	return v, nil
}

// String returns the string representation of the tier.
func (r RiskTier) String() string { return r.value }

// IsZero returns true if the tier has not been initialised.
func (r RiskTier) IsZero() bool { return r.value == "" }

// Equal returns true when both tiers carry the same value.
func (r RiskTier) Equal(other RiskTier) bool { return r.value == other.value }

// ---------------------------------------------------------------------------
// AllocationOutcome – immutable value object
// ---------------------------------------------------------------------------

// AllocationOutcome tells a host why an allocation run stopped.
type AllocationOutcome struct {
	value string
}

const (
	outcomeFeasible     = "FEASIBLE"
	outcomeInfeasible   = "INFEASIBLE"
	outcomeNotConverged = "NOT_CONVERGED"
)

var (
	AllocationOutcomeFeasible     = AllocationOutcome{value: outcomeFeasible}
	AllocationOutcomeInfeasible   = AllocationOutcome{value: outcomeInfeasible}
	AllocationOutcomeNotConverged = AllocationOutcome{value: outcomeNotConverged}
)

var validAllocationOutcomes = map[string]AllocationOutcome{
	outcomeFeasible:     AllocationOutcomeFeasible,
	outcomeInfeasible:   AllocationOutcomeInfeasible,
	outcomeNotConverged: AllocationOutcomeNotConverged,
}

// NewAllocationOutcome reconstructs an AllocationOutcome from a raw string.
func NewAllocationOutcome(s string) (AllocationOutcome, error) {
	v, ok := validAllocationOutcomes[s]
	if !ok {
		return AllocationOutcome{}, fmt.Errorf("invalid allocation outcome: %q", s)
	}
	return v, nil
}

// String returns the string representation of the outcome.
func (o AllocationOutcome) String() string { return o.value }

// IsZero returns true if the outcome has not been initialised.
func (o AllocationOutcome) IsZero() bool { return o.value == "" }

// Equal returns true when both outcomes carry the same value.
func (o AllocationOutcome) Equal(other AllocationOutcome) bool { return o.value == other.value }
