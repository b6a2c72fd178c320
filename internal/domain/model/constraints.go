package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultMaxIterations bounds the rebalancing loop when a caller leaves
// MaxIterations unset.
const DefaultMaxIterations = 50

// DefaultConvergenceTolerance is the currency tolerance applied when a caller
// leaves ConvergenceTolerance unset.
var DefaultConvergenceTolerance = decimal.NewFromInt(1)

// AllocationConstraints parameterise a single blanket allocation run.
//
// A zero MaxLTVPerProperty means no per-property LTV ceiling applies.
type AllocationConstraints struct {
	MinDSCR              decimal.Decimal
	MaxLTVPerProperty    decimal.Decimal
	MinAllocationFloor   decimal.Decimal
	MaxIterations        int
	ConvergenceTolerance decimal.Decimal
}

// WithDefaults returns a copy with MaxIterations and ConvergenceTolerance
// filled in when they are zero.
func (c AllocationConstraints) WithDefaults() AllocationConstraints {
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.ConvergenceTolerance.IsZero() {
		c.ConvergenceTolerance = DefaultConvergenceTolerance
	}
	return c
}

// HasLTVCeiling reports whether a per-property LTV ceiling is configured.
func (c AllocationConstraints) HasLTVCeiling() bool {
	return c.MaxLTVPerProperty.IsPositive()
}

// Validate checks the constraint values in isolation.
func (c AllocationConstraints) Validate() error {
	if !c.MinDSCR.IsPositive() {
		return fmt.Errorf("%w: min DSCR must be positive, got %s", ErrInvalidInput, c.MinDSCR)
	}
	if c.MaxLTVPerProperty.IsNegative() {
		return fmt.Errorf("%w: max LTV must not be negative, got %s", ErrInvalidInput, c.MaxLTVPerProperty)
	}
	if c.MinAllocationFloor.IsNegative() {
		return fmt.Errorf("%w: min allocation floor must not be negative, got %s", ErrInvalidInput, c.MinAllocationFloor)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidInput, c.MaxIterations)
	}
	if c.ConvergenceTolerance.IsNegative() {
		return fmt.Errorf("%w: convergence tolerance must not be negative, got %s", ErrInvalidInput, c.ConvergenceTolerance)
	}
	return nil
}
