package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// dscrWorkingPlaces keeps the quotient well beyond DSCRPlaces before the
// final half-to-even rounding.
const dscrWorkingPlaces int32 = 16

// DSCRCalculator is a domain service that computes debt-service coverage.
type DSCRCalculator struct{}

// NewDSCRCalculator creates a new DSCRCalculator instance.
func NewDSCRCalculator() *DSCRCalculator {
	return &DSCRCalculator{}
}

// Calculate returns monthlyNOI / monthlyDebtService. A zero or negative debt
// service yields the uncapped sentinel. A negative NOI yields a negative ratio.
func (c *DSCRCalculator) Calculate(monthlyNOI, monthlyDebtService decimal.Decimal) valueobject.DSCR {
	if !monthlyDebtService.IsPositive() {
		return valueobject.UncappedDSCR
	}
	return valueobject.NewDSCR(monthlyNOI.DivRound(monthlyDebtService, dscrWorkingPlaces))
}
