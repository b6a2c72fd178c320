package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LoanTerms is the immutable principal, rate and term of a single loan.
// AnnualRate is a fraction (0.075 for 7.5%).
type LoanTerms struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal
	TermMonths int
}

// NewLoanTerms builds validated loan terms.
func NewLoanTerms(principal, annualRate decimal.Decimal, termMonths int) (LoanTerms, error) {
	t := LoanTerms{Principal: principal, AnnualRate: annualRate, TermMonths: termMonths}
	if err := t.Validate(); err != nil {
		return LoanTerms{}, err
	}
	return t, nil
}

// Validate checks principal >= 0, 0 <= rate < 1 and term > 0.
func (t LoanTerms) Validate() error {
	if t.Principal.IsNegative() {
		return fmt.Errorf("%w: principal must not be negative, got %s", ErrInvalidInput, t.Principal)
	}
	if t.AnnualRate.IsNegative() || t.AnnualRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: annual rate must be in [0, 1), got %s", ErrInvalidInput, t.AnnualRate)
	}
	if t.TermMonths <= 0 {
		return fmt.Errorf("%w: term months must be positive, got %d", ErrInvalidInput, t.TermMonths)
	}
	return nil
}
