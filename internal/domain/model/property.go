package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// PropertyFinancials carries the monthly income and carrying costs of one
// collateral property. All currency fields are monthly except AppraisedValue.
type PropertyFinancials struct {
	PropertyID            string
	MonthlyGrossRent      decimal.Decimal
	MonthlyOtherIncome    decimal.Decimal
	MonthlyTaxes          decimal.Decimal
	MonthlyInsurance      decimal.Decimal
	MonthlyHOA            decimal.Decimal
	MonthlyFloodInsurance decimal.Decimal
	AppraisedValue        decimal.Decimal
	WeightBasis           valueobject.WeightBasis
}

// NOI returns the monthly net operating income. It is negative for a
// non-performing property.
func (p PropertyFinancials) NOI() decimal.Decimal {
	return p.MonthlyGrossRent.
		Add(p.MonthlyOtherIncome).
		Sub(p.MonthlyTaxes).
		Sub(p.MonthlyInsurance).
		Sub(p.MonthlyHOA).
		Sub(p.MonthlyFloodInsurance)
}

// Basis returns the weight basis, defaulting to BY_VALUE when unset.
func (p PropertyFinancials) Basis() valueobject.WeightBasis {
	if p.WeightBasis.IsZero() {
		return valueobject.WeightBasisByValue
	}
	return p.WeightBasis
}

// Validate checks identifiers, sign constraints and the weight basis of a
// single property. An unset basis is valid and resolves through Basis.
func (p PropertyFinancials) Validate() error {
	if p.PropertyID == "" {
		return fmt.Errorf("%w: property ID is required", ErrInvalidInput)
	}
	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"monthly gross rent", p.MonthlyGrossRent},
		{"monthly other income", p.MonthlyOtherIncome},
		{"monthly taxes", p.MonthlyTaxes},
		{"monthly insurance", p.MonthlyInsurance},
		{"monthly HOA", p.MonthlyHOA},
		{"monthly flood insurance", p.MonthlyFloodInsurance},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return fmt.Errorf("%w: property %s: %s must not be negative", ErrInvalidInput, p.PropertyID, a.name)
		}
	}
	if !p.AppraisedValue.IsPositive() {
		return fmt.Errorf("%w: property %s: appraised value must be positive, got %s",
			ErrInvalidInput, p.PropertyID, p.AppraisedValue)
	}
	if !p.WeightBasis.IsKnown() {
		return fmt.Errorf("%w: property %s: unknown weight basis %q",
			ErrInvalidInput, p.PropertyID, p.WeightBasis)
	}
	return nil
}
