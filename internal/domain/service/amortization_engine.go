package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/pkg/money"
)

// ---------------------------------------------------------------------------
// AmortizationEngine – level-payment mathematics
// ---------------------------------------------------------------------------

// factorPlaces is the working precision of intermediate rate arithmetic.
// Only the final payment is rounded to cents.
const factorPlaces int32 = 24

var (
	one           = decimal.NewFromInt(1)
	monthsPerYear = decimal.NewFromInt(12)

	// Largest raw payment that still rounds down to the target cent.
	belowHalfCent = decimal.RequireFromString("0.0049")
)

// AmortizationEngine computes fixed monthly installments and their inverse.
type AmortizationEngine struct{}

// NewAmortizationEngine returns a new engine instance.
func NewAmortizationEngine() *AmortizationEngine {
	return &AmortizationEngine{}
}

// MonthlyPayment returns the level monthly installment that retires principal
// over termMonths at annualRate (a fraction):
//
//	r       = annualRate / 12
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate yields P / n. The result is rounded half-to-even to cents.
func (e *AmortizationEngine) MonthlyPayment(
	principal decimal.Decimal,
	annualRate decimal.Decimal,
	termMonths int,
) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, fmt.Errorf("%w: term months must be positive, got %d", model.ErrInvalidTerm, termMonths)
	}
	if principal.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: principal must not be negative, got %s", model.ErrInvalidInput, principal)
	}
	if annualRate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: annual rate must not be negative, got %s", model.ErrInvalidInput, annualRate)
	}
	if principal.IsZero() {
		return decimal.Zero, nil
	}

	if annualRate.IsZero() {
		n := decimal.NewFromInt(int64(termMonths))
		return money.RoundCents(principal.DivRound(n, factorPlaces)), nil
	}

	factor := paymentFactor(annualRate, termMonths)
	return money.RoundCents(principal.Mul(factor)), nil
}

// PaymentFactor returns the unrounded monthly payment per unit of principal.
func (e *AmortizationEngine) PaymentFactor(annualRate decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, fmt.Errorf("%w: term months must be positive, got %d", model.ErrInvalidTerm, termMonths)
	}
	if annualRate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: annual rate must not be negative, got %s", model.ErrInvalidInput, annualRate)
	}
	if annualRate.IsZero() {
		return one.DivRound(decimal.NewFromInt(int64(termMonths)), factorPlaces), nil
	}
	return paymentFactor(annualRate, termMonths), nil
}

// MaxPrincipal inverts MonthlyPayment: it returns the largest whole-cent
// principal (within a cent or two) whose rounded installment does not exceed
// payment. A non-positive payment supports no principal.
func (e *AmortizationEngine) MaxPrincipal(
	payment decimal.Decimal,
	annualRate decimal.Decimal,
	termMonths int,
) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, fmt.Errorf("%w: term months must be positive, got %d", model.ErrInvalidTerm, termMonths)
	}
	if annualRate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: annual rate must not be negative, got %s", model.ErrInvalidInput, annualRate)
	}

	target := money.FloorCents(payment)
	if !target.IsPositive() {
		return decimal.Zero, nil
	}

	ceiling := target.Add(belowHalfCent)
	var principal decimal.Decimal
	if annualRate.IsZero() {
		principal = ceiling.Mul(decimal.NewFromInt(int64(termMonths)))
	} else {
		principal = ceiling.DivRound(paymentFactor(annualRate, termMonths), factorPlaces)
	}
	principal = money.FloorCents(principal)

	// The closed form lands on the boundary; step down past any cent that
	// still rounds above target.
	for principal.IsPositive() {
		p, err := e.MonthlyPayment(principal, annualRate, termMonths)
		if err != nil {
			return decimal.Zero, err
		}
		if p.LessThanOrEqual(target) {
			break
		}
		principal = principal.Sub(money.Cent)
	}
	return decimal.Max(principal, decimal.Zero), nil
}

// GenerateSchedule computes a standard fixed-payment amortization schedule.
// The first installment is due one month after startDate and the final
// installment absorbs rounding so the balance reaches exactly zero.
func (e *AmortizationEngine) GenerateSchedule(
	principal decimal.Decimal,
	annualRate decimal.Decimal,
	termMonths int,
	startDate time.Time,
) (model.AmortizationSchedule, error) {
	payment, err := e.MonthlyPayment(principal, annualRate, termMonths)
	if err != nil {
		return nil, err
	}
	if principal.IsZero() {
		return model.AmortizationSchedule{}, nil
	}

	monthlyRate := annualRate.DivRound(monthsPerYear, factorPlaces)
	schedule := make(model.AmortizationSchedule, 0, termMonths)
	remaining := principal

	for period := 1; period <= termMonths; period++ {
		interest := money.RoundCents(remaining.Mul(monthlyRate))
		principalPart := payment.Sub(interest)

		// Last period: adjust for rounding so balance reaches exactly zero.
		if period == termMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, model.AmortizationEntry{
			Period:           period,
			DueDate:          startDate.AddDate(0, period, 0),
			Principal:        principalPart,
			Interest:         interest,
			Total:            principalPart.Add(interest),
			RemainingBalance: remaining,
		})

		if remaining.IsZero() {
			break
		}
	}

	return schedule, nil
}

// paymentFactor evaluates r(1+r)^n / ((1+r)^n - 1) for a positive annual rate.
func paymentFactor(annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	r := annualRate.DivRound(monthsPerYear, factorPlaces)
	growth := compound(one.Add(r), termMonths)
	return r.Mul(growth).DivRound(growth.Sub(one), factorPlaces)
}

// compound raises base to a non-negative integer power by repeated squaring,
// holding factorPlaces of precision after every multiplication.
func compound(base decimal.Decimal, exp int) decimal.Decimal {
	result := one
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(factorPlaces)
		}
		base = base.Mul(base).Round(factorPlaces)
		exp >>= 1
	}
	return result
}
