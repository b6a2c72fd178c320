package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/service"
)

// CalculatePropertyMetricsUseCase underwrites a single property carrying the
// whole loan. It uses the same payment and coverage functions as the
// allocation engine.
type CalculatePropertyMetricsUseCase struct {
	amortization *service.AmortizationEngine
	dscr         *service.DSCRCalculator
	scorer       *service.RiskScorer
	defaultDSCR  decimal.Decimal
}

// NewCalculatePropertyMetricsUseCase wires dependencies.
func NewCalculatePropertyMetricsUseCase(
	amortization *service.AmortizationEngine,
	dscr *service.DSCRCalculator,
	scorer *service.RiskScorer,
	defaultMinDSCR decimal.Decimal,
) *CalculatePropertyMetricsUseCase {
	return &CalculatePropertyMetricsUseCase{
		amortization: amortization,
		dscr:         dscr,
		scorer:       scorer,
		defaultDSCR:  defaultMinDSCR,
	}
}

// Execute computes payment, coverage, leverage and risk for one property.
func (uc *CalculatePropertyMetricsUseCase) Execute(
	_ context.Context,
	req dto.PropertyMetricsRequest,
) (dto.PropertyMetricsResponse, error) {
	currency, err := parseCurrency(req.Loan.Currency)
	if err != nil {
		return dto.PropertyMetricsResponse{}, err
	}

	loan := toLoanTerms(req.Loan)
	if err := loan.Validate(); err != nil {
		return dto.PropertyMetricsResponse{}, fmt.Errorf("validate loan: %w", err)
	}
	property, err := toPropertyFinancials(req.Property)
	if err != nil {
		return dto.PropertyMetricsResponse{}, err
	}
	if err := property.Validate(); err != nil {
		return dto.PropertyMetricsResponse{}, fmt.Errorf("validate property: %w", err)
	}

	minDSCR := req.MinDSCR
	if minDSCR.IsZero() {
		minDSCR = uc.defaultDSCR
	}
	if !minDSCR.IsPositive() {
		return dto.PropertyMetricsResponse{}, fmt.Errorf("%w: min DSCR must be positive, got %s", model.ErrInvalidInput, minDSCR)
	}

	payment, err := uc.amortization.MonthlyPayment(loan.Principal, loan.AnnualRate, loan.TermMonths)
	if err != nil {
		return dto.PropertyMetricsResponse{}, fmt.Errorf("monthly payment: %w", err)
	}

	noi := property.NOI()
	ratio := uc.dscr.Calculate(noi, payment)
	ltv := loan.Principal.DivRound(property.AppraisedValue, 4)
	score, tier := uc.scorer.Score(ratio, ltv)

	maxSupportable := decimal.Zero
	if noi.IsPositive() {
		maxSupportable, err = uc.amortization.MaxPrincipal(noi.Div(minDSCR), loan.AnnualRate, loan.TermMonths)
		if err != nil {
			return dto.PropertyMetricsResponse{}, fmt.Errorf("max principal: %w", err)
		}
	}

	resp := dto.PropertyMetricsResponse{
		PropertyID:              property.PropertyID,
		Currency:                currency.Code(),
		Principal:               loan.Principal,
		MonthlyDebtService:      payment,
		NOI:                     noi,
		DSCR:                    ratio.String(),
		MeetsMinDSCR:            ratio.AtLeast(minDSCR),
		MaxSupportablePrincipal: maxSupportable,
		LTV:                     ltv,
		RiskScore:               score,
		RiskTier:                tier.String(),
	}

	if req.IncludeSchedule {
		start := req.StartDate
		if start.IsZero() {
			start = time.Now().UTC().Truncate(24 * time.Hour)
		}
		schedule, err := uc.amortization.GenerateSchedule(loan.Principal, loan.AnnualRate, loan.TermMonths, start)
		if err != nil {
			return dto.PropertyMetricsResponse{}, fmt.Errorf("generate schedule: %w", err)
		}
		resp.Schedule = toScheduleResponse(schedule)
		totalInterest := schedule.TotalInterest()
		resp.TotalInterest = &totalInterest
	}

	return resp, nil
}
