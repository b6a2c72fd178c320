package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// ConstraintDefaults fill constraint fields a request leaves at zero.
type ConstraintDefaults struct {
	MinDSCR              decimal.Decimal
	MaxLTVPerProperty    decimal.Decimal
	MaxIterations        int
	ConvergenceTolerance decimal.Decimal
}

func (d ConstraintDefaults) apply(c dto.ConstraintsRequest) dto.ConstraintsRequest {
	if c.MinDSCR.IsZero() {
		c.MinDSCR = d.MinDSCR
	}
	if c.MaxLTVPerProperty.IsZero() {
		c.MaxLTVPerProperty = d.MaxLTVPerProperty
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.ConvergenceTolerance.IsZero() {
		c.ConvergenceTolerance = d.ConvergenceTolerance
	}
	return c
}

func parseCurrency(code string) (money.Currency, error) {
	if code == "" {
		return money.USD, nil
	}
	c, err := money.NewCurrency(code)
	if err != nil {
		return money.Currency{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	return c, nil
}

func toLoanTerms(req dto.LoanTermsRequest) model.LoanTerms {
	return model.LoanTerms{
		Principal:  req.Principal,
		AnnualRate: req.AnnualRate,
		TermMonths: req.TermMonths,
	}
}

func toPropertyFinancials(req dto.PropertyRequest) (model.PropertyFinancials, error) {
	basis, err := valueobject.NewWeightBasis(req.WeightBasis)
	if err != nil {
		return model.PropertyFinancials{}, fmt.Errorf("%w: property %s: %v", model.ErrInvalidInput, req.PropertyID, err)
	}
	return model.PropertyFinancials{
		PropertyID:            req.PropertyID,
		MonthlyGrossRent:      req.MonthlyGrossRent,
		MonthlyOtherIncome:    req.MonthlyOtherIncome,
		MonthlyTaxes:          req.MonthlyTaxes,
		MonthlyInsurance:      req.MonthlyInsurance,
		MonthlyHOA:            req.MonthlyHOA,
		MonthlyFloodInsurance: req.MonthlyFloodInsurance,
		AppraisedValue:        req.AppraisedValue,
		WeightBasis:           basis,
	}, nil
}

func toConstraints(req dto.ConstraintsRequest) model.AllocationConstraints {
	return model.AllocationConstraints{
		MinDSCR:              req.MinDSCR,
		MaxLTVPerProperty:    req.MaxLTVPerProperty,
		MinAllocationFloor:   req.MinAllocationFloor,
		MaxIterations:        req.MaxIterations,
		ConvergenceTolerance: req.ConvergenceTolerance,
	}
}

func toAllocationResponse(a *model.BlanketAllocation) dto.AllocationResponse {
	result := a.Result()
	allocations := make([]dto.PropertyAllocationResponse, 0, len(result.Allocations))
	for _, pa := range result.Allocations {
		allocations = append(allocations, dto.PropertyAllocationResponse{
			PropertyID:              pa.PropertyID,
			AllocatedPrincipal:      pa.AllocatedPrincipal,
			MonthlyDebtService:      pa.MonthlyDebtService,
			NOI:                     pa.NOI,
			MaxSupportablePrincipal: pa.MaxSupportablePrincipal,
			DSCR:                    pa.DSCR.String(),
			LTV:                     pa.LTV,
			RiskScore:               pa.RiskScore,
			RiskTier:                pa.RiskTier.String(),
		})
	}

	return dto.AllocationResponse{
		ID:                    a.ID(),
		Currency:              a.Currency().Code(),
		Principal:             a.Loan().Principal,
		AnnualRate:            a.Loan().AnnualRate,
		TermMonths:            a.Loan().TermMonths,
		MinDSCR:               a.Constraints().MinDSCR,
		Feasible:              result.Feasible,
		Outcome:               result.Outcome.String(),
		IterationsUsed:        result.IterationsUsed,
		TotalAllocated:        result.TotalAllocated,
		ShortfallAmount:       result.ShortfallAmount,
		AdditionalNOIRequired: result.AdditionalNOIRequired,
		Allocations:           allocations,
		CreatedAt:             a.CreatedAt(),
	}
}

func toScheduleResponse(entries model.AmortizationSchedule) []dto.AmortizationEntryResponse {
	out := make([]dto.AmortizationEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AmortizationEntryResponse{
			Period:           e.Period,
			DueDate:          e.DueDate,
			Principal:        e.Principal,
			Interest:         e.Interest,
			Total:            e.Total,
			RemainingBalance: e.RemainingBalance,
		})
	}
	return out
}
