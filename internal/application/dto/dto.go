package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// LoanTermsRequest carries the blanket loan being split. AnnualRate is a
// fraction (0.075 for 7.5%). Currency defaults to USD.
type LoanTermsRequest struct {
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermMonths int             `json:"term_months"`
	Currency   string          `json:"currency,omitempty"`
}

// PropertyRequest carries the monthly financials of one collateral property.
type PropertyRequest struct {
	PropertyID            string          `json:"property_id"`
	MonthlyGrossRent      decimal.Decimal `json:"monthly_gross_rent"`
	MonthlyOtherIncome    decimal.Decimal `json:"monthly_other_income"`
	MonthlyTaxes          decimal.Decimal `json:"monthly_taxes"`
	MonthlyInsurance      decimal.Decimal `json:"monthly_insurance"`
	MonthlyHOA            decimal.Decimal `json:"monthly_hoa"`
	MonthlyFloodInsurance decimal.Decimal `json:"monthly_flood_insurance"`
	AppraisedValue        decimal.Decimal `json:"appraised_value"`
	WeightBasis           string          `json:"weight_basis,omitempty"`
}

// ConstraintsRequest carries the allocation constraints. Zero fields fall
// back to the service defaults.
type ConstraintsRequest struct {
	MinDSCR              decimal.Decimal `json:"min_dscr"`
	MaxLTVPerProperty    decimal.Decimal `json:"max_ltv_per_property"`
	MinAllocationFloor   decimal.Decimal `json:"min_allocation_floor"`
	MaxIterations        int             `json:"max_iterations"`
	ConvergenceTolerance decimal.Decimal `json:"convergence_tolerance"`
}

// AllocateRequest asks for one blanket allocation run.
type AllocateRequest struct {
	Loan        LoanTermsRequest   `json:"loan"`
	Properties  []PropertyRequest  `json:"properties"`
	Constraints ConstraintsRequest `json:"constraints"`
}

// GetAllocationRequest identifies a stored allocation.
type GetAllocationRequest struct {
	AllocationID string `json:"allocation_id"`
}

// PropertyMetricsRequest asks for the metrics of a single property carrying
// the whole loan.
type PropertyMetricsRequest struct {
	Loan            LoanTermsRequest `json:"loan"`
	Property        PropertyRequest  `json:"property"`
	MinDSCR         decimal.Decimal  `json:"min_dscr"`
	IncludeSchedule bool             `json:"include_schedule"`
	StartDate       time.Time        `json:"start_date,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// PropertyAllocationResponse is the external representation of one property's
// share of a blanket loan. DSCR is a fixed four-place string or "UNCAPPED".
type PropertyAllocationResponse struct {
	PropertyID              string          `json:"property_id"`
	AllocatedPrincipal      decimal.Decimal `json:"allocated_principal"`
	MonthlyDebtService      decimal.Decimal `json:"monthly_debt_service"`
	NOI                     decimal.Decimal `json:"noi"`
	MaxSupportablePrincipal decimal.Decimal `json:"max_supportable_principal"`
	DSCR                    string          `json:"dscr"`
	LTV                     decimal.Decimal `json:"ltv"`
	RiskScore               int             `json:"risk_score"`
	RiskTier                string          `json:"risk_tier"`
}

// AllocationResponse is the external representation of an allocation run.
type AllocationResponse struct {
	ID                    string                       `json:"id"`
	Currency              string                       `json:"currency"`
	Principal             decimal.Decimal              `json:"principal"`
	AnnualRate            decimal.Decimal              `json:"annual_rate"`
	TermMonths            int                          `json:"term_months"`
	MinDSCR               decimal.Decimal              `json:"min_dscr"`
	Feasible              bool                         `json:"feasible"`
	Outcome               string                       `json:"outcome"`
	IterationsUsed        int                          `json:"iterations_used"`
	TotalAllocated        decimal.Decimal              `json:"total_allocated"`
	ShortfallAmount       decimal.Decimal              `json:"shortfall_amount"`
	AdditionalNOIRequired decimal.Decimal              `json:"additional_noi_required"`
	Allocations           []PropertyAllocationResponse `json:"allocations"`
	CreatedAt             time.Time                    `json:"created_at"`
}

// AmortizationEntryResponse represents a single amortization schedule entry.
type AmortizationEntryResponse struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// PropertyMetricsResponse is the single-property underwriting view.
type PropertyMetricsResponse struct {
	PropertyID              string                      `json:"property_id"`
	Currency                string                      `json:"currency"`
	Principal               decimal.Decimal             `json:"principal"`
	MonthlyDebtService      decimal.Decimal             `json:"monthly_debt_service"`
	NOI                     decimal.Decimal             `json:"noi"`
	DSCR                    string                      `json:"dscr"`
	MeetsMinDSCR            bool                        `json:"meets_min_dscr"`
	MaxSupportablePrincipal decimal.Decimal             `json:"max_supportable_principal"`
	LTV                     decimal.Decimal             `json:"ltv"`
	RiskScore               int                         `json:"risk_score"`
	RiskTier                string                      `json:"risk_tier"`
	Schedule                []AmortizationEntryResponse `json:"schedule,omitempty"`
	TotalInterest           *decimal.Decimal            `json:"total_interest,omitempty"`
}
