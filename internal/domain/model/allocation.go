package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/events"
	"github.com/bibbank/underwriting/pkg/money"
)

// PropertyAllocation is the per-property slice of a blanket allocation
// together with its underwriting metrics.
type PropertyAllocation struct {
	PropertyID              string
	AllocatedPrincipal      decimal.Decimal
	MonthlyDebtService      decimal.Decimal
	NOI                     decimal.Decimal
	MaxSupportablePrincipal decimal.Decimal
	DSCR                    valueobject.DSCR
	LTV                     decimal.Decimal
	RiskScore               int
	RiskTier                valueobject.RiskTier
}

// AllocationResult is the outcome of one allocation run. Allocations are in
// the same order as the input properties.
type AllocationResult struct {
	Allocations           []PropertyAllocation
	TotalAllocated        decimal.Decimal
	Feasible              bool
	IterationsUsed        int
	ShortfallAmount       decimal.Decimal
	AdditionalNOIRequired decimal.Decimal
	Outcome               valueobject.AllocationOutcome
}

// ---------------------------------------------------------------------------
// BlanketAllocation aggregate root
// ---------------------------------------------------------------------------

// BlanketAllocation records one completed allocation run for the host
// application. It is immutable once created.
type BlanketAllocation struct {
	events.EventCollector
	id          string
	currency    money.Currency
	loan        LoanTerms
	constraints AllocationConstraints
	result      AllocationResult
	createdAt   time.Time
}

// NewBlanketAllocation wraps an engine result in a new aggregate and records
// the matching domain event.
func NewBlanketAllocation(
	currency money.Currency,
	loan LoanTerms,
	constraints AllocationConstraints,
	result AllocationResult,
	now time.Time,
) (*BlanketAllocation, error) {
	if currency.IsZero() {
		return nil, errors.New("allocation currency is required")
	}
	if result.Outcome.IsZero() {
		return nil, errors.New("allocation result has no outcome")
	}

	a := &BlanketAllocation{
		id:          uuid.New().String(),
		currency:    currency,
		loan:        loan,
		constraints: constraints,
		result:      result,
		createdAt:   now,
	}

	if result.Feasible {
		a.Record(event.NewAllocationCompleted(
			a.id, loan.Principal, result.TotalAllocated,
			len(result.Allocations), result.IterationsUsed,
		))
	} else {
		a.Record(event.NewAllocationInfeasible(
			a.id, loan.Principal, result.Outcome.String(),
			result.ShortfallAmount, result.AdditionalNOIRequired,
			len(result.Allocations), result.IterationsUsed,
		))
	}
	return a, nil
}

// ReconstructBlanketAllocation rebuilds an aggregate from persistence without side-effects.
func ReconstructBlanketAllocation(
	id string,
	currency money.Currency,
	loan LoanTerms,
	constraints AllocationConstraints,
	result AllocationResult,
	createdAt time.Time,
) *BlanketAllocation {
	return &BlanketAllocation{
		id:          id,
		currency:    currency,
		loan:        loan,
		constraints: constraints,
		result:      result,
		createdAt:   createdAt,
	}
}

func (a *BlanketAllocation) ID() string                         { return a.id }
func (a *BlanketAllocation) Currency() money.Currency           { return a.currency }
func (a *BlanketAllocation) Loan() LoanTerms                    { return a.loan }
func (a *BlanketAllocation) Constraints() AllocationConstraints { return a.constraints }
func (a *BlanketAllocation) Result() AllocationResult           { return a.result }
func (a *BlanketAllocation) CreatedAt() time.Time               { return a.createdAt }
