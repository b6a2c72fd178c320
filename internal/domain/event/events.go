package event

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const aggregateType = "BlanketAllocation"

// Event type names.
const (
	TypeAllocationCompleted  = "blanket.allocation.completed"
	TypeAllocationInfeasible = "blanket.allocation.infeasible"
)

// ---------------------------------------------------------------------------
// Blanket Allocation Events
// ---------------------------------------------------------------------------

// AllocationCompleted is raised when every property clears the minimum DSCR.
type AllocationCompleted struct {
	events.BaseEvent
	Principal      decimal.Decimal `json:"principal"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	PropertyCount  int             `json:"property_count"`
	IterationsUsed int             `json:"iterations_used"`
}

func NewAllocationCompleted(
	allocationID string,
	principal, totalAllocated decimal.Decimal,
	propertyCount, iterationsUsed int,
) AllocationCompleted {
	return AllocationCompleted{
		BaseEvent:      events.NewBaseEvent(TypeAllocationCompleted, allocationID, aggregateType),
		Principal:      principal,
		TotalAllocated: totalAllocated,
		PropertyCount:  propertyCount,
		IterationsUsed: iterationsUsed,
	}
}

// AllocationInfeasible is raised when the allocation could not satisfy the
// minimum DSCR on every property, either because no surplus remained or
// because the iteration bound was reached.
type AllocationInfeasible struct {
	events.BaseEvent
	Principal             decimal.Decimal `json:"principal"`
	Outcome               string          `json:"outcome"`
	ShortfallAmount       decimal.Decimal `json:"shortfall_amount"`
	AdditionalNOIRequired decimal.Decimal `json:"additional_noi_required"`
	PropertyCount         int             `json:"property_count"`
	IterationsUsed        int             `json:"iterations_used"`
}

func NewAllocationInfeasible(
	allocationID string,
	principal decimal.Decimal,
	outcome string,
	shortfall, additionalNOI decimal.Decimal,
	propertyCount, iterationsUsed int,
) AllocationInfeasible {
	return AllocationInfeasible{
		BaseEvent:             events.NewBaseEvent(TypeAllocationInfeasible, allocationID, aggregateType),
		Principal:             principal,
		Outcome:               outcome,
		ShortfallAmount:       shortfall,
		AdditionalNOIRequired: additionalNOI,
		PropertyCount:         propertyCount,
		IterationsUsed:        iterationsUsed,
	}
}
