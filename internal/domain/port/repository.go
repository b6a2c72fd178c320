package port

import (
	"context"
	"errors"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/model"
)

// ErrAllocationNotFound is returned when no allocation exists for an ID.
var ErrAllocationNotFound = errors.New("allocation not found")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// AllocationRepository persists and retrieves blanket allocations.
type AllocationRepository interface {
	Save(ctx context.Context, allocation *model.BlanketAllocation) error
	FindByID(ctx context.Context, id string) (*model.BlanketAllocation, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Cache port
// ---------------------------------------------------------------------------

// ResultCache stores serialised responses keyed by request fingerprint.
// Get reports found=false on a miss; errors are reserved for backend failures.
type ResultCache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
