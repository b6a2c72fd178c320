package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// AllocationRepo is an in-process port.AllocationRepository used when no
// database is configured. Stored allocations do not survive a restart.
type AllocationRepo struct {
	mu          sync.RWMutex
	allocations map[string]*model.BlanketAllocation
}

// NewAllocationRepo creates an empty repository.
func NewAllocationRepo() *AllocationRepo {
	return &AllocationRepo{allocations: make(map[string]*model.BlanketAllocation)}
}

// Save stores a copy of the allocation without its pending events.
func (r *AllocationRepo) Save(_ context.Context, a *model.BlanketAllocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.allocations[a.ID()]; exists {
		return fmt.Errorf("allocation %s already exists", a.ID())
	}
	r.allocations[a.ID()] = snapshot(a)
	return nil
}

// FindByID returns a copy of the stored allocation.
func (r *AllocationRepo) FindByID(_ context.Context, id string) (*model.BlanketAllocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.allocations[id]
	if !ok {
		return nil, port.ErrAllocationNotFound
	}
	return snapshot(a), nil
}

func snapshot(a *model.BlanketAllocation) *model.BlanketAllocation {
	result := a.Result()
	result.Allocations = append([]model.PropertyAllocation(nil), result.Allocations...)
	return model.ReconstructBlanketAllocation(
		a.ID(), a.Currency(), a.Loan(), a.Constraints(), result, a.CreatedAt(),
	)
}
