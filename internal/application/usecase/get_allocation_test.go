package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

func TestGetAllocationUseCase_Execute(t *testing.T) {
	t.Run("successfully retrieves an allocation", func(t *testing.T) {
		now := time.Now().UTC()
		stored := model.ReconstructBlanketAllocation(
			"alloc-001", money.EUR,
			model.LoanTerms{Principal: decimal.NewFromInt(500000), AnnualRate: decimal.RequireFromString("0.06"), TermMonths: 300},
			model.AllocationConstraints{MinDSCR: decimal.RequireFromString("1.25")},
			model.AllocationResult{
				Allocations: []model.PropertyAllocation{{
					PropertyID:         "p-1",
					AllocatedPrincipal: decimal.NewFromInt(500000),
					DSCR:               valueobject.UncappedDSCR,
					RiskTier:           valueobject.RiskTierLow,
					RiskScore:          100,
				}},
				TotalAllocated: decimal.NewFromInt(500000),
				Feasible:       true,
				IterationsUsed: 1,
				Outcome:        valueobject.AllocationOutcomeFeasible,
			},
			now,
		)

		repo := &mockAllocationRepository{
			findByIDFunc: func(_ context.Context, id string) (*model.BlanketAllocation, error) {
				assert.Equal(t, "alloc-001", id)
				return stored, nil
			},
		}

		uc := usecase.NewGetAllocationUseCase(repo)
		resp, err := uc.Execute(context.Background(), dto.GetAllocationRequest{AllocationID: "alloc-001"})

		require.NoError(t, err)
		assert.Equal(t, "alloc-001", resp.ID)
		assert.Equal(t, "EUR", resp.Currency)
		assert.Equal(t, 300, resp.TermMonths)
		assert.Equal(t, "FEASIBLE", resp.Outcome)
		require.Len(t, resp.Allocations, 1)
		assert.Equal(t, "UNCAPPED", resp.Allocations[0].DSCR)
		assert.Equal(t, "LOW", resp.Allocations[0].RiskTier)
		assert.Equal(t, now, resp.CreatedAt)
	})

	t.Run("fails when allocation not found", func(t *testing.T) {
		uc := usecase.NewGetAllocationUseCase(&mockAllocationRepository{})

		_, err := uc.Execute(context.Background(), dto.GetAllocationRequest{AllocationID: "missing"})

		require.Error(t, err)
		assert.ErrorIs(t, err, port.ErrAllocationNotFound)
		assert.Contains(t, err.Error(), "find allocation")
	})

	t.Run("rejects empty allocation ID", func(t *testing.T) {
		repo := &mockAllocationRepository{
			findByIDFunc: func(context.Context, string) (*model.BlanketAllocation, error) {
				t.Fatal("repository must not be called")
				return nil, nil
			},
		}
		uc := usecase.NewGetAllocationUseCase(repo)

		_, err := uc.Execute(context.Background(), dto.GetAllocationRequest{})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}
