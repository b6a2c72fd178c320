package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// GetAllocationUseCase retrieves a stored allocation by ID.
type GetAllocationUseCase struct {
	repo port.AllocationRepository
}

// NewGetAllocationUseCase wires dependencies.
func NewGetAllocationUseCase(repo port.AllocationRepository) *GetAllocationUseCase {
	return &GetAllocationUseCase{repo: repo}
}

// Execute returns the allocation response for the given ID.
func (uc *GetAllocationUseCase) Execute(
	ctx context.Context,
	req dto.GetAllocationRequest,
) (dto.AllocationResponse, error) {
	if req.AllocationID == "" {
		return dto.AllocationResponse{}, fmt.Errorf("%w: allocation ID is required", model.ErrInvalidInput)
	}
	allocation, err := uc.repo.FindByID(ctx, req.AllocationID)
	if err != nil {
		return dto.AllocationResponse{}, fmt.Errorf("find allocation: %w", err)
	}
	return toAllocationResponse(allocation), nil
}
