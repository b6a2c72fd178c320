package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// Compile-time assertion that BlanketLoanHandler implements BlanketLoanServiceServer.
var _ BlanketLoanServiceServer = (*BlanketLoanHandler)(nil)

// BlanketLoanHandler implements the gRPC BlanketLoanService server.
type BlanketLoanHandler struct {
	UnimplementedBlanketLoanServiceServer
	allocate *usecase.AllocateBlanketLoanUseCase
	get      *usecase.GetAllocationUseCase
	metrics  *usecase.CalculatePropertyMetricsUseCase

	logger *slog.Logger
}

// NewBlanketLoanHandler creates a new handler with all use-case dependencies.
func NewBlanketLoanHandler(
	allocate *usecase.AllocateBlanketLoanUseCase,
	get *usecase.GetAllocationUseCase,
	metrics *usecase.CalculatePropertyMetricsUseCase,
	logger *slog.Logger,
) *BlanketLoanHandler {
	return &BlanketLoanHandler{
		allocate: allocate,
		get:      get,
		metrics:  metrics,
		logger:   logger,
	}
}

// Allocate splits a blanket loan across its collateral properties.
func (h *BlanketLoanHandler) Allocate(ctx context.Context, req *AllocateRequest) (*AllocationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	resp, err := h.allocate.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "Allocate", err)
	}
	return &resp, nil
}

// GetAllocation retrieves a stored allocation by ID.
func (h *BlanketLoanHandler) GetAllocation(ctx context.Context, req *GetAllocationRequest) (*AllocationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	resp, err := h.get.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "GetAllocation", err)
	}
	return &resp, nil
}

// CalculatePropertyMetrics underwrites a single property.
func (h *BlanketLoanHandler) CalculatePropertyMetrics(ctx context.Context, req *PropertyMetricsRequest) (*PropertyMetricsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	resp, err := h.metrics.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "CalculatePropertyMetrics", err)
	}
	return &resp, nil
}

// toStatus maps domain errors to gRPC status codes. Internal errors are
// logged and returned without detail.
func (h *BlanketLoanHandler) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidTerm):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, port.ErrAllocationNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		h.logger.ErrorContext(ctx, "request failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
