package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

const maxRequestBytes = 1 << 20

// AllocationHandler exposes blanket allocation operations over HTTP.
type AllocationHandler struct {
	allocate *usecase.AllocateBlanketLoanUseCase
	get      *usecase.GetAllocationUseCase
	metrics  *usecase.CalculatePropertyMetricsUseCase
	logger   *slog.Logger
}

// NewAllocationHandler creates a new handler with all use-case dependencies.
func NewAllocationHandler(
	allocate *usecase.AllocateBlanketLoanUseCase,
	get *usecase.GetAllocationUseCase,
	metrics *usecase.CalculatePropertyMetricsUseCase,
	logger *slog.Logger,
) *AllocationHandler {
	return &AllocationHandler{
		allocate: allocate,
		get:      get,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterRoutes attaches the allocation routes to the given mux.
func (h *AllocationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/allocations", h.createAllocation)
	mux.HandleFunc("GET /v1/allocations/{id}", h.getAllocation)
	mux.HandleFunc("POST /v1/property-metrics", h.propertyMetrics)
}

func (h *AllocationHandler) createAllocation(w http.ResponseWriter, r *http.Request) {
	var req dto.AllocateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.allocate.Execute(r.Context(), req)
	if err != nil {
		h.writeUseCaseError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AllocationHandler) getAllocation(w http.ResponseWriter, r *http.Request) {
	resp, err := h.get.Execute(r.Context(), dto.GetAllocationRequest{AllocationID: r.PathValue("id")})
	if err != nil {
		h.writeUseCaseError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AllocationHandler) propertyMetrics(w http.ResponseWriter, r *http.Request) {
	var req dto.PropertyMetricsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.metrics.Execute(r.Context(), req)
	if err != nil {
		h.writeUseCaseError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeUseCaseError maps domain errors to HTTP status codes. Internal errors
// are logged and returned without detail.
func (h *AllocationHandler) writeUseCaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidTerm):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, port.ErrAllocationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.ErrorContext(ctx, "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
