package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/pkg/money"
	"github.com/bibbank/underwriting/pkg/observability"
)

var tracer = otel.Tracer("github.com/bibbank/underwriting/internal/application/usecase")

// AllocateBlanketLoanUseCase runs the allocation engine for a request and
// records the outcome.
type AllocateBlanketLoanUseCase struct {
	repo      port.AllocationRepository
	publisher port.EventPublisher
	cache     port.ResultCache
	engine    *service.BlanketAllocationEngine
	metrics   *observability.AllocationMetrics
	defaults  ConstraintDefaults
	logger    *slog.Logger
}

// NewAllocateBlanketLoanUseCase wires dependencies. cache and metrics may be nil.
func NewAllocateBlanketLoanUseCase(
	repo port.AllocationRepository,
	publisher port.EventPublisher,
	cache port.ResultCache,
	engine *service.BlanketAllocationEngine,
	metrics *observability.AllocationMetrics,
	defaults ConstraintDefaults,
	logger *slog.Logger,
) *AllocateBlanketLoanUseCase {
	return &AllocateBlanketLoanUseCase{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		engine:    engine,
		metrics:   metrics,
		defaults:  defaults,
		logger:    logger,
	}
}

// Execute allocates the loan, persists the allocation and publishes its event.
// An identical request seen before is answered from the result cache.
func (uc *AllocateBlanketLoanUseCase) Execute(
	ctx context.Context,
	req dto.AllocateRequest,
) (dto.AllocationResponse, error) {
	ctx, span := tracer.Start(ctx, "AllocateBlanketLoan")
	defer span.End()
	span.SetAttributes(attribute.Int("properties", len(req.Properties)))

	resp, err := uc.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "allocation failed")
		return resp, err
	}
	span.SetAttributes(
		attribute.String("allocation_id", resp.ID),
		attribute.String("outcome", resp.Outcome),
		attribute.Int("iterations_used", resp.IterationsUsed),
	)
	return resp, nil
}

func (uc *AllocateBlanketLoanUseCase) execute(
	ctx context.Context,
	req dto.AllocateRequest,
) (dto.AllocationResponse, error) {
	// 1. Normalise and translate the request.
	currency, err := parseCurrency(req.Loan.Currency)
	if err != nil {
		return dto.AllocationResponse{}, err
	}
	req.Loan.Currency = currency.Code()
	req.Constraints = uc.defaults.apply(req.Constraints)

	loan := toLoanTerms(req.Loan)
	constraints := toConstraints(req.Constraints)
	properties := make([]model.PropertyFinancials, 0, len(req.Properties))
	for _, p := range req.Properties {
		pf, err := toPropertyFinancials(p)
		if err != nil {
			return dto.AllocationResponse{}, err
		}
		properties = append(properties, pf)
	}

	// 2. Serve repeats from the cache.
	key, err := fingerprint(req)
	if err != nil {
		return dto.AllocationResponse{}, fmt.Errorf("fingerprint request: %w", err)
	}
	if resp, ok := uc.cached(ctx, key); ok {
		return resp, nil
	}

	// 3. Run the engine.
	start := time.Now()
	result, err := uc.engine.Allocate(loan, properties, constraints)
	if err != nil {
		return dto.AllocationResponse{}, fmt.Errorf("allocate: %w", err)
	}
	uc.metrics.Record(ctx, result.Outcome.String(), result.IterationsUsed, time.Since(start))

	// 4. Build the aggregate.
	allocation, err := model.NewBlanketAllocation(currency, loan, constraints, result, time.Now().UTC())
	if err != nil {
		return dto.AllocationResponse{}, fmt.Errorf("create allocation: %w", err)
	}

	// 5. Persist.
	if err := uc.repo.Save(ctx, allocation); err != nil {
		return dto.AllocationResponse{}, fmt.Errorf("save allocation: %w", err)
	}

	// 6. Publish domain events.
	if err := uc.publisher.Publish(ctx, allocation.ClearEvents()...); err != nil {
		return dto.AllocationResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.InfoContext(ctx, "blanket allocation completed",
		"allocation_id", allocation.ID(),
		"properties", len(properties),
		"feasible", result.Feasible,
		"outcome", result.Outcome.String(),
		"iterations_used", result.IterationsUsed,
		"shortfall_amount", money.New(result.ShortfallAmount, currency).String(),
	)

	resp := toAllocationResponse(allocation)
	uc.store(ctx, key, resp)
	return resp, nil
}

func (uc *AllocateBlanketLoanUseCase) cached(ctx context.Context, key string) (dto.AllocationResponse, bool) {
	if uc.cache == nil {
		return dto.AllocationResponse{}, false
	}
	data, found, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.WarnContext(ctx, "result cache lookup failed", "key", key, "error", err)
		return dto.AllocationResponse{}, false
	}
	if !found {
		return dto.AllocationResponse{}, false
	}

	var resp dto.AllocationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		uc.logger.WarnContext(ctx, "discarding unreadable cache entry", "key", key, "error", err)
		return dto.AllocationResponse{}, false
	}
	uc.logger.DebugContext(ctx, "allocation served from cache", "key", key, "allocation_id", resp.ID)
	return resp, true
}

func (uc *AllocateBlanketLoanUseCase) store(ctx context.Context, key string, resp dto.AllocationResponse) {
	if uc.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		uc.logger.WarnContext(ctx, "encode cache entry", "error", err)
		return
	}
	if err := uc.cache.Set(ctx, key, data); err != nil {
		uc.logger.WarnContext(ctx, "result cache store failed", "key", key, "error", err)
	}
}

// fingerprint derives a stable cache key from the normalised request.
func fingerprint(req dto.AllocateRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("allocation:%016x", xxhash.Sum64(data)), nil
}
