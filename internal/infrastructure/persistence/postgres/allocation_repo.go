package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/events"
	"github.com/bibbank/underwriting/pkg/money"
	pkgpostgres "github.com/bibbank/underwriting/pkg/postgres"
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	pkgpostgres.Querier
	pkgpostgres.TxBeginner
}

// AllocationRepo implements port.AllocationRepository.
type AllocationRepo struct {
	db DB
}

// NewAllocationRepo creates a new PostgreSQL-backed allocation repository.
func NewAllocationRepo(db DB) *AllocationRepo {
	return &AllocationRepo{db: db}
}

// Save persists an allocation, its per-property rows and its pending domain
// events in a single transaction. Allocations are immutable, so saving an ID
// twice is an error.
func (r *AllocationRepo) Save(ctx context.Context, a *model.BlanketAllocation) error {
	return pkgpostgres.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		loan := a.Loan()
		c := a.Constraints()
		res := a.Result()

		const insertAllocationSQL = `
			INSERT INTO blanket_allocations (
				id, currency, principal, annual_rate, term_months,
				min_dscr, max_ltv_per_property, min_allocation_floor,
				max_iterations, convergence_tolerance,
				feasible, outcome, iterations_used, total_allocated,
				shortfall_amount, additional_noi_required, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		`
		_, err := tx.Exec(ctx, insertAllocationSQL,
			a.ID(), a.Currency().Code(), loan.Principal, loan.AnnualRate, loan.TermMonths,
			c.MinDSCR, c.MaxLTVPerProperty, c.MinAllocationFloor,
			c.MaxIterations, c.ConvergenceTolerance,
			res.Feasible, res.Outcome.String(), res.IterationsUsed, res.TotalAllocated,
			res.ShortfallAmount, res.AdditionalNOIRequired, a.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("insert allocation: %w", err)
		}

		const insertPropertySQL = `
			INSERT INTO blanket_property_allocations (
				allocation_id, position, property_id, allocated_principal,
				monthly_debt_service, noi, max_supportable_principal,
				dscr, ltv, risk_score, risk_tier
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`
		batch := &pgx.Batch{}
		for i, pa := range res.Allocations {
			batch.Queue(insertPropertySQL,
				a.ID(), i, pa.PropertyID, pa.AllocatedPrincipal,
				pa.MonthlyDebtService, pa.NOI, pa.MaxSupportablePrincipal,
				pa.DSCR.String(), pa.LTV, pa.RiskScore, pa.RiskTier.String(),
			)
		}

		const insertOutboxSQL = `
			INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, evt := range a.Events() {
			entry, err := events.NewOutboxEntry(evt)
			if err != nil {
				return err
			}
			batch.Queue(insertOutboxSQL,
				entry.ID, entry.AggregateID, entry.AggregateType,
				entry.EventType, entry.Payload, entry.CreatedAt,
			)
		}

		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert allocation rows: %w", err)
		}
		return nil
	})
}

// FindByID retrieves an allocation and its per-property rows by ID.
// IDs that are not UUIDs cannot exist and report port.ErrAllocationNotFound.
func (r *AllocationRepo) FindByID(ctx context.Context, id string) (*model.BlanketAllocation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, port.ErrAllocationNotFound
	}

	const selectAllocationSQL = `
		SELECT id::text, currency, principal, annual_rate, term_months,
		       min_dscr, max_ltv_per_property, min_allocation_floor,
		       max_iterations, convergence_tolerance,
		       feasible, outcome, iterations_used, total_allocated,
		       shortfall_amount, additional_noi_required, created_at
		FROM blanket_allocations
		WHERE id = $1
	`
	var row allocationRow
	err := r.db.QueryRow(ctx, selectAllocationSQL, id).Scan(
		&row.id, &row.currency, &row.principal, &row.annualRate, &row.termMonths,
		&row.minDSCR, &row.maxLTV, &row.minFloor,
		&row.maxIterations, &row.tolerance,
		&row.feasible, &row.outcome, &row.iterationsUsed, &row.totalAllocated,
		&row.shortfall, &row.additionalNOI, &row.createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrAllocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query allocation: %w", err)
	}

	props, err := r.loadPropertyAllocations(ctx, id)
	if err != nil {
		return nil, err
	}
	return reconstructAllocation(row, props)
}

func (r *AllocationRepo) loadPropertyAllocations(ctx context.Context, allocationID string) ([]propertyRow, error) {
	const selectPropertiesSQL = `
		SELECT property_id, allocated_principal, monthly_debt_service, noi,
		       max_supportable_principal, dscr, ltv, risk_score, risk_tier
		FROM blanket_property_allocations
		WHERE allocation_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, selectPropertiesSQL, allocationID)
	if err != nil {
		return nil, fmt.Errorf("query property allocations: %w", err)
	}
	defer rows.Close()

	var out []propertyRow
	for rows.Next() {
		var p propertyRow
		if err := rows.Scan(
			&p.propertyID, &p.allocated, &p.payment, &p.noi,
			&p.maxSupportable, &p.dscr, &p.ltv, &p.riskScore, &p.riskTier,
		); err != nil {
			return nil, fmt.Errorf("scan property allocation: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

type allocationRow struct {
	id                                       string
	currency                                 string
	principal, annualRate                    decimal.Decimal
	termMonths                               int
	minDSCR, maxLTV, minFloor                decimal.Decimal
	maxIterations                            int
	tolerance                                decimal.Decimal
	feasible                                 bool
	outcome                                  string
	iterationsUsed                           int
	totalAllocated, shortfall, additionalNOI decimal.Decimal
	createdAt                                time.Time
}

type propertyRow struct {
	propertyID              string
	allocated, payment, noi decimal.Decimal
	maxSupportable          decimal.Decimal
	dscr                    string
	ltv                     decimal.Decimal
	riskScore               int
	riskTier                string
}

func reconstructAllocation(row allocationRow, props []propertyRow) (*model.BlanketAllocation, error) {
	currency, err := money.NewCurrency(row.currency)
	if err != nil {
		return nil, fmt.Errorf("invalid stored currency: %w", err)
	}
	outcome, err := valueobject.NewAllocationOutcome(row.outcome)
	if err != nil {
		return nil, fmt.Errorf("invalid stored outcome: %w", err)
	}

	allocations := make([]model.PropertyAllocation, 0, len(props))
	for _, p := range props {
		pa, err := reconstructPropertyAllocation(p)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, pa)
	}

	return model.ReconstructBlanketAllocation(
		row.id,
		currency,
		model.LoanTerms{
			Principal:  row.principal,
			AnnualRate: row.annualRate,
			TermMonths: row.termMonths,
		},
		model.AllocationConstraints{
			MinDSCR:              row.minDSCR,
			MaxLTVPerProperty:    row.maxLTV,
			MinAllocationFloor:   row.minFloor,
			MaxIterations:        row.maxIterations,
			ConvergenceTolerance: row.tolerance,
		},
		model.AllocationResult{
			Allocations:           allocations,
			TotalAllocated:        row.totalAllocated,
			Feasible:              row.feasible,
			IterationsUsed:        row.iterationsUsed,
			ShortfallAmount:       row.shortfall,
			AdditionalNOIRequired: row.additionalNOI,
			Outcome:               outcome,
		},
		row.createdAt,
	), nil
}

func reconstructPropertyAllocation(p propertyRow) (model.PropertyAllocation, error) {
	dscr, err := valueobject.ParseDSCR(p.dscr)
	if err != nil {
		return model.PropertyAllocation{}, fmt.Errorf("invalid stored DSCR for property %s: %w", p.propertyID, err)
	}
	tier, err := valueobject.NewRiskTier(p.riskTier)
	if err != nil {
		return model.PropertyAllocation{}, fmt.Errorf("invalid stored risk tier for property %s: %w", p.propertyID, err)
	}
	return model.PropertyAllocation{
		PropertyID:              p.propertyID,
		AllocatedPrincipal:      p.allocated,
		MonthlyDebtService:      p.payment,
		NOI:                     p.noi,
		MaxSupportablePrincipal: p.maxSupportable,
		DSCR:                    dscr,
		LTV:                     p.ltv,
		RiskScore:               p.riskScore,
		RiskTier:                tier,
	}, nil
}
