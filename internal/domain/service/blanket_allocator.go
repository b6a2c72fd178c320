package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// ---------------------------------------------------------------------------
// BlanketAllocationEngine – splits one loan across several properties
// ---------------------------------------------------------------------------

const ltvPlaces int32 = 4

// DSCRTolerance is how far below MinDSCR a property carrying any principal
// over its capacity may sit before it counts as deficient. A feasible result
// never reports a ratio lower than MinDSCR minus this value.
var DSCRTolerance = decimal.New(1, -2)

// incomeWeightFloor is the seed weight of a BY_INCOME property whose NOI is
// zero or negative, so that it still receives a small share.
var incomeWeightFloor = money.Cent

// BlanketAllocationEngine distributes a blanket loan's principal across its
// collateral so that each property carries debt service it can cover. It
// holds no mutable state and is safe for concurrent use.
type BlanketAllocationEngine struct {
	amortization *AmortizationEngine
	dscr         *DSCRCalculator
	scorer       *RiskScorer
}

// NewBlanketAllocationEngine creates a new BlanketAllocationEngine.
func NewBlanketAllocationEngine(
	amortization *AmortizationEngine,
	dscr *DSCRCalculator,
	scorer *RiskScorer,
) *BlanketAllocationEngine {
	return &BlanketAllocationEngine{
		amortization: amortization,
		dscr:         dscr,
		scorer:       scorer,
	}
}

// propertyState is the working record of one property during a run.
type propertyState struct {
	financials model.PropertyFinancials
	noi        decimal.Decimal
	floor      decimal.Decimal

	// dscrCap is the largest principal whose payment NOI still covers at MinDSCR.
	dscrCap decimal.Decimal

	ltvCeiling decimal.Decimal
	hasCeiling bool

	allocated decimal.Decimal
	payment   decimal.Decimal
	ratio     valueobject.DSCR
}

// capacity is the most principal the property can carry under both DSCR and LTV.
func (s *propertyState) capacity() decimal.Decimal {
	if s.hasCeiling && s.ltvCeiling.LessThan(s.dscrCap) {
		return s.ltvCeiling
	}
	return s.dscrCap
}

// excess is the principal above capacity, or zero.
func (s *propertyState) excess() decimal.Decimal {
	return decimal.Max(s.allocated.Sub(s.capacity()), decimal.Zero)
}

// deficient reports whether the property must shed principal. Large excess
// always counts; small excess counts when it drags the ratio below
// MinDSCR - DSCRTolerance, which is what happens to a property with no
// supportable principal holding a few cents.
func (s *propertyState) deficient(c model.AllocationConstraints) bool {
	excess := s.excess()
	if excess.GreaterThan(c.ConvergenceTolerance) {
		return true
	}
	return excess.IsPositive() && s.ratio.LessThan(c.MinDSCR.Sub(DSCRTolerance))
}

// Allocate splits loan.Principal across properties. The returned allocations
// follow input order and always sum to the principal exactly. Input errors
// are reported before any calculation; an infeasible or non-converged run is
// a successful call with Feasible set to false.
func (e *BlanketAllocationEngine) Allocate(
	loan model.LoanTerms,
	properties []model.PropertyFinancials,
	constraints model.AllocationConstraints,
) (model.AllocationResult, error) {
	constraints = constraints.WithDefaults()

	if err := validateAllocation(loan, properties, constraints); err != nil {
		return model.AllocationResult{}, err
	}

	states, err := e.prepare(loan, properties, constraints)
	if err != nil {
		return model.AllocationResult{}, err
	}

	seed(loan.Principal, states)

	var (
		outcome    valueobject.AllocationOutcome
		iterations int
	)
	for iter := 1; ; iter++ {
		iterations = iter
		if err := e.evaluate(loan, states); err != nil {
			return model.AllocationResult{}, err
		}

		deficient, surplus := classify(states, constraints)
		if len(deficient) == 0 {
			outcome = valueobject.AllocationOutcomeFeasible
			break
		}

		cuts, adds, moved := planTransfer(states, deficient, surplus)
		if !moved.IsPositive() {
			outcome = valueobject.AllocationOutcomeInfeasible
			break
		}
		if iter >= constraints.MaxIterations {
			outcome = valueobject.AllocationOutcomeNotConverged
			break
		}

		for k, i := range deficient {
			states[i].allocated = states[i].allocated.Sub(cuts[k])
		}
		for k, j := range surplus {
			states[j].allocated = states[j].allocated.Add(adds[k])
		}
	}

	return e.finalize(states, constraints, outcome, iterations), nil
}

// validateAllocation rejects malformed input before any arithmetic runs.
func validateAllocation(
	loan model.LoanTerms,
	properties []model.PropertyFinancials,
	constraints model.AllocationConstraints,
) error {
	if err := loan.Validate(); err != nil {
		return err
	}
	if !isWholeCents(loan.Principal) {
		return fmt.Errorf("%w: principal must be whole cents, got %s", model.ErrInvalidInput, loan.Principal)
	}
	if err := constraints.Validate(); err != nil {
		return err
	}
	if !isWholeCents(constraints.MinAllocationFloor) {
		return fmt.Errorf("%w: min allocation floor must be whole cents, got %s",
			model.ErrInvalidInput, constraints.MinAllocationFloor)
	}
	if len(properties) == 0 {
		return fmt.Errorf("%w: at least one property is required", model.ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(properties))
	for _, p := range properties {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.PropertyID]; dup {
			return fmt.Errorf("%w: duplicate property ID %q", model.ErrInvalidInput, p.PropertyID)
		}
		seen[p.PropertyID] = struct{}{}

		if constraints.HasLTVCeiling() {
			ceiling := money.FloorCents(p.AppraisedValue.Mul(constraints.MaxLTVPerProperty))
			if ceiling.LessThan(constraints.MinAllocationFloor) {
				return fmt.Errorf("%w: property %s: min allocation floor %s exceeds LTV ceiling %s",
					model.ErrInvalidInput, p.PropertyID, constraints.MinAllocationFloor, ceiling)
			}
		}
	}

	floorTotal := constraints.MinAllocationFloor.Mul(decimal.NewFromInt(int64(len(properties))))
	if floorTotal.GreaterThan(loan.Principal) {
		return fmt.Errorf("%w: min allocation floor %s across %d properties exceeds principal %s",
			model.ErrInvalidInput, constraints.MinAllocationFloor, len(properties), loan.Principal)
	}
	return nil
}

// prepare computes NOI, per-property caps and ceilings.
func (e *BlanketAllocationEngine) prepare(
	loan model.LoanTerms,
	properties []model.PropertyFinancials,
	constraints model.AllocationConstraints,
) ([]*propertyState, error) {
	states := make([]*propertyState, len(properties))
	for i, p := range properties {
		noi := p.NOI()

		dscrCap := decimal.Zero
		if noi.IsPositive() {
			target := noi.DivRound(constraints.MinDSCR, dscrWorkingPlaces)
			c, err := e.amortization.MaxPrincipal(target, loan.AnnualRate, loan.TermMonths)
			if err != nil {
				return nil, fmt.Errorf("max principal for property %s: %w", p.PropertyID, err)
			}
			dscrCap = c
		}

		s := &propertyState{
			financials: p,
			noi:        noi,
			floor:      constraints.MinAllocationFloor,
			dscrCap:    dscrCap,
			allocated:  decimal.Zero,
		}
		if constraints.HasLTVCeiling() {
			s.hasCeiling = true
			s.ltvCeiling = money.FloorCents(p.AppraisedValue.Mul(constraints.MaxLTVPerProperty))
		}
		states[i] = s
	}
	return states, nil
}

// seedWeight returns the share weight of a property for the initial split.
func seedWeight(s *propertyState) decimal.Decimal {
	if s.financials.Basis().Equal(valueobject.WeightBasisByIncome) {
		if s.noi.IsPositive() {
			return s.noi
		}
		return incomeWeightFloor
	}
	return s.financials.AppraisedValue
}

// seed gives every property its floor, then splits the rest by weight while
// respecting LTV ceilings. Principal no ceiling can hold is spread by weight
// regardless of ceilings; the loop then reports it as infeasible.
func seed(principal decimal.Decimal, states []*propertyState) {
	remaining := principal
	buckets := make([]bucket, len(states))
	for i, s := range states {
		s.allocated = s.floor
		remaining = remaining.Sub(s.floor)
		buckets[i] = bucket{
			weight:  seedWeight(s),
			limit:   s.ltvCeiling.Sub(s.floor),
			bounded: s.hasCeiling,
		}
	}

	shares, overflow := waterFill(remaining, buckets)
	for i, s := range states {
		s.allocated = s.allocated.Add(shares[i])
	}
	if !overflow.IsPositive() {
		return
	}

	for i := range buckets {
		buckets[i].bounded = false
	}
	spill, _ := waterFill(overflow, buckets)
	for i, s := range states {
		s.allocated = s.allocated.Add(spill[i])
	}
}

// evaluate recomputes payment and DSCR for the current allocations.
func (e *BlanketAllocationEngine) evaluate(loan model.LoanTerms, states []*propertyState) error {
	for _, s := range states {
		payment, err := e.amortization.MonthlyPayment(s.allocated, loan.AnnualRate, loan.TermMonths)
		if err != nil {
			return fmt.Errorf("payment for property %s: %w", s.financials.PropertyID, err)
		}
		s.payment = payment
		s.ratio = e.dscr.Calculate(s.noi, payment)
	}
	return nil
}

// classify returns indices of deficient properties and of properties with at
// least a cent of headroom.
func classify(states []*propertyState, c model.AllocationConstraints) (deficient, surplus []int) {
	for i, s := range states {
		if s.deficient(c) {
			deficient = append(deficient, i)
			continue
		}
		if s.capacity().Sub(s.allocated).GreaterThanOrEqual(money.Cent) {
			surplus = append(surplus, i)
		}
	}
	return deficient, surplus
}

// planTransfer sizes one rebalancing pass. Deficient properties give up at
// most their excess without dropping below the floor; surplus properties take
// at most their headroom. Both sides are split proportionally.
func planTransfer(states []*propertyState, deficient, surplus []int) (cuts, adds []decimal.Decimal, moved decimal.Decimal) {
	givers := make([]bucket, len(deficient))
	totalReducible := decimal.Zero
	for k, i := range deficient {
		s := states[i]
		reducible := decimal.Min(s.excess(), s.allocated.Sub(s.floor))
		reducible = decimal.Max(reducible, decimal.Zero)
		givers[k] = bucket{weight: reducible, limit: reducible, bounded: true}
		totalReducible = totalReducible.Add(reducible)
	}

	takers := make([]bucket, len(surplus))
	totalSlack := decimal.Zero
	for k, j := range surplus {
		s := states[j]
		slack := s.capacity().Sub(s.allocated)
		takers[k] = bucket{weight: slack, limit: slack, bounded: true}
		totalSlack = totalSlack.Add(slack)
	}

	moved = decimal.Min(totalReducible, totalSlack)
	if !moved.IsPositive() {
		return nil, nil, decimal.Zero
	}

	cuts, _ = waterFill(moved, givers)
	adds, _ = waterFill(moved, takers)
	return cuts, adds, moved
}

// finalize scores every property and assembles the result.
func (e *BlanketAllocationEngine) finalize(
	states []*propertyState,
	constraints model.AllocationConstraints,
	outcome valueobject.AllocationOutcome,
	iterations int,
) model.AllocationResult {
	result := model.AllocationResult{
		Allocations:           make([]model.PropertyAllocation, len(states)),
		TotalAllocated:        decimal.Zero,
		Feasible:              outcome.Equal(valueobject.AllocationOutcomeFeasible),
		IterationsUsed:        iterations,
		ShortfallAmount:       decimal.Zero,
		AdditionalNOIRequired: decimal.Zero,
		Outcome:               outcome,
	}

	for i, s := range states {
		ltv := s.allocated.DivRound(s.financials.AppraisedValue, ltvPlaces)
		score, tier := e.scorer.Score(s.ratio, ltv)

		result.Allocations[i] = model.PropertyAllocation{
			PropertyID:              s.financials.PropertyID,
			AllocatedPrincipal:      s.allocated,
			MonthlyDebtService:      s.payment,
			NOI:                     s.noi,
			MaxSupportablePrincipal: s.dscrCap,
			DSCR:                    s.ratio,
			LTV:                     ltv,
			RiskScore:               score,
			RiskTier:                tier,
		}
		result.TotalAllocated = result.TotalAllocated.Add(s.allocated)

		if result.Feasible || !s.deficient(constraints) {
			continue
		}
		result.ShortfallAmount = result.ShortfallAmount.Add(s.excess())
		needed := s.payment.Mul(constraints.MinDSCR).Sub(s.noi)
		if needed.IsPositive() {
			result.AdditionalNOIRequired = result.AdditionalNOIRequired.Add(needed)
		}
	}
	result.AdditionalNOIRequired = money.RoundCents(result.AdditionalNOIRequired)

	return result
}

func isWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(money.CentsPlaces))
}
