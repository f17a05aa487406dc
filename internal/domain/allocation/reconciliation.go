package allocation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/milltex/knitplan/internal/domain/shared"
)

// ReconciliationStatus is the state of an allocation set's edit session
type ReconciliationStatus string

const (
	// StatusDraft - the set is being edited; nothing has been sent anywhere
	StatusDraft ReconciliationStatus = "DRAFT"

	// StatusValidated - the set passed every reconciliation check and may be committed
	StatusValidated ReconciliationStatus = "VALIDATED"

	// StatusRejected - validation failed; the set returns to draft on the next edit
	StatusRejected ReconciliationStatus = "REJECTED"

	// StatusCommitted - the persister accepted the set; the session is finished
	StatusCommitted ReconciliationStatus = "COMMITTED"
)

// ReconciliationValidator checks an allocation set against the lot's required
// roll quantity and the sticker floor before any commit is allowed.
//
// The tolerance is the single system-wide reconciliation epsilon, injected
// from configuration. It is never duplicated at call sites.
type ReconciliationValidator struct {
	tolerance decimal.Decimal
}

// NewReconciliationValidator creates a validator with the given tolerance in rolls
func NewReconciliationValidator(tolerance decimal.Decimal) *ReconciliationValidator {
	return &ReconciliationValidator{tolerance: tolerance}
}

// Validate runs every reconciliation check and returns the full list of
// violations, not just the first. The operator needs to see every offending
// machine to correct the plan in one pass. An empty result means the set may
// be committed.
func (v *ReconciliationValidator) Validate(set *AllocationSet) []error {
	var errs []error

	total := set.TotalAllocatedRolls()
	expected := set.Lot().ActualRollQty()
	if total.Sub(expected).Abs().GreaterThan(v.tolerance) {
		errs = append(errs, NewQuantityMismatchError(total, expected))
	}

	floor := set.Floor()
	for _, a := range set.Allocations() {
		if min := floor.Floor(a.ID()); a.Rolls().LessThan(decimal.NewFromInt(int64(min))) {
			errs = append(errs, NewFloorViolationError(a.Machine().ID, min, a.Rolls()))
		}
	}

	for _, a := range set.Allocations() {
		if a.Rolls().Sign() <= 0 {
			errs = append(errs, NewZeroAllocationError(a.Machine().ID))
		}
	}

	return errs
}

// Reconciliation is the validate-before-commit state machine for one edit
// session: Draft → Validated → Committed, or Draft → Rejected. A rejected
// session is not a dead end; the next edit puts it back in Draft.
type Reconciliation struct {
	set       *AllocationSet
	validator *ReconciliationValidator
	persister AllocationPersister
	clock     shared.Clock

	status         ReconciliationStatus
	updatedAt      time.Time
	lastValidation []error
}

// NewReconciliation creates a reconciliation session in Draft state
func NewReconciliation(set *AllocationSet, validator *ReconciliationValidator, persister AllocationPersister, clock shared.Clock) *Reconciliation {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Reconciliation{
		set:       set,
		validator: validator,
		persister: persister,
		clock:     clock,
		status:    StatusDraft,
		updatedAt: clock.Now(),
	}
}

// Set returns the allocation set under reconciliation
func (r *Reconciliation) Set() *AllocationSet {
	return r.set
}

// Status returns the current session state
func (r *Reconciliation) Status() ReconciliationStatus {
	return r.status
}

// UpdatedAt returns when the session state last changed
func (r *Reconciliation) UpdatedAt() time.Time {
	return r.updatedAt
}

// LastValidation returns the violations from the most recent Validate call
func (r *Reconciliation) LastValidation() []error {
	return r.lastValidation
}

// Invalidate returns the session to Draft after an edit. Called by the owning
// session on every successful mutation; a committed session cannot be reopened.
func (r *Reconciliation) Invalidate() {
	if r.status == StatusCommitted {
		return
	}
	r.transition(StatusDraft)
}

// Validate checks the set and moves to Validated or Rejected. Validating a
// committed session is a caller bug and reports an invalid state.
func (r *Reconciliation) Validate() ([]error, error) {
	if r.status == StatusCommitted {
		return nil, NewInvalidStateError(r.status, "validate")
	}

	errs := r.validator.Validate(r.set)
	r.lastValidation = errs

	if len(errs) > 0 {
		r.transition(StatusRejected)
		return errs, nil
	}

	r.transition(StatusValidated)
	return nil, nil
}

// Commit sends the validated set to the persister. Only callable from
// Validated. On persister failure the session drops back to Draft and the
// failure, including a floor moved by concurrent printing, is returned as a
// PersistenceFailureError for the operator to retry manually.
func (r *Reconciliation) Commit(ctx context.Context) error {
	if r.status != StatusValidated {
		return NewInvalidStateError(r.status, "commit")
	}

	if err := r.persister.Commit(ctx, r.set.Lot().ID(), r.set.Allocations()); err != nil {
		r.transition(StatusDraft)
		return NewPersistenceFailureError(err)
	}

	r.transition(StatusCommitted)
	return nil
}

func (r *Reconciliation) transition(next ReconciliationStatus) {
	r.status = next
	r.updatedAt = r.clock.Now()
}
