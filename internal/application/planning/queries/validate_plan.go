package queries

import (
	"context"
	"fmt"

	"github.com/milltex/knitplan/internal/application/common"
	"github.com/milltex/knitplan/internal/application/planning"
	"github.com/milltex/knitplan/internal/domain/allocation"
)

// ValidatePlanQuery runs the reconciliation checks against a lot's stored
// allocations without committing anything. Used by review screens before an
// operator opens the lot for editing.
type ValidatePlanQuery struct {
	LotID string
}

// ValidatePlanResult carries the validation outcome
type ValidatePlanResult struct {
	Status allocation.ReconciliationStatus
	Errors []error
	Plan   planning.PlanView
}

// Ok reports whether the stored plan reconciles
func (r ValidatePlanResult) Ok() bool {
	return len(r.Errors) == 0
}

// ValidatePlanHandler handles ValidatePlanQuery
type ValidatePlanHandler struct {
	sessions *planning.Service
}

// NewValidatePlanHandler creates a ValidatePlanHandler
func NewValidatePlanHandler(sessions *planning.Service) *ValidatePlanHandler {
	return &ValidatePlanHandler{sessions: sessions}
}

// Handle opens a session, validates it and discards it
func (h *ValidatePlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(ValidatePlanQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type for ValidatePlanHandler: %T", request)
	}

	session, err := h.sessions.Open(ctx, query.LotID)
	if err != nil {
		return nil, err
	}

	errs, err := session.Validate()
	if err != nil {
		return nil, err
	}

	return ValidatePlanResult{
		Status: session.Status(),
		Errors: errs,
		Plan:   session.Snapshot(),
	}, nil
}
