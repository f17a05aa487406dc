package queries

import (
	"context"
	"fmt"

	"github.com/milltex/knitplan/internal/application/common"
	"github.com/milltex/knitplan/internal/application/planning"
)

// GetAllocationPlanQuery returns the current allocation plan for a lot,
// including derived weights, production estimates and sticker floors
type GetAllocationPlanQuery struct {
	LotID string
}

// GetAllocationPlanResult carries the rendered plan
type GetAllocationPlanResult struct {
	Plan planning.PlanView
}

// GetAllocationPlanHandler handles GetAllocationPlanQuery
type GetAllocationPlanHandler struct {
	sessions *planning.Service
}

// NewGetAllocationPlanHandler creates a GetAllocationPlanHandler
func NewGetAllocationPlanHandler(sessions *planning.Service) *GetAllocationPlanHandler {
	return &GetAllocationPlanHandler{sessions: sessions}
}

// Handle opens a read-only session and returns its snapshot. Nothing is
// mutated or persisted.
func (h *GetAllocationPlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(GetAllocationPlanQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type for GetAllocationPlanHandler: %T", request)
	}

	session, err := h.sessions.Open(ctx, query.LotID)
	if err != nil {
		return nil, err
	}

	return GetAllocationPlanResult{Plan: session.Snapshot()}, nil
}
