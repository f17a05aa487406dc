package commands

import (
	"context"
	"fmt"

	"github.com/milltex/knitplan/internal/application/common"
	"github.com/milltex/knitplan/internal/application/planning"
)

// PlanLotCommand creates the first allocation plan for a lot: one machine
// holding the lot's full roll quantity. Later redistribution happens through
// ReallocateLotCommand.
type PlanLotCommand struct {
	LotID     string
	MachineID string
}

// PlanLotResult carries the save outcome and the resulting plan
type PlanLotResult struct {
	Outcome planning.SaveResult
	Plan    planning.PlanView
}

// PlanLotHandler handles PlanLotCommand
type PlanLotHandler struct {
	sessions *planning.Service
}

// NewPlanLotHandler creates a PlanLotHandler
func NewPlanLotHandler(sessions *planning.Service) *PlanLotHandler {
	return &PlanLotHandler{sessions: sessions}
}

// Handle opens a session, allocates the full quantity to the chosen machine
// and saves. Planning a lot that already has allocations is an error; edits
// go through reallocation so the sticker floor rules apply.
func (h *PlanLotHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(PlanLotCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type for PlanLotHandler: %T", request)
	}

	session, err := h.sessions.Open(ctx, cmd.LotID)
	if err != nil {
		return nil, err
	}

	plan := session.Snapshot()
	if len(plan.Allocations) > 0 {
		return nil, fmt.Errorf("lot %s is already planned; use reallocation to change it", cmd.LotID)
	}

	if err := session.AddMachine(cmd.MachineID, plan.RequiredRolls); err != nil {
		return nil, err
	}

	outcome, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("info", "lot planned", map[string]interface{}{
		"lot":     cmd.LotID,
		"machine": cmd.MachineID,
		"status":  string(outcome.Status),
	})

	return PlanLotResult{Outcome: outcome, Plan: session.Snapshot()}, nil
}
