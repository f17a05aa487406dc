package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/milltex/knitplan/internal/application/common"
	"github.com/milltex/knitplan/internal/application/planning"
)

// OpKind identifies one kind of allocation edit
type OpKind string

const (
	// OpAdd allocates a catalog machine to the lot with an initial roll count
	OpAdd OpKind = "ADD"

	// OpRemove removes a machine's allocation
	OpRemove OpKind = "REMOVE"

	// OpSetRolls sets a machine's allocated roll count
	OpSetRolls OpKind = "SET_ROLLS"

	// OpSetWeight sets a machine's allocation by weight in kilograms
	OpSetWeight OpKind = "SET_WEIGHT"
)

// Op is a single allocation edit. Ops apply strictly in the order the caller
// lists them; there is no reordering.
type Op struct {
	Kind      OpKind
	MachineID string
	Quantity  decimal.Decimal
}

// ReallocateLotCommand applies a batch of edits to a lot's allocation set,
// validates the result and commits it. If any edit or the validation fails,
// the stored allocations are left exactly as they were.
type ReallocateLotCommand struct {
	LotID string
	Ops   []Op
}

// ReallocateLotResult carries the save outcome and the resulting plan
type ReallocateLotResult struct {
	Outcome planning.SaveResult
	Plan    planning.PlanView
}

// ReallocateLotHandler handles ReallocateLotCommand
type ReallocateLotHandler struct {
	sessions *planning.Service
}

// NewReallocateLotHandler creates a ReallocateLotHandler
func NewReallocateLotHandler(sessions *planning.Service) *ReallocateLotHandler {
	return &ReallocateLotHandler{sessions: sessions}
}

// Handle opens a session, applies the edits in order and saves. Edit errors
// (duplicate machine, gauge mismatch, floor violation, unknown machine) abort
// before any validation or commit; nothing reaches the persister.
func (h *ReallocateLotHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(ReallocateLotCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type for ReallocateLotHandler: %T", request)
	}
	if len(cmd.Ops) == 0 {
		return nil, fmt.Errorf("reallocation for lot %s has no operations", cmd.LotID)
	}

	session, err := h.sessions.Open(ctx, cmd.LotID)
	if err != nil {
		return nil, err
	}

	for i, op := range cmd.Ops {
		if err := applyOp(session, op); err != nil {
			return nil, fmt.Errorf("operation %d (%s %s): %w", i+1, op.Kind, op.MachineID, err)
		}
	}

	outcome, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("info", "lot reallocated", map[string]interface{}{
		"lot":    cmd.LotID,
		"ops":    len(cmd.Ops),
		"status": string(outcome.Status),
	})

	return ReallocateLotResult{Outcome: outcome, Plan: session.Snapshot()}, nil
}

func applyOp(session *planning.Session, op Op) error {
	switch op.Kind {
	case OpAdd:
		return session.AddMachine(op.MachineID, op.Quantity)
	case OpRemove:
		return session.RemoveMachine(op.MachineID)
	case OpSetRolls:
		return session.SetRollCount(op.MachineID, op.Quantity)
	case OpSetWeight:
		return session.SetWeight(op.MachineID, op.Quantity)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}
