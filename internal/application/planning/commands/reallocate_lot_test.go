package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milltex/knitplan/internal/application/planning"
	"github.com/milltex/knitplan/internal/application/planning/commands"
	"github.com/milltex/knitplan/internal/domain/allocation"
)

type stubLots struct {
	lot      *allocation.Lot
	existing []*allocation.MachineAllocation
}

func (s *stubLots) GetLot(ctx context.Context, lotID string) (*allocation.Lot, []*allocation.MachineAllocation, error) {
	return s.lot, s.existing, nil
}

type stubCatalog struct{ machines []allocation.Machine }

func (s *stubCatalog) GetMachines(ctx context.Context) ([]allocation.Machine, error) {
	return s.machines, nil
}

func (s *stubCatalog) GetMachine(ctx context.Context, machineID string) (allocation.Machine, error) {
	for _, m := range s.machines {
		if m.ID == machineID {
			return m, nil
		}
	}
	return allocation.Machine{}, errors.New("machine not found")
}

type stubLedger struct{ counts map[string]int }

func (s *stubLedger) GetGeneratedStickers(ctx context.Context, id string) (int, error) {
	return s.counts[id], nil
}

func (s *stubLedger) GetLotStickerFloor(ctx context.Context, lotID string) (allocation.StickerFloor, error) {
	return allocation.NewStickerFloor(s.counts), nil
}

type stubPersister struct{ commits int }

func (s *stubPersister) Commit(ctx context.Context, lotID string, allocations []*allocation.MachineAllocation) error {
	s.commits++
	return nil
}

func newHandler(t *testing.T, existing []*allocation.MachineAllocation) (*commands.ReallocateLotHandler, *stubPersister) {
	t.Helper()

	lot, err := allocation.NewLot("LOT-1", "ALT/26/001", decimal.NewFromInt(100), 30, 24, 30, 2.8)
	require.NoError(t, err)

	machine := func(id string) allocation.Machine {
		return allocation.Machine{
			ID: id, Name: id, Dia: 30, GG: 24,
			Needle: 2256, Feeder: 90, RPM: 26, Efficiency: 85, Constant: 0.00085,
			RollPerKg: decimal.RequireFromString("0.5"),
		}
	}

	persister := &stubPersister{}
	service := planning.NewService(
		&stubLots{lot: lot, existing: existing},
		&stubCatalog{machines: []allocation.Machine{machine("M-01"), machine("M-02")}},
		&stubLedger{},
		persister,
		allocation.NewReconciliationValidator(decimal.NewFromFloat(0.01)),
		nil,
	)

	return commands.NewReallocateLotHandler(service), persister
}

func TestReallocateLot_AppliesOpsInOrderAndCommits(t *testing.T) {
	handler, persister := newHandler(t, nil)

	resp, err := handler.Handle(context.Background(), commands.ReallocateLotCommand{
		LotID: "LOT-1",
		Ops: []commands.Op{
			{Kind: commands.OpAdd, MachineID: "M-01", Quantity: decimal.NewFromInt(0)},
			{Kind: commands.OpAdd, MachineID: "M-02", Quantity: decimal.NewFromInt(0)},
			{Kind: commands.OpSetRolls, MachineID: "M-01", Quantity: decimal.NewFromInt(60)},
			{Kind: commands.OpSetWeight, MachineID: "M-02", Quantity: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)

	result, ok := resp.(commands.ReallocateLotResult)
	require.True(t, ok)
	assert.True(t, result.Outcome.Committed())
	assert.True(t, result.Plan.TotalRolls.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, persister.commits)
}

func TestReallocateLot_ValidationRejectionCommitsNothing(t *testing.T) {
	handler, persister := newHandler(t, nil)

	resp, err := handler.Handle(context.Background(), commands.ReallocateLotCommand{
		LotID: "LOT-1",
		Ops: []commands.Op{
			{Kind: commands.OpAdd, MachineID: "M-01", Quantity: decimal.NewFromInt(90)},
		},
	})
	require.NoError(t, err)

	result := resp.(commands.ReallocateLotResult)
	assert.Equal(t, allocation.StatusRejected, result.Outcome.Status)
	assert.NotEmpty(t, result.Outcome.ValidationErrors)
	assert.Equal(t, 0, persister.commits)
}

func TestReallocateLot_EditErrorAbortsBatch(t *testing.T) {
	handler, persister := newHandler(t, nil)

	_, err := handler.Handle(context.Background(), commands.ReallocateLotCommand{
		LotID: "LOT-1",
		Ops: []commands.Op{
			{Kind: commands.OpAdd, MachineID: "M-01", Quantity: decimal.NewFromInt(50)},
			{Kind: commands.OpAdd, MachineID: "M-01", Quantity: decimal.NewFromInt(50)},
		},
	})

	require.Error(t, err)
	var dup *allocation.DuplicateMachineError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, 0, persister.commits)
}

func TestReallocateLot_EmptyOps(t *testing.T) {
	handler, _ := newHandler(t, nil)

	_, err := handler.Handle(context.Background(), commands.ReallocateLotCommand{LotID: "LOT-1"})

	assert.Error(t, err)
}
