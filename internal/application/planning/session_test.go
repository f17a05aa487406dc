package planning_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milltex/knitplan/internal/application/planning"
	"github.com/milltex/knitplan/internal/domain/allocation"
)

// In-memory fakes of the collaborator ports

type fakeLotService struct {
	lot      *allocation.Lot
	existing []*allocation.MachineAllocation
	err      error
}

func (f *fakeLotService) GetLot(ctx context.Context, lotID string) (*allocation.Lot, []*allocation.MachineAllocation, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.lot, f.existing, nil
}

type fakeCatalog struct {
	machines []allocation.Machine
}

func (f *fakeCatalog) GetMachines(ctx context.Context) ([]allocation.Machine, error) {
	return f.machines, nil
}

func (f *fakeCatalog) GetMachine(ctx context.Context, machineID string) (allocation.Machine, error) {
	for _, m := range f.machines {
		if m.ID == machineID {
			return m, nil
		}
	}
	return allocation.Machine{}, errors.New("machine not found")
}

type fakeLedger struct {
	counts map[string]int
}

func (f *fakeLedger) GetGeneratedStickers(ctx context.Context, machineAllocationID string) (int, error) {
	return f.counts[machineAllocationID], nil
}

func (f *fakeLedger) GetLotStickerFloor(ctx context.Context, lotID string) (allocation.StickerFloor, error) {
	return allocation.NewStickerFloor(f.counts), nil
}

type recordingPersister struct {
	commits [][]*allocation.MachineAllocation
	fail    error
}

func (p *recordingPersister) Commit(ctx context.Context, lotID string, allocations []*allocation.MachineAllocation) error {
	if p.fail != nil {
		return p.fail
	}
	p.commits = append(p.commits, allocations)
	return nil
}

type fixture struct {
	service   *planning.Service
	persister *recordingPersister
}

func newFixture(t *testing.T, existing []*allocation.MachineAllocation, stickers map[string]int) fixture {
	t.Helper()

	lot, err := allocation.NewLot("LOT-1", "ALT/26/001", decimal.NewFromInt(100), 30, 24, 30, 2.8)
	require.NoError(t, err)

	machine := func(id string) allocation.Machine {
		return allocation.Machine{
			ID: id, Name: "machine " + id, Dia: 30, GG: 24,
			Needle: 2256, Feeder: 90, RPM: 26, Efficiency: 85, Constant: 0.00085,
			RollPerKg: decimal.RequireFromString("0.5"),
		}
	}
	incompatible := machine("M-OFF")
	incompatible.Dia = 34

	persister := &recordingPersister{}
	service := planning.NewService(
		&fakeLotService{lot: lot, existing: existing},
		&fakeCatalog{machines: []allocation.Machine{machine("M-01"), machine("M-02"), incompatible}},
		&fakeLedger{counts: stickers},
		persister,
		allocation.NewReconciliationValidator(decimal.NewFromFloat(0.01)),
		nil,
	)

	return fixture{service: service, persister: persister}
}

func TestSession_PlanAndSave(t *testing.T) {
	fx := newFixture(t, nil, nil)

	session, err := fx.service.Open(context.Background(), "LOT-1")
	require.NoError(t, err)

	require.NoError(t, session.AddMachine("M-01", decimal.NewFromInt(60)))
	require.NoError(t, session.AddMachine("M-02", decimal.NewFromInt(40)))

	result, err := session.Save(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Committed())
	require.Len(t, fx.persister.commits, 1)
	assert.Len(t, fx.persister.commits[0], 2)
}

func TestSession_RejectedSaveSendsNothing(t *testing.T) {
	fx := newFixture(t, nil, nil)

	session, err := fx.service.Open(context.Background(), "LOT-1")
	require.NoError(t, err)

	require.NoError(t, session.AddMachine("M-01", decimal.NewFromInt(90)))

	result, err := session.Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, allocation.StatusRejected, result.Status)
	require.Len(t, result.ValidationErrors, 1)
	var mismatch *allocation.QuantityMismatchError
	assert.ErrorAs(t, result.ValidationErrors[0], &mismatch)
	assert.Empty(t, fx.persister.commits, "a rejected save must not reach the persister")
}

func TestSession_CorrectAndResave(t *testing.T) {
	fx := newFixture(t, nil, nil)

	session, err := fx.service.Open(context.Background(), "LOT-1")
	require.NoError(t, err)

	require.NoError(t, session.AddMachine("M-01", decimal.NewFromInt(90)))
	result, err := session.Save(context.Background())
	require.NoError(t, err)
	require.Equal(t, allocation.StatusRejected, result.Status)

	require.NoError(t, session.SetRollCount("M-01", decimal.NewFromInt(100)))
	result, err = session.Save(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Committed())
}

func TestSession_PersistenceFailureLeavesDraft(t *testing.T) {
	fx := newFixture(t, nil, nil)
	fx.persister.fail = errors.New("server unavailable")

	session, err := fx.service.Open(context.Background(), "LOT-1")
	require.NoError(t, err)
	require.NoError(t, session.AddMachine("M-01", decimal.NewFromInt(100)))

	result, err := session.Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, allocation.StatusDraft, result.Status)
	var failure *allocation.PersistenceFailureError
	require.ErrorAs(t, result.PersistenceFailure, &failure)
}

func TestSession_FrozenFloorGuardsEdits(t *testing.T) {
	machine := allocation.Machine{
		ID: "M-01", Name: "machine M-01", Dia: 30, GG: 24,
		Needle: 2256, Feeder: 90, RPM: 26, Efficiency: 85, Constant: 0.00085,
		RollPerKg: decimal.RequireFromString("0.5"),
	}
	existing := []*allocation.MachineAllocation{
		allocation.RehydrateMachineAllocation("alloc-1", machine, decimal.NewFromInt(100)),
	}
	fx := newFixture(t, existing, map[string]int{"alloc-1": 40})

	session, err := fx.service.Open(context.Background(), "LOT-1")
	require.NoError(t, err)

	err = session.SetRollCount("M-01", decimal.NewFromInt(30))

	var violation *allocation.FloorViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, 40, violation.RequiredMinimum)
}

func TestSession_CompatibleMachinesFiltersByGauge(t *testing.T) {
	fx := newFixture(t, nil, nil)

	session, err := fx.service.Open(context.Background(), "LOT-1")
	require.NoError(t, err)

	machines := session.CompatibleMachines()

	require.Len(t, machines, 2)
	for _, m := range machines {
		assert.NotEqual(t, "M-OFF", m.ID)
	}
}

func TestSession_UnknownCatalogMachine(t *testing.T) {
	fx := newFixture(t, nil, nil)

	session, err := fx.service.Open(context.Background(), "LOT-1")
	require.NoError(t, err)

	err = session.AddMachine("M-99", decimal.NewFromInt(10))

	assert.ErrorContains(t, err, "M-99")
}

func TestSession_SnapshotTotals(t *testing.T) {
	fx := newFixture(t, nil, nil)

	session, err := fx.service.Open(context.Background(), "LOT-1")
	require.NoError(t, err)
	require.NoError(t, session.AddMachine("M-01", decimal.NewFromInt(60)))
	require.NoError(t, session.AddMachine("M-02", decimal.NewFromInt(40)))

	plan := session.Snapshot()

	assert.True(t, plan.TotalRolls.Equal(decimal.NewFromInt(100)))
	assert.True(t, plan.TotalWeight.Equal(decimal.NewFromInt(50)))
	assert.Len(t, plan.Allocations, 2)
	assert.Equal(t, allocation.StatusDraft, plan.Status)
	assert.Greater(t, plan.SlowestMachineDays, 0.0)
}
