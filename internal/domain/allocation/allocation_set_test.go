package allocation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milltex/knitplan/internal/domain/allocation"
)

func testLot(t *testing.T) *allocation.Lot {
	t.Helper()
	lot, err := allocation.NewLot("LOT-1", "ALT/26/001", decimal.NewFromInt(100), 30, 24, 30, 2.8)
	require.NoError(t, err)
	return lot
}

func testMachine(id string) allocation.Machine {
	return allocation.Machine{
		ID:         id,
		Name:       "machine " + id,
		Dia:        30,
		GG:         24,
		Needle:     2256,
		Feeder:     90,
		RPM:        26,
		Efficiency: 85,
		Constant:   0.00085,
		RollPerKg:  decimal.RequireFromString("0.5"),
	}
}

func emptySet(t *testing.T) *allocation.AllocationSet {
	t.Helper()
	return allocation.NewAllocationSet(testLot(t), nil, allocation.NewStickerFloor(nil))
}

func TestAddMachine_DerivesWeightAndEstimate(t *testing.T) {
	set := emptySet(t)

	a, err := set.AddMachine(testMachine("A"), decimal.NewFromInt(40))

	require.NoError(t, err)
	assert.True(t, a.Weight().Equal(decimal.NewFromInt(20)), "weight should be 40 * 0.5, got %s", a.Weight())
	assert.Greater(t, a.EstimatedDays(), 0.0)
}

func TestAddMachine_Duplicate(t *testing.T) {
	set := emptySet(t)

	_, err := set.AddMachine(testMachine("A"), decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = set.AddMachine(testMachine("A"), decimal.NewFromInt(5))

	var dup *allocation.DuplicateMachineError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "A", dup.MachineID)
	assert.Len(t, set.Allocations(), 1)
}

func TestAddMachine_GaugeMismatch(t *testing.T) {
	set := emptySet(t)

	wrongGauge := testMachine("B")
	wrongGauge.GG = 28

	_, err := set.AddMachine(wrongGauge, decimal.Zero)

	var mismatch *allocation.GaugeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "B", mismatch.MachineID)
	assert.Equal(t, 28, mismatch.MachineGG)
	assert.Equal(t, 24, mismatch.LotGG)
	assert.Empty(t, set.Allocations())
}

func TestAddMachine_NegativeInitialRollsClampedToZero(t *testing.T) {
	set := emptySet(t)

	a, err := set.AddMachine(testMachine("A"), decimal.NewFromInt(-5))

	require.NoError(t, err)
	assert.True(t, a.Rolls().IsZero())
	assert.True(t, a.Weight().IsZero())
	assert.Equal(t, 0.0, a.EstimatedDays())
}

func TestSetRollCount_RecomputesDerivedValues(t *testing.T) {
	set := emptySet(t)
	_, err := set.AddMachine(testMachine("A"), decimal.NewFromInt(10))
	require.NoError(t, err)

	require.NoError(t, set.SetRollCount("A", decimal.NewFromInt(60)))

	a := set.Allocations()[0]
	assert.True(t, a.Rolls().Equal(decimal.NewFromInt(60)))
	assert.True(t, a.Weight().Equal(decimal.NewFromInt(30)))
}

func TestSetRollCount_Idempotent(t *testing.T) {
	set := emptySet(t)
	_, err := set.AddMachine(testMachine("A"), decimal.NewFromInt(10))
	require.NoError(t, err)

	require.NoError(t, set.SetRollCount("A", decimal.NewFromInt(42)))
	first := set.Allocations()[0]
	rolls, weight, days := first.Rolls(), first.Weight(), first.EstimatedDays()

	require.NoError(t, set.SetRollCount("A", decimal.NewFromInt(42)))
	second := set.Allocations()[0]

	assert.True(t, rolls.Equal(second.Rolls()))
	assert.True(t, weight.Equal(second.Weight()))
	assert.Equal(t, days, second.EstimatedDays())
}

func TestSetRollCount_ClampsNegativeToZero(t *testing.T) {
	set := emptySet(t)
	_, err := set.AddMachine(testMachine("A"), decimal.NewFromInt(10))
	require.NoError(t, err)

	require.NoError(t, set.SetRollCount("A", decimal.NewFromInt(-7)))

	assert.True(t, set.Allocations()[0].Rolls().IsZero())
}

func TestSetRollCount_BelowFloorFailsWithoutPartialUpdate(t *testing.T) {
	lot := testLot(t)
	existing := allocation.RehydrateMachineAllocation("alloc-a", testMachine("A"), decimal.NewFromInt(30))
	floor := allocation.NewStickerFloor(map[string]int{"alloc-a": 25})
	set := allocation.NewAllocationSet(lot, []*allocation.MachineAllocation{existing}, floor)

	err := set.SetRollCount("A", decimal.NewFromInt(20))

	var violation *allocation.FloorViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "A", violation.MachineID)
	assert.Equal(t, 25, violation.RequiredMinimum)

	// No partial update: prior roll count survives
	assert.True(t, set.Allocations()[0].Rolls().Equal(decimal.NewFromInt(30)))
}

func TestSetRollCount_UnknownMachine(t *testing.T) {
	set := emptySet(t)

	err := set.SetRollCount("nope", decimal.NewFromInt(5))

	var notAllocated *allocation.MachineNotAllocatedError
	assert.ErrorAs(t, err, &notAllocated)
}

func TestRemoveMachine_WithFloorFails(t *testing.T) {
	lot := testLot(t)
	existing := allocation.RehydrateMachineAllocation("alloc-a", testMachine("A"), decimal.NewFromInt(30))
	floor := allocation.NewStickerFloor(map[string]int{"alloc-a": 3})
	set := allocation.NewAllocationSet(lot, []*allocation.MachineAllocation{existing}, floor)

	err := set.RemoveMachine("A")

	var violation *allocation.FloorViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, 3, violation.RequiredMinimum)

	// Machine stays in the set with its prior roll count
	require.Len(t, set.Allocations(), 1)
	assert.True(t, set.Allocations()[0].Rolls().Equal(decimal.NewFromInt(30)))
}

func TestRemoveMachine_WithoutFloorSucceeds(t *testing.T) {
	set := emptySet(t)
	_, err := set.AddMachine(testMachine("A"), decimal.NewFromInt(50))
	require.NoError(t, err)
	_, err = set.AddMachine(testMachine("B"), decimal.NewFromInt(50))
	require.NoError(t, err)

	require.NoError(t, set.RemoveMachine("A"))

	require.Len(t, set.Allocations(), 1)
	assert.Equal(t, "B", set.Allocations()[0].Machine().ID)
	assert.True(t, set.TotalAllocatedRolls().Equal(decimal.NewFromInt(50)))
}

func TestSetWeight_ConvertsThroughRatio(t *testing.T) {
	set := emptySet(t)
	_, err := set.AddMachine(testMachine("A"), decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, set.SetWeight("A", decimal.NewFromInt(20)))

	a := set.Allocations()[0]
	assert.True(t, a.Rolls().Equal(decimal.NewFromInt(40)), "20 kg at 0.5 kg/roll is 40 rolls, got %s", a.Rolls())
	assert.True(t, a.Weight().Equal(decimal.NewFromInt(20)))
}

func TestTotals(t *testing.T) {
	set := emptySet(t)
	_, err := set.AddMachine(testMachine("A"), decimal.NewFromInt(60))
	require.NoError(t, err)
	_, err = set.AddMachine(testMachine("B"), decimal.NewFromInt(40))
	require.NoError(t, err)

	assert.True(t, set.TotalAllocatedRolls().Equal(decimal.NewFromInt(100)))
	assert.True(t, set.TotalAllocatedWeight().Equal(decimal.NewFromInt(50)))
	assert.Greater(t, set.SlowestMachineDays(), 0.0)
}

func TestNewAllocationSet_RecomputesStoredDerivedValues(t *testing.T) {
	// Rehydrated allocations carry only rolls; weight must be rederived
	lot := testLot(t)
	existing := allocation.RehydrateMachineAllocation("alloc-a", testMachine("A"), decimal.NewFromInt(40))

	set := allocation.NewAllocationSet(lot, []*allocation.MachineAllocation{existing}, allocation.NewStickerFloor(nil))

	a := set.Allocations()[0]
	assert.True(t, a.Weight().Equal(decimal.NewFromInt(20)))
	assert.Greater(t, a.EstimatedDays(), 0.0)
}

func TestSnapshot_IncludesFloor(t *testing.T) {
	lot := testLot(t)
	existing := allocation.RehydrateMachineAllocation("alloc-a", testMachine("A"), decimal.NewFromInt(30))
	floor := allocation.NewStickerFloor(map[string]int{"alloc-a": 12})
	set := allocation.NewAllocationSet(lot, []*allocation.MachineAllocation{existing}, floor)

	views := set.Snapshot()

	require.Len(t, views, 1)
	assert.Equal(t, "alloc-a", views[0].AllocationID)
	assert.Equal(t, 12, views[0].StickerFloor)
}
