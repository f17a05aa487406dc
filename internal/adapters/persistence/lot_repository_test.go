package persistence_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/milltex/knitplan/internal/adapters/persistence"
	"github.com/milltex/knitplan/test/helpers"
)

func seedLot(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&persistence.LotModel{
		ID:            "LOT-1",
		AllotmentCode: "ALT/26/001",
		ActualRollQty: decimal.NewFromInt(100),
		Diameter:      30,
		Gauge:         24,
		YarnCount:     30,
		StitchLength:  2.8,
	}).Error)

	require.NoError(t, db.Create(&persistence.MachineModel{
		ID: "M-01", Name: "Mayer 30-24", Dia: 30, GG: 24,
		Needle: 2256, Feeder: 90, RPM: 26, Efficiency: 85, Constant: 0.00085,
		RollPerKg: decimal.RequireFromString("0.5"),
	}).Error)
}

func newCatalog(db *gorm.DB) *persistence.GormMachineCatalog {
	return persistence.NewGormMachineCatalog(db, persistence.CatalogDefaults{
		ProductionConstant: 0.00085,
		Efficiency:         85,
	})
}

func TestLotRepository_GetLot(t *testing.T) {
	db := helpers.NewTestDB(t)
	seedLot(t, db)
	repo := persistence.NewGormLotRepository(db, newCatalog(db))

	lot, allocations, err := repo.GetLot(context.Background(), "LOT-1")

	require.NoError(t, err)
	assert.Equal(t, "ALT/26/001", lot.AllotmentCode())
	assert.True(t, lot.ActualRollQty().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 30, lot.Diameter())
	assert.Equal(t, 24, lot.Gauge())
	assert.Empty(t, allocations)
}

func TestLotRepository_GetLotRehydratesAllocations(t *testing.T) {
	db := helpers.NewTestDB(t)
	seedLot(t, db)
	require.NoError(t, db.Create(&persistence.MachineAllocationModel{
		ID: "alloc-1", LotID: "LOT-1", MachineID: "M-01",
		Rolls: decimal.NewFromInt(40),
		// Stored weight is deliberately wrong; loads must rederive it
		Weight: decimal.NewFromInt(999),
	}).Error)

	repo := persistence.NewGormLotRepository(db, newCatalog(db))

	_, allocations, err := repo.GetLot(context.Background(), "LOT-1")

	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, "alloc-1", allocations[0].ID())
	assert.Equal(t, "M-01", allocations[0].Machine().ID)
	assert.True(t, allocations[0].Rolls().Equal(decimal.NewFromInt(40)))
}

func TestLotRepository_NotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormLotRepository(db, newCatalog(db))

	_, _, err := repo.GetLot(context.Background(), "LOT-404")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMachineCatalog_BackfillsDefaults(t *testing.T) {
	db := helpers.NewTestDB(t)
	require.NoError(t, db.Create(&persistence.MachineModel{
		ID: "M-OLD", Name: "pre-constant row", Dia: 30, GG: 24,
		Needle: 2256, Feeder: 90, RPM: 26,
		RollPerKg: decimal.RequireFromString("0.5"),
	}).Error)

	catalog := newCatalog(db)

	machine, err := catalog.GetMachine(context.Background(), "M-OLD")

	require.NoError(t, err)
	assert.Equal(t, 0.00085, machine.Constant)
	assert.Equal(t, 85.0, machine.Efficiency)
}

func TestMachineCatalog_GetMachines(t *testing.T) {
	db := helpers.NewTestDB(t)
	seedLot(t, db)

	machines, err := newCatalog(db).GetMachines(context.Background())

	require.NoError(t, err)
	require.Len(t, machines, 1)
	assert.Equal(t, "M-01", machines[0].ID)
}
