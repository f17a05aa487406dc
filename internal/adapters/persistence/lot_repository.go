package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/milltex/knitplan/internal/domain/allocation"
)

// GormLotRepository implements allocation.LotService using GORM
type GormLotRepository struct {
	db       *gorm.DB
	machines *GormMachineCatalog
}

// NewGormLotRepository creates a new GORM lot repository
func NewGormLotRepository(db *gorm.DB, machines *GormMachineCatalog) *GormLotRepository {
	return &GormLotRepository{db: db, machines: machines}
}

// GetLot retrieves the lot and its committed machine allocations. Allocations
// are rehydrated from id, machine and rolls only; derived values are
// recomputed by the allocation set.
func (r *GormLotRepository) GetLot(ctx context.Context, lotID string) (*allocation.Lot, []*allocation.MachineAllocation, error) {
	var model LotModel
	result := r.db.WithContext(ctx).Where("id = ?", lotID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("lot %s not found", lotID)
		}
		return nil, nil, fmt.Errorf("failed to find lot: %w", result.Error)
	}

	lot, err := allocation.NewLot(model.ID, model.AllotmentCode, model.ActualRollQty, model.Diameter, model.Gauge, model.YarnCount, model.StitchLength)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid lot row %s: %w", lotID, err)
	}

	var allocModels []MachineAllocationModel
	if err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("created_at").
		Find(&allocModels).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load allocations for lot %s: %w", lotID, err)
	}

	allocations := make([]*allocation.MachineAllocation, 0, len(allocModels))
	for _, am := range allocModels {
		machine, err := r.machines.GetMachine(ctx, am.MachineID)
		if err != nil {
			return nil, nil, fmt.Errorf("allocation %s references machine %s: %w", am.ID, am.MachineID, err)
		}
		allocations = append(allocations, allocation.RehydrateMachineAllocation(am.ID, machine, am.Rolls))
	}

	return lot, allocations, nil
}

// SaveLot inserts or updates a lot row. Used by seeding and by the order
// intake screens upstream of this core.
func (r *GormLotRepository) SaveLot(ctx context.Context, model *LotModel) error {
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save lot %s: %w", model.ID, err)
	}
	return nil
}
