package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/milltex/knitplan/internal/domain/allocation"
)

// GormStickerLedger implements allocation.StickerLedger by summing the
// shift-level roll_assignments written by the external printing workflow.
// Read-only: sticker counts are owned and incremented by that workflow.
type GormStickerLedger struct {
	db *gorm.DB
}

// NewGormStickerLedger creates a new GORM sticker ledger
func NewGormStickerLedger(db *gorm.DB) *GormStickerLedger {
	return &GormStickerLedger{db: db}
}

// GetGeneratedStickers returns the printed-sticker count for one allocation
func (r *GormStickerLedger) GetGeneratedStickers(ctx context.Context, machineAllocationID string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&RollAssignmentModel{}).
		Where("machine_allocation_id = ?", machineAllocationID).
		Select("COALESCE(SUM(generated_stickers), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum stickers for allocation %s: %w", machineAllocationID, err)
	}
	return total, nil
}

type floorRow struct {
	MachineAllocationID string
	Total               int
}

// GetLotStickerFloor returns the floor for every allocation of a lot in one
// grouped query. The result is frozen by the caller for the session.
func (r *GormStickerLedger) GetLotStickerFloor(ctx context.Context, lotID string) (allocation.StickerFloor, error) {
	var rows []floorRow
	err := r.db.WithContext(ctx).
		Model(&RollAssignmentModel{}).
		Select("roll_assignments.machine_allocation_id AS machine_allocation_id, COALESCE(SUM(roll_assignments.generated_stickers), 0) AS total").
		Joins("JOIN machine_allocations ON machine_allocations.id = roll_assignments.machine_allocation_id").
		Where("machine_allocations.lot_id = ?", lotID).
		Group("roll_assignments.machine_allocation_id").
		Scan(&rows).Error
	if err != nil {
		return allocation.StickerFloor{}, fmt.Errorf("failed to load sticker floor for lot %s: %w", lotID, err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.MachineAllocationID] = row.Total
	}
	return allocation.NewStickerFloor(counts), nil
}
