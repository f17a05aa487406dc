package persistence

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/milltex/knitplan/internal/domain/allocation"
)

// GormAllocationPersister implements allocation.AllocationPersister.
//
// A commit replaces the lot's stored allocations with the incoming set in a
// single transaction: all-or-nothing. The sticker floor is re-read inside the
// transaction because the session's frozen floor may be stale; printing can
// happen concurrently in another session. A floor that moved above an
// incoming allocation rejects the whole commit with a FloorViolationError,
// which the caller surfaces as an ordinary persistence failure.
type GormAllocationPersister struct {
	db *gorm.DB
}

// NewGormAllocationPersister creates a new GORM allocation persister
func NewGormAllocationPersister(db *gorm.DB) *GormAllocationPersister {
	return &GormAllocationPersister{db: db}
}

// Commit atomically stores the allocation set for the lot
func (r *GormAllocationPersister) Commit(ctx context.Context, lotID string, allocations []*allocation.MachineAllocation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		floor, err := currentFloor(tx, lotID)
		if err != nil {
			return err
		}

		incoming := make(map[string]struct{}, len(allocations))
		for _, a := range allocations {
			incoming[a.ID()] = struct{}{}
			if min := floor[a.ID()]; a.Rolls().LessThan(decimal.NewFromInt(int64(min))) {
				return allocation.NewFloorViolationError(a.Machine().ID, min, a.Rolls())
			}
		}

		var current []MachineAllocationModel
		if err := tx.Where("lot_id = ?", lotID).Find(&current).Error; err != nil {
			return fmt.Errorf("failed to load current allocations for lot %s: %w", lotID, err)
		}

		for _, cur := range current {
			if _, keep := incoming[cur.ID]; keep {
				continue
			}
			if min := floor[cur.ID]; min > 0 {
				return allocation.NewFloorViolationError(cur.MachineID, min, decimal.Zero)
			}
			if err := tx.Delete(&MachineAllocationModel{}, "id = ?", cur.ID).Error; err != nil {
				return fmt.Errorf("failed to delete allocation %s: %w", cur.ID, err)
			}
		}

		for _, a := range allocations {
			model := &MachineAllocationModel{
				ID:        a.ID(),
				LotID:     lotID,
				MachineID: a.Machine().ID,
				Rolls:     a.Rolls(),
				Weight:    a.Weight(),
			}
			if err := tx.Save(model).Error; err != nil {
				return fmt.Errorf("failed to save allocation %s: %w", a.ID(), err)
			}
		}

		return nil
	})
}

// currentFloor re-reads the printed-sticker sums for the lot inside the
// commit transaction
func currentFloor(tx *gorm.DB, lotID string) (map[string]int, error) {
	var rows []floorRow
	err := tx.
		Model(&RollAssignmentModel{}).
		Select("roll_assignments.machine_allocation_id AS machine_allocation_id, COALESCE(SUM(roll_assignments.generated_stickers), 0) AS total").
		Joins("JOIN machine_allocations ON machine_allocations.id = roll_assignments.machine_allocation_id").
		Where("machine_allocations.lot_id = ?", lotID).
		Group("roll_assignments.machine_allocation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to re-check sticker floor for lot %s: %w", lotID, err)
	}

	floor := make(map[string]int, len(rows))
	for _, row := range rows {
		floor[row.MachineAllocationID] = row.Total
	}
	return floor, nil
}
