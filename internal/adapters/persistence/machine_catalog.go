package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/milltex/knitplan/internal/domain/allocation"
)

// CatalogDefaults backfill machine rows that predate the efficiency and
// production-constant columns. Values come from planning configuration, not
// from literals at call sites.
type CatalogDefaults struct {
	ProductionConstant float64
	Efficiency         float64
}

// GormMachineCatalog implements allocation.MachineCatalog using GORM
type GormMachineCatalog struct {
	db       *gorm.DB
	defaults CatalogDefaults
}

// NewGormMachineCatalog creates a new GORM machine catalog
func NewGormMachineCatalog(db *gorm.DB, defaults CatalogDefaults) *GormMachineCatalog {
	return &GormMachineCatalog{db: db, defaults: defaults}
}

// GetMachines retrieves all machines in the catalog
func (r *GormMachineCatalog) GetMachines(ctx context.Context) ([]allocation.Machine, error) {
	var models []MachineModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load machine catalog: %w", err)
	}

	machines := make([]allocation.Machine, 0, len(models))
	for _, m := range models {
		machines = append(machines, r.toDomain(m))
	}
	return machines, nil
}

// GetMachine retrieves a single machine by id
func (r *GormMachineCatalog) GetMachine(ctx context.Context, machineID string) (allocation.Machine, error) {
	var model MachineModel
	result := r.db.WithContext(ctx).Where("id = ?", machineID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return allocation.Machine{}, fmt.Errorf("machine %s not found", machineID)
		}
		return allocation.Machine{}, fmt.Errorf("failed to find machine: %w", result.Error)
	}
	return r.toDomain(model), nil
}

// SaveMachine inserts or updates a catalog row. Used by seeding and the
// machine-master screens upstream of this core.
func (r *GormMachineCatalog) SaveMachine(ctx context.Context, model *MachineModel) error {
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save machine %s: %w", model.ID, err)
	}
	return nil
}

func (r *GormMachineCatalog) toDomain(m MachineModel) allocation.Machine {
	machine := allocation.Machine{
		ID:         m.ID,
		Name:       m.Name,
		Dia:        m.Dia,
		GG:         m.GG,
		Needle:     m.Needle,
		Feeder:     m.Feeder,
		RPM:        m.RPM,
		Efficiency: m.Efficiency,
		Constant:   m.Constant,
		RollPerKg:  m.RollPerKg,
	}
	if machine.Constant <= 0 {
		machine.Constant = r.defaults.ProductionConstant
	}
	if machine.Efficiency <= 0 {
		machine.Efficiency = r.defaults.Efficiency
	}
	return machine
}
