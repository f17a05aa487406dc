package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotModel represents the lots table
type LotModel struct {
	ID            string          `gorm:"column:id;primaryKey"`
	AllotmentCode string          `gorm:"column:allotment_code;unique;not null"`
	ActualRollQty decimal.Decimal `gorm:"column:actual_roll_qty;type:decimal(20,8);not null"`
	Diameter      int             `gorm:"column:diameter;not null"`
	Gauge         int             `gorm:"column:gauge;not null"`
	YarnCount     float64         `gorm:"column:yarn_count"`
	StitchLength  float64         `gorm:"column:stitch_length"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (LotModel) TableName() string {
	return "lots"
}

// MachineModel represents the machines table (the machine catalog)
type MachineModel struct {
	ID         string          `gorm:"column:id;primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	Dia        int             `gorm:"column:dia;not null"`
	GG         int             `gorm:"column:gg;not null"`
	Needle     int             `gorm:"column:needle"`
	Feeder     int             `gorm:"column:feeder"`
	RPM        float64         `gorm:"column:rpm"`
	Efficiency float64         `gorm:"column:efficiency"`
	Constant   float64         `gorm:"column:constant"`
	RollPerKg  decimal.Decimal `gorm:"column:roll_per_kg;type:decimal(20,8)"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (MachineModel) TableName() string {
	return "machines"
}

// MachineAllocationModel represents the machine_allocations table.
// Weight is stored for reporting queries but is always rederived from rolls
// on load; rolls is the source of truth.
type MachineAllocationModel struct {
	ID        string          `gorm:"column:id;primaryKey"`
	LotID     string          `gorm:"column:lot_id;index;not null"`
	MachineID string          `gorm:"column:machine_id;index;not null"`
	Rolls     decimal.Decimal `gorm:"column:rolls;type:decimal(20,8);not null"`
	Weight    decimal.Decimal `gorm:"column:weight;type:decimal(20,8);not null"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (MachineAllocationModel) TableName() string {
	return "machine_allocations"
}

// RollAssignmentModel represents the roll_assignments table: one row per work
// shift recording rolls worked and identification stickers printed. Rows are
// written by the external printing workflow; this repository only reads and
// sums them. GeneratedStickers per allocation can only grow.
type RollAssignmentModel struct {
	ID                  uint            `gorm:"column:id;primaryKey;autoIncrement"`
	MachineAllocationID string          `gorm:"column:machine_allocation_id;index;not null"`
	ShiftCode           string          `gorm:"column:shift_code"`
	RollsWorked         decimal.Decimal `gorm:"column:rolls_worked;type:decimal(20,8)"`
	GeneratedStickers   int             `gorm:"column:generated_stickers;not null;default:0"`
	CreatedAt           time.Time       `gorm:"column:created_at"`
}

func (RollAssignmentModel) TableName() string {
	return "roll_assignments"
}
