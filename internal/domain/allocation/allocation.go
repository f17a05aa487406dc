package allocation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MachineAllocation is the portion of a lot's required rolls assigned to one
// machine. Rolls is the only independently settable quantity; weight and the
// production-time estimate are always derived from it, never stored inputs.
//
// The allocation id is what the sticker ledger keys its printed-roll records
// on, so it must be stable across edit sessions.
type MachineAllocation struct {
	id            string
	machine       Machine
	rolls         decimal.Decimal
	weight        decimal.Decimal
	estimatedDays float64
}

// newMachineAllocation creates a fresh allocation for a machine being added
// to a lot. Derived fields are computed by the owning AllocationSet.
func newMachineAllocation(machine Machine, rolls decimal.Decimal) *MachineAllocation {
	return &MachineAllocation{
		id:      uuid.New().String(),
		machine: machine,
		rolls:   rolls,
	}
}

// RehydrateMachineAllocation rebuilds an allocation loaded from storage.
// Only the id, machine and roll count are trusted; weight and estimated days
// are recomputed when the allocation joins an AllocationSet, so a stale
// derived value in storage can never survive a load.
func RehydrateMachineAllocation(id string, machine Machine, rolls decimal.Decimal) *MachineAllocation {
	return &MachineAllocation{
		id:      id,
		machine: machine,
		rolls:   rolls,
	}
}

// ID returns the allocation identifier
func (a *MachineAllocation) ID() string {
	return a.id
}

// Machine returns the machine this allocation is assigned to
func (a *MachineAllocation) Machine() Machine {
	return a.machine
}

// Rolls returns the allocated roll count
func (a *MachineAllocation) Rolls() decimal.Decimal {
	return a.rolls
}

// Weight returns the allocated weight in kilograms, derived from rolls
func (a *MachineAllocation) Weight() decimal.Decimal {
	return a.weight
}

// EstimatedDays returns the estimated production time for this allocation
func (a *MachineAllocation) EstimatedDays() float64 {
	return a.estimatedDays
}

// AllocationView is a read-only projection of one allocation for rendering
type AllocationView struct {
	AllocationID  string
	MachineID     string
	MachineName   string
	Rolls         decimal.Decimal
	Weight        decimal.Decimal
	EstimatedDays float64
	StickerFloor  int
}
