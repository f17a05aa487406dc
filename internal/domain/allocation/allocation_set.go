package allocation

import "github.com/shopspring/decimal"

// AllocationSet is the mutable collection of machine allocations for one lot.
// It owns every edit path: machines enter through AddMachine (which enforces
// compatibility and uniqueness), leave through RemoveMachine (which enforces
// the sticker floor), and change through SetRollCount/SetWeight (which clamp,
// enforce the floor and recompute derived values).
//
// The set is owned by exactly one editing session and is never shared between
// goroutines; mutations are synchronous and total, so no partial state is
// ever observable between calls.
type AllocationSet struct {
	lot         *Lot
	floor       StickerFloor
	allocations []*MachineAllocation
	byMachine   map[string]*MachineAllocation

	converter RollWeightConverter
	estimator ProductionTimeEstimator
}

// NewAllocationSet builds the editable set for a lot from allocations loaded
// by the lot service and the session-frozen sticker floor. Weight and
// estimated days are recomputed for every allocation on construction, so
// invariant "weight == rolls * rollPerKg" holds from the first render.
func NewAllocationSet(lot *Lot, existing []*MachineAllocation, floor StickerFloor) *AllocationSet {
	set := &AllocationSet{
		lot:       lot,
		floor:     floor,
		byMachine: make(map[string]*MachineAllocation, len(existing)),
	}

	for _, a := range existing {
		set.allocations = append(set.allocations, a)
		set.byMachine[a.machine.ID] = a
		set.recompute(a)
	}

	return set
}

// Lot returns the lot this set allocates
func (s *AllocationSet) Lot() *Lot {
	return s.lot
}

// Floor returns the session-frozen sticker floor
func (s *AllocationSet) Floor() StickerFloor {
	return s.floor
}

// AddMachine inserts a new allocation for the machine. It fails with
// DuplicateMachineError if the machine already has an allocation in this set,
// and with GaugeMismatchError if the machine cannot knit the lot's fabric.
// A negative initial roll count is clamped to zero.
func (s *AllocationSet) AddMachine(machine Machine, initialRolls decimal.Decimal) (*MachineAllocation, error) {
	if _, exists := s.byMachine[machine.ID]; exists {
		return nil, NewDuplicateMachineError(machine.ID)
	}
	if !machine.CompatibleWith(s.lot) {
		return nil, NewGaugeMismatchError(machine.ID, machine.Dia, machine.GG, s.lot.Diameter(), s.lot.Gauge())
	}

	if initialRolls.Sign() < 0 {
		initialRolls = decimal.Zero
	}

	a := newMachineAllocation(machine, initialRolls)
	s.recompute(a)
	s.allocations = append(s.allocations, a)
	s.byMachine[machine.ID] = a

	return a, nil
}

// RemoveMachine removes the machine's allocation from the set. A machine with
// printed stickers can never be removed: those rolls physically exist.
func (s *AllocationSet) RemoveMachine(machineID string) error {
	a, ok := s.byMachine[machineID]
	if !ok {
		return NewMachineNotAllocatedError(machineID)
	}

	if floor := s.floor.Floor(a.id); floor > 0 {
		return NewFloorViolationError(machineID, floor, decimal.Zero)
	}

	delete(s.byMachine, machineID)
	for i, cur := range s.allocations {
		if cur == a {
			s.allocations = append(s.allocations[:i], s.allocations[i+1:]...)
			break
		}
	}

	return nil
}

// SetRollCount updates the machine's allocated roll count. Negative input is
// clamped to zero before any check. If the clamped value is below the sticker
// floor the operation fails and the allocation is left untouched; otherwise
// rolls are set and weight and estimated days recomputed.
func (s *AllocationSet) SetRollCount(machineID string, rolls decimal.Decimal) error {
	a, ok := s.byMachine[machineID]
	if !ok {
		return NewMachineNotAllocatedError(machineID)
	}

	if rolls.Sign() < 0 {
		rolls = decimal.Zero
	}

	if floor := s.floor.Floor(a.id); rolls.LessThan(decimal.NewFromInt(int64(floor))) {
		return NewFloorViolationError(machineID, floor, rolls)
	}

	a.rolls = rolls
	s.recompute(a)

	return nil
}

// SetWeight updates the machine's allocation from a weight entry, converting
// to rolls through the machine's rolls-per-kilogram ratio. The same clamping
// and floor rules as SetRollCount apply to the converted roll count.
func (s *AllocationSet) SetWeight(machineID string, weight decimal.Decimal) error {
	a, ok := s.byMachine[machineID]
	if !ok {
		return NewMachineNotAllocatedError(machineID)
	}

	if weight.Sign() < 0 {
		weight = decimal.Zero
	}

	return s.SetRollCount(machineID, s.converter.RollsForWeight(weight, a.machine.RollPerKg))
}

// TotalAllocatedRolls returns the sum of all allocated roll counts
func (s *AllocationSet) TotalAllocatedRolls() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.allocations {
		total = total.Add(a.rolls)
	}
	return total
}

// TotalAllocatedWeight returns the sum of all derived weights in kilograms
func (s *AllocationSet) TotalAllocatedWeight() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.allocations {
		total = total.Add(a.weight)
	}
	return total
}

// SlowestMachineDays returns the largest per-machine production estimate.
// Machines knit in parallel, so the lot finishes with its slowest machine.
func (s *AllocationSet) SlowestMachineDays() float64 {
	var max float64
	for _, a := range s.allocations {
		if a.estimatedDays > max {
			max = a.estimatedDays
		}
	}
	return max
}

// Allocations returns the allocations in insertion order. The slice is a
// copy; the allocations themselves are live and must not be mutated by
// callers.
func (s *AllocationSet) Allocations() []*MachineAllocation {
	out := make([]*MachineAllocation, len(s.allocations))
	copy(out, s.allocations)
	return out
}

// Snapshot returns a read-only projection of the set for rendering
func (s *AllocationSet) Snapshot() []AllocationView {
	views := make([]AllocationView, 0, len(s.allocations))
	for _, a := range s.allocations {
		views = append(views, AllocationView{
			AllocationID:  a.id,
			MachineID:     a.machine.ID,
			MachineName:   a.machine.Name,
			Rolls:         a.rolls,
			Weight:        a.weight,
			EstimatedDays: a.estimatedDays,
			StickerFloor:  s.floor.Floor(a.id),
		})
	}
	return views
}

// recompute rederives weight and estimated days after any roll change
func (s *AllocationSet) recompute(a *MachineAllocation) {
	a.weight = s.converter.WeightForRolls(a.rolls, a.machine.RollPerKg)
	a.estimatedDays = s.estimator.EstimateDays(EstimateInput{
		AllocatedWeightKg: a.weight.InexactFloat64(),
		Needle:            a.machine.Needle,
		Feeder:            a.machine.Feeder,
		RPM:               a.machine.RPM,
		StitchLength:      s.lot.StitchLength(),
		YarnCount:         s.lot.YarnCount(),
		Efficiency:        a.machine.Efficiency,
		Constant:          a.machine.Constant,
	})
}
