package planning

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milltex/knitplan/internal/domain/allocation"
	"github.com/milltex/knitplan/internal/domain/shared"
)

// Service opens editing sessions for lots. It holds the collaborator ports
// and the single system-wide reconciliation validator.
type Service struct {
	lots      allocation.LotService
	machines  allocation.MachineCatalog
	ledger    allocation.StickerLedger
	persister allocation.AllocationPersister
	validator *allocation.ReconciliationValidator
	clock     shared.Clock
}

// NewService creates a planning service
func NewService(
	lots allocation.LotService,
	machines allocation.MachineCatalog,
	ledger allocation.StickerLedger,
	persister allocation.AllocationPersister,
	validator *allocation.ReconciliationValidator,
	clock shared.Clock,
) *Service {
	return &Service{
		lots:      lots,
		machines:  machines,
		ledger:    ledger,
		persister: persister,
		validator: validator,
		clock:     clock,
	}
}

// Open loads everything a session needs in one pass: the lot with its
// committed allocations, the machine catalog, and the sticker floor. The
// floor is fetched once and frozen for the whole session; the persister
// re-checks it at commit time.
func (s *Service) Open(ctx context.Context, lotID string) (*Session, error) {
	lot, existing, err := s.lots.GetLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lot %s: %w", lotID, err)
	}

	machines, err := s.machines.GetMachines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load machine catalog: %w", err)
	}

	floor, err := s.ledger.GetLotStickerFloor(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sticker floor for lot %s: %w", lotID, err)
	}

	catalog := make(map[string]allocation.Machine, len(machines))
	for _, m := range machines {
		catalog[m.ID] = m
	}

	set := allocation.NewAllocationSet(lot, existing, floor)

	return &Session{
		id:      uuid.New().String(),
		catalog: catalog,
		recon:   allocation.NewReconciliation(set, s.validator, s.persister, s.clock),
	}, nil
}

// Session is one operator's edit session over one lot's allocation set.
// It is owned by a single caller; mutations apply synchronously in call
// order. Abandoning the session discards everything, as nothing is sent to
// the persister before Save.
type Session struct {
	id      string
	catalog map[string]allocation.Machine
	recon   *allocation.Reconciliation
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Status returns the reconciliation state of the session
func (s *Session) Status() allocation.ReconciliationStatus {
	return s.recon.Status()
}

// CompatibleMachines returns the catalog machines that can knit this lot's
// fabric, for machine pickers
func (s *Session) CompatibleMachines() []allocation.Machine {
	var out []allocation.Machine
	for _, m := range s.catalog {
		if m.CompatibleWith(s.recon.Set().Lot()) {
			out = append(out, m)
		}
	}
	return out
}

// AddMachine allocates a catalog machine to the lot
func (s *Session) AddMachine(machineID string, initialRolls decimal.Decimal) error {
	machine, ok := s.catalog[machineID]
	if !ok {
		return fmt.Errorf("machine %s not found in catalog", machineID)
	}

	if _, err := s.recon.Set().AddMachine(machine, initialRolls); err != nil {
		return err
	}

	s.recon.Invalidate()
	return nil
}

// RemoveMachine removes a machine's allocation from the lot
func (s *Session) RemoveMachine(machineID string) error {
	if err := s.recon.Set().RemoveMachine(machineID); err != nil {
		return err
	}

	s.recon.Invalidate()
	return nil
}

// SetRollCount changes a machine's allocated roll count
func (s *Session) SetRollCount(machineID string, rolls decimal.Decimal) error {
	if err := s.recon.Set().SetRollCount(machineID, rolls); err != nil {
		return err
	}

	s.recon.Invalidate()
	return nil
}

// SetWeight changes a machine's allocation by weight, converting through the
// machine's rolls-per-kilogram ratio
func (s *Session) SetWeight(machineID string, weight decimal.Decimal) error {
	if err := s.recon.Set().SetWeight(machineID, weight); err != nil {
		return err
	}

	s.recon.Invalidate()
	return nil
}

// Validate runs the reconciliation checks and returns every violation
func (s *Session) Validate() ([]error, error) {
	return s.recon.Validate()
}

// SaveResult is the outcome of a Save call. Exactly one of the three shapes
// holds: Committed with no errors, Rejected with validation errors, or a
// draft left open with a persistence failure.
type SaveResult struct {
	Status             allocation.ReconciliationStatus
	ValidationErrors   []error
	PersistenceFailure error
}

// Committed reports whether the save reached storage
func (r SaveResult) Committed() bool {
	return r.Status == allocation.StatusCommitted
}

// Save validates the set and, if it reconciles, commits it atomically through
// the persister. A rejected validation or a persister failure leaves the
// stored allocations untouched and the session open for correction.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	errs, err := s.recon.Validate()
	if err != nil {
		return SaveResult{}, err
	}
	if len(errs) > 0 {
		return SaveResult{Status: s.recon.Status(), ValidationErrors: errs}, nil
	}

	if err := s.recon.Commit(ctx); err != nil {
		return SaveResult{Status: s.recon.Status(), PersistenceFailure: err}, nil
	}

	return SaveResult{Status: s.recon.Status()}, nil
}

// Snapshot returns a read-only view of the current plan for rendering
func (s *Session) Snapshot() PlanView {
	set := s.recon.Set()
	lot := set.Lot()

	return PlanView{
		LotID:              lot.ID(),
		AllotmentCode:      lot.AllotmentCode(),
		RequiredRolls:      lot.ActualRollQty(),
		Allocations:        set.Snapshot(),
		TotalRolls:         set.TotalAllocatedRolls(),
		TotalWeight:        set.TotalAllocatedWeight(),
		SlowestMachineDays: set.SlowestMachineDays(),
		Status:             s.recon.Status(),
	}
}

// PlanView is the read-only projection of a session for the UI layer
type PlanView struct {
	LotID              string
	AllotmentCode      string
	RequiredRolls      decimal.Decimal
	Allocations        []allocation.AllocationView
	TotalRolls         decimal.Decimal
	TotalWeight        decimal.Decimal
	SlowestMachineDays float64
	Status             allocation.ReconciliationStatus
}
