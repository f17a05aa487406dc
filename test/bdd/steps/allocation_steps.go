package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/milltex/knitplan/internal/domain/allocation"
)

// memoryPersister records commits so scenarios can assert what reached it
type memoryPersister struct {
	calls     int
	fail      error
	committed []*allocation.MachineAllocation
}

func (p *memoryPersister) Commit(_ context.Context, _ string, allocs []*allocation.MachineAllocation) error {
	p.calls++
	if p.fail != nil {
		return p.fail
	}
	p.committed = allocs
	return nil
}

// pendingAllocation is a Given-step entry; the set itself is built lazily so
// the sticker floor can be frozen with every entry in place
type pendingAllocation struct {
	machineID string
	rolls     decimal.Decimal
	stickers  int
}

type allocationContext struct {
	requiredRolls decimal.Decimal
	pending       []pendingAllocation

	set       *allocation.AllocationSet
	recon     *allocation.Reconciliation
	persister *memoryPersister

	violations []error
	lastErr    error
	saveErr    error
}

func (ac *allocationContext) reset() {
	ac.requiredRolls = decimal.Zero
	ac.pending = nil
	ac.set = nil
	ac.recon = nil
	ac.persister = &memoryPersister{}
	ac.violations = nil
	ac.lastErr = nil
	ac.saveErr = nil
}

func (ac *allocationContext) machine(id string) allocation.Machine {
	return allocation.Machine{
		ID: id, Name: "Machine " + id, Dia: 30, GG: 24,
		Needle: 2256, Feeder: 90, RPM: 26, Efficiency: 85, Constant: 0.00085,
		RollPerKg: decimal.RequireFromString("0.5"),
	}
}

// ensureSet materializes the allocation set from the accumulated Given steps
func (ac *allocationContext) ensureSet() error {
	if ac.set != nil {
		return nil
	}

	lot, err := allocation.NewLot("LOT-100", "ALT/26/100", ac.requiredRolls, 30, 24, 30, 2.8)
	if err != nil {
		return err
	}

	var allocs []*allocation.MachineAllocation
	floor := make(map[string]int)
	for _, p := range ac.pending {
		allocID := "alloc-" + p.machineID
		allocs = append(allocs, allocation.RehydrateMachineAllocation(allocID, ac.machine(p.machineID), p.rolls))
		if p.stickers > 0 {
			floor[allocID] = p.stickers
		}
	}

	ac.set = allocation.NewAllocationSet(lot, allocs, allocation.NewStickerFloor(floor))
	return nil
}

func (ac *allocationContext) aLotRequiringRolls(rolls int) error {
	ac.requiredRolls = decimal.NewFromInt(int64(rolls))
	return nil
}

func (ac *allocationContext) machineIsAllocatedRolls(machineID string, rolls int) error {
	ac.pending = append(ac.pending, pendingAllocation{
		machineID: machineID,
		rolls:     decimal.NewFromInt(int64(rolls)),
	})
	return nil
}

func (ac *allocationContext) machineIsAllocatedRollsWithStickers(machineID string, rolls, stickers int) error {
	ac.pending = append(ac.pending, pendingAllocation{
		machineID: machineID,
		rolls:     decimal.NewFromInt(int64(rolls)),
		stickers:  stickers,
	})
	return nil
}

func (ac *allocationContext) machineIsSetToRolls(machineID string, rolls int) error {
	if err := ac.ensureSet(); err != nil {
		return err
	}
	ac.lastErr = ac.set.SetRollCount(machineID, decimal.NewFromInt(int64(rolls)))
	return nil
}

func (ac *allocationContext) machineIsRemoved(machineID string) error {
	if err := ac.ensureSet(); err != nil {
		return err
	}
	ac.lastErr = ac.set.RemoveMachine(machineID)
	return nil
}

func (ac *allocationContext) theAllocationSetIsValidated() error {
	if err := ac.ensureSet(); err != nil {
		return err
	}
	validator := allocation.NewReconciliationValidator(decimal.NewFromFloat(0.01))
	ac.violations = validator.Validate(ac.set)
	return nil
}

func (ac *allocationContext) thePersisterIsFailing() error {
	ac.persister.fail = errors.New("connection reset by peer")
	return nil
}

func (ac *allocationContext) thePlanIsSaved() error {
	if err := ac.ensureSet(); err != nil {
		return err
	}

	validator := allocation.NewReconciliationValidator(decimal.NewFromFloat(0.01))
	ac.recon = allocation.NewReconciliation(ac.set, validator, ac.persister, nil)

	errs, err := ac.recon.Validate()
	if err != nil {
		return err
	}
	ac.violations = errs
	if len(errs) > 0 {
		return nil
	}

	ac.saveErr = ac.recon.Commit(context.Background())
	return nil
}

func (ac *allocationContext) validationPasses() error {
	if len(ac.violations) != 0 {
		return fmt.Errorf("expected no violations but got %d: %v", len(ac.violations), ac.violations)
	}
	return nil
}

func (ac *allocationContext) validationReportsErrors(count int) error {
	if len(ac.violations) != count {
		return fmt.Errorf("expected %d violations but got %d: %v", count, len(ac.violations), ac.violations)
	}
	return nil
}

func (ac *allocationContext) validationFailsWithQuantityMismatch(total, expected int) error {
	for _, v := range ac.violations {
		var mismatch *allocation.QuantityMismatchError
		if errors.As(v, &mismatch) {
			if !mismatch.Total.Equal(decimal.NewFromInt(int64(total))) {
				return fmt.Errorf("expected total %d but got %s", total, mismatch.Total)
			}
			if !mismatch.Expected.Equal(decimal.NewFromInt(int64(expected))) {
				return fmt.Errorf("expected required quantity %d but got %s", expected, mismatch.Expected)
			}
			return nil
		}
	}
	return fmt.Errorf("no quantity mismatch among violations: %v", ac.violations)
}

func (ac *allocationContext) validationFailsWithZeroAllocation(machineID string) error {
	for _, v := range ac.violations {
		var zero *allocation.ZeroAllocationError
		if errors.As(v, &zero) && zero.MachineID == machineID {
			return nil
		}
	}
	return fmt.Errorf("no zero-allocation violation for machine %s among: %v", machineID, ac.violations)
}

func (ac *allocationContext) theOperationSucceeds() error {
	if ac.lastErr != nil {
		return fmt.Errorf("expected success but got: %v", ac.lastErr)
	}
	return nil
}

func (ac *allocationContext) theOperationFailsWithFloorViolation(requiredMin int) error {
	var violation *allocation.FloorViolationError
	if !errors.As(ac.lastErr, &violation) {
		return fmt.Errorf("expected a floor violation but got: %v", ac.lastErr)
	}
	if violation.RequiredMinimum != requiredMin {
		return fmt.Errorf("expected required minimum %d but got %d", requiredMin, violation.RequiredMinimum)
	}
	return nil
}

func (ac *allocationContext) machineStillHasRollsAllocated(machineID string, rolls int) error {
	for _, a := range ac.set.Allocations() {
		if a.Machine().ID == machineID {
			if !a.Rolls().Equal(decimal.NewFromInt(int64(rolls))) {
				return fmt.Errorf("expected %d rolls on %s but got %s", rolls, machineID, a.Rolls())
			}
			return nil
		}
	}
	return fmt.Errorf("machine %s has no allocation", machineID)
}

func (ac *allocationContext) thePlanIsCommitted() error {
	if ac.saveErr != nil {
		return fmt.Errorf("commit failed: %v", ac.saveErr)
	}
	if ac.recon.Status() != allocation.StatusCommitted {
		return fmt.Errorf("expected status %s but got %s", allocation.StatusCommitted, ac.recon.Status())
	}
	if len(ac.persister.committed) != len(ac.set.Allocations()) {
		return fmt.Errorf("persister received %d allocations, expected %d", len(ac.persister.committed), len(ac.set.Allocations()))
	}
	return nil
}

func (ac *allocationContext) theSaveIsRejected() error {
	if ac.recon.Status() != allocation.StatusRejected {
		return fmt.Errorf("expected status %s but got %s", allocation.StatusRejected, ac.recon.Status())
	}
	return nil
}

func (ac *allocationContext) nothingWasSentToThePersister() error {
	if ac.persister.calls != 0 {
		return fmt.Errorf("persister was called %d times", ac.persister.calls)
	}
	return nil
}

func (ac *allocationContext) theSaveReportsPersistenceFailure() error {
	var failure *allocation.PersistenceFailureError
	if !errors.As(ac.saveErr, &failure) {
		return fmt.Errorf("expected a persistence failure but got: %v", ac.saveErr)
	}
	return nil
}

func (ac *allocationContext) theSessionIsBackInDraft() error {
	if ac.recon.Status() != allocation.StatusDraft {
		return fmt.Errorf("expected status %s but got %s", allocation.StatusDraft, ac.recon.Status())
	}
	return nil
}

// InitializeAllocationScenario registers all allocation reconciliation step definitions
func InitializeAllocationScenario(ctx *godog.ScenarioContext) {
	ac := &allocationContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		ac.reset()
		return ctx, nil
	})

	ctx.Step(`^a lot requiring (\d+) rolls$`, ac.aLotRequiringRolls)
	ctx.Step(`^machine "([^"]*)" is allocated (\d+) rolls$`, ac.machineIsAllocatedRolls)
	ctx.Step(`^machine "([^"]*)" is allocated (\d+) rolls with (\d+) stickers printed$`, ac.machineIsAllocatedRollsWithStickers)

	ctx.Step(`^machine "([^"]*)" is set to (\d+) rolls$`, ac.machineIsSetToRolls)
	ctx.Step(`^machine "([^"]*)" is removed$`, ac.machineIsRemoved)
	ctx.Step(`^the allocation set is validated$`, ac.theAllocationSetIsValidated)
	ctx.Step(`^the persister is failing$`, ac.thePersisterIsFailing)
	ctx.Step(`^the plan is saved$`, ac.thePlanIsSaved)

	ctx.Step(`^validation passes$`, ac.validationPasses)
	ctx.Step(`^validation reports (\d+) errors$`, ac.validationReportsErrors)
	ctx.Step(`^validation fails with a quantity mismatch of (\d+) against (\d+)$`, ac.validationFailsWithQuantityMismatch)
	ctx.Step(`^validation fails with a zero allocation for machine "([^"]*)"$`, ac.validationFailsWithZeroAllocation)
	ctx.Step(`^the operation succeeds$`, ac.theOperationSucceeds)
	ctx.Step(`^the operation fails with a floor violation requiring at least (\d+) rolls$`, ac.theOperationFailsWithFloorViolation)
	ctx.Step(`^machine "([^"]*)" still has (\d+) rolls allocated$`, ac.machineStillHasRollsAllocated)
	ctx.Step(`^the plan is committed$`, ac.thePlanIsCommitted)
	ctx.Step(`^the save is rejected$`, ac.theSaveIsRejected)
	ctx.Step(`^nothing was sent to the persister$`, ac.nothingWasSentToThePersister)
	ctx.Step(`^the save reports a persistence failure$`, ac.theSaveReportsPersistenceFailure)
	ctx.Step(`^the session is back in draft$`, ac.theSessionIsBackInDraft)
}
