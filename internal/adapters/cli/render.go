package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/milltex/knitplan/internal/application/planning"
	"github.com/milltex/knitplan/internal/domain/allocation"
)

func printPlan(cmd *cobra.Command, plan planning.PlanView) {
	cmd.Printf("Lot %s (%s) - requires %s rolls\n", plan.LotID, plan.AllotmentCode, plan.RequiredRolls.String())
	cmd.Printf("%-12s %-20s %10s %12s %10s %8s\n", "MACHINE", "NAME", "ROLLS", "WEIGHT(KG)", "EST.DAYS", "FLOOR")

	for _, a := range plan.Allocations {
		cmd.Printf("%-12s %-20s %10s %12s %10.2f %8d\n",
			a.MachineID, a.MachineName, a.Rolls.String(), a.Weight.StringFixed(2), a.EstimatedDays, a.StickerFloor)
	}

	cmd.Printf("Total: %s rolls, %s kg; slowest machine %.2f days; status %s\n",
		plan.TotalRolls.String(), plan.TotalWeight.StringFixed(2), plan.SlowestMachineDays, plan.Status)
}

func printOutcome(cmd *cobra.Command, outcome planning.SaveResult) {
	switch {
	case outcome.Committed():
		cmd.Println("Allocations committed.")
	case len(outcome.ValidationErrors) > 0:
		cmd.Println("Save rejected:")
		printErrorList(cmd, outcome.ValidationErrors)
	case outcome.PersistenceFailure != nil:
		cmd.Printf("Commit failed, session left in draft: %v\n", outcome.PersistenceFailure)
	}
}

// printErrorList renders each validation error with the specific rule and
// machine that failed, never a generic message
func printErrorList(cmd *cobra.Command, errs []error) {
	for _, err := range errs {
		var qty *allocation.QuantityMismatchError
		var floor *allocation.FloorViolationError
		var zero *allocation.ZeroAllocationError

		switch {
		case errors.As(err, &qty):
			cmd.Printf("  quantity mismatch: allocated %s of %s (difference %s)\n",
				qty.Total.String(), qty.Expected.String(), qty.Diff.String())
		case errors.As(err, &floor):
			cmd.Printf("  sticker floor: machine %s needs at least %d rolls\n",
				floor.MachineID, floor.RequiredMinimum)
		case errors.As(err, &zero):
			cmd.Printf("  zero allocation: machine %s must get rolls or be removed\n", zero.MachineID)
		default:
			cmd.Printf("  %v\n", err)
		}
	}
}
