package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/milltex/knitplan/internal/application/planning/commands"
	"github.com/milltex/knitplan/internal/application/planning/queries"
)

func newAllocationCommand(deps *Deps) *cobra.Command {
	allocationCmd := &cobra.Command{
		Use:   "allocation",
		Short: "Distribute a lot's rolls across machines",
	}

	allocationCmd.AddCommand(newAllocationPlanCommand(deps))
	allocationCmd.AddCommand(newAllocationEditCommand(deps))
	allocationCmd.AddCommand(newAllocationValidateCommand(deps))

	return allocationCmd
}

func newAllocationPlanCommand(deps *Deps) *cobra.Command {
	var lotID, machineID string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create the initial plan: one machine holding the full quantity",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := deps.Mediator.Send(commandContext(cmd, deps), commands.PlanLotCommand{
				LotID:     lotID,
				MachineID: machineID,
			})
			if err != nil {
				return err
			}

			result, ok := resp.(commands.PlanLotResult)
			if !ok {
				return fmt.Errorf("unexpected response type %T", resp)
			}

			printOutcome(cmd, result.Outcome)
			printPlan(cmd, result.Plan)
			return nil
		},
	}

	cmd.Flags().StringVar(&lotID, "lot", "", "Lot id (required)")
	cmd.Flags().StringVar(&machineID, "machine", "", "Machine id to hold the full quantity (required)")
	_ = cmd.MarkFlagRequired("lot")
	_ = cmd.MarkFlagRequired("machine")

	return cmd
}

func newAllocationEditCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <lot-id> <op>...",
		Short: "Apply allocation edits in order, then validate and commit",
		Long: `Edits apply strictly in the order given. Operations:

  add:<machine>:<rolls>     allocate a machine with an initial roll count
  remove:<machine>          remove a machine's allocation
  set:<machine>:<rolls>     set a machine's roll count
  weight:<machine>:<kg>     set a machine's allocation by weight

If validation fails or the commit is rejected, nothing is stored.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := parseOps(args[1:])
			if err != nil {
				return err
			}

			resp, err := deps.Mediator.Send(commandContext(cmd, deps), commands.ReallocateLotCommand{
				LotID: args[0],
				Ops:   ops,
			})
			if err != nil {
				return err
			}

			result, ok := resp.(commands.ReallocateLotResult)
			if !ok {
				return fmt.Errorf("unexpected response type %T", resp)
			}

			printOutcome(cmd, result.Outcome)
			printPlan(cmd, result.Plan)
			return nil
		},
	}
}

func newAllocationValidateCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <lot-id>",
		Short: "Check a lot's stored allocations against the reconciliation rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := deps.Mediator.Send(commandContext(cmd, deps), queries.ValidatePlanQuery{LotID: args[0]})
			if err != nil {
				return err
			}

			result, ok := resp.(queries.ValidatePlanResult)
			if !ok {
				return fmt.Errorf("unexpected response type %T", resp)
			}

			if result.Ok() {
				cmd.Printf("Lot %s reconciles: %s rolls across %d machine(s)\n",
					args[0], result.Plan.TotalRolls.String(), len(result.Plan.Allocations))
				return nil
			}

			cmd.Printf("Lot %s does not reconcile:\n", args[0])
			printErrorList(cmd, result.Errors)
			return fmt.Errorf("%d validation error(s)", len(result.Errors))
		},
	}
}

// parseOps turns CLI op arguments into reallocation operations, preserving
// the order in which they were given
func parseOps(args []string) ([]commands.Op, error) {
	ops := make([]commands.Op, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ":")

		switch parts[0] {
		case "remove":
			if len(parts) != 2 || parts[1] == "" {
				return nil, fmt.Errorf("invalid operation %q: expected remove:<machine>", arg)
			}
			ops = append(ops, commands.Op{Kind: commands.OpRemove, MachineID: parts[1]})

		case "add", "set", "weight":
			if len(parts) != 3 || parts[1] == "" {
				return nil, fmt.Errorf("invalid operation %q: expected %s:<machine>:<quantity>", arg, parts[0])
			}
			qty, err := decimal.NewFromString(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid quantity in %q: %w", arg, err)
			}

			kind := commands.OpAdd
			switch parts[0] {
			case "set":
				kind = commands.OpSetRolls
			case "weight":
				kind = commands.OpSetWeight
			}
			ops = append(ops, commands.Op{Kind: kind, MachineID: parts[1], Quantity: qty})

		default:
			return nil, fmt.Errorf("unknown operation %q: expected add, remove, set or weight", arg)
		}
	}
	return ops, nil
}
