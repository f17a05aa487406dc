package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milltex/knitplan/internal/application/planning/queries"
)

func newLotCommand(deps *Deps) *cobra.Command {
	lotCmd := &cobra.Command{
		Use:   "lot",
		Short: "Inspect production lots",
	}

	lotCmd.AddCommand(&cobra.Command{
		Use:   "show <lot-id>",
		Short: "Show a lot's allocation plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := deps.Mediator.Send(commandContext(cmd, deps), queries.GetAllocationPlanQuery{LotID: args[0]})
			if err != nil {
				return err
			}

			result, ok := resp.(queries.GetAllocationPlanResult)
			if !ok {
				return fmt.Errorf("unexpected response type %T", resp)
			}

			printPlan(cmd, result.Plan)
			return nil
		},
	})

	return lotCmd
}
