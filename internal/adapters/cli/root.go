package cli

import (
	"context"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/milltex/knitplan/internal/application/common"
)

// Deps carries everything the command tree needs from main
type Deps struct {
	Mediator common.Mediator
	Logger   common.Logger
	DB       *gorm.DB
}

// NewRootCommand creates the root command for the CLI
func NewRootCommand(deps *Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "knitplan",
		Short: "knitplan - machine load distribution for knitting lots",
		Long: `knitplan distributes a production lot's required roll quantity across
knitting machines, derives weights and production estimates, and reconciles
every edit against the rolls whose identification stickers are already printed.

Examples:
  knitplan lot show LOT-2031
  knitplan allocation plan --lot LOT-2031 --machine M-07
  knitplan allocation edit LOT-2031 add:M-12:0 set:M-07:60 set:M-12:40
  knitplan allocation edit LOT-2031 remove:M-12 set:M-07:100
  knitplan allocation validate LOT-2031`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newLotCommand(deps))
	rootCmd.AddCommand(newAllocationCommand(deps))
	rootCmd.AddCommand(newSeedCommand(deps))

	return rootCmd
}

// commandContext returns the context every handler runs under, with the
// logger attached
func commandContext(cmd *cobra.Command, deps *Deps) context.Context {
	return common.WithLogger(cmd.Context(), deps.Logger)
}
