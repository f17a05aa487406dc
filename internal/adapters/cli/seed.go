package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/milltex/knitplan/internal/adapters/persistence"
)

// newSeedCommand writes a small demo dataset so the CLI can be exercised
// against a fresh database
func newSeedCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo lot, machines and shift records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd, deps)

			machines := persistence.NewGormMachineCatalog(deps.DB, persistence.CatalogDefaults{})
			lots := persistence.NewGormLotRepository(deps.DB, machines)

			if err := lots.SaveLot(ctx, &persistence.LotModel{
				ID:            "LOT-2031",
				AllotmentCode: "ALT/26/0417",
				ActualRollQty: decimal.NewFromInt(100),
				Diameter:      30,
				Gauge:         24,
				YarnCount:     30,
				StitchLength:  2.8,
			}); err != nil {
				return err
			}

			demo := []*persistence.MachineModel{
				{ID: "M-07", Name: "Mayer Relanit 30-24 #7", Dia: 30, GG: 24, Needle: 2256, Feeder: 90, RPM: 26, Efficiency: 85, Constant: 0.00085, RollPerKg: decimal.RequireFromString("23.5")},
				{ID: "M-12", Name: "Terrot S296 30-24 #12", Dia: 30, GG: 24, Needle: 2256, Feeder: 96, RPM: 24, Efficiency: 80, Constant: 0.00085, RollPerKg: decimal.RequireFromString("23.5")},
				{ID: "M-03", Name: "Fukuhara 34-28 #3", Dia: 34, GG: 28, Needle: 2988, Feeder: 102, RPM: 22, Efficiency: 82, Constant: 0.00085, RollPerKg: decimal.RequireFromString("21")},
			}
			for _, m := range demo {
				if err := machines.SaveMachine(ctx, m); err != nil {
					return err
				}
			}

			cmd.Println("Seeded demo lot LOT-2031 and 3 machines.")
			return nil
		},
	}
}
