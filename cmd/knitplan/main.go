package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/milltex/knitplan/internal/adapters/cli"
	"github.com/milltex/knitplan/internal/adapters/persistence"
	"github.com/milltex/knitplan/internal/application/common"
	"github.com/milltex/knitplan/internal/application/planning"
	"github.com/milltex/knitplan/internal/application/planning/commands"
	"github.com/milltex/knitplan/internal/application/planning/queries"
	"github.com/milltex/knitplan/internal/domain/allocation"
	"github.com/milltex/knitplan/internal/domain/shared"
	"github.com/milltex/knitplan/internal/infrastructure/config"
	"github.com/milltex/knitplan/internal/infrastructure/database"
	"github.com/milltex/knitplan/internal/infrastructure/logging"
)

func main() {
	cfg := config.MustLoadConfig(os.Getenv("KNITPLAN_CONFIG"))

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	// Adapters
	machines := persistence.NewGormMachineCatalog(db, persistence.CatalogDefaults{
		ProductionConstant: cfg.Planning.ProductionConstant,
		Efficiency:         cfg.Planning.DefaultEfficiency,
	})
	lots := persistence.NewGormLotRepository(db, machines)
	ledger := persistence.NewGormStickerLedger(db)
	persister := persistence.NewGormAllocationPersister(db)

	// Application services
	validator := allocation.NewReconciliationValidator(decimal.NewFromFloat(cfg.Planning.Tolerance))
	sessions := planning.NewService(lots, machines, ledger, persister, validator, shared.NewRealClock())

	mediator := common.NewMediator()
	mediator.Use(common.LoggingMiddleware)

	mustRegister := func(err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to register handler: %v\n", err)
			os.Exit(1)
		}
	}
	mustRegister(common.RegisterHandler[commands.PlanLotCommand](mediator, commands.NewPlanLotHandler(sessions)))
	mustRegister(common.RegisterHandler[commands.ReallocateLotCommand](mediator, commands.NewReallocateLotHandler(sessions)))
	mustRegister(common.RegisterHandler[queries.GetAllocationPlanQuery](mediator, queries.NewGetAllocationPlanHandler(sessions)))
	mustRegister(common.RegisterHandler[queries.ValidatePlanQuery](mediator, queries.NewValidatePlanHandler(sessions)))

	rootCmd := cli.NewRootCommand(&cli.Deps{
		Mediator: mediator,
		Logger:   logging.NewStdoutLogger(&cfg.Logging),
		DB:       db,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
