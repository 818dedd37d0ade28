package cmd

import (
	"context"
	"log"
	"stock-advisor/internal/repository"
	"stock-advisor/internal/service"

	"github.com/spf13/cobra"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run a single evaluation cycle and exit",
	Run:   RunSingleCycle,
}

func RunSingleCycle(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	repo := repository.NewRepository(appDep.cfg, appDep.cache, appDep.db.DB, appDep.log)
	services := service.NewService(appDep.cfg, appDep.log, repo)

	report, err := services.OrchestratorService.RunCycle(ctx)
	if err != nil {
		log.Fatalf("Cycle run failed: %v", err)
	}

	log.Printf("Cycle %s finished with status %s (%d/%d succeeded)",
		report.CycleID, report.Status, report.SuccessCount, report.TotalStocks)
}
