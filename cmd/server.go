package cmd

import (
	"context"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"stock-advisor/internal/delivery/http"
	"stock-advisor/internal/repository"
	"stock-advisor/internal/service"
	"syscall"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the hourly recommendation scheduler and read API",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo := repository.NewRepository(appDep.cfg, appDep.cache, appDep.db.DB, appDep.log)
	services := service.NewService(appDep.cfg, appDep.log, repo)
	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services)

	if err := services.SchedulerService.Start(); err != nil {
		log.Fatalf("Failed to start cycle scheduler: %v", err)
	}

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	services.SchedulerService.Stop()

	if err := apiServer.Stop(); err != nil {
		log.Fatalf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
