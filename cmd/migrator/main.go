package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-recruitment-datalayer/config"
	"go-recruitment-datalayer/internal/cli"
	"go-recruitment-datalayer/pkg/logger"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer lg.Sync()

	// 3. Run the command; SIGINT/SIGTERM cancel in-flight batches
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cli.NewRootCmd(cli.Bootstrap(cfg, lg)).ExecuteContext(ctx)
	stop()
	if err != nil {
		lg.Error("migrator failed", "error", err)
		lg.Sync()
		os.Exit(1)
	}
}
