package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Gunvolt24/order_service/config"
	"github.com/Gunvolt24/order_service/internal/app"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker, cleanup, err := app.BootstrapWorker(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap worker: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := worker.Run(ctx); err != nil {
		worker.Logger.Errorf(ctx, "worker stopped with error: %v", err)
		cleanup()
		os.Exit(1)
	}
}
