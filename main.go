package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/ig0rayres/legendario-engine/app"
	"github.com/ig0rayres/legendario-engine/config"
	"github.com/ig0rayres/legendario-engine/internal/observability"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs := observability.New(observability.Config{
		Environment:    cfg.Observability.Environment,
		MetricsAddress: cfg.Observability.MetricsAddress,
	})

	application, err := app.Initialize(ctx, cfg, obs)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	runErr := application.Run(ctx)

	if err := application.Close(context.Background()); err != nil {
		obs.Logger.Error("shutdown error", "error", err)
	}
	if runErr != nil {
		log.Fatalf("engine exited with error: %v", runErr)
	}
}
