// Package app is the composition root: it builds the database handle,
// event bus, watermill router, the four modules, and the HTTP server.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ig0rayres/legendario-engine/api"
	"github.com/ig0rayres/legendario-engine/app/modules/medal"
	"github.com/ig0rayres/legendario-engine/app/modules/notification"
	"github.com/ig0rayres/legendario-engine/app/modules/progression"
	"github.com/ig0rayres/legendario-engine/app/modules/season"
	seasonadapters "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/adapters"
	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/config"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
	"github.com/ig0rayres/legendario-engine/internal/observability"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
)

// App owns every long-lived component of the engine.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router

	Progression  *progression.Module
	Medal        *medal.Module
	Season       *season.Module
	Notification *notification.Module

	Server *api.Server
}

// Initialize builds the full dependency graph. The season gateway is
// constructed before the progression module and the season module after
// it, which keeps the cross-module references one-way.
func Initialize(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger

	location, err := time.LoadLocation(cfg.Progression.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid progression timezone %q: %w", cfg.Progression.Timezone, err)
	}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	bus, err := eventbus.New(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	// The gateway wraps the season repository directly; repositories are
	// stateless over the shared bun handle, so the season module building
	// its own instance later is harmless.
	seasonGateway := seasonadapters.NewSeasonGatewayAdapter(seasondb.NewRepository(db))

	progressionModule, err := progression.NewProgressionModule(ctx, cfg, obs, db, bus, seasonGateway)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize progression module: %w", err)
	}

	medalModule, err := medal.NewMedalModule(ctx, cfg, obs, db, bus, progressionModule.Service, location)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize medal module: %w", err)
	}

	seasonModule, err := season.NewSeasonModule(ctx, cfg, obs, db, bus,
		progressionModule.Service, progressionModule.Repository, location)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize season module: %w", err)
	}

	notificationModule, err := notification.NewNotificationModule(ctx, cfg, obs, db, bus, router)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notification module: %w", err)
	}

	server := api.NewServer(cfg, logger,
		progressionModule.Service,
		medalModule.Service,
		seasonModule.Service,
		notificationModule.Service,
		obs.MetricsHandler(),
	)

	return &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		EventBus:      bus,
		Router:        router,
		Progression:   progressionModule,
		Medal:         medalModule,
		Season:        seasonModule,
		Notification:  notificationModule,
		Server:        server,
	}, nil
}

// Run starts the router, the scheduler, and the HTTP server, then blocks
// until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger
	errCh := make(chan error, 2)

	go func() {
		if err := a.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("watermill router: %w", err)
		}
	}()

	if a.Season.Queue != nil {
		if err := a.Season.Queue.Start(ctx); err != nil {
			return fmt.Errorf("failed to start rollover scheduler: %w", err)
		}
	}

	var wg sync.WaitGroup
	for _, module := range []interface {
		Run(context.Context, *sync.WaitGroup)
	}{a.Progression, a.Medal, a.Season, a.Notification} {
		wg.Add(1)
		go module.Run(ctx, &wg)
	}

	go func() {
		if err := a.Server.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	logger.InfoContext(ctx, "Engine started")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.ErrorContext(ctx, "Fatal component error", attr.Error(err))
		return err
	}

	wg.Wait()
	return nil
}

// Close shuts everything down in reverse dependency order.
func (a *App) Close(ctx context.Context) error {
	logger := a.Observability.Logger

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", attr.Error(err))
	}
	if a.Season.Queue != nil {
		if err := a.Season.Queue.Stop(shutdownCtx); err != nil {
			logger.Error("Rollover scheduler stop failed", attr.Error(err))
		}
	}
	for _, module := range []interface{ Close() error }{
		a.Notification, a.Season, a.Medal, a.Progression,
	} {
		if err := module.Close(); err != nil {
			logger.Error("Module close failed", attr.Error(err))
		}
	}
	if err := a.Router.Close(); err != nil {
		logger.Error("Watermill router close failed", attr.Error(err))
	}
	if err := a.EventBus.Close(); err != nil {
		logger.Error("Event bus close failed", attr.Error(err))
	}
	if err := a.DB.Close(); err != nil {
		logger.Error("Database close failed", attr.Error(err))
	}
	return a.Observability.Close(shutdownCtx)
}
