package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	medalmigrations "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories/migrations"
	notificationmigrations "github.com/ig0rayres/legendario-engine/app/modules/notification/infrastructure/repositories/migrations"
	progressionmigrations "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories/migrations"
	seasonmigrations "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories/migrations"
	"github.com/ig0rayres/legendario-engine/integration_tests/containers"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
)

// TestEnvironment holds the containers and connections shared by one
// integration test package.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	DSN           string
	NatsURL       string
	EventBus      eventbus.EventBus
	Logger        *slog.Logger
	Generator     *TestDataGenerator
}

// NewTestEnvironment starts Postgres and NATS containers, runs every
// module migration, and connects the event bus. Call Cleanup when the
// package is done.
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		cleanup(ctx, pgContainer, natsContainer)
		cancel()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		cleanup(ctx, pgContainer, natsContainer)
		cancel()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	bus, err := eventbus.New(ctx, natsURL, logger)
	if err != nil {
		db.Close()
		cleanup(ctx, pgContainer, natsContainer)
		cancel()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	return &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		PgContainer:   pgContainer,
		NatsContainer: natsContainer,
		DB:            db,
		DSN:           dsn,
		NatsURL:       natsURL,
		EventBus:      bus,
		Logger:        logger,
		Generator:     NewTestDataGenerator(),
	}, nil
}

// runMigrations applies every module's migrations in dependency order.
func runMigrations(ctx context.Context, db *bun.DB) error {
	ordered := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"progression", progressionmigrations.Migrations},
		{"medal", medalmigrations.Migrations},
		{"season", seasonmigrations.Migrations},
		{"notification", notificationmigrations.Migrations},
	}
	for _, mod := range ordered {
		migrator := migrate.NewMigrator(db, mod.migrations)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("init migrations for %s: %w", mod.name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", mod.name, err)
		}
	}
	return nil
}

// Cleanup tears the environment down.
func (env *TestEnvironment) Cleanup() {
	ctx := context.Background()
	if env.EventBus != nil {
		_ = env.EventBus.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	cleanup(ctx, env.PgContainer, env.NatsContainer)
	env.CancelContext()
}

// TruncateAll empties every mutable table between tests. Reference data
// (ranks, achievements) is seeded by migrations and left alone.
func (env *TestEnvironment) TruncateAll(ctx context.Context) error {
	tables := []string{
		"point_history",
		"user_score_states",
		"user_achievements",
		"season_winners",
		"seasons",
		"chat_messages",
		"conversations",
		"notifications",
		"subscriptions",
		"users",
	}
	for _, table := range tables {
		if _, err := env.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

func cleanup(ctx context.Context, pg *postgres.PostgresContainer, nats testcontainers.Container) {
	if pg != nil {
		_ = pg.Terminate(ctx)
	}
	if nats != nil {
		_ = nats.Terminate(ctx)
	}
}
