package seasonintegrationtests

import (
	"context"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
	seasonservice "github.com/ig0rayres/legendario-engine/app/modules/season/application"
	seasonadapters "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/adapters"
	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/integration_tests/testutils"
	"github.com/ig0rayres/legendario-engine/internal/observability"
)

// Global variables for the test environment, initialized once.
var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

type TestDeps struct {
	Ctx         context.Context
	BunDB       *bun.DB
	Repo        *seasondb.Impl
	Progression *progressionservice.ProgressionService
	ProgRepo    *progressiondb.Impl
	Service     *seasonservice.SeasonService
	Gen         *testutils.TestDataGenerator
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing season test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
			return
		}
		testEnv = env
	})

	if testEnvErr != nil {
		t.Fatalf("Season test environment initialization failed: %v", testEnvErr)
	}
	if testEnv == nil {
		t.Fatalf("Season test environment not initialized")
	}
	return testEnv
}

// SetupTestSeasonService truncates the database and wires the real season
// service over it, with the real progression service as both ranking
// source and season counter resetter. The rollover transaction runs on
// the real database.
func SetupTestSeasonService(t *testing.T) TestDeps {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer resetCancel()
	if err := env.TruncateAll(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	noOpTracer := noop.NewTracerProvider().Tracer("test_season_service")

	repo := seasondb.NewRepository(env.DB)
	progRepo := progressiondb.NewRepository(env.DB, nil)
	progression := progressionservice.NewProgressionService(
		progRepo,
		seasonadapters.NewSeasonGatewayAdapter(repo),
		nil,
		testLogger,
		observability.NoopMetrics(),
		noOpTracer,
		env.DB,
		map[string]float64{"base": 1, "mid": 1.5, "premium": 3},
	)

	service := seasonservice.NewSeasonService(
		repo,
		progression,
		progRepo,
		nil,
		testLogger,
		observability.NoopMetrics(),
		noOpTracer,
		env.DB,
		time.UTC,
		3,
	)

	return TestDeps{
		Ctx:         env.Ctx,
		BunDB:       env.DB,
		Repo:        repo,
		Progression: progression,
		ProgRepo:    progRepo,
		Service:     service,
		Gen:         env.Generator,
	}
}

// insertSeason writes a season row directly, bypassing CreateSeason's
// future-window validation so tests can stage expired seasons.
func insertSeason(t *testing.T, deps TestDeps, name, status string, startsAt, endsAt time.Time) *seasondb.Season {
	t.Helper()

	season := &seasondb.Season{
		Name:     name,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Status:   status,
	}
	if _, err := deps.BunDB.NewInsert().Model(season).Exec(deps.Ctx); err != nil {
		t.Fatalf("failed to insert season %s: %v", name, err)
	}
	return season
}
