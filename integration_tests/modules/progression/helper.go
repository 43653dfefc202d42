package progressionintegrationtests

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

const reservedEmail = "ops@rota.club"

type TestDeps struct {
	Ctx     context.Context
	BunDB   *bun.DB
	Repo    *progressiondb.Impl
	Service *progressionservice.ProgressionService
	Gen     *testutils.TestDataGenerator
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing progression test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
			return
		}
		testEnv = env
	})

	if testEnvErr != nil {
		t.Fatalf("Progression test environment initialization failed: %v", testEnvErr)
	}
	if testEnv == nil {
		t.Fatalf("Progression test environment not initialized")
	}
	return testEnv
}

// SetupTestProgressionService truncates the database and wires the real
// progression service over it: real repository, real season gateway, no
// event bus.
func SetupTestProgressionService(t *testing.T) TestDeps {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer resetCancel()
	if err := env.TruncateAll(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	repo := progressiondb.NewRepository(env.DB, []string{reservedEmail})
	gateway := seasonadapters.NewSeasonGatewayAdapter(seasondb.NewRepository(env.DB))

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	noOpTracer := noop.NewTracerProvider().Tracer("test_progression_service")

	service := progressionservice.NewProgressionService(
		repo,
		gateway,
		nil,
		testLogger,
		observability.NoopMetrics(),
		noOpTracer,
		env.DB,
		map[string]float64{"base": 1, "mid": 1.5, "premium": 3},
	)

	return TestDeps{
		Ctx:     env.Ctx,
		BunDB:   env.DB,
		Repo:    repo,
		Service: service,
		Gen:     env.Generator,
	}
}

// insertActiveSeason writes an active season row whose window contains
// now, so awards pick up the season counter.
func insertActiveSeason(t *testing.T, deps TestDeps, name string) *seasondb.Season {
	t.Helper()

	start, end := deps.Gen.SeasonWindow(-time.Hour, 48*time.Hour)
	season := &seasondb.Season{
		Name:     name,
		StartsAt: start,
		EndsAt:   end,
		Status:   seasondb.StatusActive,
	}
	if _, err := deps.BunDB.NewInsert().Model(season).Exec(deps.Ctx); err != nil {
		t.Fatalf("failed to insert active season: %v", err)
	}
	return season
}
