package medalintegrationtests

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

	medalservice "github.com/ig0rayres/legendario-engine/app/modules/medal/application"
	medaldb "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories"
	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
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
	Repo        *medaldb.Impl
	Progression *progressiondb.Impl
	Service     *medalservice.MedalService
	Gen         *testutils.TestDataGenerator
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing medal test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
			return
		}
		testEnv = env
	})

	if testEnvErr != nil {
		t.Fatalf("Medal test environment initialization failed: %v", testEnvErr)
	}
	if testEnv == nil {
		t.Fatalf("Medal test environment not initialized")
	}
	return testEnv
}

// SetupTestMedalService truncates the database and wires the real medal
// service over it, with the real progression service as the payout
// awarder. No event bus and no season gateway, so payouts land on the
// lifetime counter only.
func SetupTestMedalService(t *testing.T) TestDeps {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer resetCancel()
	if err := env.TruncateAll(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	noOpTracer := noop.NewTracerProvider().Tracer("test_medal_service")

	progressionRepo := progressiondb.NewRepository(env.DB, nil)
	awarder := progressionservice.NewProgressionService(
		progressionRepo,
		nil,
		nil,
		testLogger,
		observability.NoopMetrics(),
		noOpTracer,
		env.DB,
		map[string]float64{"base": 1, "mid": 1.5, "premium": 3},
	)

	repo := medaldb.NewRepository(env.DB)
	service := medalservice.NewMedalService(
		repo,
		awarder,
		nil,
		testLogger,
		observability.NoopMetrics(),
		noOpTracer,
		nil,
	)

	return TestDeps{
		Ctx:         env.Ctx,
		BunDB:       env.DB,
		Repo:        repo,
		Progression: progressionRepo,
		Service:     service,
		Gen:         env.Generator,
	}
}
