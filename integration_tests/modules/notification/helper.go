package notificationintegrationtests

import (
	"context"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	notificationservice "github.com/ig0rayres/legendario-engine/app/modules/notification/application"
	notificationdb "github.com/ig0rayres/legendario-engine/app/modules/notification/infrastructure/repositories"
	notificationrouter "github.com/ig0rayres/legendario-engine/app/modules/notification/infrastructure/router"
	"github.com/ig0rayres/legendario-engine/integration_tests/testutils"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
)

// Global variables for the test environment, initialized once.
var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

type TestDeps struct {
	Ctx   context.Context
	BunDB *bun.DB
	Bus   eventbus.EventBus
	Gen   *testutils.TestDataGenerator
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing notification test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
			return
		}
		testEnv = env
	})

	if testEnvErr != nil {
		t.Fatalf("Notification test environment initialization failed: %v", testEnvErr)
	}
	if testEnv == nil {
		t.Fatalf("Notification test environment not initialized")
	}
	return testEnv
}

// SetupTestNotificationRouter truncates the database, wires the real
// projection over NATS, and runs the watermill router for the duration of
// the test.
func SetupTestNotificationRouter(t *testing.T) TestDeps {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer resetCancel()
	if err := env.TruncateAll(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := notificationservice.NewNotificationService(
		notificationdb.NewRepository(env.DB),
		testLogger,
	)

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(testLogger))
	if err != nil {
		t.Fatalf("failed to create router: %v", err)
	}
	notifRouter := notificationrouter.NewNotificationRouter(testLogger, router, env.EventBus)
	if err := notifRouter.Configure(service); err != nil {
		t.Fatalf("failed to configure router: %v", err)
	}

	routerCtx, routerCancel := context.WithCancel(env.Ctx)
	go func() {
		if err := router.Run(routerCtx); err != nil {
			log.Printf("router stopped: %v", err)
		}
	}()
	select {
	case <-router.Running():
	case <-time.After(10 * time.Second):
		routerCancel()
		t.Fatalf("router did not start in time")
	}
	t.Cleanup(func() {
		routerCancel()
		_ = notifRouter.Close()
	})

	return TestDeps{
		Ctx:   env.Ctx,
		BunDB: env.DB,
		Bus:   env.EventBus,
		Gen:   env.Generator,
	}
}

// waitForNotifications polls until the user has at least want rows or the
// deadline passes. Projections are asynchronous; the deadline is generous
// to absorb container latency.
func waitForNotifications(t *testing.T, deps TestDeps, userID string, want int) []notificationdb.Notification {
	t.Helper()

	deadline := time.Now().Add(15 * time.Second)
	for {
		var rows []notificationdb.Notification
		err := deps.BunDB.NewSelect().
			Model(&rows).
			Where("user_id = ?", userID).
			Order("id ASC").
			Scan(deps.Ctx)
		if err != nil {
			t.Fatalf("failed to query notifications: %v", err)
		}
		if len(rows) >= want {
			return rows
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d notifications, have %d", want, len(rows))
		}
		time.Sleep(100 * time.Millisecond)
	}
}
