package medalservice

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	medaldb "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories"
	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	"github.com/ig0rayres/legendario-engine/internal/observability"
	"github.com/ig0rayres/legendario-engine/internal/results"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

type FakeMedalRepo struct {
	mu    sync.Mutex
	trace []string

	achievements map[string]*medaldb.Achievement
	grants       map[string]bool // userID|achievementID|period
	users        map[sharedtypes.UserID]bool

	GetAchievementFunc func(ctx context.Context, db bun.IDB, achievementID string) (*medaldb.Achievement, error)
	InsertGrantFunc    func(ctx context.Context, db bun.IDB, grant *medaldb.UserAchievement) (bool, error)
	UserExistsFunc     func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error)
}

func NewFakeMedalRepo() *FakeMedalRepo {
	return &FakeMedalRepo{
		achievements: map[string]*medaldb.Achievement{},
		grants:       map[string]bool{},
		users:        map[sharedtypes.UserID]bool{},
	}
}

func (f *FakeMedalRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeMedalRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func grantKey(userID sharedtypes.UserID, achievementID, period string) string {
	return userID.String() + "|" + achievementID + "|" + period
}

func (f *FakeMedalRepo) GetAchievement(ctx context.Context, db bun.IDB, achievementID string) (*medaldb.Achievement, error) {
	f.record("GetAchievement")
	if f.GetAchievementFunc != nil {
		return f.GetAchievementFunc(ctx, db, achievementID)
	}
	ach, ok := f.achievements[achievementID]
	if !ok {
		return nil, medaldb.ErrAchievementNotFound
	}
	copied := *ach
	return &copied, nil
}

func (f *FakeMedalRepo) ListAchievements(ctx context.Context, db bun.IDB, activeOnly bool) ([]medaldb.Achievement, error) {
	f.record("ListAchievements")
	var out []medaldb.Achievement
	for _, ach := range f.achievements {
		if activeOnly && !ach.Active {
			continue
		}
		out = append(out, *ach)
	}
	return out, nil
}

func (f *FakeMedalRepo) InsertGrant(ctx context.Context, db bun.IDB, grant *medaldb.UserAchievement) (bool, error) {
	f.record("InsertGrant")
	if f.InsertGrantFunc != nil {
		return f.InsertGrantFunc(ctx, db, grant)
	}
	key := grantKey(grant.UserID, grant.AchievementID, grant.Period)
	if f.grants[key] {
		return false, nil
	}
	f.grants[key] = true
	return true, nil
}

func (f *FakeMedalRepo) ListGrantsForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) ([]medaldb.UserAchievement, error) {
	f.record("ListGrantsForUser")
	return nil, nil
}

func (f *FakeMedalRepo) UserExists(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error) {
	f.record("UserExists")
	if f.UserExistsFunc != nil {
		return f.UserExistsFunc(ctx, db, userID)
	}
	return f.users[userID], nil
}

var _ medaldb.Repository = (*FakeMedalRepo)(nil)

// FakeAwarder records award calls and replies with a canned result.
type FakeAwarder struct {
	mu     sync.Mutex
	inputs []progressionservice.AwardInput

	Result results.OperationResult[progressionservice.AwardOutput, error]
	Err    error
}

func (f *FakeAwarder) AwardPoints(ctx context.Context, input progressionservice.AwardInput) (results.OperationResult[progressionservice.AwardOutput, error], error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	return f.Result, f.Err
}

func (f *FakeAwarder) Inputs() []progressionservice.AwardInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]progressionservice.AwardInput, len(f.inputs))
	copy(out, f.inputs)
	return out
}

type FakeEventBus struct {
	mu     sync.Mutex
	topics []string
}

func (f *FakeEventBus) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }

func (f *FakeEventBus) Topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.topics))
	copy(out, f.topics)
	return out
}

func newTestService(repo *FakeMedalRepo, awarder PointAwarder, bus *FakeEventBus) *MedalService {
	if bus == nil {
		bus = &FakeEventBus{}
	}
	return NewMedalService(
		repo,
		awarder,
		bus,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NoopMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
	)
}
