package progressionservice

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/observability"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// ------------------------
// Fake Progression Repo
// ------------------------

type FakeProgressionRepo struct {
	mu    sync.Mutex
	trace []string

	states map[sharedtypes.UserID]*progressiondb.UserScoreState
	ranks  []progressiondb.Rank
	tiers  map[sharedtypes.UserID]string
	users  map[sharedtypes.UserID]bool

	history []progressiondb.PointHistory
	ranking []progressiondb.RankingEntry

	GetScoreStateFunc      func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (*progressiondb.UserScoreState, error)
	IncrementPointsFunc    func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*progressiondb.UserScoreState, error)
	AdjustPointsFunc       func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*progressiondb.UserScoreState, error)
	SavePointHistoryFunc   func(ctx context.Context, db bun.IDB, entry *progressiondb.PointHistory) error
	ListRanksDescFunc      func(ctx context.Context, db bun.IDB) ([]progressiondb.Rank, error)
	GetRankingFunc         func(ctx context.Context, db bun.IDB, scope sharedtypes.RankingScope, limit int) ([]progressiondb.RankingEntry, error)
	GetActiveTierFunc      func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (string, error)
	UserExistsFunc         func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error)
	ResetAllSeasonPtsFunc  func(ctx context.Context, db bun.IDB) (int64, error)
	UpdateRankFunc         func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, rankID string) (bool, error)
	GetPointHistoryFunc    func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, limit int) ([]progressiondb.PointHistory, error)
	EnsureScoreStateFunc   func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) error
}

func NewFakeProgressionRepo() *FakeProgressionRepo {
	return &FakeProgressionRepo{
		states: map[sharedtypes.UserID]*progressiondb.UserScoreState{},
		tiers:  map[sharedtypes.UserID]string{},
		users:  map[sharedtypes.UserID]bool{},
		ranks: []progressiondb.Rank{
			{ID: "expert", Name: "Expert", PointsRequired: 1000, Level: 3},
			{ID: "skilled", Name: "Skilled", PointsRequired: 500, Level: 2},
			{ID: "novice", Name: "Novice", PointsRequired: 0, Level: 1},
		},
	}
}

func (f *FakeProgressionRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeProgressionRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Seed installs a known member with the given counters and tier.
func (f *FakeProgressionRepo) Seed(userID sharedtypes.UserID, lifetime, season int64, rankID, tier string) {
	f.users[userID] = true
	f.states[userID] = &progressiondb.UserScoreState{
		UserID:         userID,
		LifetimePoints: lifetime,
		SeasonPoints:   season,
		CurrentRankID:  rankID,
	}
	if tier != "" {
		f.tiers[userID] = tier
	}
}

func (f *FakeProgressionRepo) History() []progressiondb.PointHistory {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]progressiondb.PointHistory, len(f.history))
	copy(out, f.history)
	return out
}

func (f *FakeProgressionRepo) GetScoreState(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (*progressiondb.UserScoreState, error) {
	f.record("GetScoreState")
	if f.GetScoreStateFunc != nil {
		return f.GetScoreStateFunc(ctx, db, userID)
	}
	state, ok := f.states[userID]
	if !ok {
		return nil, progressiondb.ErrScoreStateNotFound
	}
	copied := *state
	return &copied, nil
}

func (f *FakeProgressionRepo) EnsureScoreState(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) error {
	f.record("EnsureScoreState")
	if f.EnsureScoreStateFunc != nil {
		return f.EnsureScoreStateFunc(ctx, db, userID)
	}
	if _, ok := f.states[userID]; !ok {
		f.states[userID] = &progressiondb.UserScoreState{UserID: userID}
	}
	return nil
}

func (f *FakeProgressionRepo) IncrementPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*progressiondb.UserScoreState, error) {
	f.record("IncrementPoints")
	if f.IncrementPointsFunc != nil {
		return f.IncrementPointsFunc(ctx, db, userID, delta, includeSeason)
	}
	state, ok := f.states[userID]
	if !ok {
		return nil, progressiondb.ErrScoreStateNotFound
	}
	state.LifetimePoints += delta
	if includeSeason {
		state.SeasonPoints += delta
	}
	copied := *state
	return &copied, nil
}

func (f *FakeProgressionRepo) AdjustPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*progressiondb.UserScoreState, error) {
	f.record("AdjustPoints")
	if f.AdjustPointsFunc != nil {
		return f.AdjustPointsFunc(ctx, db, userID, delta, includeSeason)
	}
	state, ok := f.states[userID]
	if !ok {
		return nil, progressiondb.ErrScoreStateNotFound
	}
	state.LifetimePoints = max(state.LifetimePoints+delta, 0)
	if includeSeason {
		state.SeasonPoints = max(state.SeasonPoints+delta, 0)
	}
	copied := *state
	return &copied, nil
}

func (f *FakeProgressionRepo) ResetAllSeasonPoints(ctx context.Context, db bun.IDB) (int64, error) {
	f.record("ResetAllSeasonPoints")
	if f.ResetAllSeasonPtsFunc != nil {
		return f.ResetAllSeasonPtsFunc(ctx, db)
	}
	var count int64
	for _, state := range f.states {
		if state.SeasonPoints != 0 {
			state.SeasonPoints = 0
			count++
		}
	}
	return count, nil
}

func (f *FakeProgressionRepo) UpdateRank(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, rankID string) (bool, error) {
	f.record("UpdateRank")
	if f.UpdateRankFunc != nil {
		return f.UpdateRankFunc(ctx, db, userID, rankID)
	}
	state, ok := f.states[userID]
	if !ok {
		return false, nil
	}
	if state.CurrentRankID == rankID {
		return false, nil
	}
	state.CurrentRankID = rankID
	return true, nil
}

func (f *FakeProgressionRepo) ListRanksDesc(ctx context.Context, db bun.IDB) ([]progressiondb.Rank, error) {
	f.record("ListRanksDesc")
	if f.ListRanksDescFunc != nil {
		return f.ListRanksDescFunc(ctx, db)
	}
	out := make([]progressiondb.Rank, len(f.ranks))
	copy(out, f.ranks)
	return out, nil
}

func (f *FakeProgressionRepo) SavePointHistory(ctx context.Context, db bun.IDB, entry *progressiondb.PointHistory) error {
	f.record("SavePointHistory")
	if f.SavePointHistoryFunc != nil {
		return f.SavePointHistoryFunc(ctx, db, entry)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, *entry)
	return nil
}

func (f *FakeProgressionRepo) GetPointHistoryForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, limit int) ([]progressiondb.PointHistory, error) {
	f.record("GetPointHistoryForUser")
	if f.GetPointHistoryFunc != nil {
		return f.GetPointHistoryFunc(ctx, db, userID, limit)
	}
	var out []progressiondb.PointHistory
	for _, entry := range f.history {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *FakeProgressionRepo) GetRanking(ctx context.Context, db bun.IDB, scope sharedtypes.RankingScope, limit int) ([]progressiondb.RankingEntry, error) {
	f.record("GetRanking")
	if f.GetRankingFunc != nil {
		return f.GetRankingFunc(ctx, db, scope, limit)
	}
	out := make([]progressiondb.RankingEntry, len(f.ranking))
	copy(out, f.ranking)
	return out, nil
}

func (f *FakeProgressionRepo) GetActiveTier(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (string, error) {
	f.record("GetActiveTier")
	if f.GetActiveTierFunc != nil {
		return f.GetActiveTierFunc(ctx, db, userID)
	}
	return f.tiers[userID], nil
}

func (f *FakeProgressionRepo) UserExists(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error) {
	f.record("UserExists")
	if f.UserExistsFunc != nil {
		return f.UserExistsFunc(ctx, db, userID)
	}
	return f.users[userID], nil
}

var _ progressiondb.Repository = (*FakeProgressionRepo)(nil)

// ------------------------
// Fake season gateway and event bus
// ------------------------

type FakeSeasonGateway struct {
	SeasonID string
	Active   bool
	Err      error
}

func (f *FakeSeasonGateway) ActiveSeasonID(ctx context.Context, db bun.IDB) (string, bool, error) {
	return f.SeasonID, f.Active, f.Err
}

type FakeEventBus struct {
	mu     sync.Mutex
	topics []string
	Err    error
}

func (f *FakeEventBus) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	return f.Err
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

// newTestService builds a ProgressionService over the fakes with noop
// telemetry.
func newTestService(repo *FakeProgressionRepo, seasons SeasonGateway, bus *FakeEventBus) *ProgressionService {
	if bus == nil {
		bus = &FakeEventBus{}
	}
	return NewProgressionService(
		repo,
		seasons,
		bus,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NoopMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		map[string]float64{"base": 1, "mid": 1.5, "premium": 3},
	)
}
