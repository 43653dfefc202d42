package seasonservice

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/observability"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

type FakeSeasonRepo struct {
	mu    sync.Mutex
	trace []string

	seasons map[string]*seasondb.Season
	winners map[string][]seasondb.SeasonWinner

	CreateSeasonFunc   func(ctx context.Context, db bun.IDB, season *seasondb.Season) error
	FinishSeasonFunc   func(ctx context.Context, db bun.IDB, seasonID string) (bool, error)
	ActivateSeasonFunc func(ctx context.Context, db bun.IDB, seasonID string) (bool, error)
}

func NewFakeSeasonRepo() *FakeSeasonRepo {
	return &FakeSeasonRepo{
		seasons: map[string]*seasondb.Season{},
		winners: map[string][]seasondb.SeasonWinner{},
	}
}

func (f *FakeSeasonRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeSeasonRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeSeasonRepo) Add(season *seasondb.Season) {
	f.seasons[season.ID] = season
}

func (f *FakeSeasonRepo) CreateSeason(ctx context.Context, db bun.IDB, season *seasondb.Season) error {
	f.record("CreateSeason")
	if f.CreateSeasonFunc != nil {
		return f.CreateSeasonFunc(ctx, db, season)
	}
	for _, existing := range f.seasons {
		if existing.Status != seasondb.StatusFinished &&
			existing.StartsAt.Before(season.EndsAt) && existing.EndsAt.After(season.StartsAt) {
			return seasondb.ErrSeasonOverlap
		}
	}
	if season.ID == "" {
		season.ID = "season-" + season.Name
	}
	f.seasons[season.ID] = season
	return nil
}

func (f *FakeSeasonRepo) GetSeason(ctx context.Context, db bun.IDB, seasonID string) (*seasondb.Season, error) {
	f.record("GetSeason")
	season, ok := f.seasons[seasonID]
	if !ok {
		return nil, seasondb.ErrSeasonNotFound
	}
	copied := *season
	return &copied, nil
}

func (f *FakeSeasonRepo) GetActiveSeason(ctx context.Context, db bun.IDB) (*seasondb.Season, error) {
	f.record("GetActiveSeason")
	for _, season := range f.seasons {
		if season.Status == seasondb.StatusActive {
			copied := *season
			return &copied, nil
		}
	}
	return nil, seasondb.ErrSeasonNotFound
}

func (f *FakeSeasonRepo) ListSeasons(ctx context.Context, db bun.IDB) ([]seasondb.Season, error) {
	f.record("ListSeasons")
	var out []seasondb.Season
	for _, season := range f.seasons {
		out = append(out, *season)
	}
	return out, nil
}

func (f *FakeSeasonRepo) ListExpiredActive(ctx context.Context, db bun.IDB, now time.Time) ([]seasondb.Season, error) {
	f.record("ListExpiredActive")
	var out []seasondb.Season
	for _, season := range f.seasons {
		if season.Status == seasondb.StatusActive && !season.EndsAt.After(now) {
			out = append(out, *season)
		}
	}
	return out, nil
}

func (f *FakeSeasonRepo) FindActivatable(ctx context.Context, db bun.IDB, now time.Time) (*seasondb.Season, error) {
	f.record("FindActivatable")
	var candidate *seasondb.Season
	for _, season := range f.seasons {
		if season.Status != seasondb.StatusScheduled {
			continue
		}
		if season.StartsAt.After(now) || !season.EndsAt.After(now) {
			continue
		}
		if candidate == nil || season.StartsAt.Before(candidate.StartsAt) {
			candidate = season
		}
	}
	if candidate == nil {
		return nil, nil
	}
	copied := *candidate
	return &copied, nil
}

func (f *FakeSeasonRepo) FinishSeason(ctx context.Context, db bun.IDB, seasonID string) (bool, error) {
	f.record("FinishSeason")
	if f.FinishSeasonFunc != nil {
		return f.FinishSeasonFunc(ctx, db, seasonID)
	}
	season, ok := f.seasons[seasonID]
	if !ok || season.Status != seasondb.StatusActive {
		return false, nil
	}
	season.Status = seasondb.StatusFinished
	now := time.Now()
	season.FinishedAt = &now
	return true, nil
}

func (f *FakeSeasonRepo) ActivateSeason(ctx context.Context, db bun.IDB, seasonID string) (bool, error) {
	f.record("ActivateSeason")
	if f.ActivateSeasonFunc != nil {
		return f.ActivateSeasonFunc(ctx, db, seasonID)
	}
	for _, other := range f.seasons {
		if other.Status == seasondb.StatusActive {
			return false, nil
		}
	}
	season, ok := f.seasons[seasonID]
	if !ok || season.Status != seasondb.StatusScheduled {
		return false, nil
	}
	season.Status = seasondb.StatusActive
	return true, nil
}

func (f *FakeSeasonRepo) InsertWinners(ctx context.Context, db bun.IDB, winners []seasondb.SeasonWinner) error {
	f.record("InsertWinners")
	if len(winners) == 0 {
		return nil
	}
	seasonID := winners[0].SeasonID
	f.winners[seasonID] = append(f.winners[seasonID], winners...)
	return nil
}

func (f *FakeSeasonRepo) ListWinners(ctx context.Context, db bun.IDB, seasonID string) ([]seasondb.SeasonWinner, error) {
	f.record("ListWinners")
	return f.winners[seasonID], nil
}

var _ seasondb.Repository = (*FakeSeasonRepo)(nil)

// FakeTxRunner runs the transaction body with a zero bun.Tx. The fakes
// ignore the db argument, so the body behaves as if committed.
type FakeTxRunner struct {
	Err error
}

func (f *FakeTxRunner) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	if f.Err != nil {
		return f.Err
	}
	return fn(ctx, bun.Tx{})
}

type FakeRankingSource struct {
	Rows []progressionservice.RankingRow
	Err  error
}

func (f *FakeRankingSource) RankingSnapshot(ctx context.Context, db bun.IDB, scope sharedtypes.RankingScope, limit int) ([]progressionservice.RankingRow, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if limit > 0 && len(f.Rows) > limit {
		return f.Rows[:limit], nil
	}
	return f.Rows, nil
}

type FakeScoreResetter struct {
	Count int64
	Err   error

	calls int
}

func (f *FakeScoreResetter) ResetAllSeasonPoints(ctx context.Context, db bun.IDB) (int64, error) {
	f.calls++
	return f.Count, f.Err
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

type testServiceOpts struct {
	ranking  RankingSource
	resetter ScoreResetter
	bus      *FakeEventBus
	winnersN int
	now      func() time.Time
}

func newTestService(repo *FakeSeasonRepo, opts testServiceOpts) *SeasonService {
	if opts.ranking == nil {
		opts.ranking = &FakeRankingSource{}
	}
	if opts.resetter == nil {
		opts.resetter = &FakeScoreResetter{}
	}
	if opts.bus == nil {
		opts.bus = &FakeEventBus{}
	}
	svc := NewSeasonService(
		repo,
		opts.ranking,
		opts.resetter,
		opts.bus,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NoopMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		&FakeTxRunner{},
		nil,
		opts.winnersN,
	)
	if opts.now != nil {
		svc.now = opts.now
	}
	return svc
}
