package api

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	medalservice "github.com/ig0rayres/legendario-engine/app/modules/medal/application"
	medaldb "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories"
	notificationservice "github.com/ig0rayres/legendario-engine/app/modules/notification/application"
	notificationdb "github.com/ig0rayres/legendario-engine/app/modules/notification/infrastructure/repositories"
	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
	seasonservice "github.com/ig0rayres/legendario-engine/app/modules/season/application"
	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/config"
	"github.com/ig0rayres/legendario-engine/internal/observability"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// The handler tests run the real services over in-memory stub
// repositories; only the database is faked.

type stubProgressionRepo struct {
	states  map[sharedtypes.UserID]*progressiondb.UserScoreState
	ranking []progressiondb.RankingEntry
}

func newStubProgressionRepo() *stubProgressionRepo {
	return &stubProgressionRepo{
		states: map[sharedtypes.UserID]*progressiondb.UserScoreState{
			"u-1": {UserID: "u-1"},
		},
	}
}

func (r *stubProgressionRepo) GetScoreState(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (*progressiondb.UserScoreState, error) {
	state, ok := r.states[userID]
	if !ok {
		return nil, progressiondb.ErrScoreStateNotFound
	}
	copied := *state
	return &copied, nil
}

func (r *stubProgressionRepo) EnsureScoreState(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) error {
	if _, ok := r.states[userID]; !ok {
		r.states[userID] = &progressiondb.UserScoreState{UserID: userID}
	}
	return nil
}

func (r *stubProgressionRepo) IncrementPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*progressiondb.UserScoreState, error) {
	state := r.states[userID]
	state.LifetimePoints += delta
	if includeSeason {
		state.SeasonPoints += delta
	}
	copied := *state
	return &copied, nil
}

func (r *stubProgressionRepo) AdjustPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*progressiondb.UserScoreState, error) {
	state := r.states[userID]
	state.LifetimePoints = max(state.LifetimePoints+delta, 0)
	if includeSeason {
		state.SeasonPoints = max(state.SeasonPoints+delta, 0)
	}
	copied := *state
	return &copied, nil
}

func (r *stubProgressionRepo) ResetAllSeasonPoints(ctx context.Context, db bun.IDB) (int64, error) {
	return 0, nil
}

func (r *stubProgressionRepo) UpdateRank(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, rankID string) (bool, error) {
	state := r.states[userID]
	if state.CurrentRankID == rankID {
		return false, nil
	}
	state.CurrentRankID = rankID
	return true, nil
}

func (r *stubProgressionRepo) ListRanksDesc(ctx context.Context, db bun.IDB) ([]progressiondb.Rank, error) {
	return []progressiondb.Rank{
		{ID: "skilled", Name: "Skilled", PointsRequired: 500, Level: 2},
		{ID: "novice", Name: "Novice", PointsRequired: 0, Level: 1},
	}, nil
}

func (r *stubProgressionRepo) SavePointHistory(ctx context.Context, db bun.IDB, entry *progressiondb.PointHistory) error {
	return nil
}

func (r *stubProgressionRepo) GetPointHistoryForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, limit int) ([]progressiondb.PointHistory, error) {
	return nil, nil
}

func (r *stubProgressionRepo) GetRanking(ctx context.Context, db bun.IDB, scope sharedtypes.RankingScope, limit int) ([]progressiondb.RankingEntry, error) {
	return r.ranking, nil
}

func (r *stubProgressionRepo) GetActiveTier(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (string, error) {
	return "", nil
}

func (r *stubProgressionRepo) UserExists(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error) {
	_, ok := r.states[userID]
	return ok, nil
}

var _ progressiondb.Repository = (*stubProgressionRepo)(nil)

type stubMedalRepo struct{}

func (stubMedalRepo) GetAchievement(ctx context.Context, db bun.IDB, achievementID string) (*medaldb.Achievement, error) {
	return nil, medaldb.ErrAchievementNotFound
}

func (stubMedalRepo) ListAchievements(ctx context.Context, db bun.IDB, activeOnly bool) ([]medaldb.Achievement, error) {
	return nil, nil
}

func (stubMedalRepo) InsertGrant(ctx context.Context, db bun.IDB, grant *medaldb.UserAchievement) (bool, error) {
	return true, nil
}

func (stubMedalRepo) ListGrantsForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) ([]medaldb.UserAchievement, error) {
	return nil, nil
}

func (stubMedalRepo) UserExists(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error) {
	return userID == "u-1", nil
}

var _ medaldb.Repository = stubMedalRepo{}

type stubSeasonRepo struct{}

func (stubSeasonRepo) CreateSeason(ctx context.Context, db bun.IDB, season *seasondb.Season) error {
	season.ID = "season-test"
	return nil
}

func (stubSeasonRepo) GetSeason(ctx context.Context, db bun.IDB, seasonID string) (*seasondb.Season, error) {
	return nil, seasondb.ErrSeasonNotFound
}

func (stubSeasonRepo) GetActiveSeason(ctx context.Context, db bun.IDB) (*seasondb.Season, error) {
	return nil, seasondb.ErrSeasonNotFound
}

func (stubSeasonRepo) ListSeasons(ctx context.Context, db bun.IDB) ([]seasondb.Season, error) {
	return nil, nil
}

func (stubSeasonRepo) ListExpiredActive(ctx context.Context, db bun.IDB, now time.Time) ([]seasondb.Season, error) {
	return nil, nil
}

func (stubSeasonRepo) FindActivatable(ctx context.Context, db bun.IDB, now time.Time) (*seasondb.Season, error) {
	return nil, nil
}

func (stubSeasonRepo) FinishSeason(ctx context.Context, db bun.IDB, seasonID string) (bool, error) {
	return false, nil
}

func (stubSeasonRepo) ActivateSeason(ctx context.Context, db bun.IDB, seasonID string) (bool, error) {
	return false, nil
}

func (stubSeasonRepo) InsertWinners(ctx context.Context, db bun.IDB, winners []seasondb.SeasonWinner) error {
	return nil
}

func (stubSeasonRepo) ListWinners(ctx context.Context, db bun.IDB, seasonID string) ([]seasondb.SeasonWinner, error) {
	return nil, nil
}

var _ seasondb.Repository = stubSeasonRepo{}

type stubNotificationRepo struct{}

func (stubNotificationRepo) InsertNotification(ctx context.Context, db bun.IDB, n *notificationdb.Notification) error {
	return nil
}

func (stubNotificationRepo) ListNotificationsForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, limit int) ([]notificationdb.Notification, error) {
	return nil, nil
}

func (stubNotificationRepo) LocateOrCreateConversation(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (int64, error) {
	return 1, nil
}

func (stubNotificationRepo) InsertChatMessage(ctx context.Context, db bun.IDB, m *notificationdb.ChatMessage) error {
	return nil
}

var _ notificationdb.Repository = stubNotificationRepo{}

type seasonTxRunner struct{}

func (seasonTxRunner) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Addr:           "127.0.0.1:0",
			AwardRateLimit: 100,
			AwardRateBurst: 100,
		},
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			DefaultTTL: time.Hour,
		},
		Scheduler: config.SchedulerConfig{
			SharedSecret:     "cron-secret",
			WinnersPerSeason: 3,
		},
		Progression: config.ProgressionConfig{
			Multipliers: map[string]float64{"base": 1, "mid": 1.5, "premium": 3},
		},
	}
}

// buildServer wires real services over the stubs.
func buildServer(cfg *config.Config, progRepo progressiondb.Repository) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NoopMetrics()
	tracer := noop.NewTracerProvider().Tracer("test")

	progression := progressionservice.NewProgressionService(
		progRepo, nil, nil, logger, metrics, tracer, nil, cfg.Progression.Multipliers)
	medals := medalservice.NewMedalService(
		stubMedalRepo{}, progression, nil, logger, metrics, tracer, nil)
	seasons := seasonservice.NewSeasonService(
		stubSeasonRepo{}, progression, progRepo, nil, logger, metrics, tracer,
		seasonTxRunner{}, nil, cfg.Scheduler.WinnersPerSeason)
	notifications := notificationservice.NewNotificationService(stubNotificationRepo{}, logger)

	return NewServer(cfg, logger, progression, medals, seasons, notifications, nil)
}
