package season

import (
	"context"
	"sync"
	"time"

	"github.com/uptrace/bun"

	seasonservice "github.com/ig0rayres/legendario-engine/app/modules/season/application"
	seasonadapters "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/adapters"
	seasonqueue "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/queue"
	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/config"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
	"github.com/ig0rayres/legendario-engine/internal/observability"
)

// Module bundles the season lifecycle service, its repository, the
// gateway adapter consumed by the point engine, and the optional daily
// scheduler.
type Module struct {
	Service    *seasonservice.SeasonService
	Repository seasondb.Repository
	Gateway    *seasonadapters.SeasonGatewayAdapter
	Queue      *seasonqueue.Service
	cancelFunc context.CancelFunc
}

// NewSeasonModule wires the season lifecycle. The rollover's ranking
// snapshot and counter reset come from the progression module, injected
// as narrow interfaces to keep the dependency one-way.
func NewSeasonModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	ranking seasonservice.RankingSource,
	resetter seasonservice.ScoreResetter,
	location *time.Location,
) (*Module, error) {
	obs.Logger.InfoContext(ctx, "Initializing season module")

	repo := seasondb.NewRepository(db)
	service := seasonservice.NewSeasonService(
		repo,
		ranking,
		resetter,
		eventBus,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
		db,
		location,
		cfg.Scheduler.WinnersPerSeason,
	)

	module := &Module{
		Service:    service,
		Repository: repo,
		Gateway:    seasonadapters.NewSeasonGatewayAdapter(repo),
	}

	if cfg.Scheduler.DailyRollover {
		queue, err := seasonqueue.NewService(ctx, cfg.Postgres.DSN, service, obs.Logger)
		if err != nil {
			return nil, err
		}
		module.Queue = queue
	}

	return module, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}
	<-ctx.Done()
}

func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
