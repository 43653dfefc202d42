package progression

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/config"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
	"github.com/ig0rayres/legendario-engine/internal/observability"
)

// Module bundles the point engine's service and repository.
type Module struct {
	Service    *progressionservice.ProgressionService
	Repository progressiondb.Repository
	cancelFunc context.CancelFunc
}

// NewProgressionModule wires the point engine. seasons may be nil in
// tooling contexts; awards then skip season bookkeeping.
func NewProgressionModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	seasons progressionservice.SeasonGateway,
) (*Module, error) {
	obs.Logger.InfoContext(ctx, "Initializing progression module")

	repo := progressiondb.NewRepository(db, cfg.Progression.ReservedSystemEmails)
	service := progressionservice.NewProgressionService(
		repo,
		seasons,
		eventBus,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
		db,
		cfg.Progression.Multipliers,
	)

	return &Module{
		Service:    service,
		Repository: repo,
	}, nil
}

// Run keeps the module alive until the context is canceled.
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
