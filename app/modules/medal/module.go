package medal

import (
	"context"
	"sync"
	"time"

	"github.com/uptrace/bun"

	medalservice "github.com/ig0rayres/legendario-engine/app/modules/medal/application"
	medaldb "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/config"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
	"github.com/ig0rayres/legendario-engine/internal/observability"
)

// Module bundles the achievement engine's service and repository.
type Module struct {
	Service    *medalservice.MedalService
	Repository medaldb.Repository
	cancelFunc context.CancelFunc
}

func NewMedalModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	awarder medalservice.PointAwarder,
	location *time.Location,
) (*Module, error) {
	obs.Logger.InfoContext(ctx, "Initializing medal module")

	repo := medaldb.NewRepository(db)
	service := medalservice.NewMedalService(
		repo,
		awarder,
		eventBus,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
		location,
	)

	return &Module{
		Service:    service,
		Repository: repo,
	}, nil
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
