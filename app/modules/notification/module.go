package notification

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	notificationservice "github.com/ig0rayres/legendario-engine/app/modules/notification/application"
	notificationdb "github.com/ig0rayres/legendario-engine/app/modules/notification/infrastructure/repositories"
	notificationrouter "github.com/ig0rayres/legendario-engine/app/modules/notification/infrastructure/router"
	"github.com/ig0rayres/legendario-engine/config"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
	"github.com/ig0rayres/legendario-engine/internal/observability"
)

// Module bundles the notification projection service and its event
// router.
type Module struct {
	Service    *notificationservice.NotificationService
	Router     *notificationrouter.NotificationRouter
	cancelFunc context.CancelFunc
}

func NewNotificationModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	obs.Logger.InfoContext(ctx, "Initializing notification module")

	repo := notificationdb.NewRepository(db)
	service := notificationservice.NewNotificationService(repo, obs.Logger)

	notifRouter := notificationrouter.NewNotificationRouter(obs.Logger, router, eventBus)
	if err := notifRouter.Configure(service); err != nil {
		return nil, err
	}

	return &Module{
		Service: service,
		Router:  notifRouter,
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
