// Package api exposes the engine over HTTP: public reads, admin
// mutations guarded by JWT, and the scheduler trigger guarded by a
// shared secret.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	medalservice "github.com/ig0rayres/legendario-engine/app/modules/medal/application"
	notificationservice "github.com/ig0rayres/legendario-engine/app/modules/notification/application"
	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	seasonservice "github.com/ig0rayres/legendario-engine/app/modules/season/application"
	"github.com/ig0rayres/legendario-engine/config"
)

// Server wires the module services into one chi router.
type Server struct {
	cfg           *config.Config
	logger        *slog.Logger
	progression   *progressionservice.ProgressionService
	medals        *medalservice.MedalService
	seasons       *seasonservice.SeasonService
	notifications *notificationservice.NotificationService
	awardLimiter  *rate.Limiter
	metricsHandle http.Handler
	httpServer    *http.Server
}

func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	progression *progressionservice.ProgressionService,
	medals *medalservice.MedalService,
	seasons *seasonservice.SeasonService,
	notifications *notificationservice.NotificationService,
	metricsHandler http.Handler,
) *Server {
	s := &Server{
		cfg:           cfg,
		logger:        logger,
		progression:   progression,
		medals:        medals,
		seasons:       seasons,
		notifications: notifications,
		awardLimiter:  rate.NewLimiter(rate.Limit(cfg.HTTP.AwardRateLimit), cfg.HTTP.AwardRateBurst),
		metricsHandle: metricsHandler,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the router; exposed separately so tests can drive the
// handlers without a listening socket.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(s.correlationID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	if s.metricsHandle != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandle)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.limitAwards).Post("/points/award", s.handleAwardPoints)
		r.With(s.requireAdmin).Post("/points/adjust", s.handleAdjustPoints)
		r.Get("/users/{userID}/history", s.handleGetHistory)
		r.Get("/users/{userID}/notifications", s.handleListNotifications)
		r.Get("/users/{userID}/medals", s.handleListGrants)

		r.Get("/ranking", s.handleGetRanking)
		r.Get("/ranking/chart.png", s.handleRankingChart)
		r.With(s.requireAdmin).Get("/ranking/export.xlsx", s.handleRankingExport)

		r.Get("/medals", s.handleListAchievements)
		r.Post("/medals/grant", s.handleGrantMedal)

		r.Get("/seasons", s.handleListSeasons)
		r.Get("/seasons/active", s.handleGetActiveSeason)
		r.Get("/seasons/{seasonID}/winners", s.handleGetWinners)
		r.With(s.requireAdmin).Post("/seasons", s.handleCreateSeason)

		r.With(s.requireSchedulerSecret).Post("/internal/rollover", s.handleRollover)
	})

	return r
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", slog.String("addr", s.cfg.HTTP.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
