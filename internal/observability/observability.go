// Package observability bundles the logger, metrics, and tracer handed to
// every module at wiring time.
package observability

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "legendario-engine"

// Observability carries the shared observability components.
type Observability struct {
	Logger   *slog.Logger
	Metrics  OperationMetrics
	Tracer   trace.Tracer
	Registry *prometheus.Registry

	metricsServer *http.Server
}

// Config controls observability setup.
type Config struct {
	Environment    string
	MetricsAddress string // empty disables the standalone metrics listener
}

// New builds the observability bundle: slog JSON logger on stdout,
// Prometheus registry with Go runtime collectors, and the globally
// configured otel tracer.
func New(cfg Config) *Observability {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("service", serviceName),
		slog.String("environment", cfg.Environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	o := &Observability{
		Logger:   logger,
		Metrics:  NewOperationMetrics(registry),
		Tracer:   otel.GetTracerProvider().Tracer(serviceName),
		Registry: registry,
	}

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		o.metricsServer = &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := o.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	return o
}

// MetricsHandler returns the registry handler for mounting on the main
// router when no standalone metrics listener is configured.
func (o *Observability) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{})
}

// Close shuts down the standalone metrics listener if one was started.
func (o *Observability) Close(ctx context.Context) error {
	if o.metricsServer == nil {
		return nil
	}
	return o.metricsServer.Shutdown(ctx)
}
