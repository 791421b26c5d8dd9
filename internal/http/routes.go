// Package httpx provides the HTTP API of the job dispatch service.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/jobdispatch/internal/observability/metrics"
	"github.com/target/jobdispatch/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	JobDispatches *service.JobDispatchService
	Metrics       *metrics.Metrics // Optional: enables /metrics and request instrumentation
	Health        []HealthCheck    // Optional: dependency probes for /readyz
	Logger        *slog.Logger     // Optional
}

// NewRouter creates and configures the HTTP router with its middleware chain.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	registerJobDispatchRoutes(mux, &JobDispatchHandlers{Svc: services.JobDispatches})
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", &ReadyHandler{Checks: services.Health})
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics.Handler())
	}

	// Metrics must wrap the mux directly so the matched pattern is visible after dispatch.
	var handler http.Handler = services.Metrics.Middleware(mux)
	handler = Logging(logger)(handler)
	handler = RequestID()(handler)
	return Recover(logger)(handler)
}
