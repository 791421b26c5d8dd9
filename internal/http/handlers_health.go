package httpx

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthResponse = `{"status":"ok"}`

const defaultReadyTimeout = 2 * time.Second

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// HealthCheck is one named dependency probe used by the readiness endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ReadyHandler reports 200 when every dependency answers, 503 otherwise.
type ReadyHandler struct {
	Checks  []HealthCheck
	Timeout time.Duration
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultReadyTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	results := make([]string, len(h.Checks))
	var g errgroup.Group
	for i, c := range h.Checks {
		g.Go(func() error {
			if err := c.Check(ctx); err != nil {
				results[i] = err.Error()
				return err
			}
			results[i] = "ok"
			return nil
		})
	}
	err := g.Wait()

	checks := make(map[string]string, len(h.Checks))
	for i, c := range h.Checks {
		checks[c.Name] = results[i]
	}
	status, code := "ok", http.StatusOK
	if err != nil {
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	WriteJSON(w, code, map[string]any{"status": status, "checks": checks})
}
