package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Checker verifies that an infrastructure dependency is reachable.
// Every state store adapter satisfies it.
type Checker interface {
	Ping(ctx context.Context) error
}

type healthResult struct {
	Status string `json:"status"`
}

func handleHealth(logger *slog.Logger, checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		results := make(map[string]healthResult, len(checks))
		status := http.StatusOK

		for name, c := range checks {
			if err := c.Ping(ctx); err != nil {
				logger.Error("health check failed", "name", name, "error", err)
				results[name] = healthResult{Status: "error"}
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = healthResult{Status: "ok"}
		}

		writeJSON(w, status, results)
	}
}
