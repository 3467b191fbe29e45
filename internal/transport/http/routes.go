package http

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"valentine-quiz-service/internal/app"
)

// Deps are the collaborators the HTTP surface drives.
type Deps struct {
	Machine *app.Machine
	Gate    *app.RevealGate
	Clock   app.Clock
	Checks  map[string]Checker
	Logger  *slog.Logger
}

// NewRouter builds the chi router with REST, health and WebSocket routes.
func NewRouter(deps Deps) chi.Router {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Clock == nil {
		deps.Clock = app.SystemClock()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	api := &apiHandler{machine: deps.Machine, gate: deps.Gate, clock: deps.Clock, logger: deps.Logger}
	ws := NewWSHandler(deps.Machine, deps.Gate, deps.Clock, deps.Logger)

	r.Get("/healthz", handleHealth(deps.Logger, deps.Checks))
	r.Get("/ws", ws.ServeWS)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", api.state)
		r.Post("/start", api.start)
		r.Post("/answer", api.answer)
		r.Post("/confirm", api.confirm)
		r.Get("/reveal", api.reveal)
	})
	return r
}

