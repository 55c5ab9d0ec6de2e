package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig carries the router's dependencies.
type RouterConfig struct {
	Events         *EventHandler
	Participants   *ParticipantHandler
	Store          Pinger
	Logger         *slog.Logger
	AllowedOrigins []string

	// TracerProvider and Propagator default to the otel globals.
	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator
}

// NewRouter builds the HTTP routing tree. Every request runs inside a server
// span continuing any incoming trace context.
//
// The participant routes share the {id} segment: it is the event id for the
// list and register routes, and the participant id for the others.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(routeSpanName)
	r.Use(Logger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/health", Health(cfg.Store, cfg.Logger))

	r.Route("/events", func(r chi.Router) {
		r.Get("/", cfg.Events.ListEvents)
		r.Post("/", cfg.Events.CreateEvent)
		r.Get("/{id}", cfg.Events.GetEvent)
	})

	r.Route("/participants", func(r chi.Router) {
		r.Get("/{id}", cfg.Participants.ListParticipants)
		r.Post("/{id}", cfg.Participants.Register)
		r.Get("/{id}/credentials", cfg.Participants.Credentials)
		r.Get("/{id}/check-in", cfg.Participants.CheckIn)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	var opts []otelhttp.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.Propagator != nil {
		opts = append(opts, otelhttp.WithPropagators(cfg.Propagator))
	}
	return otelhttp.NewHandler(r, "http.server", opts...)
}

// Health handles GET /health by pinging the store.
func Health(store Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.WarnContext(ctx, "health check failed", slog.Any("error", err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
