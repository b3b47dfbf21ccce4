package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"videoab/internal/core/port"
)

// Services bundles the inbound ports the HTTP adapter exposes. Metrics is
// mounted at /metrics when set.
type Services struct {
	Experiments port.ExperimentUseCase
	Events      port.EventUseCase
	Analytics   port.AnalyticsUseCase
	Uploads     port.UploadUseCase
	Metrics     http.Handler
}

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. Routes are registered on a chi.Router for convenient method
// handling.
type Handler struct {
	experiments port.ExperimentUseCase
	events      port.EventUseCase
	analytics   port.AnalyticsUseCase
	uploads     port.UploadUseCase
	logger      *slog.Logger
	router      chi.Router
}

// NewHandler creates a handler with all routes configured. requestTimeout
// bounds every request context; zero disables it.
func NewHandler(svc Services, logger *slog.Logger, requestTimeout time.Duration) *Handler {
	h := &Handler{
		experiments: svc.Experiments,
		events:      svc.Events,
		analytics:   svc.Analytics,
		uploads:     svc.Uploads,
		logger:      logger,
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if svc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", svc.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/experiments", func(r chi.Router) {
			r.Post("/", h.handleCreateExperiment)
			r.Get("/", h.handleListExperiments)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetExperiment)
				r.Put("/", h.handleUpdateExperiment)
				r.Delete("/", h.handleDeleteExperiment)
				r.Post("/activate", h.handleActivate)
				r.Put("/variants", h.handleAttachVariants)
				r.Get("/transitions", h.handleTransitions)
				r.Post("/events", h.handleRecordEvent)
				r.Post("/events/batch", h.handleRecordBatch)
				r.Get("/analytics", h.handleAnalytics)
				r.Get("/recommendation", h.handleRecommendation)
				r.Post("/analysis", h.handleAnalysis)
			})
		})
		r.Post("/uploads", h.handleRequestUpload)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.LogAttrs(r.Context(), slog.LevelDebug, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
