package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/httprate"

	"github.com/couchcryptid/flood-risk-service/internal/assessment"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/sweep"
)

// Assessor is the assessment service as seen by the API handlers.
type Assessor interface {
	Evaluate(ctx context.Context, settings domain.Settings, req assessment.Request) (assessment.Report, error)
	HeatPoints(region string) ([]domain.HeatmapPoint, error)
	Registry() *domain.Registry
}

// SnapshotSource exposes the latest scheduled sweep.
type SnapshotSource interface {
	Latest() (sweep.Snapshot, bool)
}

// Options configures the API surface.
type Options struct {
	Settings domain.Settings
	// APIRateLimit is the per-IP request budget per minute on /api/ routes.
	// Zero disables limiting.
	APIRateLimit int
	// Snapshots serves /api/v1/snapshot. Nil when the sweep is disabled.
	Snapshots SnapshotSource
}

// Handler serves the /api/v1 routes.
type Handler struct {
	handler   http.Handler
	svc       Assessor
	settings  domain.Settings
	snapshots SnapshotSource
	logger    *slog.Logger
}

// NewHandler builds the API handler, rate limited per client IP when
// opts.APIRateLimit is positive.
func NewHandler(opts Options, svc Assessor, logger *slog.Logger) *Handler {
	h := &Handler{
		svc:       svc,
		settings:  opts.Settings,
		snapshots: opts.Snapshots,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/regions", h.handleRegions)
	mux.HandleFunc("GET /api/v1/regions/{region}/districts", h.handleDistricts)
	mux.HandleFunc("GET /api/v1/districts/nearest", h.handleNearest)
	mux.HandleFunc("POST /api/v1/assessments", h.handleAssess)
	mux.HandleFunc("GET /api/v1/heatmap", h.handleHeatmap)
	mux.HandleFunc("GET /api/v1/charts/rainfall", h.handleRainfallChart)
	mux.HandleFunc("GET /api/v1/charts/trend", h.handleTrendChart)
	mux.HandleFunc("GET /api/v1/charts/simulation", h.handleSimulationChart)
	mux.HandleFunc("GET /api/v1/advisories", h.handleAdvisories)
	mux.HandleFunc("GET /api/v1/attribution", h.handleAttribution)
	mux.HandleFunc("GET /api/v1/snapshot", h.handleSnapshot)

	h.handler = mux
	if opts.APIRateLimit > 0 {
		limiter := httprate.NewRateLimiter(
			opts.APIRateLimit,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			}),
		)
		h.handler = limiter.Handler(mux)
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
