// Package assessment evaluates flood risk for a registry district: it
// resolves rainfall (live or fallback), simulates flood depth, scores the
// site and publishes the result.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// DefaultPublishTimeout bounds a single event publish.
const DefaultPublishTimeout = 2 * time.Second

// Defaults used when a request leaves rainfall or elevation unset.
const (
	DefaultRainfallMM = 100.0
	DefaultElevationM = 10.0
)

var (
	ErrUnknownDistrict = errors.New("unknown district")
	ErrUnknownRegion   = errors.New("unknown region")
	// ErrNonFiniteScore is returned when the inputs overflow the score.
	ErrNonFiniteScore = errors.New("risk score is not finite")
)

// Publisher delivers assessment events downstream.
type Publisher interface {
	Publish(ctx context.Context, event domain.AssessmentEvent) error
}

// Request identifies the site to assess. RainfallMM is the fallback used
// when live rainfall is unavailable.
type Request struct {
	Region     string
	District   string
	RainfallMM float64
	ElevationM float64
}

// Report is the full outcome of one evaluation.
type Report struct {
	District            domain.District       `json:"district"`
	Rainfall            domain.RainfallResult `json:"rainfall"`
	FloodDepthSimulated bool                  `json:"flood_depth_simulated"`
	Assessment          domain.RiskAssessment `json:"assessment"`
	Recommendation      domain.Recommendation `json:"recommendation"`
	Alert               string                `json:"alert"`
	EvaluatedAt         time.Time             `json:"evaluated_at"`
	Attribution         string                `json:"attribution,omitempty"`
}

// Service runs assessments against a fixed registry.
type Service struct {
	registry  *domain.Registry
	source    domain.ObservationSource
	sim       *domain.DepthSimulator
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	publishTimeout time.Duration
}

// New creates a Service. source and publisher may be nil to run without
// live rainfall or without event publishing.
func New(reg *domain.Registry, source domain.ObservationSource, sim *domain.DepthSimulator, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if sim == nil {
		sim = domain.NewDepthSimulator(nil)
	}
	return &Service{
		registry:  reg,
		source:    source,
		sim:       sim,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,

		publishTimeout: DefaultPublishTimeout,
	}
}

// WithPublishTimeout replaces DefaultPublishTimeout.
func (s *Service) WithPublishTimeout(d time.Duration) *Service {
	s.publishTimeout = d
	return s
}

// Registry returns the district registry the service evaluates against.
func (s *Service) Registry() *domain.Registry {
	return s.registry
}

// Evaluate assesses one district. Weather and publishing failures degrade
// the result rather than failing it. Errors are an unknown district or
// inputs whose score overflows.
func (s *Service) Evaluate(ctx context.Context, settings domain.Settings, req Request) (Report, error) {
	d, ok := s.registry.Lookup(req.Region, req.District)
	if !ok {
		return Report{}, fmt.Errorf("%w: %s %s", ErrUnknownDistrict, req.Region, req.District)
	}

	rainfall := domain.FetchRainfall(ctx, s.source, settings, d.GridX, d.GridY, req.RainfallMM, s.logger)
	s.metrics.WeatherRequests.WithLabelValues(weatherOutcome(rainfall)).Inc()

	depth := 0.0
	if settings.FloodSimulationEnabled {
		depth = s.sim.Simulate(d.BaselineDepth)
	}

	a := domain.Assess(rainfall.RainfallMM, req.ElevationM, depth)
	if math.IsInf(a.RiskScore, 0) || math.IsNaN(a.RiskScore) {
		return Report{}, fmt.Errorf("%w: rainfall %g mm, elevation %g m", ErrNonFiniteScore, rainfall.RainfallMM, req.ElevationM)
	}
	s.metrics.AssessmentsTotal.WithLabelValues(string(a.Class)).Inc()
	s.metrics.RiskScore.Observe(a.RiskScore)

	event := domain.NewAssessmentEvent(d, rainfall, a)
	s.publish(ctx, event)

	s.logger.Info("assessment evaluated",
		"region", d.Region,
		"district", d.Name,
		"rainfall_source", rainfall.Source,
		"rainfall_mm", rainfall.RainfallMM,
		"flood_depth_m", depth,
		"risk_score", a.RiskScore,
		"class", a.Class,
	)

	report := Report{
		District:            d,
		Rainfall:            rainfall,
		FloodDepthSimulated: settings.FloodSimulationEnabled,
		Assessment:          a,
		Recommendation:      domain.RecommendationFor(a.Class),
		Alert:               domain.AlertText(rainfall.RainfallMM),
		EvaluatedAt:         event.EvaluatedAt,
	}
	if rainfall.Live() {
		report.Attribution = domain.Attribution
	}
	return report, nil
}

func (s *Service) publish(ctx context.Context, event domain.AssessmentEvent) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("publish assessment failed", "key", event.Key(), "error", err)
		return
	}
	s.metrics.EventsPublished.Inc()
}

// HeatPoints returns heat points for one region, or for every district when
// region is empty.
func (s *Service) HeatPoints(region string) ([]domain.HeatmapPoint, error) {
	if region == "" {
		return domain.BuildHeatPoints(s.registry), nil
	}
	points, ok := domain.BuildRegionHeatPoints(s.registry, region)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
	return points, nil
}

// CheckReadiness returns nil once the service has districts to evaluate.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.registry == nil || s.registry.Len() == 0 {
		return errors.New("district registry is empty")
	}
	return nil
}

func weatherOutcome(r domain.RainfallResult) string {
	if r.Live() {
		return "success"
	}
	return string(r.Reason)
}
