// Package sweep periodically assesses every registered district with the
// default rainfall and elevation, so downstream consumers receive a fresh
// risk snapshot for the whole country on a fixed schedule.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-service/internal/assessment"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// ErrNoReports is returned by RunOnce when every district failed.
var ErrNoReports = errors.New("sweep produced no reports")

const initialRetryDelay = time.Second

// Evaluator runs single-district assessments.
type Evaluator interface {
	Registry() *domain.Registry
	Evaluate(ctx context.Context, settings domain.Settings, req assessment.Request) (assessment.Report, error)
}

// Snapshot is the outcome of one completed sweep.
type Snapshot struct {
	CompletedAt time.Time           `json:"completed_at"`
	HighRisk    int                 `json:"high_risk"`
	Reports     []assessment.Report `json:"reports"`
}

// Sweeper runs the assessment loop.
type Sweeper struct {
	svc      Evaluator
	settings domain.Settings
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	ready  atomic.Bool
	mu     sync.RWMutex
	latest Snapshot
}

// New creates a Sweeper that runs every interval.
func New(svc Evaluator, settings domain.Settings, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Sweeper {
	return &Sweeper{
		svc:      svc,
		settings: settings,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		metrics:  metrics,
	}
}

// WithClock replaces the sweeper's time source.
func (s *Sweeper) WithClock(c clockwork.Clock) *Sweeper {
	s.clock = c
	return s
}

// CheckReadiness returns nil once at least one sweep has completed.
func (s *Sweeper) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no sweep has completed yet")
	}
	return nil
}

// Latest returns the most recent completed snapshot.
func (s *Sweeper) Latest() (Snapshot, bool) {
	if !s.ready.Load() {
		return Snapshot{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, true
}

// Run sweeps immediately and then every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	s.logger.Info("sweep started", "interval", s.interval)
	s.metrics.SweepRunning.Set(1)
	defer s.metrics.SweepRunning.Set(0)

	// Failed sweeps retry sooner, doubling up to the regular interval.
	retryDelay := initialRetryDelay
	for {
		wait := s.interval
		if _, err := s.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("sweep stopping", "reason", ctx.Err())
				return nil
			}
			wait = min(retryDelay, s.interval)
			retryDelay = retry.NextBackoff(retryDelay, s.interval)
			s.logger.Error("sweep failed", "error", err, "retry_in", wait)
		} else {
			retryDelay = initialRetryDelay
		}

		if !sleepWithContext(ctx, s.clock, wait) {
			s.logger.Info("sweep stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce assesses every district once and stores the resulting snapshot.
// A cancelled context, or a sweep in which every district failed, leaves the
// previous snapshot in place.
func (s *Sweeper) RunOnce(ctx context.Context) (Snapshot, error) {
	start := s.clock.Now()
	districts := s.svc.Registry().All()
	snap := Snapshot{Reports: make([]assessment.Report, 0, len(districts))}

	for _, d := range districts {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		report, err := s.svc.Evaluate(ctx, s.settings, assessment.Request{
			Region:     d.Region,
			District:   d.Name,
			RainfallMM: assessment.DefaultRainfallMM,
			ElevationM: assessment.DefaultElevationM,
		})
		if err != nil {
			s.logger.Warn("sweep assessment failed", "region", d.Region, "district", d.Name, "error", err)
			continue
		}
		if report.Assessment.IsHighRisk {
			snap.HighRisk++
		}
		snap.Reports = append(snap.Reports, report)
	}

	if len(snap.Reports) == 0 && len(districts) > 0 {
		return Snapshot{}, ErrNoReports
	}

	snap.CompletedAt = s.clock.Now()
	elapsed := snap.CompletedAt.Sub(start)

	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
	s.ready.Store(true)

	s.metrics.SweepDuration.Observe(elapsed.Seconds())
	s.metrics.SweepHighRisk.Set(float64(snap.HighRisk))

	s.logger.Info("sweep completed",
		"districts", len(snap.Reports),
		"high_risk", snap.HighRisk,
		"duration", elapsed,
	)
	return snap, nil
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
