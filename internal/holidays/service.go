package holidays

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"workdays/internal/metrics"
)

// Startup policies for the initial holiday load.
const (
	// PolicyStrict fails process startup when the initial fetch fails.
	PolicyStrict = "strict"
	// PolicyDegraded starts on the persisted snapshot (or an empty set)
	// and recovers in the background.
	PolicyDegraded = "degraded"
)

// ErrThrottled is returned when a manual refresh is requested faster than
// the source politeness limit allows.
var ErrThrottled = errors.New("holiday refresh throttled")

// Service owns the oracle lifecycle: initial load, periodic refresh and the
// persisted last-known-good snapshot. The store is optional; without it a
// degraded startup begins with an empty set.
type Service struct {
	oracle  *Oracle
	client  *Client
	store   *Store
	logger  *zerolog.Logger
	limiter *rate.Limiter
	cron    *cron.Cron
	stale   atomic.Bool
}

// NewService wires the oracle to its fetch client and snapshot store.
func NewService(oracle *Oracle, client *Client, store *Store, logger *zerolog.Logger) *Service {
	return &Service{
		oracle: oracle,
		client: client,
		store:  store,
		logger: logger,
		// Manual refresh triggers are limited to one per 30s.
		limiter: rate.NewLimiter(rate.Every(30*time.Second), 1),
	}
}

// Oracle returns the lookup handle shared with the engine.
func (s *Service) Oracle() *Oracle {
	return s.oracle
}

// Stale reports whether the service is running on fallback data because the
// last fetch from the source failed.
func (s *Service) Stale() bool {
	return s.stale.Load()
}

// Init performs the initial load. Under PolicyStrict a fetch failure is
// fatal; under PolicyDegraded the service falls back to the persisted
// snapshot, or an empty set, and marks itself stale so the recovery loop
// keeps retrying.
func (s *Service) Init(ctx context.Context, policy string) error {
	err := s.Refresh(ctx)
	if err == nil {
		return nil
	}
	if policy != PolicyDegraded {
		return fmt.Errorf("initial holiday load: %w", err)
	}

	s.logger.Error().Err(err).Msg("initial holiday load failed, starting in degraded mode")
	s.stale.Store(true)
	s.loadSnapshot(ctx)
	return nil
}

// loadSnapshot serves the persisted last-known-good set, if any.
func (s *Service) loadSnapshot(ctx context.Context) {
	if s.store == nil {
		s.logger.Warn().Msg("no snapshot store configured, proceeding with empty holiday set")
		return
	}

	dates, savedAt, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("no usable holiday snapshot, proceeding with empty set")
		return
	}

	set, dropped := NewSet(dates)
	if dropped > 0 {
		s.logger.Warn().Int("dropped", dropped).Msg("snapshot contained malformed dates")
	}
	s.oracle.Swap(set)
	metrics.SetHolidaysLoaded(len(set))
	s.logger.Warn().
		Int("holidays", len(set)).
		Time("saved_at", savedAt).
		Msg("serving persisted holiday snapshot")
}

// Refresh fetches the full date set and atomically swaps it in. On failure
// the previous set stays in place and the error is returned to the caller.
func (s *Service) Refresh(ctx context.Context) error {
	dates, err := s.client.Fetch(ctx)
	if err != nil {
		metrics.IncHolidayRefresh("error")
		return err
	}

	set, dropped := NewSet(dates)
	if dropped > 0 {
		s.logger.Warn().Int("dropped", dropped).Msg("holiday source returned malformed dates")
	}
	if len(set) == 0 {
		metrics.IncHolidayRefresh("empty")
		return fmt.Errorf("holiday source returned no usable dates")
	}

	s.oracle.Swap(set)
	s.stale.Store(false)
	metrics.IncHolidayRefresh("ok")
	metrics.SetHolidaysLoaded(len(set))

	if s.store != nil {
		if err := s.store.Save(ctx, set.Dates()); err != nil {
			s.logger.Error().Err(err).Msg("failed to persist holiday snapshot")
		}
	}

	s.logger.Info().Int("holidays", len(set)).Msg("holiday set refreshed")
	return nil
}

// TryRefresh is Refresh behind the politeness limiter, for admin triggers.
func (s *Service) TryRefresh(ctx context.Context) error {
	if !s.limiter.Allow() {
		return ErrThrottled
	}
	return s.Refresh(ctx)
}

// StartPeriodicRefresh schedules refreshes on the given cron spec and stops
// the scheduler when ctx is done. A failed run keeps the current set.
func (s *Service) StartPeriodicRefresh(ctx context.Context, spec string, fetchTimeout time.Duration) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		rctx, cancel := context.WithTimeout(context.Background(), fetchTimeout+5*time.Second)
		defer cancel()
		if err := s.Refresh(rctx); err != nil {
			s.logger.Error().Err(err).Msg("periodic holiday refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	c.Start()
	s.cron = c
	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	s.logger.Info().Str("schedule", spec).Msg("periodic holiday refresh scheduled")
	return nil
}

// StartRecovery retries the fetch in the background after a degraded
// startup, until the oracle is serving fresh data or ctx is done.
func (s *Service) StartRecovery(ctx context.Context, interval time.Duration, fetchTimeout time.Duration) {
	if !s.stale.Load() {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !s.stale.Load() {
					return
				}
				rctx, cancel := context.WithTimeout(ctx, fetchTimeout+5*time.Second)
				err := s.Refresh(rctx)
				cancel()
				if err != nil {
					s.logger.Warn().Err(err).Msg("holiday recovery attempt failed")
					continue
				}
				s.logger.Info().Msg("holiday set recovered from degraded start")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}
