package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"whisper-audio-service/domain/storage"
)

// Sweeper periodically deletes artifacts older than a maximum age.
// It is the only safety net for artifacts that were never downloaded
// or were left behind by failed extractions.
type Sweeper struct {
	store    storage.ArtifactStore
	interval time.Duration
	maxAge   time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// SweeperOption is a functional option for configuring Sweeper
type SweeperOption func(*Sweeper)

// WithClock sets a custom time source (for testing)
func WithClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		s.now = now
	}
}

// NewSweeper creates a new retention Sweeper.
func NewSweeper(store storage.ArtifactStore, interval, maxAge time.Duration, logger zerolog.Logger, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce scans the store and deletes expired artifacts. Each file's
// outcome is independent: a failed delete is logged and the sweep
// continues. Returns the number of artifacts deleted.
func (s *Sweeper) SweepOnce() int {
	artifacts, err := s.store.List()
	if err != nil {
		s.logger.Error().Err(err).Msg("retention sweep: failed to list artifacts")
		return 0
	}

	now := s.now()
	deleted := 0
	for _, a := range artifacts {
		if now.Sub(a.ModTime) <= s.maxAge {
			continue
		}
		// The delivery endpoint may have deleted the file already;
		// Delete treats absence as success.
		if err := s.store.Delete(a.Name); err != nil {
			s.logger.Warn().Err(err).Str("file", a.Name).Msg("retention sweep: failed to delete artifact")
			continue
		}
		deleted++
		s.logger.Info().Str("file", a.Name).Msg("cleaned up old file")
	}
	return deleted
}
