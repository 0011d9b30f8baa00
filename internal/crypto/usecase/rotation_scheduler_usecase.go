package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

// SchedulerConfig holds rotation scheduler settings.
type SchedulerConfig struct {
	Interval time.Duration
}

// RotationScheduler periodically rotates the root key when due and purges
// superseded versions whose retention grace elapsed.
type RotationScheduler struct {
	config     SchedulerConfig
	keyManager KeyManager
	logger     *slog.Logger
}

// NewRotationScheduler creates a RotationScheduler.
func NewRotationScheduler(config SchedulerConfig, keyManager KeyManager, logger *slog.Logger) *RotationScheduler {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &RotationScheduler{
		config:     config,
		keyManager: keyManager,
		logger:     logger,
	}
}

// Start runs the scheduling loop until ctx is cancelled. One pass runs
// immediately so an overdue rotation is not delayed by a full interval.
func (s *RotationScheduler) Start(ctx context.Context) error {
	s.logger.Info("starting key rotation scheduler", slog.Duration("interval", s.config.Interval))

	s.tick(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping key rotation scheduler")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *RotationScheduler) tick(ctx context.Context) {
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("key rotation pass failed", slog.Any("error", err))
	}
}

// RunOnce performs a single rotation check and purge.
func (s *RotationScheduler) RunOnce(ctx context.Context) error {
	check := s.keyManager.CheckRotation()
	if check.Due {
		key, err := s.keyManager.Rotate(ctx)
		switch {
		case errors.Is(err, cryptoDomain.ErrRotationInProgress):
			s.logger.Info("skipping scheduled rotation, another rotation is running")
		case err != nil:
			return err
		default:
			s.logger.Info("scheduled key rotation completed",
				slog.String("reason", string(check.Reason)),
				slog.Uint64("version", uint64(key.Version)),
			)
		}
	}

	purged, err := s.keyManager.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.logger.Info("purged expired root keys", slog.Int("count", purged))
	}
	return nil
}
