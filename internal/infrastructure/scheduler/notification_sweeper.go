package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/erp/notify/internal/domain/audit"
	"github.com/erp/notify/internal/domain/notification"
	"go.uber.org/zap"
)

// NotificationSweeper runs the two periodic maintenance jobs: releasing
// due scheduled notifications and deactivating old read ones
type NotificationSweeper struct {
	repo      notification.Repository
	auditor   audit.Recorder
	logger    *zap.Logger
	config    SweeperConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// SweeperConfig holds configuration for the notification sweeper
type SweeperConfig struct {
	// SweepEnabled activates the due-scheduled release loop
	SweepEnabled bool

	// CheckInterval is how often the due-scheduled loop wakes up
	CheckInterval time.Duration

	// RetentionEnabled activates the daily retention cleanup
	RetentionEnabled bool

	// RetainFor is how long read notifications are kept before deactivation
	RetainFor time.Duration

	// CleanupHour is the local hour (0-23) the daily cleanup runs at
	CleanupHour int

	// Location is the timezone used for the business-hours gate and the
	// cleanup hour
	Location *time.Location

	// SweepTimeout bounds a single due-scheduled run
	SweepTimeout time.Duration

	// CleanupTimeout bounds a single cleanup run
	CleanupTimeout time.Duration
}

// DefaultSweeperConfig returns default configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		SweepEnabled:     true,
		CheckInterval:    5 * time.Minute,
		RetentionEnabled: true,
		RetainFor:        90 * 24 * time.Hour,
		CleanupHour:      2,
		Location:         time.UTC,
		SweepTimeout:     5 * time.Minute,
		CleanupTimeout:   15 * time.Minute,
	}
}

// NewNotificationSweeper creates a new sweeper
func NewNotificationSweeper(
	repo notification.Repository,
	auditor audit.Recorder,
	logger *zap.Logger,
	config SweeperConfig,
) (*NotificationSweeper, error) {
	if config.SweepEnabled && config.CheckInterval <= 0 {
		return nil, ErrInvalidConfig
	}
	if config.RetentionEnabled && (config.RetainFor <= 0 || config.CleanupHour < 0 || config.CleanupHour > 23) {
		return nil, ErrInvalidConfig
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.SweepTimeout <= 0 {
		config.SweepTimeout = 5 * time.Minute
	}
	if config.CleanupTimeout <= 0 {
		config.CleanupTimeout = 15 * time.Minute
	}

	return &NotificationSweeper{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
		config:  config,
	}, nil
}

// Start launches the enabled sweep loops
func (s *NotificationSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.SweepEnabled && !s.config.RetentionEnabled {
		s.mu.Unlock()
		s.logger.Info("Notification sweeper is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.config.SweepEnabled {
		s.wg.Add(1)
		go s.runDueScheduledLoop(ctx)
	}

	if s.config.RetentionEnabled {
		s.wg.Add(1)
		go s.runRetentionLoop(ctx)
	}

	s.logger.Info("Notification sweeper started",
		zap.Bool("sweep_enabled", s.config.SweepEnabled),
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Bool("retention_enabled", s.config.RetentionEnabled),
		zap.Int("cleanup_hour", s.config.CleanupHour),
		zap.String("timezone", s.config.Location.String()),
	)

	return nil
}

// Stop gracefully stops the sweeper
func (s *NotificationSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Notification sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Notification sweeper stop timed out")
		return ctx.Err()
	}
}

// runDueScheduledLoop wakes at the configured interval and releases due
// scheduled notifications, but only during business hours
func (s *NotificationSweeper) runDueScheduledLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Due-scheduled sweep loop stopping")
			return
		case <-ticker.C:
			now := time.Now()
			if !s.withinBusinessHours(now) {
				continue
			}
			s.releaseDueScheduled(ctx, now)
		}
	}
}

// runRetentionLoop runs the cleanup once per day at the configured hour
func (s *NotificationSweeper) runRetentionLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		now := time.Now().In(s.config.Location)
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), s.config.CleanupHour, 0, 0, 0, s.config.Location)
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}
		delay := time.Until(nextRun)

		s.logger.Info("Retention cleanup scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			s.logger.Debug("Retention cleanup loop stopping")
			return
		case <-time.After(delay):
			s.cleanupOldRead(ctx, time.Now())
		}
	}
}

// withinBusinessHours reports whether t falls on Mon-Fri between 09:00 and
// 17:59 in the configured timezone
func (s *NotificationSweeper) withinBusinessHours(t time.Time) bool {
	local := t.In(s.config.Location)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := local.Hour()
	return hour >= 9 && hour <= 17
}

// releaseDueScheduled marks due scheduled notifications as sent. Failures
// are logged per row and do not stop the run.
func (s *NotificationSweeper) releaseDueScheduled(ctx context.Context, now time.Time) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	due, err := s.repo.FindDueScheduled(runCtx, now)
	if err != nil {
		s.logger.Error("Failed to load due scheduled notifications", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	released := 0
	for _, n := range due {
		n.MarkSent()
		if err := s.repo.Save(runCtx, n); err != nil {
			s.logger.Error("Failed to release scheduled notification",
				zap.String("notification_id", n.ID.String()),
				zap.Error(err))
			continue
		}
		released++
	}

	s.logger.Info("Released due scheduled notifications",
		zap.Int("due", len(due)),
		zap.Int("released", released),
	)
}

// cleanupOldRead deactivates read notifications older than the retention
// window and records an audit entry for the run
func (s *NotificationSweeper) cleanupOldRead(ctx context.Context, now time.Time) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.CleanupTimeout)
	defer cancel()

	cutoff := now.Add(-s.config.RetainFor)
	affected, err := s.repo.DeactivateOldRead(runCtx, cutoff)
	if err != nil {
		s.logger.Error("Retention cleanup failed", zap.Error(err))
		return
	}

	s.logger.Info("Retention cleanup completed",
		zap.Time("cutoff", cutoff),
		zap.Int64("deactivated", affected),
	)

	if s.auditor != nil {
		entry, err := audit.NewEntry(audit.ActionNotificationsSwept, nil, "NOTIFICATION", nil, map[string]any{
			"cutoff":      cutoff.Format(time.RFC3339),
			"deactivated": affected,
		})
		if err == nil {
			s.auditor.Record(runCtx, entry)
		}
	}
}

// TriggerSweep runs an immediate due-scheduled release, skipping the
// business-hours gate
func (s *NotificationSweeper) TriggerSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSweeperNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.releaseDueScheduled(ctx, time.Now())
	}()

	return nil
}

// TriggerCleanup runs an immediate retention cleanup
func (s *NotificationSweeper) TriggerCleanup(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSweeperNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.cleanupOldRead(ctx, time.Now())
	}()

	return nil
}

// IsRunning returns whether the sweeper is running
func (s *NotificationSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
