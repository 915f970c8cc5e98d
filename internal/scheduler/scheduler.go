// Package scheduler runs periodic housekeeping on the shared store.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Cleaner deletes stale rows. Each method returns the number of rows removed.
type Cleaner struct {
	db           *gorm.DB
	logRetention time.Duration
	now          func() time.Time
}

func NewCleaner(db *gorm.DB, logRetentionDays int) *Cleaner {
	return &Cleaner{
		db:           db,
		logRetention: time.Duration(logRetentionDays) * 24 * time.Hour,
		now:          time.Now,
	}
}

// PurgeSystemLogs removes system_logs older than the retention window.
func (c *Cleaner) PurgeSystemLogs() (int64, error) {
	res := c.db.Where("timestamp < ?", c.now().Add(-c.logRetention)).Delete(&models.SystemLog{})
	return res.RowsAffected, res.Error
}

// PurgeRefreshTokens removes expired and revoked refresh tokens.
func (c *Cleaner) PurgeRefreshTokens() (int64, error) {
	res := c.db.Where("expires_at < ? OR revoked = ?", c.now(), true).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

// ClearResetTokens drops password-reset tokens past their expiry.
func (c *Cleaner) ClearResetTokens() (int64, error) {
	res := c.db.Model(&models.User{}).
		Where("reset_token_expires_at IS NOT NULL AND reset_token_expires_at < ?", c.now()).
		Updates(map[string]interface{}{"reset_token_hash": nil, "reset_token_expires_at": nil})
	return res.RowsAffected, res.Error
}

// Scheduler wraps a cron instance with the housekeeping jobs registered.
type Scheduler struct {
	cron *cron.Cron
}

func New(cleaner *Cleaner) (*Scheduler, error) {
	c := cron.New()
	jobs := []struct {
		schedule string
		name     string
		run      func() (int64, error)
	}{
		{"15 3 * * *", "purge-system-logs", cleaner.PurgeSystemLogs},
		{"30 * * * *", "purge-refresh-tokens", cleaner.PurgeRefreshTokens},
		{"*/10 * * * *", "clear-reset-tokens", cleaner.ClearResetTokens},
	}
	for _, j := range jobs {
		j := j
		if _, err := c.AddFunc(j.schedule, func() { runJob(j.name, j.run) }); err != nil {
			return nil, err
		}
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out")
	}
}

func runJob(name string, run func() (int64, error)) {
	deleted, err := run()
	if err != nil {
		slog.Error("scheduled cleanup failed", "action", name, "error", err.Error())
		return
	}
	if deleted > 0 {
		slog.Info("scheduled cleanup completed", "action", name, "rows", deleted)
	}
}
