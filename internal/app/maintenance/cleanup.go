package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bannerworks/alertbanner/internal/content"
	"github.com/bannerworks/alertbanner/internal/models"
	"github.com/bannerworks/alertbanner/pkg/logger"
)

const (
	defaultDraftRetentionDays = 90
	defaultArchiveSpec        = "@hourly"
	defaultDraftSpec          = "@daily"
)

// Cleaner coordinates background maintenance tasks: archiving alerts whose
// schedule window has ended and purging drafts nobody has touched in months.
type Cleaner struct {
	db        *gorm.DB
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int

	archiveSchedule string
	draftSchedule   string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling and cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithDraftRetentionDays adjusts how long untouched drafts are kept.
func WithDraftRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithArchiveSchedule overrides the cron specification for alert archiving.
func WithArchiveSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.archiveSchedule = spec
		}
	}
}

// WithDraftSchedule overrides the cron specification for draft purging.
func WithDraftSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.draftSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(db *gorm.DB, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:              db,
		now:             time.Now,
		retention:       defaultDraftRetentionDays,
		archiveSchedule: defaultArchiveSpec,
		draftSchedule:   defaultDraftSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.archiveSchedule, func() {
		ctx := context.Background()
		if _, err := ArchiveEndedAlerts(ctx, c.db, c.now()); err != nil {
			c.log.Warn("alert archiving failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	if c.retention > 0 {
		if _, err := c.cron.AddFunc(c.draftSchedule, func() {
			ctx := context.Background()
			cutoff := c.now().AddDate(0, 0, -c.retention)
			if _, err := PurgeStaleDrafts(ctx, c.db, cutoff); err != nil {
				c.log.Warn("draft purge failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used
// in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.db == nil {
		return nil
	}

	var errs error

	if _, err := ArchiveEndedAlerts(ctx, c.db, c.now()); err != nil {
		errs = multierr.Append(errs, err)
	}

	if c.retention > 0 {
		cutoff := c.now().AddDate(0, 0, -c.retention)
		if _, err := PurgeStaleDrafts(ctx, c.db, cutoff); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// ArchiveEndedAlerts marks published alerts whose schedule window has closed.
// Archived rows drop out of every listing but stay queryable for audits.
func ArchiveEndedAlerts(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("content_type = ? AND archived_at IS NULL", string(content.TypeAlert)).
		Where("scheduled_end IS NOT NULL AND scheduled_end <= ?", now).
		Update("archived_at", now)
	return result.RowsAffected, result.Error
}

// PurgeStaleDrafts deletes drafts untouched since the cutoff.
func PurgeStaleDrafts(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("content_type = ? AND updated_at < ?", string(content.TypeDraft), cutoff).
		Delete(&models.Alert{})
	return result.RowsAffected, result.Error
}
