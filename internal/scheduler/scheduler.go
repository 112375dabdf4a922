package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/config"
	"github.com/quimo/inventario/internal/costing"
	"github.com/quimo/inventario/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// ReportSource produces the scheduled weekly outputs.
type ReportSource interface {
	WeeklyReportText(ctx context.Context) (string, error)
	ArchivePeriod(ctx context.Context, period costing.Period) (*models.ReportSnapshot, error)
	SyncPeriodToSheet(ctx context.Context, period costing.Period) (int, error)
}

// Notifier delivers report text to the configured recipient.
type Notifier interface {
	NotifyReport(ctx context.Context, text string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reports  ReportSource
	notifier Notifier
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone. A nil
// notifier skips message delivery.
func NewScheduler(cfg config.ReportingConfig, reports ReportSource, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		reports:  reports,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Start registers the weekly report job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report %q: %w", s.schedule, err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.WeeklyReport(ctx); err != nil {
		s.logger.Error("weekly report failed", zap.Error(err))
	}
}

// WeeklyReport archives and syncs the week's summary when those integrations
// are configured, then sends the weekly production text. Each step runs even
// if a previous one failed; the first error is returned.
func (s *Scheduler) WeeklyReport(ctx context.Context) error {
	s.logger.Info("generating weekly report")
	var firstErr error
	record := func(step string, err error) {
		if err == nil {
			return
		}
		if errors.Is(err, models.ErrNotConfigured) {
			s.logger.Debug("step skipped", zap.String("step", step))
			return
		}
		s.logger.Error("weekly report step failed", zap.String("step", step), zap.Error(err))
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", step, err)
		}
	}

	if snapshot, err := s.reports.ArchivePeriod(ctx, costing.PeriodWeek); err == nil {
		s.logger.Info("weekly summary archived", zap.String("id", snapshot.ID))
	} else {
		record("archive", err)
	}

	if rows, err := s.reports.SyncPeriodToSheet(ctx, costing.PeriodWeek); err == nil {
		s.logger.Info("weekly summary synced", zap.Int("rows", rows))
	} else {
		record("sheet sync", err)
	}

	text, err := s.reports.WeeklyReportText(ctx)
	if err != nil {
		record("render", err)
		return firstErr
	}
	if s.notifier == nil {
		s.logger.Debug("no notifier configured, weekly report not sent")
		return firstErr
	}
	if err := s.notifier.NotifyReport(ctx, text); err != nil {
		record("notify", err)
	} else {
		s.logger.Info("weekly report sent successfully")
	}
	return firstErr
}
