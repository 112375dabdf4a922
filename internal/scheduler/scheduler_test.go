package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/quimo/inventario/internal/config"
	"github.com/quimo/inventario/internal/costing"
	"github.com/quimo/inventario/internal/domain/models"
)

type fakeReports struct {
	archiveErr error
	syncErr    error
	archived   int
}

func (f *fakeReports) WeeklyReportText(context.Context) (string, error) {
	return "semana", nil
}

func (f *fakeReports) ArchivePeriod(context.Context, costing.Period) (*models.ReportSnapshot, error) {
	if f.archiveErr != nil {
		return nil, f.archiveErr
	}
	f.archived++
	return &models.ReportSnapshot{ID: "abc"}, nil
}

func (f *fakeReports) SyncPeriodToSheet(context.Context, costing.Period) (int, error) {
	return 3, f.syncErr
}

type fakeNotifier struct {
	texts []string
}

func (f *fakeNotifier) NotifyReport(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func newTestScheduler(t *testing.T, reports ReportSource, notifier Notifier) *Scheduler {
	t.Helper()
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * 6", Timezone: "UTC"}, reports, notifier, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s
}

func TestWeeklyReportRunsAllSteps(t *testing.T) {
	reports := &fakeReports{}
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, reports, notifier)

	if err := s.WeeklyReport(context.Background()); err != nil {
		t.Fatalf("weekly report: %v", err)
	}
	if reports.archived != 1 || len(notifier.texts) != 1 || notifier.texts[0] != "semana" {
		t.Errorf("unexpected run: archived=%d texts=%v", reports.archived, notifier.texts)
	}
}

func TestWeeklyReportSkipsDisabledIntegrations(t *testing.T) {
	reports := &fakeReports{archiveErr: models.ErrNotConfigured, syncErr: models.ErrNotConfigured}
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, reports, notifier)

	if err := s.WeeklyReport(context.Background()); err != nil {
		t.Fatalf("disabled integrations should not fail: %v", err)
	}
	if len(notifier.texts) != 1 {
		t.Error("expected report to be sent anyway")
	}
}

func TestWeeklyReportReturnsFirstFailure(t *testing.T) {
	boom := errors.New("mongo down")
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, &fakeReports{archiveErr: boom}, notifier)

	if err := s.WeeklyReport(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected archive failure, got %v", err)
	}
	if len(notifier.texts) != 1 {
		t.Error("expected later steps to still run")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "nope", Timezone: "UTC"}, &fakeReports{}, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected schedule error")
	}
}
