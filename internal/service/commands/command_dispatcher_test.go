package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quimo/inventario/internal/costing"
	"github.com/quimo/inventario/internal/domain/models"
)

type stubRecorder struct {
	got   models.ProductionRequest
	total float64
}

func (s *stubRecorder) RegisterProduction(_ context.Context, req models.ProductionRequest) (*models.ProductionEntry, error) {
	s.got = req
	s.total += req.Quantity
	return &models.ProductionEntry{ProductID: req.ProductID, Date: "2026-10-19", Quantity: s.total, Area: req.Area}, nil
}

type stubReporting struct {
	period costing.Period
}

func (s *stubReporting) WeeklyReportText(context.Context) (string, error) {
	return "weekly", nil
}

func (s *stubReporting) PeriodSummaryText(_ context.Context, period costing.Period) (string, error) {
	s.period = period
	return "summary " + string(period), nil
}

func TestProductionCommand(t *testing.T) {
	rec := &stubRecorder{}
	svc := NewService(rec, &stubReporting{}, nil)
	ctx := context.Background()

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/produccion 3 2,5 planta norte"), "521")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if rec.got.ProductID != 3 || rec.got.Quantity != 2.5 || rec.got.Area != "planta norte" {
		t.Errorf("unexpected request: %+v", rec.got)
	}
	if !strings.Contains(reply, "2.5 u el 2026-10-19") {
		t.Errorf("unexpected reply %q", reply)
	}

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/prod 3 1"), "521")
	if err != nil {
		t.Fatalf("handle again: %v", err)
	}
	if !strings.Contains(reply, "Total del día: 3.5 u") {
		t.Errorf("expected accumulated total in %q", reply)
	}
}

func TestProductionCommandRejectsBadArguments(t *testing.T) {
	svc := NewService(&stubRecorder{}, &stubReporting{}, nil)
	for _, text := range []string{"/produccion", "/produccion 3", "/produccion x 2", "/produccion 3 -1", "/produccion 3 mucho"} {
		if _, err := svc.HandleCommand(context.Background(), models.ParseCommand(text), ""); !errors.Is(err, models.ErrInvalidArguments) {
			t.Errorf("%q: expected ErrInvalidArguments, got %v", text, err)
		}
	}
}

func TestCostsCommandParsesPeriod(t *testing.T) {
	rep := &stubReporting{}
	svc := NewService(&stubRecorder{}, rep, nil)
	ctx := context.Background()

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/costos"), "")
	if err != nil || reply != "summary semana" {
		t.Fatalf("unexpected reply %q, %v", reply, err)
	}
	if _, err := svc.HandleCommand(ctx, models.ParseCommand("/costos Trimestre"), ""); err != nil {
		t.Fatalf("trimestre: %v", err)
	}
	if rep.period != costing.PeriodQuarter {
		t.Errorf("expected quarter, got %s", rep.period)
	}
	if _, err := svc.HandleCommand(ctx, models.ParseCommand("/costos anual"), ""); !errors.Is(err, models.ErrInvalidArguments) {
		t.Errorf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestWeekAndUnknownCommands(t *testing.T) {
	svc := NewService(&stubRecorder{}, &stubReporting{}, nil)
	ctx := context.Background()

	if reply, err := svc.HandleCommand(ctx, models.ParseCommand("/semana"), ""); err != nil || reply != "weekly" {
		t.Errorf("unexpected week reply %q, %v", reply, err)
	}
	if _, err := svc.HandleCommand(ctx, models.ParseCommand("hola"), ""); !errors.Is(err, ErrUnsupportedCommand) {
		t.Errorf("expected ErrUnsupportedCommand, got %v", err)
	}
}
