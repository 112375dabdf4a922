package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/costing"
	"github.com/quimo/inventario/internal/domain/models"
	"github.com/quimo/inventario/internal/service/reporting"
)

// ReportService is implemented by reporting.Service.
type ReportService interface {
	WeeklyProduction(ctx context.Context) (*reporting.WeeklyReport, error)
	MaterialCosts(ctx context.Context) (*reporting.MaterialReport, error)
	PeriodSummary(ctx context.Context, period costing.Period) (*costing.PeriodReport, error)
	WeeklyReportText(ctx context.Context) (string, error)
	ExportWeeklyWorkbook(ctx context.Context) (*excelize.File, string, error)
	SyncPeriodToSheet(ctx context.Context, period costing.Period) (int, error)
	ArchivePeriod(ctx context.Context, period costing.Period) (*models.ReportSnapshot, error)
	ArchivedReports(ctx context.Context, period string, limit int64) ([]models.ReportSnapshot, error)
}

// Notifier sends a report to the configured recipient.
type Notifier interface {
	NotifyReport(ctx context.Context, text string) error
}

// ReportHandler exposes production tables and period reports.
type ReportHandler struct {
	svc      ReportService
	notifier Notifier
	logger   *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter. notifier may be nil.
func NewReportHandler(svc ReportService, notifier Notifier, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, notifier: notifier, logger: logger}
}

// WeeklyProduction GET /api/production/weekly
func (h *ReportHandler) WeeklyProduction(c *gin.Context) {
	report, err := h.svc.WeeklyProduction(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "weekly production", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// MaterialCosts GET /api/production/weekly/costs
func (h *ReportHandler) MaterialCosts(c *gin.Context) {
	report, err := h.svc.MaterialCosts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "material costs", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportWeekly GET /api/production/weekly/export
func (h *ReportHandler) ExportWeekly(c *gin.Context) {
	f, filename, err := h.svc.ExportWeeklyWorkbook(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "export weekly workbook", err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("write workbook failed", zap.Error(err))
	}
}

// PeriodSummary GET /api/reports/period?period=
func (h *ReportHandler) PeriodSummary(c *gin.Context) {
	period, err := costing.ParsePeriod(c.Query("period"))
	if err != nil {
		respondError(c, h.logger, "period summary", err)
		return
	}
	report, err := h.svc.PeriodSummary(c.Request.Context(), period)
	if err != nil {
		respondError(c, h.logger, "period summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": period.Title(), "report": report})
}

// SyncPeriod POST /api/reports/period/sync?period=
func (h *ReportHandler) SyncPeriod(c *gin.Context) {
	period, err := costing.ParsePeriod(c.Query("period"))
	if err != nil {
		respondError(c, h.logger, "sync period", err)
		return
	}
	rows, err := h.svc.SyncPeriodToSheet(c.Request.Context(), period)
	if err != nil {
		respondError(c, h.logger, "sync period", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "rows_written": rows})
}

// ArchivePeriod POST /api/reports/period/archive?period=
func (h *ReportHandler) ArchivePeriod(c *gin.Context) {
	period, err := costing.ParsePeriod(c.Query("period"))
	if err != nil {
		respondError(c, h.logger, "archive period", err)
		return
	}
	snapshot, err := h.svc.ArchivePeriod(c.Request.Context(), period)
	if err != nil {
		respondError(c, h.logger, "archive period", err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// ArchivedReports GET /api/reports/archive?period=&limit=
func (h *ReportHandler) ArchivedReports(c *gin.Context) {
	period := ""
	if raw := c.Query("period"); raw != "" {
		p, err := costing.ParsePeriod(raw)
		if err != nil {
			respondError(c, h.logger, "list archived reports", err)
			return
		}
		period = string(p)
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	snapshots, err := h.svc.ArchivedReports(c.Request.Context(), period, limit)
	if err != nil {
		respondError(c, h.logger, "list archived reports", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": snapshots})
}

// SendWeekly POST /api/reports/weekly/send
func (h *ReportHandler) SendWeekly(c *gin.Context) {
	if h.notifier == nil {
		respondError(c, h.logger, "send weekly report", fmt.Errorf("whatsapp: %w", models.ErrNotConfigured))
		return
	}
	text, err := h.svc.WeeklyReportText(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "send weekly report", err)
		return
	}
	if err := h.notifier.NotifyReport(c.Request.Context(), text); err != nil {
		respondError(c, h.logger, "send weekly report", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": text})
}
