package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/cache"
	"github.com/quimo/inventario/internal/costing"
	"github.com/quimo/inventario/internal/domain/models"
	"github.com/quimo/inventario/internal/repository/mongodb"
	"github.com/quimo/inventario/internal/repository/sheets"
)

const defaultCacheTTL = 10 * time.Minute

// Store is the read side of the SQLite repository.
type Store interface {
	ProductionBetween(ctx context.Context, from, to time.Time) ([]models.ProductionRecord, error)
	RecipeComponents(ctx context.Context, productIDs ...int64) ([]models.RecipeComponent, error)
	RawMaterials(ctx context.Context) ([]models.RawMaterial, error)
}

// Options carries the optional integrations of the service. Nil fields
// disable the matching feature.
type Options struct {
	Cache        cache.Cache
	CacheTTL     time.Duration
	Sheets       sheets.Repository
	SummaryRange string
	Archive      mongodb.Repository
	Location     *time.Location
}

// Service computes production and cost reports.
type Service struct {
	store        Store
	cache        cache.Cache
	ttl          time.Duration
	sheets       sheets.Repository
	summaryRange string
	archive      mongodb.Repository
	location     *time.Location
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(store Store, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		store:        store,
		cache:        opts.Cache,
		ttl:          opts.CacheTTL,
		sheets:       opts.Sheets,
		summaryRange: opts.SummaryRange,
		archive:      opts.Archive,
		location:     opts.Location,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) today() time.Time {
	return s.now().In(s.location)
}

// WeeklyReport is the production table of the last seven days.
type WeeklyReport struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	costing.WeeklyTable
}

// MaterialReport is the raw material cost table of the last seven days.
type MaterialReport struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	costing.MaterialTable
}

func (s *Service) load(ctx context.Context, from, to time.Time) ([]models.ProductionRecord, costing.Recipes, error) {
	rows, err := s.store.ProductionBetween(ctx, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("load production: %w", err)
	}
	lines, err := s.store.RecipeComponents(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load recipes: %w", err)
	}
	return rows, costing.GroupRecipes(lines), nil
}

// WeeklyProduction pivots the last seven days of production by product and weekday.
func (s *Service) WeeklyProduction(ctx context.Context) (*WeeklyReport, error) {
	from, to := costing.CurrentWeek(s.today())
	rows, recipes, err := s.load(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &WeeklyReport{From: from, To: to, WeeklyTable: costing.WeeklyProduction(rows, recipes)}, nil
}

// MaterialCosts breaks the last seven days of production cost down by raw material.
func (s *Service) MaterialCosts(ctx context.Context) (*MaterialReport, error) {
	from, to := costing.CurrentWeek(s.today())
	rows, recipes, err := s.load(ctx, from, to)
	if err != nil {
		return nil, err
	}
	materials, err := s.store.RawMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("load raw materials: %w", err)
	}
	return &MaterialReport{From: from, To: to, MaterialTable: costing.MaterialCosts(rows, recipes, materials)}, nil
}

// PeriodSummary returns cost, price and profit per product for the period
// ending today. Results are cached until production or recipes change.
func (s *Service) PeriodSummary(ctx context.Context, period costing.Period) (*costing.PeriodReport, error) {
	from, to := costing.Window(period, s.today())
	key := fmt.Sprintf("%speriod:%s:%s", cache.ReportPrefix, period, to.Format(models.DateLayout))

	var cached costing.PeriodReport
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		s.logger.Debug("period summary served from cache", zap.String("key", key))
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	rows, recipes, err := s.load(ctx, from, to)
	if err != nil {
		return nil, err
	}
	report := costing.Summarize(period, from, to, rows, recipes)

	if err := s.cache.Set(ctx, key, report, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return &report, nil
}

// WeeklyReportText renders the weekly production table as a chat message.
func (s *Service) WeeklyReportText(ctx context.Context) (string, error) {
	weekly, err := s.WeeklyProduction(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Producción semanal (%s - %s)\n", weekly.From.Format(models.DateLayout), weekly.To.Format(models.DateLayout))
	if len(weekly.Rows) == 0 {
		b.WriteString("Sin producción registrada.")
		return b.String(), nil
	}

	for _, row := range weekly.Rows {
		fmt.Fprintf(&b, "- %s: %s u, costo $%s, venta $%s, ganancia $%s\n",
			row.Label, formatQty(row.Total), row.Cost.StringFixed(2), row.Price.StringFixed(2), row.Profit.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s u, costo $%s, venta $%s, ganancia $%s",
		formatQty(weekly.TotalUnits), weekly.TotalCost.StringFixed(2), weekly.TotalPrice.StringFixed(2), weekly.TotalProfit.StringFixed(2))
	return b.String(), nil
}

// PeriodSummaryText renders a period summary as a chat message.
func (s *Service) PeriodSummaryText(ctx context.Context, period costing.Period) (string, error) {
	report, err := s.PeriodSummary(ctx, period)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s - %s)\n", period.Title(), report.From.Format(models.DateLayout), report.To.Format(models.DateLayout))
	if len(report.Products) == 0 {
		b.WriteString("Sin producción en el periodo.")
		return b.String(), nil
	}
	for _, p := range report.Products {
		fmt.Fprintf(&b, "- %s: %s u, costo $%s, ganancia $%s (%s%% del costo)\n",
			p.Product, formatQty(p.Quantity), p.Cost.StringFixed(2), p.Profit.StringFixed(2), p.CostShare.StringFixed(1))
	}
	fmt.Fprintf(&b, "Total: costo $%s, venta $%s, ganancia $%s, margen %s%%",
		report.TotalCost.StringFixed(2), report.TotalPrice.StringFixed(2), report.TotalProfit.StringFixed(2), report.Margin.StringFixed(2))
	return b.String(), nil
}

// SyncPeriodToSheet appends the period summary to the spreadsheet, one row per
// product plus a total row. A window already present in the sheet is skipped.
// It returns the number of rows written.
func (s *Service) SyncPeriodToSheet(ctx context.Context, period costing.Period) (int, error) {
	if s.sheets == nil {
		return 0, fmt.Errorf("sheets sync: %w", models.ErrNotConfigured)
	}

	report, err := s.PeriodSummary(ctx, period)
	if err != nil {
		return 0, err
	}
	from, to := report.From.Format(models.DateLayout), report.To.Format(models.DateLayout)

	existing, err := s.sheets.ReadRange(ctx, s.summaryRange)
	if err != nil {
		return 0, fmt.Errorf("read summary sheet: %w", err)
	}
	for _, row := range existing {
		if len(row) < 3 {
			continue
		}
		if fmt.Sprint(row[0]) == string(period) && fmt.Sprint(row[1]) == from && fmt.Sprint(row[2]) == to {
			s.logger.Info("period already synced", zap.String("period", string(period)), zap.String("from", from))
			return 0, nil
		}
	}

	rows := make([][]interface{}, 0, len(report.Products)+1)
	for _, p := range report.Products {
		rows = append(rows, []interface{}{
			string(period), from, to, p.Product, p.Quantity,
			p.Cost.StringFixed(2), p.Price.StringFixed(2), p.Profit.StringFixed(2),
		})
	}
	rows = append(rows, []interface{}{
		string(period), from, to, "TOTAL", "",
		report.TotalCost.StringFixed(2), report.TotalPrice.StringFixed(2), report.TotalProfit.StringFixed(2),
	})

	if err := s.sheets.AppendRows(ctx, s.summaryRange, rows); err != nil {
		return 0, fmt.Errorf("append summary rows: %w", err)
	}
	s.logger.Info("period synced to sheet", zap.String("period", string(period)), zap.Int("rows", len(rows)))
	return len(rows), nil
}

// ArchivePeriod stores a snapshot of the period summary.
func (s *Service) ArchivePeriod(ctx context.Context, period costing.Period) (*models.ReportSnapshot, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("report archive: %w", models.ErrNotConfigured)
	}

	report, err := s.PeriodSummary(ctx, period)
	if err != nil {
		return nil, err
	}

	snapshot := models.ReportSnapshot{
		ID:          uuid.NewString(),
		Period:      string(period),
		From:        report.From,
		To:          report.To,
		TotalCost:   report.TotalCost.StringFixed(2),
		TotalPrice:  report.TotalPrice.StringFixed(2),
		TotalProfit: report.TotalProfit.StringFixed(2),
		Margin:      report.Margin.StringFixed(2),
		Products:    make([]models.SnapshotProduct, 0, len(report.Products)),
		CreatedAt:   s.now().UTC(),
	}
	for _, p := range report.Products {
		snapshot.Products = append(snapshot.Products, models.SnapshotProduct{
			ProductID: p.ProductID,
			Product:   p.Product,
			Quantity:  p.Quantity,
			Cost:      p.Cost.StringFixed(2),
			Price:     p.Price.StringFixed(2),
			Profit:    p.Profit.StringFixed(2),
		})
	}

	if err := s.archive.SaveReport(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("archive period %s: %w", period, err)
	}
	s.logger.Info("period archived", zap.String("id", snapshot.ID), zap.String("period", string(period)))
	return &snapshot, nil
}

// ArchivedReports lists stored snapshots, newest first.
func (s *Service) ArchivedReports(ctx context.Context, period string, limit int64) ([]models.ReportSnapshot, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("report archive: %w", models.ErrNotConfigured)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.archive.RecentReports(ctx, period, limit)
}

func formatQty(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
