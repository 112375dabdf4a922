package costing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quimo/inventario/internal/domain/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, got.String())
	}
}

func TestSingleProductCostPriceProfit(t *testing.T) {
	recipes := GroupRecipes([]models.RecipeComponent{
		{ProductID: 1, MaterialID: 7, Material: "Resina", QuantityPerUnit: 3, UnitPrice: 2},
	})

	cost := ProductCost(10, recipes[1])
	assertDecimal(t, "cost", cost, "60")
	assertDecimal(t, "price", Price(cost), "78")
	assertDecimal(t, "profit", Profit(cost), "18")
}

func TestMarginIsZeroWhenPriceIsZero(t *testing.T) {
	assertDecimal(t, "margin", Margin(decimal.Zero, decimal.Zero), "0")
	assertDecimal(t, "margin", Margin(dec("5"), decimal.Zero), "0")
}

func TestMarginIsProfitOverPrice(t *testing.T) {
	assertDecimal(t, "margin", Margin(dec("25"), dec("100")), "25")

	// a 30% markup always yields 30/130 of the price as profit
	m := Margin(Profit(dec("60")), Price(dec("60")))
	if got := m.StringFixed(2); got != "23.08" {
		t.Errorf("expected margin 23.08, got %s", got)
	}
}

func TestUnitCostWithoutRecipeIsZero(t *testing.T) {
	assertDecimal(t, "unit cost", UnitCost(nil), "0")
	assertDecimal(t, "cost", ProductCost(12, nil), "0")
}

func TestWeeklyProductionPivotsByWeekday(t *testing.T) {
	// 2026-10-12 is a Monday, 2026-10-14 a Wednesday.
	rows := []models.ProductionRecord{
		{ProductID: 2, Product: "Jabón", Unit: "kg", Date: day("2026-10-12"), Quantity: 4},
		{ProductID: 2, Product: "Jabón", Unit: "kg", Date: day("2026-10-14"), Quantity: 6},
		{ProductID: 1, Product: "Cloro", Unit: "l", Date: day("2026-10-13"), Quantity: 5},
	}
	recipes := GroupRecipes([]models.RecipeComponent{
		{ProductID: 2, MaterialID: 1, QuantityPerUnit: 0.5, UnitPrice: 4},
		{ProductID: 1, MaterialID: 2, QuantityPerUnit: 1, UnitPrice: 1},
	})

	table := WeeklyProduction(rows, recipes)

	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0].Label != "Cloro (l)" || table.Rows[1].Label != "Jabón (kg)" {
		t.Fatalf("unexpected row order: %q, %q", table.Rows[0].Label, table.Rows[1].Label)
	}

	soap := table.Rows[1]
	if soap.Days[0] != 4 || soap.Days[2] != 6 || soap.Days[1] != 0 {
		t.Errorf("unexpected soap days: %v", soap.Days)
	}
	if soap.Total != 10 {
		t.Errorf("expected soap total 10, got %v", soap.Total)
	}
	assertDecimal(t, "soap cost", soap.Cost, "20")
	assertDecimal(t, "soap price", soap.Price, "26")
	assertDecimal(t, "soap profit", soap.Profit, "6")

	if table.TotalUnits != 15 {
		t.Errorf("expected 15 units, got %v", table.TotalUnits)
	}
	assertDecimal(t, "total cost", table.TotalCost, "25")
	assertDecimal(t, "total price", table.TotalPrice, "32.5")
	assertDecimal(t, "total profit", table.TotalProfit, "7.5")
	if table.DayLabels[2] != "X" {
		t.Errorf("expected Wednesday label X, got %s", table.DayLabels[2])
	}
}

func TestMaterialCostsPerDay(t *testing.T) {
	rows := []models.ProductionRecord{
		{ProductID: 1, Product: "Cloro", Date: day("2026-10-12"), Quantity: 10},
		{ProductID: 1, Product: "Cloro", Date: day("2026-10-16"), Quantity: 2},
	}
	recipes := GroupRecipes([]models.RecipeComponent{
		{ProductID: 1, MaterialID: 1, QuantityPerUnit: 3, UnitPrice: 2},
		{ProductID: 1, MaterialID: 99, QuantityPerUnit: 1, UnitPrice: 100},
	})
	materials := []models.RawMaterial{
		{ID: 1, Name: "Resina", UnitCost: 2},
		{ID: 3, Name: "Agua", UnitCost: 0.1},
	}

	table := MaterialCosts(rows, recipes, materials)

	if len(table.Rows) != 2 {
		t.Fatalf("expected every material listed, got %d rows", len(table.Rows))
	}
	if table.Rows[0].Name != "Agua" {
		t.Fatalf("expected rows sorted by name, got %s first", table.Rows[0].Name)
	}
	resin := table.Rows[1]
	assertDecimal(t, "monday", resin.Days[0], "60")
	assertDecimal(t, "friday", resin.Days[4], "12")
	assertDecimal(t, "resin total", resin.Total, "72")
	assertDecimal(t, "water total", table.Rows[0].Total, "0")

	assertDecimal(t, "total cost", table.TotalCost, "72")
	assertDecimal(t, "total sales", table.TotalSales, "93.6")
	assertDecimal(t, "total profit", table.TotalProfit, "21.6")
	if got := table.Margin.StringFixed(2); got != "23.08" {
		t.Errorf("expected margin 23.08, got %s", got)
	}
}

func TestMaterialCostsWithoutProductionHasZeroMargin(t *testing.T) {
	table := MaterialCosts(nil, nil, []models.RawMaterial{{ID: 1, Name: "Resina", UnitCost: 2}})
	assertDecimal(t, "total", table.TotalCost, "0")
	assertDecimal(t, "margin", table.Margin, "0")
}

func TestSummarizeFiltersWindowAndGroups(t *testing.T) {
	rows := []models.ProductionRecord{
		{ProductID: 1, Product: "Cloro", Date: day("2026-10-01"), Quantity: 100},
		{ProductID: 1, Product: "Cloro", Date: day("2026-10-13"), Quantity: 6},
		{ProductID: 1, Product: "Cloro", Date: day("2026-10-19"), Quantity: 4},
		{ProductID: 2, Product: "Jabón", Date: day("2026-10-15"), Quantity: 5},
	}
	recipes := GroupRecipes([]models.RecipeComponent{
		{ProductID: 1, MaterialID: 1, QuantityPerUnit: 3, UnitPrice: 2},
		{ProductID: 2, MaterialID: 2, QuantityPerUnit: 2, UnitPrice: 4},
	})

	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.Local)
	from, to := Window(PeriodWeek, now)
	report := Summarize(PeriodWeek, from, to, rows, recipes)

	if len(report.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(report.Products))
	}
	chlorine := report.Products[0]
	if chlorine.Quantity != 10 {
		t.Errorf("expected the 2026-10-01 row to be excluded, got quantity %v", chlorine.Quantity)
	}
	assertDecimal(t, "chlorine cost", chlorine.Cost, "60")
	assertDecimal(t, "chlorine price", chlorine.Price, "78")
	assertDecimal(t, "chlorine profit", chlorine.Profit, "18")

	soap := report.Products[1]
	assertDecimal(t, "soap cost", soap.Cost, "40")

	assertDecimal(t, "total cost", report.TotalCost, "100")
	assertDecimal(t, "total price", report.TotalPrice, "130")
	assertDecimal(t, "chlorine share", chlorine.CostShare, "60")
	assertDecimal(t, "soap share", soap.CostShare, "40")
}

func TestSummarizeEmpty(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	from, to := Window(PeriodMonth, now)
	report := Summarize(PeriodMonth, from, to, nil, nil)
	if len(report.Products) != 0 {
		t.Fatalf("expected no products, got %d", len(report.Products))
	}
	assertDecimal(t, "margin", report.Margin, "0")
}

func TestWindowLengths(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		period    Period
		wantFrom  string
		firstLeft string
	}{
		{PeriodWeek, "2026-10-13", "2026-10-12"},
		{PeriodFortnight, "2026-10-05", "2026-10-04"},
		{PeriodMonth, "2026-09-20", "2026-09-19"},
		{PeriodQuarter, "2026-07-20", "2026-07-19"},
	}

	for _, tt := range tests {
		from, to := Window(tt.period, now)
		if got := from.Format(models.DateLayout); got != tt.wantFrom {
			t.Errorf("%s: expected window to start %s, got %s", tt.period, tt.wantFrom, got)
		}
		if got := to.Format(models.DateLayout); got != "2026-10-19" {
			t.Errorf("%s: expected window to end today, got %s", tt.period, got)
		}

		rows := []models.ProductionRecord{
			{ProductID: 1, Product: "Cloro", Date: day(tt.firstLeft), Quantity: 100},
			{ProductID: 1, Product: "Cloro", Date: day(tt.wantFrom), Quantity: 1},
		}
		report := Summarize(tt.period, from, to, rows, nil)
		if len(report.Products) != 1 || report.Products[0].Quantity != 1 {
			t.Errorf("%s: expected only the row on %s counted, got %+v", tt.period, tt.wantFrom, report.Products)
		}
	}

	weekFrom, weekTo := CurrentWeek(now)
	from, to := Window(PeriodWeek, now)
	if !from.Equal(weekFrom) || !to.Equal(weekTo) {
		t.Errorf("weekly table and week summary disagree: %v-%v vs %v-%v", weekFrom, weekTo, from, to)
	}
}
