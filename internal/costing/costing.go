// Package costing turns production quantities and recipes into cost, sale
// price and profit figures. Every function here is pure: callers load the
// rows and pass them in.
package costing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quimo/inventario/internal/domain/models"
)

var (
	// Markup is applied to cost to obtain the sale price (30% margin over cost).
	Markup = decimal.RequireFromString("1.30")

	hundred = decimal.NewFromInt(100)
)

// Price returns the sale price for a cost.
func Price(cost decimal.Decimal) decimal.Decimal {
	return cost.Mul(Markup)
}

// Profit is the difference between sale price and cost.
func Profit(cost decimal.Decimal) decimal.Decimal {
	return Price(cost).Sub(cost)
}

// Margin returns profit as a percentage of price, or zero when price is zero.
func Margin(profit, price decimal.Decimal) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	return profit.Div(price).Mul(hundred)
}

// UnitCost sums quantity-per-unit times unit price over a product's recipe lines.
func UnitCost(lines []models.RecipeComponent) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(decimal.NewFromFloat(line.QuantityPerUnit).Mul(decimal.NewFromFloat(line.UnitPrice)))
	}
	return total
}

// ProductCost is the raw material cost of producing quantity units.
func ProductCost(quantity float64, lines []models.RecipeComponent) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(UnitCost(lines))
}

// Recipes indexes recipe components by product id.
type Recipes map[int64][]models.RecipeComponent

// GroupRecipes builds a Recipes index.
func GroupRecipes(lines []models.RecipeComponent) Recipes {
	out := make(Recipes)
	for _, line := range lines {
		out[line.ProductID] = append(out[line.ProductID], line)
	}
	return out
}

// ProductLine is one row of the weekly production table.
type ProductLine struct {
	ProductID int64           `json:"product_id"`
	Label     string          `json:"label"`
	Days      [7]float64      `json:"days"`
	Total     float64         `json:"total"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	Profit    decimal.Decimal `json:"profit"`
}

// WeeklyTable is production pivoted by product and weekday with costs applied.
type WeeklyTable struct {
	DayLabels   [7]string       `json:"day_labels"`
	Rows        []ProductLine   `json:"rows"`
	TotalUnits  float64         `json:"total_units"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	TotalProfit decimal.Decimal `json:"total_profit"`
}

// WeeklyProduction pivots rows by product and weekday. Days are keyed by the
// date's weekday, so callers should pass at most seven consecutive days.
func WeeklyProduction(rows []models.ProductionRecord, recipes Recipes) WeeklyTable {
	table := WeeklyTable{
		DayLabels:   models.DayLabels,
		TotalCost:   decimal.Zero,
		TotalPrice:  decimal.Zero,
		TotalProfit: decimal.Zero,
	}

	index := make(map[int64]int)
	for _, row := range rows {
		pos, ok := index[row.ProductID]
		if !ok {
			pos = len(table.Rows)
			index[row.ProductID] = pos
			table.Rows = append(table.Rows, ProductLine{
				ProductID: row.ProductID,
				Label:     productLabel(row.Product, row.Unit),
			})
		}
		line := &table.Rows[pos]
		line.Days[models.WeekdayIndex(row.Date)] += row.Quantity
		line.Total += row.Quantity
	}

	sort.Slice(table.Rows, func(i, j int) bool { return table.Rows[i].Label < table.Rows[j].Label })

	for i := range table.Rows {
		line := &table.Rows[i]
		line.Cost = ProductCost(line.Total, recipes[line.ProductID])
		line.Price = Price(line.Cost)
		line.Profit = line.Price.Sub(line.Cost)

		table.TotalUnits += line.Total
		table.TotalCost = table.TotalCost.Add(line.Cost)
		table.TotalPrice = table.TotalPrice.Add(line.Price)
		table.TotalProfit = table.TotalProfit.Add(line.Profit)
	}

	return table
}

// MaterialLine is the cost of one raw material per weekday.
type MaterialLine struct {
	MaterialID int64              `json:"material_id"`
	Name       string             `json:"name"`
	UnitCost   decimal.Decimal    `json:"unit_cost"`
	Days       [7]decimal.Decimal `json:"days"`
	Total      decimal.Decimal    `json:"total"`
}

// MaterialTable breaks production cost down by raw material.
type MaterialTable struct {
	DayLabels   [7]string       `json:"day_labels"`
	Rows        []MaterialLine  `json:"rows"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	Margin      decimal.Decimal `json:"margin"`
}

// MaterialCosts distributes the cost of each production row over the raw
// materials of its recipe. Every material gets a row, used or not; recipe
// lines that reference unknown materials are ignored.
func MaterialCosts(rows []models.ProductionRecord, recipes Recipes, materials []models.RawMaterial) MaterialTable {
	table := MaterialTable{DayLabels: models.DayLabels, TotalCost: decimal.Zero}

	index := make(map[int64]int, len(materials))
	for _, m := range materials {
		line := MaterialLine{
			MaterialID: m.ID,
			Name:       m.Name,
			UnitCost:   decimal.NewFromFloat(m.UnitCost),
			Total:      decimal.Zero,
		}
		for d := range line.Days {
			line.Days[d] = decimal.Zero
		}
		index[m.ID] = len(table.Rows)
		table.Rows = append(table.Rows, line)
	}

	for _, row := range rows {
		day := models.WeekdayIndex(row.Date)
		qty := decimal.NewFromFloat(row.Quantity)
		for _, comp := range recipes[row.ProductID] {
			pos, ok := index[comp.MaterialID]
			if !ok {
				continue
			}
			cost := qty.Mul(decimal.NewFromFloat(comp.QuantityPerUnit)).Mul(decimal.NewFromFloat(comp.UnitPrice))
			line := &table.Rows[pos]
			line.Days[day] = line.Days[day].Add(cost)
			line.Total = line.Total.Add(cost)
		}
	}

	sort.SliceStable(table.Rows, func(i, j int) bool { return table.Rows[i].Name < table.Rows[j].Name })

	for _, line := range table.Rows {
		table.TotalCost = table.TotalCost.Add(line.Total)
	}
	table.TotalSales = Price(table.TotalCost)
	table.TotalProfit = table.TotalSales.Sub(table.TotalCost)
	table.Margin = Margin(table.TotalProfit, table.TotalSales)

	return table
}

// ProductSummary is one product's figures over a reporting period.
type ProductSummary struct {
	ProductID int64           `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  float64         `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	Profit    decimal.Decimal `json:"profit"`
	Margin    decimal.Decimal `json:"margin"`
	CostShare decimal.Decimal `json:"cost_share"`
}

// PeriodReport aggregates production cost and profit over [From, To].
type PeriodReport struct {
	Period      Period           `json:"period"`
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Products    []ProductSummary `json:"products"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	TotalProfit decimal.Decimal  `json:"total_profit"`
	Margin      decimal.Decimal  `json:"margin"`
}

// Summarize groups the rows dated within [from, to] (day granularity) by
// product and prices each group.
func Summarize(period Period, from, to time.Time, rows []models.ProductionRecord, recipes Recipes) PeriodReport {
	report := PeriodReport{
		Period:      period,
		From:        from,
		To:          to,
		Products:    []ProductSummary{},
		TotalCost:   decimal.Zero,
		TotalPrice:  decimal.Zero,
		TotalProfit: decimal.Zero,
	}

	first, last := dayStart(from), dayStart(to)
	index := make(map[int64]int)
	for _, row := range rows {
		day := dayStart(row.Date)
		if day.Before(first) || day.After(last) {
			continue
		}
		pos, ok := index[row.ProductID]
		if !ok {
			pos = len(report.Products)
			index[row.ProductID] = pos
			report.Products = append(report.Products, ProductSummary{ProductID: row.ProductID, Product: row.Product})
		}
		report.Products[pos].Quantity += row.Quantity
	}

	sort.Slice(report.Products, func(i, j int) bool { return report.Products[i].Product < report.Products[j].Product })

	for i := range report.Products {
		p := &report.Products[i]
		p.Cost = ProductCost(p.Quantity, recipes[p.ProductID])
		p.Price = Price(p.Cost)
		p.Profit = p.Price.Sub(p.Cost)
		p.Margin = Margin(p.Profit, p.Price)

		report.TotalCost = report.TotalCost.Add(p.Cost)
		report.TotalPrice = report.TotalPrice.Add(p.Price)
		report.TotalProfit = report.TotalProfit.Add(p.Profit)
	}
	report.Margin = Margin(report.TotalProfit, report.TotalPrice)

	for i := range report.Products {
		p := &report.Products[i]
		if report.TotalCost.IsZero() {
			p.CostShare = decimal.Zero
			continue
		}
		p.CostShare = p.Cost.Div(report.TotalCost).Mul(hundred)
	}

	return report
}

func productLabel(name, unit string) string {
	if unit == "" {
		return name
	}
	return name + " (" + unit + ")"
}

// dayStart truncates to the calendar day in UTC so dates parsed from storage
// compare equal to wall-clock dates in any location.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
