package reporting

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/quimo/inventario/internal/domain/models"
)

const (
	productionSheet = "Produccion"
	materialsSheet  = "Costos MP"
)

// ExportWeeklyWorkbook builds a workbook with the weekly production table and
// the raw material cost table. The caller must close the returned file.
func (s *Service) ExportWeeklyWorkbook(ctx context.Context) (*excelize.File, string, error) {
	weekly, err := s.WeeklyProduction(ctx)
	if err != nil {
		return nil, "", err
	}
	materials, err := s.MaterialCosts(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", productionSheet); err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(materialsSheet); err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("add sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	// production table
	headers := []interface{}{"Producto"}
	for _, label := range weekly.DayLabels {
		headers = append(headers, label)
	}
	headers = append(headers, "Total", "Costo", "Venta", "Ganancia")
	writeRow(f, productionSheet, 1, headers, headerStyle)

	row := 2
	for _, line := range weekly.Rows {
		values := []interface{}{line.Label}
		for _, qty := range line.Days {
			values = append(values, qty)
		}
		values = append(values, line.Total, line.Cost.InexactFloat64(), line.Price.InexactFloat64(), line.Profit.InexactFloat64())
		writeRow(f, productionSheet, row, values, 0)
		row++
	}
	total := make([]interface{}, 8, 12)
	total[0] = "TOTAL"
	total = append(total, weekly.TotalUnits, weekly.TotalCost.InexactFloat64(), weekly.TotalPrice.InexactFloat64(), weekly.TotalProfit.InexactFloat64())
	writeRow(f, productionSheet, row, total, totalStyle)
	setWidths(f, productionSheet, 28, 8, len(headers))

	// raw material table
	headers = []interface{}{"Materia prima", "Costo unitario"}
	for _, label := range materials.DayLabels {
		headers = append(headers, label)
	}
	headers = append(headers, "Total")
	writeRow(f, materialsSheet, 1, headers, headerStyle)

	row = 2
	for _, line := range materials.Rows {
		values := []interface{}{line.Name, line.UnitCost.InexactFloat64()}
		for _, cost := range line.Days {
			values = append(values, cost.InexactFloat64())
		}
		values = append(values, line.Total.InexactFloat64())
		writeRow(f, materialsSheet, row, values, 0)
		row++
	}
	row++
	summary := [][]interface{}{
		{"Costo total", materials.TotalCost.InexactFloat64()},
		{"Ventas (x1.30)", materials.TotalSales.InexactFloat64()},
		{"Ganancia", materials.TotalProfit.InexactFloat64()},
		{"Margen %", materials.Margin.Round(2).InexactFloat64()},
	}
	for _, values := range summary {
		writeRow(f, materialsSheet, row, values, totalStyle)
		row++
	}
	setWidths(f, materialsSheet, 24, 10, len(headers))

	filename := fmt.Sprintf("produccion_%s_%s.xlsx", weekly.From.Format(models.DateLayout), weekly.To.Format(models.DateLayout))
	return f, filename, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) {
	for i, v := range values {
		if v == nil {
			continue
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s%d", col, row)
		_ = f.SetCellValue(sheet, cell, v)
		if style != 0 {
			_ = f.SetCellStyle(sheet, cell, cell, style)
		}
	}
}

func setWidths(f *excelize.File, sheet string, first, rest float64, columns int) {
	for i := 1; i <= columns; i++ {
		col, _ := excelize.ColumnNumberToName(i)
		w := rest
		if i == 1 {
			w = first
		}
		_ = f.SetColWidth(sheet, col, col, w)
	}
}
