package export

import (
	"fmt"
	"io"
	"strings"

	"sales_dashboard/internal/dashboard"

	"github.com/xuri/excelize/v2"
)

const (
	sheetKPIs            = "KPIs"
	sheetStores          = "Top Stores"
	sheetForecast        = "Forecast"
	sheetRecommendations = "Recommendations"
	sheetInventory       = "Inventory"

	demoNote = "demo data (backend unavailable)"
)

// Workbook renders an overview as an xlsx file, one sheet per panel.
func Workbook(overview dashboard.Overview) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetKPIs); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetStores, sheetForecast, sheetRecommendations, sheetInventory} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	w := &sheetWriter{f: f, headerStyle: headerStyle}

	kpi := overview.KPIs.Data
	w.table(sheetKPIs, overview.KPIs.Demo, []string{"Metric", "Value"}, [][]any{
		{"Average weekly sales", kpi.AvgWeeklySales},
		{"Minimum weekly sales", kpi.MinSales},
		{"Maximum weekly sales", kpi.MaxSales},
		{"Volatility", kpi.Volatility},
		{"Holiday average sales", kpi.HolidaySalesAvg},
	})

	storeRows := make([][]any, 0, len(overview.TopStores.Data))
	for _, s := range overview.TopStores.Data {
		storeRows = append(storeRows, []any{s.ID, s.TotalSales, s.AvgWeeklySales, s.Departments})
	}
	w.table(sheetStores, overview.TopStores.Demo, []string{"Store", "Total sales", "Avg weekly sales", "Departments"}, storeRows)

	forecastRows := make([][]any, 0, len(overview.Forecast.Data))
	for _, p := range overview.Forecast.Data {
		forecastRows = append(forecastRows, []any{p.Date, p.Forecast, p.Lower, p.Upper})
	}
	w.table(sheetForecast, overview.Forecast.Demo, []string{"Date", "Forecast", "Lower", "Upper"}, forecastRows)

	recRows := make([][]any, 0, len(overview.Recommendations.Data))
	for _, r := range overview.Recommendations.Data {
		recRows = append(recRows, []any{r.ID, r.Title, r.Severity, r.Details, r.Action})
	}
	w.table(sheetRecommendations, overview.Recommendations.Demo, []string{"ID", "Title", "Severity", "Details", "Action"}, recRows)

	invRows := make([][]any, 0, len(overview.Inventory.Data))
	for _, item := range overview.Inventory.Data {
		invRows = append(invRows, []any{item.Dept, item.StockLevel, item.DemandRate, item.DaysUntilStockout, item.Risk})
	}
	w.table(sheetInventory, overview.Inventory.Demo, []string{"Dept", "Stock level", "Demand rate", "Days until stockout", "Risk"}, invRows)

	if w.err != nil {
		return nil, w.err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write renders the overview and streams the workbook to out.
func Write(out io.Writer, overview dashboard.Overview) error {
	f, err := Workbook(overview)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func Save(path string, overview dashboard.Overview) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return fmt.Errorf("export path %q must end in .xlsx", path)
	}

	f, err := Workbook(overview)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	err         error
}

// table writes a header row, the data rows and, for demo panels, a trailing
// note. The first error sticks.
func (w *sheetWriter) table(sheet string, demo bool, headers []string, rows [][]any) {
	if w.err != nil {
		return
	}

	if err := w.f.SetSheetRow(sheet, "A1", &headers); err != nil {
		w.err = fmt.Errorf("write %s header: %w", sheet, err)
		return
	}
	if err := w.f.SetRowStyle(sheet, 1, 1, w.headerStyle); err != nil {
		w.err = fmt.Errorf("style %s header: %w", sheet, err)
		return
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
			w.err = fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
			return
		}
	}

	if demo {
		cell, _ := excelize.CoordinatesToCellName(1, len(rows)+3)
		if err := w.f.SetCellValue(sheet, cell, demoNote); err != nil {
			w.err = fmt.Errorf("write %s note: %w", sheet, err)
			return
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := w.f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		w.err = fmt.Errorf("size %s columns: %w", sheet, err)
	}
}
