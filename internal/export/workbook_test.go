package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"sales_dashboard/internal/dashboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func demoOverview() dashboard.Overview {
	return dashboard.Overview{
		StoreID:         4,
		KPIs:            dashboard.Panel[dashboard.KPIMetrics]{Data: dashboard.FallbackKPIs(), Demo: true},
		TopStores:       dashboard.Panel[[]dashboard.StoreSummary]{Data: dashboard.FallbackTopStores(3)},
		Forecast:        dashboard.Panel[[]dashboard.ForecastPoint]{Data: dashboard.FallbackForecast(4), Demo: true},
		Recommendations: dashboard.Panel[[]dashboard.Recommendation]{Data: dashboard.FallbackRecommendations()},
		Inventory:       dashboard.Panel[[]dashboard.InventoryItem]{Data: dashboard.SyntheticInventory(4), Demo: true},
	}
}

func TestWorkbookSheets(t *testing.T) {
	f, err := Workbook(demoOverview())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetKPIs, sheetStores, sheetForecast, sheetRecommendations, sheetInventory}, f.GetSheetList())

	header, err := f.GetCellValue(sheetForecast, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Forecast", header)

	date, err := f.GetCellValue(sheetForecast, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2012-11-02", date)

	note, err := f.GetCellValue(sheetForecast, "A7")
	require.NoError(t, err)
	assert.Equal(t, demoNote, note)

	rows, err := f.GetRows(sheetStores)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	title, err := f.GetCellValue(sheetRecommendations, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Inventory", title)
}

func TestWriteProducesReadableWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, demoOverview()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 5)
}

func TestSaveRequiresXLSXExtension(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, Save(filepath.Join(dir, "overview.csv"), demoOverview()))
	assert.NoError(t, Save(filepath.Join(dir, "overview.xlsx"), demoOverview()))
}
