package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysUntilStockout(t *testing.T) {
	assert.Equal(t, 10.0, DaysUntilStockout(100, 10))
	assert.Equal(t, 3.3, DaysUntilStockout(10, 3))
	assert.Equal(t, NoStockoutDays, DaysUntilStockout(100, 0))
	assert.Equal(t, NoStockoutDays, DaysUntilStockout(100, -1))
	assert.Equal(t, 0.0, DaysUntilStockout(0, 5))
	assert.Equal(t, NoStockoutDays, DaysUntilStockout(1e9, 0.1))
}

func TestSyntheticInventoryIsDeterministic(t *testing.T) {
	first := SyntheticInventory(12)
	second := SyntheticInventory(12)
	require.Len(t, first, inventoryDepartments)
	assert.Equal(t, first, second)

	for i, item := range first {
		assert.Equal(t, 12, item.StoreID)
		assert.GreaterOrEqual(t, item.StockLevel, minStock)
		assert.LessOrEqual(t, item.StockLevel, maxStock)
		assert.Equal(t, DaysUntilStockout(item.StockLevel, item.DemandRate), item.DaysUntilStockout)
		if i > 0 {
			assert.LessOrEqual(t, first[i-1].DaysUntilStockout, item.DaysUntilStockout)
		}
	}
}

func TestStockoutRiskBands(t *testing.T) {
	assert.Equal(t, "HIGH", NewInventoryItem(1, 1, 10, 5).Risk)
	assert.Equal(t, "MEDIUM", NewInventoryItem(1, 1, 100, 10).Risk)
	assert.Equal(t, "LOW", NewInventoryItem(1, 1, 100, 1).Risk)
}

func TestFallbackForecastBand(t *testing.T) {
	points := FallbackForecast(0)
	require.Len(t, points, 6)
	assert.Equal(t, "2012-11-02", points[0].Date)
	assert.Equal(t, "2012-11-09", points[1].Date)
	for _, p := range points {
		assert.Equal(t, p.Forecast*0.9, p.Lower)
		assert.Equal(t, p.Forecast*1.1, p.Upper)
	}
}
