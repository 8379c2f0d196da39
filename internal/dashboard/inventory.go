package dashboard

import (
	"math"
	"math/rand/v2"
	"sort"
)

const (
	// NoStockoutDays stands in for "never" when a department has no demand.
	NoStockoutDays = 999.0

	inventoryDepartments = 8
	minStock             = 40.0
	maxStock             = 520.0
	minDemand            = 4.0
	maxDemand            = 65.0

	highRiskDays   = 7.0
	mediumRiskDays = 14.0
)

// SyntheticInventory builds a deterministic per-store inventory snapshot. The
// backend exposes no inventory source, so this is always demo data.
func SyntheticInventory(storeID int) []InventoryItem {
	seed := uint64(storeID)
	if storeID <= 0 {
		seed = 0
	}
	rng := rand.New(rand.NewPCG(seed, 0x5eed))

	items := make([]InventoryItem, 0, inventoryDepartments)
	for dept := 1; dept <= inventoryDepartments; dept++ {
		stock := round1(minStock + rng.Float64()*(maxStock-minStock))
		demand := round1(minDemand + rng.Float64()*(maxDemand-minDemand))
		items = append(items, NewInventoryItem(storeID, dept, stock, demand))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysUntilStockout < items[j].DaysUntilStockout
	})
	return items
}

func NewInventoryItem(storeID, dept int, stock, demand float64) InventoryItem {
	days := DaysUntilStockout(stock, demand)
	return InventoryItem{
		StoreID:           storeID,
		Dept:              dept,
		StockLevel:        stock,
		DemandRate:        demand,
		DaysUntilStockout: days,
		Risk:              stockoutRisk(days),
	}
}

func DaysUntilStockout(stock, demand float64) float64 {
	if demand <= 0 || math.IsNaN(demand) || math.IsNaN(stock) {
		return NoStockoutDays
	}
	if stock <= 0 {
		return 0
	}
	days := round1(stock / demand)
	if days > NoStockoutDays {
		return NoStockoutDays
	}
	return days
}

func stockoutRisk(days float64) string {
	switch {
	case days < highRiskDays:
		return "HIGH"
	case days < mediumRiskDays:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
