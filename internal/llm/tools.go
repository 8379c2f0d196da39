package llm

import openrouter "github.com/revrost/go-openrouter"

const (
	ToolGetKPIs            = "GetKPIs"
	ToolListStores         = "ListStores"
	ToolTopStores          = "TopStores"
	ToolGetForecast        = "GetForecast"
	ToolGetRecommendations = "GetRecommendations"
	ToolGetInventory       = "GetInventory"
	ToolAssessRisk         = "AssessRisk"
)

func ToolSchemas() []openrouter.Tool {
	return []openrouter.Tool{
		getKPIsTool(),
		listStoresTool(),
		topStoresTool(),
		getForecastTool(),
		getRecommendationsTool(),
		getInventoryTool(),
		assessRiskTool(),
	}
}

func storeIDProperty() map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": "Store number (1-45). Omit for all stores combined.",
	}
}

func function(name, description string, properties map[string]any, required ...string) openrouter.Tool {
	if required == nil {
		required = []string{}
	}
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: map[string]any{
				"type":                 "object",
				"properties":           properties,
				"required":             required,
				"additionalProperties": false,
			},
		},
	}
}

func getKPIsTool() openrouter.Tool {
	return function(ToolGetKPIs,
		"Aggregate weekly sales statistics: avgWeeklySales, minSales, maxSales, volatility (standard deviation) and holidaySalesAvg. Filter by store and/or department.",
		map[string]any{
			"store_id": storeIDProperty(),
			"dept": map[string]any{
				"type":        "integer",
				"description": "Department number. Omit for all departments.",
			},
		})
}

func listStoresTool() openrouter.Tool {
	return function(ToolListStores,
		"List every store with id, totalSales, avgWeeklySales and number of departments.",
		map[string]any{})
}

func topStoresTool() openrouter.Tool {
	return function(ToolTopStores,
		"Top N stores ranked by total sales.",
		map[string]any{
			"limit": map[string]any{
				"type":        "integer",
				"description": "How many stores to return (default 5).",
			},
		})
}

func getForecastTool() openrouter.Tool {
	return function(ToolGetForecast,
		"Weekly sales forecast. Each point has date, forecast, lower and upper bound of the confidence band.",
		map[string]any{
			"store_id": storeIDProperty(),
			"periods": map[string]any{
				"type":        "integer",
				"description": "Number of weeks ahead, 1-26 (default 6).",
			},
		})
}

func getRecommendationsTool() openrouter.Tool {
	return function(ToolGetRecommendations,
		"Actionable recommendations with title, details, severity (high/medium/low) and expected action/impact.",
		map[string]any{
			"store_id": storeIDProperty(),
		})
}

func getInventoryTool() openrouter.Tool {
	return function(ToolGetInventory,
		"Inventory snapshot per department: stockLevel, demandRate per day, daysUntilStockout and risk band. Always synthetic demo data.",
		map[string]any{
			"store_id": storeIDProperty(),
		})
}

func assessRiskTool() openrouter.Tool {
	return function(ToolAssessRisk,
		"Score one week of sales for a store/department: anomaly detection, behaviour cluster, risk score and level, plus alert messages.",
		map[string]any{
			"store":        map[string]any{"type": "integer", "description": "Store number."},
			"dept":         map[string]any{"type": "integer", "description": "Department number."},
			"weekly_sales": map[string]any{"type": "number", "description": "Weekly sales in USD."},
			"temperature":  map[string]any{"type": "number", "description": "Average temperature (F)."},
			"fuel_price":   map[string]any{"type": "number", "description": "Fuel price (USD/gallon)."},
			"cpi":          map[string]any{"type": "number", "description": "Consumer price index."},
			"unemployment": map[string]any{"type": "number", "description": "Unemployment rate (%)."},
			"is_holiday":   map[string]any{"type": "boolean", "description": "Whether the week contains a holiday."},
		},
		"store", "dept", "weekly_sales")
}
