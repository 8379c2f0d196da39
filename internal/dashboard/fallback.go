package dashboard

import (
	"time"

	"sales_dashboard/internal/analytics"
)

// Demo data served whenever the backend cannot be reached. Figures are in the
// range of the weekly-sales dataset the backend is trained on.

var demoForecastStart = time.Date(2012, time.November, 2, 0, 0, 0, 0, time.UTC)

const (
	demoForecastBase = 1_045_000.0
	demoForecastStep = 12_500.0
)

func FallbackHealth() Health {
	return Health{Status: "offline", Online: false}
}

func FallbackKPIs() KPIMetrics {
	return KPIMetrics{
		AvgWeeklySales:  15981.26,
		MinSales:        -4988.94,
		MaxSales:        693099.36,
		Volatility:      22711.18,
		HolidaySalesAvg: 17035.82,
	}
}

func FallbackStores() []StoreSummary {
	return []StoreSummary{
		{ID: 20, TotalSales: 301397792.46, AvgWeeklySales: 29508.30, Departments: 78},
		{ID: 4, TotalSales: 299543953.38, AvgWeeklySales: 29161.21, Departments: 78},
		{ID: 14, TotalSales: 288999911.34, AvgWeeklySales: 28784.85, Departments: 77},
		{ID: 13, TotalSales: 286517703.80, AvgWeeklySales: 27355.14, Departments: 79},
		{ID: 2, TotalSales: 275382440.98, AvgWeeklySales: 26898.07, Departments: 78},
	}
}

func FallbackTopStores(n int) []StoreSummary {
	stores := FallbackStores()
	if n > 0 && n < len(stores) {
		return stores[:n]
	}
	return stores
}

// FallbackForecast produces a gentle weekly uptrend with the standard ±10%
// band, one point per requested period.
func FallbackForecast(periods int) []ForecastPoint {
	periods = analytics.ClampPeriods(periods)
	out := make([]ForecastPoint, 0, periods)
	for i := 0; i < periods; i++ {
		value := demoForecastBase + float64(i)*demoForecastStep
		out = append(out, ForecastPoint{
			Date:     demoForecastStart.AddDate(0, 0, 7*i).Format("2006-01-02"),
			Forecast: value,
			Lower:    value * lowerBoundFactor,
			Upper:    value * upperBoundFactor,
		})
	}
	return out
}

func FallbackRecommendations() []Recommendation {
	return []Recommendation{
		{
			ID:       0,
			Title:    "Inventory",
			Details:  "Increase stock for high-velocity departments ahead of the holiday weeks.",
			Severity: "high",
			Action:   "Avoid an estimated 8% of lost holiday sales",
		},
		{
			ID:       1,
			Title:    "Pricing",
			Details:  "Review markdowns in departments with falling weekly sales.",
			Severity: "medium",
			Action:   "Recover 2-3% margin on slow movers",
		},
		{
			ID:       2,
			Title:    "Operations",
			Details:  "Align staffing with the forecast peak in the coming weeks.",
			Severity: "low",
			Action:   "Shorter checkout queues during peak traffic",
		},
	}
}

func FallbackAnomaly() AnomalyResult {
	return AnomalyResult{}
}

func FallbackCluster() ClusterAssignment {
	return ClusterAssignment{}
}

func FallbackRisk() RiskAssessment {
	return RiskAssessment{RiskLevel: riskLevelUnknown}
}

func FallbackAlerts() AlertSummary {
	return AlertSummary{
		Messages: []string{"No alerts. Situation normal."},
		Details:  FallbackRisk(),
	}
}
