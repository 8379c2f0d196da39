package dashboard

import (
	"math"
	"strings"
	"time"

	"sales_dashboard/internal/analytics"
)

const (
	lowerBoundFactor = 0.9
	upperBoundFactor = 1.1

	anomalyFlag        = -1
	defaultSeverity    = "medium"
	defaultTitle       = "General"
	riskLevelUnknown   = "UNKNOWN"
	healthStatusOnline = "ok"
)

// Clusters the backend's KMeans model associates with poor performance.
var highRiskClusters = map[int]bool{6: true, 7: true}

func NormalizeHealth(in analytics.HealthStatus) Health {
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = "unknown"
	}
	return Health{
		Status: status,
		Online: strings.EqualFold(status, healthStatusOnline),
	}
}

func NormalizeKPI(in analytics.KPIResponse) KPIMetrics {
	return KPIMetrics{
		AvgWeeklySales:  finite(in.AvgWeeklySales),
		MinSales:        finite(in.MinSales),
		MaxSales:        finite(in.MaxSales),
		Volatility:      finite(in.Volatility),
		HolidaySalesAvg: finite(in.HolidaySalesAvg),
	}
}

func NormalizeStores(in []analytics.StoreSummary) []StoreSummary {
	out := make([]StoreSummary, 0, len(in))
	for _, store := range in {
		out = append(out, StoreSummary{
			ID:             intOrZero(store.StoreID),
			TotalSales:     finite(store.TotalSales),
			AvgWeeklySales: finite(store.AvgWeeklySales),
			Departments:    intOrZero(store.DeptCount),
		})
	}
	return out
}

// NormalizeForecast fills a missing confidence band with ±10% of the point
// forecast.
func NormalizeForecast(in []analytics.ForecastPoint) []ForecastPoint {
	out := make([]ForecastPoint, 0, len(in))
	for _, point := range in {
		value := finite(point.Forecast)

		lower, ok := firstFinite(point.Lower, point.YhatLower)
		if !ok {
			lower = value * lowerBoundFactor
		}
		upper, ok := firstFinite(point.Upper, point.YhatUpper)
		if !ok {
			upper = value * upperBoundFactor
		}

		out = append(out, ForecastPoint{
			Date:     formatDate(point.Timestamp),
			Forecast: value,
			Lower:    lower,
			Upper:    upper,
		})
	}
	return out
}

// NormalizeRecommendations flattens the backend wrapper; ids are the
// zero-based input positions.
func NormalizeRecommendations(in analytics.RecommendationsResponse) []Recommendation {
	out := make([]Recommendation, 0, len(in.Recommendations))
	for i, rec := range in.Recommendations {
		title := strings.TrimSpace(rec.Category)
		if title == "" {
			title = defaultTitle
		}
		severity := strings.ToLower(strings.TrimSpace(rec.Priority))
		if severity == "" {
			severity = defaultSeverity
		}
		out = append(out, Recommendation{
			ID:       i,
			Title:    title,
			Details:  strings.TrimSpace(rec.Message),
			Severity: severity,
			Action:   strings.TrimSpace(rec.ExpectedImpact),
		})
	}
	return out
}

func NormalizeAnomaly(in analytics.AnomalyResponse) AnomalyResult {
	return AnomalyResult{
		AnomalyDetected: in.Anomaly != nil && *in.Anomaly == anomalyFlag,
		AnomalyScore:    finite(in.AnomalyScore),
	}
}

func NormalizeCluster(in analytics.ClusterResponse) ClusterAssignment {
	cluster := intOrZero(in.Cluster)
	return ClusterAssignment{
		Cluster:  cluster,
		HighRisk: in.Cluster != nil && highRiskClusters[cluster],
	}
}

func NormalizeRisk(in analytics.RiskResponse) RiskAssessment {
	level := strings.ToUpper(strings.TrimSpace(in.RiskLevel))
	if level == "" {
		level = riskLevelUnknown
	}
	return RiskAssessment{
		RiskScore:       finite(in.RiskScore),
		RiskLevel:       level,
		Cluster:         intOrZero(in.Cluster),
		AnomalyDetected: in.Anomaly != nil && *in.Anomaly == anomalyFlag,
		AnomalyScore:    finite(in.AnomalyScore),
	}
}

func NormalizeAlerts(in analytics.AlertsResponse) AlertSummary {
	messages := make([]string, 0, len(in.Alerts))
	for _, alert := range in.Alerts {
		if msg := strings.TrimSpace(alert); msg != "" {
			messages = append(messages, msg)
		}
	}
	return AlertSummary{
		Messages: messages,
		Details:  NormalizeRisk(in.Details),
	}
}

func finite(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

func firstFinite(candidates ...*float64) (float64, bool) {
	for _, v := range candidates {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			return *v, true
		}
	}
	return 0, false
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// formatDate reduces backend timestamps to a calendar date; unknown layouts
// pass through untouched.
func formatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return raw
}
