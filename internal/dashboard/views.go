package dashboard

// View models consumed by the CLI, the exporter and the assistant tools.

type Panel[T any] struct {
	Data T    `json:"data"`
	Demo bool `json:"demo"`
}

type Health struct {
	Status string `json:"status"`
	Online bool   `json:"online"`
}

type KPIMetrics struct {
	AvgWeeklySales  float64 `json:"avgWeeklySales"`
	MinSales        float64 `json:"minSales"`
	MaxSales        float64 `json:"maxSales"`
	Volatility      float64 `json:"volatility"`
	HolidaySalesAvg float64 `json:"holidaySalesAvg"`
}

type StoreSummary struct {
	ID             int     `json:"id"`
	TotalSales     float64 `json:"totalSales"`
	AvgWeeklySales float64 `json:"avgWeeklySales"`
	Departments    int     `json:"departments"`
}

type ForecastPoint struct {
	Date     string  `json:"date"`
	Forecast float64 `json:"forecast"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

type Recommendation struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Details  string `json:"details"`
	Severity string `json:"severity"`
	Action   string `json:"action"`
}

type InventoryItem struct {
	StoreID           int     `json:"storeId"`
	Dept              int     `json:"dept"`
	StockLevel        float64 `json:"stockLevel"`
	DemandRate        float64 `json:"demandRate"`
	DaysUntilStockout float64 `json:"daysUntilStockout"`
	Risk              string  `json:"risk"`
}

type AnomalyResult struct {
	AnomalyDetected bool    `json:"anomalyDetected"`
	AnomalyScore    float64 `json:"anomalyScore"`
}

type ClusterAssignment struct {
	Cluster  int  `json:"cluster"`
	HighRisk bool `json:"highRisk"`
}

type RiskAssessment struct {
	RiskScore       float64 `json:"riskScore"`
	RiskLevel       string  `json:"riskLevel"`
	Cluster         int     `json:"cluster"`
	AnomalyDetected bool    `json:"anomalyDetected"`
	AnomalyScore    float64 `json:"anomalyScore"`
}

type AlertSummary struct {
	Messages []string       `json:"messages"`
	Details  RiskAssessment `json:"details"`
}

type Overview struct {
	StoreID         int                     `json:"storeId,omitempty"`
	KPIs            Panel[KPIMetrics]       `json:"kpis"`
	TopStores       Panel[[]StoreSummary]   `json:"topStores"`
	Forecast        Panel[[]ForecastPoint]  `json:"forecast"`
	Recommendations Panel[[]Recommendation] `json:"recommendations"`
	Inventory       Panel[[]InventoryItem]  `json:"inventory"`
}
