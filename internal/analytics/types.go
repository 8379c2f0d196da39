package analytics

import "time"

// Wire shapes returned by the analytics backend. Numeric fields the backend
// may omit are pointers so the dashboard layer can tell absent from zero.

type HealthStatus struct {
	Status string `json:"status"`
}

type KPIResponse struct {
	AvgWeeklySales  *float64 `json:"avg_weekly_sales"`
	MaxSales        *float64 `json:"max_sales"`
	MinSales        *float64 `json:"min_sales"`
	Volatility      *float64 `json:"volatility"`
	HolidaySalesAvg *float64 `json:"holiday_sales_avg"`
}

type StoreSummary struct {
	StoreID        *int     `json:"store_id"`
	TotalSales     *float64 `json:"total_sales"`
	AvgWeeklySales *float64 `json:"avg_weekly_sales"`
	DeptCount      *int     `json:"dept_count"`
}

type ForecastPoint struct {
	Timestamp string   `json:"timestamp"`
	Forecast  *float64 `json:"forecast"`
	Lower     *float64 `json:"lower,omitempty"`
	Upper     *float64 `json:"upper,omitempty"`
	YhatLower *float64 `json:"yhat_lower,omitempty"`
	YhatUpper *float64 `json:"yhat_upper,omitempty"`
}

type Recommendation struct {
	Category       string `json:"category"`
	Priority       string `json:"priority"`
	Message        string `json:"message"`
	ExpectedImpact string `json:"expected_impact"`
}

type RecommendationsResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// SalesInput is the feature row the model endpoints score. Field names follow
// the training dataset columns.
type SalesInput struct {
	WeeklySales  float64 `json:"Weekly_Sales"`
	Temperature  float64 `json:"Temperature"`
	FuelPrice    float64 `json:"Fuel_Price"`
	CPI          float64 `json:"CPI"`
	Unemployment float64 `json:"Unemployment"`
	Store        int     `json:"Store"`
	Dept         int     `json:"Dept"`
	IsHoliday    int     `json:"IsHoliday"`
}

type AnomalyResponse struct {
	Anomaly      *int     `json:"anomaly"`
	AnomalyScore *float64 `json:"anomaly_score"`
}

type ClusterResponse struct {
	Cluster *int `json:"cluster"`
}

type RiskResponse struct {
	RiskScore    *float64 `json:"risk_score"`
	RiskLevel    string   `json:"risk_level"`
	Cluster      *int     `json:"cluster"`
	Anomaly      *int     `json:"anomaly"`
	AnomalyScore *float64 `json:"anomaly_score"`
}

type AlertsResponse struct {
	Alerts  []string     `json:"alerts"`
	Details RiskResponse `json:"details"`
}

// IoTReading is one sensor push. The backend expects lowercase store and
// dept here, unlike SalesInput.
type IoTReading struct {
	Timestamp    string  `json:"timestamp"`
	Store        int     `json:"store"`
	Dept         int     `json:"dept"`
	WeeklySales  float64 `json:"Weekly_Sales"`
	Temperature  float64 `json:"Temperature"`
	FuelPrice    float64 `json:"Fuel_Price"`
	CPI          float64 `json:"CPI"`
	Unemployment float64 `json:"Unemployment"`
	IsHoliday    int     `json:"IsHoliday"`
}

func NewIoTReading(input SalesInput, at time.Time) IoTReading {
	return IoTReading{
		Timestamp:    at.UTC().Format(time.RFC3339),
		Store:        input.Store,
		Dept:         input.Dept,
		WeeklySales:  input.WeeklySales,
		Temperature:  input.Temperature,
		FuelPrice:    input.FuelPrice,
		CPI:          input.CPI,
		Unemployment: input.Unemployment,
		IsHoliday:    input.IsHoliday,
	}
}

type IoTResponse struct {
	Status string `json:"status"`
	RiskResponse
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Username    string `json:"username"`
}

type UserInfo struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type errorPayload struct {
	Detail any `json:"detail"`
}
