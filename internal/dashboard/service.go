package dashboard

import (
	"context"
	"sync"

	"sales_dashboard/internal/analytics"

	"go.uber.org/zap"
)

// Backend is the slice of the analytics client the dashboard reads from.
type Backend interface {
	Health(ctx context.Context) (analytics.HealthStatus, error)
	KPI(ctx context.Context, storeID, dept int) (analytics.KPIResponse, error)
	Stores(ctx context.Context) ([]analytics.StoreSummary, error)
	TopStores(ctx context.Context, n int) ([]analytics.StoreSummary, error)
	Forecast(ctx context.Context, storeID, periods int) ([]analytics.ForecastPoint, error)
	Recommendations(ctx context.Context, storeID int) (analytics.RecommendationsResponse, error)
	Anomaly(ctx context.Context, input analytics.SalesInput) (analytics.AnomalyResponse, error)
	Cluster(ctx context.Context, input analytics.SalesInput) (analytics.ClusterResponse, error)
	Risk(ctx context.Context, input analytics.SalesInput) (analytics.RiskResponse, error)
	Alerts(ctx context.Context, input analytics.SalesInput) (analytics.AlertsResponse, error)
	IoT(ctx context.Context, reading analytics.IoTReading) (analytics.IoTResponse, error)
}

// Service panels never return errors: a failed call is logged and answered
// with the endpoint's demo data. Ingest is a write and has no fallback.
type Service struct {
	backend Backend
	logger  *zap.Logger
}

func NewService(backend *analytics.Client, logger *zap.Logger) *Service {
	return New(backend, logger)
}

func New(backend Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend: backend,
		logger:  logger.Named("dashboard"),
	}
}

func (s *Service) Health(ctx context.Context) Panel[Health] {
	return load(ctx, s, "health", s.backend.Health, NormalizeHealth, FallbackHealth)
}

func (s *Service) KPIs(ctx context.Context, storeID, dept int) Panel[KPIMetrics] {
	return load(ctx, s, "kpi",
		func(ctx context.Context) (analytics.KPIResponse, error) {
			return s.backend.KPI(ctx, storeID, dept)
		},
		NormalizeKPI, FallbackKPIs)
}

func (s *Service) Stores(ctx context.Context) Panel[[]StoreSummary] {
	return load(ctx, s, "stores", s.backend.Stores, NormalizeStores, FallbackStores)
}

func (s *Service) TopStores(ctx context.Context, n int) Panel[[]StoreSummary] {
	return load(ctx, s, "top_stores",
		func(ctx context.Context) ([]analytics.StoreSummary, error) {
			return s.backend.TopStores(ctx, n)
		},
		NormalizeStores,
		func() []StoreSummary { return FallbackTopStores(n) })
}

func (s *Service) Forecast(ctx context.Context, storeID, periods int) Panel[[]ForecastPoint] {
	return load(ctx, s, "forecast",
		func(ctx context.Context) ([]analytics.ForecastPoint, error) {
			return s.backend.Forecast(ctx, storeID, periods)
		},
		NormalizeForecast,
		func() []ForecastPoint { return FallbackForecast(periods) })
}

func (s *Service) Recommendations(ctx context.Context, storeID int) Panel[[]Recommendation] {
	return load(ctx, s, "recommendations",
		func(ctx context.Context) (analytics.RecommendationsResponse, error) {
			return s.backend.Recommendations(ctx, storeID)
		},
		NormalizeRecommendations, FallbackRecommendations)
}

// Inventory has no backend source and is always synthetic.
func (s *Service) Inventory(_ context.Context, storeID int) Panel[[]InventoryItem] {
	return Panel[[]InventoryItem]{Data: SyntheticInventory(storeID), Demo: true}
}

func (s *Service) Anomaly(ctx context.Context, input analytics.SalesInput) Panel[AnomalyResult] {
	return load(ctx, s, "anomaly",
		func(ctx context.Context) (analytics.AnomalyResponse, error) {
			return s.backend.Anomaly(ctx, input)
		},
		NormalizeAnomaly, FallbackAnomaly)
}

func (s *Service) Cluster(ctx context.Context, input analytics.SalesInput) Panel[ClusterAssignment] {
	return load(ctx, s, "cluster",
		func(ctx context.Context) (analytics.ClusterResponse, error) {
			return s.backend.Cluster(ctx, input)
		},
		NormalizeCluster, FallbackCluster)
}

func (s *Service) Risk(ctx context.Context, input analytics.SalesInput) Panel[RiskAssessment] {
	return load(ctx, s, "risk",
		func(ctx context.Context) (analytics.RiskResponse, error) {
			return s.backend.Risk(ctx, input)
		},
		NormalizeRisk, FallbackRisk)
}

func (s *Service) Alerts(ctx context.Context, input analytics.SalesInput) Panel[AlertSummary] {
	return load(ctx, s, "alerts",
		func(ctx context.Context) (analytics.AlertsResponse, error) {
			return s.backend.Alerts(ctx, input)
		},
		NormalizeAlerts, FallbackAlerts)
}

// Ingest pushes a reading through the IoT pipeline and returns the scoring the
// backend stored for it.
func (s *Service) Ingest(ctx context.Context, reading analytics.IoTReading) (RiskAssessment, error) {
	resp, err := s.backend.IoT(ctx, reading)
	if err != nil {
		return RiskAssessment{}, err
	}
	assessment := NormalizeRisk(resp.RiskResponse)
	s.logger.Debug("iot reading ingested",
		zap.Int("store", reading.Store),
		zap.Int("dept", reading.Dept),
		zap.String("risk_level", assessment.RiskLevel),
	)
	return assessment, nil
}

// Overview loads every read panel independently; one panel falling back does
// not affect the others.
func (s *Service) Overview(ctx context.Context, storeID, topN, periods int) Overview {
	out := Overview{StoreID: storeID}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		out.KPIs = s.KPIs(ctx, storeID, 0)
	}()
	go func() {
		defer wg.Done()
		out.TopStores = s.TopStores(ctx, topN)
	}()
	go func() {
		defer wg.Done()
		out.Forecast = s.Forecast(ctx, storeID, periods)
	}()
	go func() {
		defer wg.Done()
		out.Recommendations = s.Recommendations(ctx, storeID)
	}()
	out.Inventory = s.Inventory(ctx, storeID)
	wg.Wait()

	return out
}

func load[W, V any](ctx context.Context, s *Service, endpoint string, call func(context.Context) (W, error), normalize func(W) V, fallback func() V) Panel[V] {
	raw, err := call(ctx)
	if err != nil {
		s.logger.Warn("backend call failed; serving demo data",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return Panel[V]{Data: fallback(), Demo: true}
	}
	return Panel[V]{Data: normalize(raw)}
}
