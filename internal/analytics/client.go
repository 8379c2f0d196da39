package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sales_dashboard/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultForecastPeriods = 6
	MaxForecastPeriods     = 26
	DefaultTopStores       = 5
)

const apiKeyHeader = "X-API-Key"

var (
	ErrAPI           = errors.New("api error")
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrAPIKeyInvalid = errors.New("iot api key rejected")
)

// TokenSource yields the bearer token for outgoing requests; an empty string
// means anonymous.
type TokenSource interface {
	Token() string
}

type APIError struct {
	StatusCode int
	Status     string
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("api error: %s: %s", e.Status, e.Detail)
	case e.Body != "":
		return fmt.Sprintf("api error: %s: %s", e.Status, e.Body)
	default:
		return fmt.Sprintf("api error: %s", e.Status)
	}
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

type authMode int

const (
	authOptional authMode = iota
	authRequired
)

type Client struct {
	http    *resty.Client
	baseURL string
	tokens  TokenSource
	iotKey  string
	logger  *zap.Logger
}

func NewClient(cfg config.Config, tokens TokenSource, logger *zap.Logger) (*Client, error) {
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetAuthScheme("Bearer").
		SetRetryCount(0)

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		tokens:  tokens,
		iotKey:  strings.TrimSpace(cfg.IoTAPIKey),
		logger:  logger.Named("analytics"),
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var resp HealthStatus
	if err := c.doGet(ctx, "/health", nil, &resp, authOptional); err != nil {
		return HealthStatus{}, err
	}
	return resp, nil
}

// KPI queries aggregate weekly-sales statistics; a zero storeID or dept means
// "all".
func (c *Client) KPI(ctx context.Context, storeID, dept int) (KPIResponse, error) {
	query := map[string]string{}
	if storeID > 0 {
		query["store_id"] = strconv.Itoa(storeID)
	}
	if dept > 0 {
		query["dept"] = strconv.Itoa(dept)
	}

	var resp KPIResponse
	if err := c.doGet(ctx, "/kpi/", query, &resp, authOptional); err != nil {
		return KPIResponse{}, err
	}
	return resp, nil
}

func (c *Client) Stores(ctx context.Context) ([]StoreSummary, error) {
	var resp []StoreSummary
	if err := c.doGet(ctx, "/kpi/stores", nil, &resp, authOptional); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) TopStores(ctx context.Context, n int) ([]StoreSummary, error) {
	if n <= 0 {
		n = DefaultTopStores
	}

	var resp []StoreSummary
	query := map[string]string{"limit": strconv.Itoa(n)}
	if err := c.doGet(ctx, "/kpi/stores/top", query, &resp, authOptional); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Forecast(ctx context.Context, storeID, periods int) ([]ForecastPoint, error) {
	query := map[string]string{"periods": strconv.Itoa(ClampPeriods(periods))}
	if storeID > 0 {
		query["store_id"] = strconv.Itoa(storeID)
	}

	var resp []ForecastPoint
	if err := c.doGet(ctx, "/forecast/", query, &resp, authOptional); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Recommendations(ctx context.Context, storeID int) (RecommendationsResponse, error) {
	query := map[string]string{}
	if storeID > 0 {
		query["store_id"] = strconv.Itoa(storeID)
	}

	var resp RecommendationsResponse
	if err := c.doGet(ctx, "/recommendations/", query, &resp, authOptional); err != nil {
		return RecommendationsResponse{}, err
	}
	return resp, nil
}

func (c *Client) Anomaly(ctx context.Context, input SalesInput) (AnomalyResponse, error) {
	var resp AnomalyResponse
	if err := c.doPost(ctx, "/anomaly/", input, &resp, authOptional); err != nil {
		return AnomalyResponse{}, err
	}
	return resp, nil
}

func (c *Client) Cluster(ctx context.Context, input SalesInput) (ClusterResponse, error) {
	var resp ClusterResponse
	if err := c.doPost(ctx, "/cluster/", input, &resp, authOptional); err != nil {
		return ClusterResponse{}, err
	}
	return resp, nil
}

func (c *Client) Risk(ctx context.Context, input SalesInput) (RiskResponse, error) {
	var resp RiskResponse
	if err := c.doPost(ctx, "/risk/", input, &resp, authOptional); err != nil {
		return RiskResponse{}, err
	}
	return resp, nil
}

func (c *Client) Alerts(ctx context.Context, input SalesInput) (AlertsResponse, error) {
	var resp AlertsResponse
	if err := c.doPost(ctx, "/alerts/", input, &resp, authOptional); err != nil {
		return AlertsResponse{}, err
	}
	return resp, nil
}

// IoT pushes a sensor reading through the backend's ingest pipeline, which
// scores it and broadcasts an iot_update frame. The key is sent only when
// configured; backends with key auth disabled accept anonymous pushes.
func (c *Client) IoT(ctx context.Context, reading IoTReading) (IoTResponse, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return IoTResponse{}, err
	}
	if c.iotKey != "" {
		req.SetHeader(apiKeyHeader, c.iotKey)
	}
	req.SetBody(reading)

	resp, err := req.Post("/iot/")

	var result IoTResponse
	if err := c.finish("/iot/", resp, err, &result); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return IoTResponse{}, fmt.Errorf("%w: %w", ErrAPIKeyInvalid, err)
		}
		return IoTResponse{}, err
	}
	return result, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var resp LoginResponse
	body := LoginRequest{Username: username, Password: password}
	if err := c.doPost(ctx, "/auth/login/json", body, &resp, authOptional); err != nil {
		return LoginResponse{}, err
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return LoginResponse{}, fmt.Errorf("%w: login response has no access token", ErrAPI)
	}
	return resp, nil
}

func (c *Client) Me(ctx context.Context) (UserInfo, error) {
	var resp UserInfo
	if err := c.doGet(ctx, "/auth/me", nil, &resp, authRequired); err != nil {
		return UserInfo{}, err
	}
	return resp, nil
}

func (c *Client) Logout(ctx context.Context) (LogoutResponse, error) {
	var resp LogoutResponse
	if err := c.doPost(ctx, "/auth/logout", nil, &resp, authRequired); err != nil {
		return LogoutResponse{}, err
	}
	return resp, nil
}

// ClampPeriods keeps a forecast horizon inside the range the backend accepts.
func ClampPeriods(periods int) int {
	switch {
	case periods <= 0:
		return DefaultForecastPeriods
	case periods > MaxForecastPeriods:
		return MaxForecastPeriods
	default:
		return periods
	}
}

func (c *Client) doGet(ctx context.Context, path string, query map[string]string, result any, auth authMode) error {
	req, err := c.request(ctx, auth)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	return c.finish(path, resp, err, result)
}

func (c *Client) doPost(ctx context.Context, path string, body any, result any, auth authMode) error {
	req, err := c.request(ctx, auth)
	if err != nil {
		return err
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Post(path)
	return c.finish(path, resp, err, result)
}

func (c *Client) request(ctx context.Context, auth authMode) (*resty.Request, error) {
	req := c.http.R().SetContext(ctx)

	token := c.token()
	if token != "" {
		req.SetAuthToken(token)
	} else if auth == authRequired {
		return nil, ErrNotLoggedIn
	}
	return req, nil
}

func (c *Client) finish(path string, resp *resty.Response, err error, result any) error {
	if err != nil {
		return fmt.Errorf("%w: request %s: %v", ErrAPI, path, err)
	}
	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return apiErrorFromResponse(resp)
	}

	c.logger.Debug("api response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", resp.Time()),
	)

	if result == nil {
		return nil
	}
	body := resp.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("%w: %s: empty response body", ErrAPI, path)
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrAPI, path, err)
	}
	return nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return strings.TrimSpace(c.tokens.Token())
}

func apiErrorFromResponse(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	return &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Detail:     extractDetail(resp.Body()),
		Body:       body,
	}
}

// extractDetail reads the backend's {"detail": ...} error envelope. Detail is
// either a plain message or a list of validation entries carrying "msg".
func extractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	switch v := payload.Detail.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		msgs := make([]string, 0, len(v))
		for _, entry := range v {
			obj, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if msg, ok := obj["msg"].(string); ok && strings.TrimSpace(msg) != "" {
				msgs = append(msgs, strings.TrimSpace(msg))
			}
		}
		return strings.Join(msgs, "; ")
	default:
		return ""
	}
}
