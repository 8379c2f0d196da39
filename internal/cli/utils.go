package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sales_dashboard/internal/analytics"
	"sales_dashboard/internal/auth"
	"sales_dashboard/internal/config"

	"go.uber.org/zap"
)

type response struct {
	Query      string           `json:"query"`
	AnswerText string           `json:"answer"`
	ToolCalls  []toolCallRecord `json:"toolCalls,omitempty"`
	NextStep   string           `json:"nextStep,omitempty"`
}

type toolCallRecord struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
	MS   int64          `json:"ms"`
	OK   bool           `json:"ok"`
	Demo bool           `json:"demo,omitempty"`
	Err  string         `json:"err,omitempty"`
}

func trackCall[T any](logger *zap.Logger, name string, args map[string]any, fn func() (T, error)) (T, toolCallRecord, error) {
	start := time.Now()
	result, err := fn()
	record := toolCallRecord{
		Name: name,
		Args: args,
		MS:   time.Since(start).Milliseconds(),
		OK:   err == nil,
	}
	if err != nil {
		record.Err = err.Error()
	}
	logToolRecord(logger, record)
	return result, record, err
}

func logToolRecord(logger *zap.Logger, record toolCallRecord) {
	logger.Info("tool call",
		zap.String("name", record.Name),
		zap.Any("args", record.Args),
		zap.Int64("ms", record.MS),
		zap.Bool("ok", record.OK),
		zap.String("err", record.Err),
	)
}

// friendlyError turns sentinel errors into something a dashboard user can act
// on.
func friendlyError(err error) error {
	var (
		apiErr   *analytics.APIError
		loginErr *auth.LoginError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &loginErr):
		return err
	case errors.Is(err, analytics.ErrAPIKeyInvalid):
		return errors.New("iot api key rejected: set IOT_API_KEY")
	case errors.Is(err, analytics.ErrNotLoggedIn):
		return errors.New("not logged in: run `sales-dashboard login` first")
	case errors.Is(err, config.ErrNoBaseURL):
		return errors.New("no backend URL: set API_BASE_URL or DEPLOYED_BASE_URL")
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		return errors.New("session expired: run `sales-dashboard login` again")
	default:
		return err
	}
}

func getIntArg(args map[string]any, key string, fallback int) int {
	value, ok := args[key]
	if !ok || value == nil {
		return fallback
	}
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return int(parsed)
		}
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatArg(args map[string]any, key string, fallback float64) float64 {
	value, ok := args[key]
	if !ok || value == nil {
		return fallback
	}
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if parsed, err := v.Float64(); err == nil {
			return parsed
		}
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(v))
		return parsed
	}
	return false
}

func requireArgs(args map[string]any, keys ...string) error {
	var missing []string
	for _, key := range keys {
		if value, ok := args[key]; !ok || value == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// salesInputFromArgs maps AssessRisk arguments onto the model feature row.
// Macro features default to the dataset means.
func salesInputFromArgs(args map[string]any) (analytics.SalesInput, error) {
	if err := requireArgs(args, "store", "dept", "weekly_sales"); err != nil {
		return analytics.SalesInput{}, err
	}
	input := analytics.SalesInput{
		Store:        getIntArg(args, "store", 1),
		Dept:         getIntArg(args, "dept", 1),
		WeeklySales:  getFloatArg(args, "weekly_sales", 0),
		Temperature:  getFloatArg(args, "temperature", 60),
		FuelPrice:    getFloatArg(args, "fuel_price", 3.5),
		CPI:          getFloatArg(args, "cpi", 211.0),
		Unemployment: getFloatArg(args, "unemployment", 8.0),
	}
	if getBoolArg(args, "is_holiday") {
		input.IsHoliday = 1
	}
	return input, nil
}

func toolErrorPayload(message string) string {
	encoded, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, message)
	}
	return string(encoded)
}
