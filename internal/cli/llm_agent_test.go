package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sales_dashboard/internal/analytics"
	"sales_dashboard/internal/dashboard"
	"sales_dashboard/internal/llm"

	openrouter "github.com/revrost/go-openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedChat struct {
	replies  []openrouter.ChatCompletionMessage
	requests [][]openrouter.ChatCompletionMessage
	err      error
}

func (c *scriptedChat) Enabled() bool { return true }

func (c *scriptedChat) ChatWithMessages(_ context.Context, messages []openrouter.ChatCompletionMessage, _ []openrouter.Tool) (openrouter.ChatCompletionResponse, error) {
	c.requests = append(c.requests, messages)
	if c.err != nil {
		return openrouter.ChatCompletionResponse{}, c.err
	}
	if len(c.replies) == 0 {
		return openrouter.ChatCompletionResponse{}, nil
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return openrouter.ChatCompletionResponse{
		Choices: []openrouter.ChatCompletionChoice{{Message: reply}},
	}, nil
}

func assistantText(text string) openrouter.ChatCompletionMessage {
	return openrouter.ChatCompletionMessage{Role: "assistant", Content: openrouter.Content{Text: text}}
}

func assistantCalls(calls ...openrouter.ToolCall) openrouter.ChatCompletionMessage {
	return openrouter.ChatCompletionMessage{Role: "assistant", ToolCalls: calls}
}

func toolCall(id, name, args string) openrouter.ToolCall {
	return openrouter.ToolCall{
		ID:       id,
		Type:     openrouter.ToolTypeFunction,
		Function: openrouter.FunctionCall{Name: name, Arguments: args},
	}
}

type stubDashboard struct {
	lastStore   int
	lastPeriods int
	lastInput   analytics.SalesInput
}

func (s *stubDashboard) KPIs(_ context.Context, storeID, _ int) dashboard.Panel[dashboard.KPIMetrics] {
	s.lastStore = storeID
	return dashboard.Panel[dashboard.KPIMetrics]{Data: dashboard.FallbackKPIs(), Demo: true}
}

func (s *stubDashboard) Stores(context.Context) dashboard.Panel[[]dashboard.StoreSummary] {
	return dashboard.Panel[[]dashboard.StoreSummary]{Data: dashboard.FallbackStores()}
}

func (s *stubDashboard) TopStores(_ context.Context, n int) dashboard.Panel[[]dashboard.StoreSummary] {
	return dashboard.Panel[[]dashboard.StoreSummary]{Data: dashboard.FallbackTopStores(n)}
}

func (s *stubDashboard) Forecast(_ context.Context, storeID, periods int) dashboard.Panel[[]dashboard.ForecastPoint] {
	s.lastStore, s.lastPeriods = storeID, periods
	return dashboard.Panel[[]dashboard.ForecastPoint]{Data: dashboard.FallbackForecast(periods)}
}

func (s *stubDashboard) Recommendations(context.Context, int) dashboard.Panel[[]dashboard.Recommendation] {
	return dashboard.Panel[[]dashboard.Recommendation]{Data: dashboard.FallbackRecommendations()}
}

func (s *stubDashboard) Inventory(_ context.Context, storeID int) dashboard.Panel[[]dashboard.InventoryItem] {
	return dashboard.Panel[[]dashboard.InventoryItem]{Data: dashboard.SyntheticInventory(storeID), Demo: true}
}

func (s *stubDashboard) Alerts(_ context.Context, input analytics.SalesInput) dashboard.Panel[dashboard.AlertSummary] {
	s.lastInput = input
	return dashboard.Panel[dashboard.AlertSummary]{Data: dashboard.FallbackAlerts()}
}

func newTestAssistant(chat chatClient, backend toolBackend) *assistant {
	a := newAssistant(chat, backend, zap.NewNop())
	a.now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestAskAnswersWithoutTools(t *testing.T) {
	chat := &scriptedChat{replies: []openrouter.ChatCompletionMessage{assistantText("  Sales look stable. ")}}
	a := newTestAssistant(chat, &stubDashboard{})

	resp, err := a.Ask(context.Background(), "how are sales?", false, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sales look stable.", resp.AnswerText)
	assert.Empty(t, resp.ToolCalls)

	require.Len(t, chat.requests, 1)
	first := chat.requests[0]
	require.Len(t, first, 2)
	assert.Equal(t, openrouter.ChatMessageRoleSystem, first[0].Role)
	assert.Contains(t, first[0].Content.Text, "2026-03-02")
	assert.Equal(t, "how are sales?", first[1].Content.Text)
}

func TestAskRunsToolsAndReturnsResults(t *testing.T) {
	chat := &scriptedChat{replies: []openrouter.ChatCompletionMessage{
		assistantCalls(
			toolCall("c1", llm.ToolGetForecast, `{"store_id": 7, "periods": 3}`),
			toolCall("c2", llm.ToolGetKPIs, `{}`),
		),
		assistantText("Forecast is rising."),
	}}
	backend := &stubDashboard{}
	a := newTestAssistant(chat, backend)

	resp, err := a.Ask(context.Background(), "forecast for store 7", false, nil)
	require.NoError(t, err)
	assert.Equal(t, "Forecast is rising.", resp.AnswerText)
	assert.Equal(t, 3, backend.lastPeriods)

	require.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, llm.ToolGetForecast, resp.ToolCalls[0].Name)
	assert.True(t, resp.ToolCalls[0].OK)
	assert.False(t, resp.ToolCalls[0].Demo)
	assert.True(t, resp.ToolCalls[1].Demo)

	require.Len(t, chat.requests, 2)
	second := chat.requests[1]
	require.Len(t, second, 5)
	toolMsg := second[3]
	assert.Equal(t, "c1", toolMsg.ToolCallID)

	var panel dashboard.Panel[[]dashboard.ForecastPoint]
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content.Text), &panel))
	assert.Len(t, panel.Data, 3)
}

func TestAskReportsToolErrorsToModel(t *testing.T) {
	chat := &scriptedChat{replies: []openrouter.ChatCompletionMessage{
		assistantCalls(
			toolCall("c1", "DropTables", `{}`),
			toolCall("c2", llm.ToolAssessRisk, `{"store": 1}`),
			toolCall("c3", llm.ToolGetKPIs, `not json`),
		),
		assistantText("Sorry."),
	}}
	a := newTestAssistant(chat, &stubDashboard{})

	resp, err := a.Ask(context.Background(), "q", false, nil)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 3)
	for _, record := range resp.ToolCalls {
		assert.False(t, record.OK)
		assert.NotEmpty(t, record.Err)
	}
	assert.Contains(t, resp.ToolCalls[1].Err, "dept, weekly_sales")

	second := chat.requests[1]
	assert.Contains(t, second[3].Content.Text, "unknown tool")
}

func TestAssessRiskMapsArguments(t *testing.T) {
	chat := &scriptedChat{replies: []openrouter.ChatCompletionMessage{
		assistantCalls(toolCall("c1", llm.ToolAssessRisk, `{"store": 3, "dept": 9, "weekly_sales": 1200.5, "is_holiday": true}`)),
		assistantText("Low risk."),
	}}
	backend := &stubDashboard{}
	a := newTestAssistant(chat, backend)

	_, err := a.Ask(context.Background(), "q", false, nil)
	require.NoError(t, err)
	assert.Equal(t, analytics.SalesInput{
		WeeklySales:  1200.5,
		Temperature:  60,
		FuelPrice:    3.5,
		CPI:          211.0,
		Unemployment: 8.0,
		Store:        3,
		Dept:         9,
		IsHoliday:    1,
	}, backend.lastInput)
}

func TestAskStopsAfterMaxToolRounds(t *testing.T) {
	var replies []openrouter.ChatCompletionMessage
	for i := 0; i < maxToolRounds; i++ {
		replies = append(replies, assistantCalls(toolCall("c", llm.ToolListStores, `{}`)))
	}
	chat := &scriptedChat{replies: replies}
	a := newTestAssistant(chat, &stubDashboard{})

	resp, err := a.Ask(context.Background(), "q", false, nil)
	require.NoError(t, err)
	assert.Len(t, chat.requests, maxToolRounds)
	assert.NotEmpty(t, resp.NextStep)
	assert.Len(t, resp.ToolCalls, maxToolRounds)
}

func TestAskKeepsHistoryAcrossTurns(t *testing.T) {
	chat := &scriptedChat{replies: []openrouter.ChatCompletionMessage{
		assistantText("first"),
		assistantText("second"),
	}}
	a := newTestAssistant(chat, &stubDashboard{})
	history := NewChatHistory(0, 0, nil)

	_, err := a.Ask(context.Background(), "one", true, history)
	require.NoError(t, err)
	_, err = a.Ask(context.Background(), "two", true, history)
	require.NoError(t, err)

	second := chat.requests[1]
	require.Len(t, second, 4)
	assert.Equal(t, "one", second[1].Content.Text)
	assert.Equal(t, "first", second[2].Content.Text)
	assert.Equal(t, "two", second[3].Content.Text)
}

func TestAskErrors(t *testing.T) {
	_, err := newTestAssistant(nil, &stubDashboard{}).Ask(context.Background(), "q", false, nil)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	boom := errors.New("boom")
	_, err = newTestAssistant(&scriptedChat{err: boom}, &stubDashboard{}).Ask(context.Background(), "q", false, nil)
	assert.ErrorIs(t, err, boom)

	_, err = newTestAssistant(&scriptedChat{}, &stubDashboard{}).Ask(context.Background(), "q", false, nil)
	assert.ErrorIs(t, err, errEmptyCompletion)
}
