package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"sales_dashboard/internal/analytics"
	"sales_dashboard/internal/dashboard"
	"sales_dashboard/internal/llm"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const maxToolRounds = 4

var errEmptyCompletion = errors.New("llm returned empty response")

// toolBackend is the part of the dashboard the assistant may read.
type toolBackend interface {
	KPIs(ctx context.Context, storeID, dept int) dashboard.Panel[dashboard.KPIMetrics]
	Stores(ctx context.Context) dashboard.Panel[[]dashboard.StoreSummary]
	TopStores(ctx context.Context, n int) dashboard.Panel[[]dashboard.StoreSummary]
	Forecast(ctx context.Context, storeID, periods int) dashboard.Panel[[]dashboard.ForecastPoint]
	Recommendations(ctx context.Context, storeID int) dashboard.Panel[[]dashboard.Recommendation]
	Inventory(ctx context.Context, storeID int) dashboard.Panel[[]dashboard.InventoryItem]
	Alerts(ctx context.Context, input analytics.SalesInput) dashboard.Panel[dashboard.AlertSummary]
}

type chatClient interface {
	Enabled() bool
	ChatWithMessages(ctx context.Context, messages []openrouter.ChatCompletionMessage, tools []openrouter.Tool) (openrouter.ChatCompletionResponse, error)
}

type assistant struct {
	chat    chatClient
	backend toolBackend
	logger  *zap.Logger
	now     func() time.Time
}

func newAssistant(chat chatClient, backend toolBackend, logger *zap.Logger) *assistant {
	return &assistant{
		chat:    chat,
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Ask runs one question through the tool loop. With a history the exchange is
// recorded there and earlier turns are sent along.
func (a *assistant) Ask(ctx context.Context, query string, interactive bool, history *ChatHistory) (response, error) {
	if a.chat == nil || !a.chat.Enabled() {
		return response{}, llm.ErrNotConfigured
	}

	if history == nil {
		history = NewChatHistory(0, 0, a.logger)
	}
	if !history.HasSystem() {
		history.Append(openrouter.SystemMessage(llm.SystemPrompt(interactive, a.now())))
	}
	history.Append(openrouter.UserMessage(query))

	var toolCalls []toolCallRecord
	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.chat.ChatWithMessages(ctx, history.Messages(), llm.ToolSchemas())
		if err != nil {
			return response{}, err
		}
		if len(resp.Choices) == 0 {
			return response{}, errEmptyCompletion
		}

		msg := resp.Choices[0].Message
		a.logger.Debug("llm response",
			zap.Int("round", round),
			zap.String("content", msg.Content.Text),
			zap.Int("tool_calls", len(msg.ToolCalls)),
		)
		history.Append(msg)

		if len(msg.ToolCalls) == 0 {
			return response{
				Query:      query,
				AnswerText: strings.TrimSpace(msg.Content.Text),
				ToolCalls:  toolCalls,
			}, nil
		}

		for _, call := range msg.ToolCalls {
			toolMsg, record := a.executeToolCall(ctx, call)
			toolCalls = append(toolCalls, record)
			history.Append(toolMsg)
		}
	}

	return response{
		Query:      query,
		AnswerText: "Could not finish the answer: too many tool steps.",
		ToolCalls:  toolCalls,
		NextStep:   "Ask a narrower question, for example about one store.",
	}, nil
}

// executeToolCall never fails the turn: errors go back to the model as a tool
// result.
func (a *assistant) executeToolCall(ctx context.Context, call llm.ToolCall) (openrouter.ChatCompletionMessage, toolCallRecord) {
	args := map[string]any{}
	if strings.TrimSpace(call.Function.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			record := toolCallRecord{Name: call.Function.Name, OK: false, Err: fmt.Sprintf("invalid tool args: %v", err)}
			logToolRecord(a.logger, record)
			return openrouter.ToolMessage(call.ID, toolErrorPayload(record.Err)), record
		}
	}

	result, record, err := a.dispatch(ctx, call.Function.Name, args)
	if err != nil {
		return openrouter.ToolMessage(call.ID, toolErrorPayload(err.Error())), record
	}

	payload, err := json.Marshal(result)
	if err != nil {
		record.OK = false
		record.Err = err.Error()
		return openrouter.ToolMessage(call.ID, toolErrorPayload(err.Error())), record
	}
	return openrouter.ToolMessage(call.ID, string(payload)), record
}

func (a *assistant) dispatch(ctx context.Context, name string, args map[string]any) (any, toolCallRecord, error) {
	switch name {
	case llm.ToolGetKPIs:
		return trackPanel(a.logger, name, args, func() dashboard.Panel[dashboard.KPIMetrics] {
			return a.backend.KPIs(ctx, getIntArg(args, "store_id", 0), getIntArg(args, "dept", 0))
		})
	case llm.ToolListStores:
		return trackPanel(a.logger, name, args, func() dashboard.Panel[[]dashboard.StoreSummary] {
			return a.backend.Stores(ctx)
		})
	case llm.ToolTopStores:
		return trackPanel(a.logger, name, args, func() dashboard.Panel[[]dashboard.StoreSummary] {
			return a.backend.TopStores(ctx, getIntArg(args, "limit", analytics.DefaultTopStores))
		})
	case llm.ToolGetForecast:
		return trackPanel(a.logger, name, args, func() dashboard.Panel[[]dashboard.ForecastPoint] {
			return a.backend.Forecast(ctx, getIntArg(args, "store_id", 0), getIntArg(args, "periods", analytics.DefaultForecastPeriods))
		})
	case llm.ToolGetRecommendations:
		return trackPanel(a.logger, name, args, func() dashboard.Panel[[]dashboard.Recommendation] {
			return a.backend.Recommendations(ctx, getIntArg(args, "store_id", 0))
		})
	case llm.ToolGetInventory:
		return trackPanel(a.logger, name, args, func() dashboard.Panel[[]dashboard.InventoryItem] {
			return a.backend.Inventory(ctx, getIntArg(args, "store_id", 1))
		})
	case llm.ToolAssessRisk:
		input, err := salesInputFromArgs(args)
		if err != nil {
			record := toolCallRecord{Name: name, Args: args, OK: false, Err: err.Error()}
			logToolRecord(a.logger, record)
			return nil, record, err
		}
		return trackPanel(a.logger, name, args, func() dashboard.Panel[dashboard.AlertSummary] {
			return a.backend.Alerts(ctx, input)
		})
	default:
		err := fmt.Errorf("unknown tool: %s", name)
		record := toolCallRecord{Name: name, Args: args, OK: false, Err: err.Error()}
		logToolRecord(a.logger, record)
		return nil, record, err
	}
}

func trackPanel[T any](logger *zap.Logger, name string, args map[string]any, fn func() dashboard.Panel[T]) (any, toolCallRecord, error) {
	panel, record, err := trackCall(logger, name, args, func() (dashboard.Panel[T], error) {
		return fn(), nil
	})
	record.Demo = panel.Demo
	return panel, record, err
}

func runAsk(ctx context.Context, r *Runner, args []string) error {
	fs := r.newCommandFlags("ask")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return ErrUsage
	}

	a := newAssistant(r.llmClient, r.dashboard, r.logger)
	if question := strings.TrimSpace(strings.Join(fs.Args(), " ")); question != "" {
		return r.answer(ctx, a, question, false, nil)
	}
	return r.repl(ctx, a)
}

func (r *Runner) answer(ctx context.Context, a *assistant, question string, interactive bool, history *ChatHistory) error {
	resp, err := a.Ask(ctx, question, interactive, history)
	if err != nil {
		return err
	}
	logResponse(r.logger, resp)
	if r.options.JSON {
		return r.writeJSON(resp)
	}
	writeAnswer(r.stdout, resp)
	return nil
}

func (r *Runner) repl(ctx context.Context, a *assistant) error {
	if r.llmClient == nil || !r.llmClient.Enabled() {
		return llm.ErrNotConfigured
	}

	history := NewChatHistory(0, 0, r.logger)
	scanner := bufio.NewScanner(r.stdin)
	fmt.Fprintln(r.stderr, "Ask about KPIs, stores, forecasts or risk. /reset clears the conversation, /exit quits.")
	for {
		fmt.Fprint(r.stderr, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit", "exit", "quit":
			return nil
		case "/reset":
			history.Clear()
			fmt.Fprintln(r.stderr, "Conversation cleared.")
			continue
		}

		if err := r.answer(ctx, a, line, true, history); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(r.stderr, "error: %v\n", friendlyError(err))
		}
	}
}
