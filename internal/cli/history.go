package cli

import (
	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	defaultHistoryMaxMessages = 30
	defaultHistoryMaxTokens   = 6000

	// rough size of a token in characters of English text and JSON
	charsPerToken = 4
)

// ChatHistory keeps the conversation of one `ask` REPL. Trimming drops whole
// turns from the front so a tool result never loses the assistant message
// that requested it. The system prompt always stays.
type ChatHistory struct {
	system      *openrouter.ChatCompletionMessage
	messages    []openrouter.ChatCompletionMessage
	maxMessages int
	maxTokens   int
	logger      *zap.Logger
}

func NewChatHistory(maxMessages, maxTokens int, logger *zap.Logger) *ChatHistory {
	if maxMessages <= 0 {
		maxMessages = defaultHistoryMaxMessages
	}
	if maxTokens <= 0 {
		maxTokens = defaultHistoryMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHistory{
		maxMessages: maxMessages,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

func (h *ChatHistory) Append(message openrouter.ChatCompletionMessage) {
	if message.Role == openrouter.ChatMessageRoleSystem {
		h.system = &message
		return
	}
	h.messages = append(h.messages, message)
	h.enforceLimits()
}

func (h *ChatHistory) HasSystem() bool {
	return h.system != nil
}

// Messages returns a copy with the system prompt first.
func (h *ChatHistory) Messages() []openrouter.ChatCompletionMessage {
	out := make([]openrouter.ChatCompletionMessage, 0, len(h.messages)+1)
	if h.system != nil {
		out = append(out, *h.system)
	}
	return append(out, h.messages...)
}

func (h *ChatHistory) Len() int {
	return len(h.messages)
}

func (h *ChatHistory) Clear() {
	h.messages = nil
}

func (h *ChatHistory) TokenCount() int {
	total := 0
	if h.system != nil {
		total += estimateTokens(*h.system)
	}
	for _, msg := range h.messages {
		total += estimateTokens(msg)
	}
	return total
}

func (h *ChatHistory) enforceLimits() {
	trimmed := false
	for h.overLimit() {
		next := nextTurnStart(h.messages)
		if next <= 0 {
			break
		}
		h.messages = h.messages[next:]
		trimmed = true
	}

	if trimmed {
		h.logger.Info("chat history trimmed",
			zap.Int("messages", len(h.messages)),
			zap.Int("tokens", h.TokenCount()),
		)
	}
}

func (h *ChatHistory) overLimit() bool {
	return len(h.messages) > h.maxMessages || h.TokenCount() > h.maxTokens
}

// nextTurnStart is the index of the second user message, or 0 when the
// history holds a single turn that must be kept.
func nextTurnStart(messages []openrouter.ChatCompletionMessage) int {
	for i := 1; i < len(messages); i++ {
		if messages[i].Role == openrouter.ChatMessageRoleUser {
			return i
		}
	}
	return 0
}

func estimateTokens(message openrouter.ChatCompletionMessage) int {
	chars := len(message.Content.Text)
	if chars == 0 {
		for _, part := range message.Content.Multi {
			chars += len(part.Text)
		}
	}
	for _, call := range message.ToolCalls {
		chars += len(call.Function.Name) + len(call.Function.Arguments)
	}
	return (chars + charsPerToken - 1) / charsPerToken
}
