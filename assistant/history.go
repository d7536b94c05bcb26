package assistant

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/sweetpotato0/ai-claims/message"
)

// DefaultTokenBudget caps the replayed history of a thread.
const DefaultTokenBudget = 6000

// perMessageOverhead approximates the role and framing tokens of a chat message.
const perMessageOverhead = 4

// HistoryTrimmer cuts a thread's history to a token budget, dropping the
// oldest turns first.
type HistoryTrimmer struct {
	budget int
	count  func(string) int
}

// NewHistoryTrimmer counts tokens with the tiktoken encoding of model, falling
// back to cl100k_base. When no encoding can be loaded it estimates four
// characters per token.
func NewHistoryTrimmer(model string, budget int) *HistoryTrimmer {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return &HistoryTrimmer{budget: budget, count: approximateTokens}
	}
	return &HistoryTrimmer{
		budget: budget,
		count: func(text string) int {
			return len(enc.Encode(text, nil, nil))
		},
	}
}

func approximateTokens(text string) int {
	return (len(text) + 3) / 4
}

// Tokens returns the estimated prompt size of msgs.
func (h *HistoryTrimmer) Tokens(msgs []*message.Message) int {
	total := 0
	for _, m := range msgs {
		total += h.size(m)
	}
	return total
}

func (h *HistoryTrimmer) size(m *message.Message) int {
	n := perMessageOverhead + h.count(m.Content)
	for _, call := range m.ToolCalls {
		n += h.count(call.Name)
		for k, v := range call.Args {
			if s, ok := v.(string); ok {
				n += h.count(k) + h.count(s)
			}
		}
	}
	return n
}

// Trim returns the newest suffix of msgs that fits the budget. The result
// always starts at a user message so tool calls are never separated from
// their replies.
func (h *HistoryTrimmer) Trim(msgs []*message.Message) []*message.Message {
	total := 0
	start := len(msgs)
	for i := len(msgs) - 1; i >= 0; i-- {
		total += h.size(msgs[i])
		if total > h.budget {
			break
		}
		start = i
	}
	for start < len(msgs) && msgs[start].Role != message.RoleUser {
		start++
	}
	return msgs[start:]
}

// NewApproximateTrimmer estimates four characters per token and never loads
// an encoding.
func NewApproximateTrimmer(budget int) *HistoryTrimmer {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	return &HistoryTrimmer{budget: budget, count: approximateTokens}
}
