package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/middleware"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/tool"
)

// MockLLMClient replays scripted responses and records what it was sent.
type MockLLMClient struct {
	mu        sync.Mutex
	responses []*message.Message
	calls     [][]*message.Message
	toolNames [][]string
	err       error
	model     string
}

func (m *MockLLMClient) Generate(ctx context.Context, messages []*message.Message, tools []*tool.Tool) (*message.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, messages)
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	m.toolNames = append(m.toolNames, names)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return message.NewMessage(message.RoleAssistant, "Mock response"), nil
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	return next, nil
}

func (m *MockLLMClient) SetTemperature(temp float64) {}
func (m *MockLLMClient) SetMaxTokens(max int64)      {}
func (m *MockLLMClient) SetModel(model string)       { m.model = model }

func echoRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	registry := tool.NewRegistry()
	err := registry.Register(&tool.Tool{
		Name:        "search_claim",
		Description: "Look up a claim",
		Parameters:  []tool.Parameter{{Name: "claim_id", Type: "string", Required: true}},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return "claim " + args["claim_id"].(string) + " is APPROVED", nil
		},
	})
	if err != nil {
		t.Fatalf("register tool: %v", err)
	}
	return registry
}

func TestNewAgentDefaults(t *testing.T) {
	a := New(&MockLLMClient{}, nil, WithName("TestAgent"), WithMaxIterations(0))

	if a.Name() != "TestAgent" {
		t.Errorf("Expected name TestAgent, got %s", a.Name())
	}
	if a.maxIterations != DefaultMaxIterations {
		t.Errorf("Expected max iterations %d, got %d", DefaultMaxIterations, a.maxIterations)
	}
	if a.Tools() == nil {
		t.Error("Expected an empty registry when none is given")
	}
}

func TestRunWithoutTools(t *testing.T) {
	llm := &MockLLMClient{}
	a := New(llm, nil, WithSystemPrompt("You are a test assistant"), WithLogger(logging.Discard()))

	result, err := a.Run(context.Background(), nil, "Hello")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Output != "Mock response" {
		t.Errorf("Expected mock output, got %q", result.Output)
	}
	if result.Iterations != 1 || result.ToolCalls != 0 {
		t.Errorf("Expected 1 iteration and no tool calls, got %+v", result)
	}
	if len(result.Messages) != 2 || result.Messages[0].Role != message.RoleUser {
		t.Fatalf("Expected user and assistant messages, got %d", len(result.Messages))
	}

	sent := llm.calls[0]
	if sent[0].Role != message.RoleSystem || sent[0].Content != "You are a test assistant" {
		t.Errorf("Expected system prompt first, got %+v", sent[0])
	}
}

func TestRunExecutesToolCalls(t *testing.T) {
	llm := &MockLLMClient{responses: []*message.Message{
		message.NewToolCallMessage("", []message.ToolCall{{Name: "search_claim", Args: map[string]any{"claim_id": "CLM-2026-001"}}}),
		message.NewMessage(message.RoleAssistant, "Your claim was approved."),
	}}
	a := New(llm, echoRegistry(t), WithLogger(logging.Discard()))

	history := []*message.Message{
		message.NewMessage(message.RoleUser, "hi"),
		message.NewMessage(message.RoleAssistant, "hello"),
	}
	result, err := a.Run(context.Background(), history, "What happened to CLM-2026-001?")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Output != "Your claim was approved." {
		t.Errorf("unexpected output %q", result.Output)
	}
	if result.Iterations != 2 || result.ToolCalls != 1 {
		t.Errorf("Expected 2 iterations and 1 tool call, got %+v", result)
	}

	// user, tool call, tool response, answer
	if len(result.Messages) != 4 {
		t.Fatalf("Expected 4 new messages, got %d", len(result.Messages))
	}
	call := result.Messages[1].ToolCalls[0]
	if call.ID == "" {
		t.Error("Expected a generated tool call id")
	}
	reply := result.Messages[2]
	if reply.Role != message.RoleTool || reply.ToolID != call.ID || reply.ToolName != "search_claim" {
		t.Errorf("tool reply not linked to call: %+v", reply)
	}
	if reply.Content != "claim CLM-2026-001 is APPROVED" {
		t.Errorf("unexpected tool output %q", reply.Content)
	}
	if len(history) != 2 {
		t.Errorf("history must not be modified, got %d messages", len(history))
	}

	second := llm.calls[1]
	if len(second) != 1+2+3 {
		t.Errorf("Expected system, history and three turn messages, got %d", len(second))
	}
	if names := llm.toolNames[0]; len(names) != 1 || names[0] != "search_claim" {
		t.Errorf("Expected tool list to be offered, got %v", names)
	}
}

func TestRunToolErrorsBecomeText(t *testing.T) {
	llm := &MockLLMClient{responses: []*message.Message{
		message.NewToolCallMessage("", []message.ToolCall{{ID: "c1", Name: "missing_tool"}}),
		message.NewMessage(message.RoleAssistant, "Sorry."),
	}}
	a := New(llm, echoRegistry(t), WithLogger(logging.Discard()))

	result, err := a.Run(context.Background(), nil, "go")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.HasPrefix(result.Messages[2].Content, "Error executing tool missing_tool") {
		t.Errorf("Expected error text for unknown tool, got %q", result.Messages[2].Content)
	}
}

func TestRunMaxIterations(t *testing.T) {
	loop := make([]*message.Message, 5)
	for i := range loop {
		loop[i] = message.NewToolCallMessage("", []message.ToolCall{{Name: "search_claim", Args: map[string]any{"claim_id": "X"}}})
	}
	llm := &MockLLMClient{responses: loop}
	a := New(llm, echoRegistry(t), WithMaxIterations(3), WithLogger(logging.Discard()))

	_, err := a.Run(context.Background(), nil, "loop forever")
	if !errors.Is(err, ErrMaxIterations) {
		t.Fatalf("Expected ErrMaxIterations, got %v", err)
	}
	if len(llm.calls) != 3 {
		t.Errorf("Expected 3 model calls, got %d", len(llm.calls))
	}
}

func TestRunPropagatesLLMError(t *testing.T) {
	boom := errors.New("quota exceeded")
	a := New(&MockLLMClient{err: boom}, nil, WithLogger(logging.Discard()))

	if _, err := a.Run(context.Background(), nil, "hi"); !errors.Is(err, boom) {
		t.Errorf("Expected LLM error, got %v", err)
	}
}

type captureMiddleware struct {
	seen *middleware.Context
}

func (c *captureMiddleware) Name() string { return "capture" }

func (c *captureMiddleware) Execute(ctx *middleware.Context, next middleware.Handler) error {
	err := next(ctx)
	c.seen = ctx
	return err
}

func TestRunMiddlewareSeesThread(t *testing.T) {
	capture := &captureMiddleware{}
	a := New(&MockLLMClient{}, nil, WithMiddleware(capture), WithLogger(logging.Discard()))

	ctx := WithThreadID(context.Background(), "thread-42")
	if _, err := a.Run(ctx, nil, "hello"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if capture.seen == nil {
		t.Fatal("middleware did not run")
	}
	if capture.seen.ThreadID != "thread-42" || capture.seen.Input != "hello" {
		t.Errorf("unexpected middleware context: %+v", capture.seen)
	}
	if capture.seen.Response == nil || capture.seen.Response.Content != "Mock response" {
		t.Errorf("Expected response on middleware context")
	}
}
