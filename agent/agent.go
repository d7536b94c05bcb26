// Package agent runs a tool-calling conversation turn against a language model.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/ai-claims/graph"
	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/middleware"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/tool"
)

// ErrMaxIterations is returned when the model keeps requesting tools after the
// iteration budget is spent.
var ErrMaxIterations = errors.New("agent: max iterations reached")

// DefaultMaxIterations bounds the model turns of a single run.
const DefaultMaxIterations = 10

// Node names of the run graph.
const (
	NodeStart          = "start"
	NodeAgent          = "agent"
	NodeShouldContinue = "should_continue"
	NodeTools          = "tools"
	NodeEnd            = "end"
)

const stateMessages = "messages"

// LLMClient defines the interface for LLM providers
type LLMClient interface {
	// Generate returns the model's next message. tools lists what the model
	// may call; it is empty when tool use is disabled.
	Generate(ctx context.Context, messages []*message.Message, tools []*tool.Tool) (*message.Message, error)

	// SetTemperature updates the temperature setting for generation
	SetTemperature(temp float64)

	// SetMaxTokens updates the maximum tokens limit for generation
	SetMaxTokens(max int64)

	// SetModel updates the model to use for generation
	SetModel(model string)
}

// Agent drives the model/tool loop for one conversation turn at a time. An
// Agent holds no conversation state and is safe for concurrent use.
type Agent struct {
	name          string
	systemPrompt  string
	maxIterations int
	llm           LLMClient
	tools         *tool.Registry
	middlewares   *middleware.MiddlewareChain
	logger        *slog.Logger
}

// Option is a function that configures an Agent
type Option func(*Agent)

// WithName sets the agent name
func WithName(name string) Option {
	return func(a *Agent) {
		a.name = name
	}
}

// WithSystemPrompt sets the system prompt
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.systemPrompt = prompt
	}
}

// WithMaxIterations sets the maximum iterations for tool calling
func WithMaxIterations(max int) Option {
	return func(a *Agent) {
		if max > 0 {
			a.maxIterations = max
		}
	}
}

// WithMiddleware adds a middleware to the agent
func WithMiddleware(m middleware.Middleware) Option {
	return func(a *Agent) {
		a.middlewares.Add(m)
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an agent over llm. A nil registry disables tool use.
func New(llm LLMClient, registry *tool.Registry, opts ...Option) *Agent {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	agent := &Agent{
		name:          "Agent",
		systemPrompt:  "You are a helpful AI assistant.",
		maxIterations: DefaultMaxIterations,
		llm:           llm,
		tools:         registry,
		middlewares:   middleware.NewChain(),
		logger:        logging.WithComponent("agent"),
	}
	for _, opt := range opts {
		opt(agent)
	}
	return agent
}

// Name returns the agent name.
func (a *Agent) Name() string {
	return a.name
}

// Tools returns the registry the agent calls into.
func (a *Agent) Tools() *tool.Registry {
	return a.tools
}

// Result is the outcome of a run.
type Result struct {
	// Output is the content of the final assistant message.
	Output string
	// Messages holds the messages this run added, starting with the user input.
	Messages []*message.Message
	// Iterations counts model calls.
	Iterations int
	// ToolCalls counts executed tool calls.
	ToolCalls int
}

// Run answers input given the prior conversation history. history is not
// modified; the messages produced by the run are returned in the result.
func (a *Agent) Run(ctx context.Context, history []*message.Message, input string) (*Result, error) {
	if a.llm == nil {
		return nil, errors.New("agent: no LLM client configured")
	}

	mwCtx := middleware.NewContext(ctx)
	mwCtx.Input = input
	if threadID, ok := ThreadIDFromContext(ctx); ok {
		mwCtx.ThreadID = threadID
	}

	var result *Result
	err := a.middlewares.Execute(mwCtx, func(mwCtx *middleware.Context) error {
		r, err := a.run(mwCtx, history)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (a *Agent) run(mwCtx *middleware.Context, history []*message.Message) (*Result, error) {
	result := &Result{}
	userMsg := message.NewMessage(message.RoleUser, mwCtx.Input)

	flow, err := a.buildGraph(mwCtx, result)
	if err != nil {
		return nil, err
	}

	conversation := append(message.CloneMessages(history), userMsg)
	state, err := flow.Execute(mwCtx.Context(), graph.State{stateMessages: conversation})
	if err != nil {
		if errors.Is(err, graph.ErrLoopLimit) {
			return nil, fmt.Errorf("%w (%d)", ErrMaxIterations, a.maxIterations)
		}
		return nil, err
	}

	final := state[stateMessages].([]*message.Message)
	result.Messages = final[len(history):]
	if mwCtx.Response != nil {
		result.Output = mwCtx.Response.Content
	}
	return result, nil
}

// buildGraph wires start -> agent -> should_continue -> tools|end, with tools
// looping back to agent.
func (a *Agent) buildGraph(mwCtx *middleware.Context, result *Result) (*graph.Graph, error) {
	tools := a.tools.List()

	callModel := func(ctx context.Context, state graph.State) (graph.State, error) {
		conversation := state[stateMessages].([]*message.Message)
		prompt := conversation
		if a.systemPrompt != "" {
			prompt = append([]*message.Message{message.NewMessage(message.RoleSystem, a.systemPrompt)}, conversation...)
		}
		mwCtx.Messages = prompt

		response, err := a.llm.Generate(ctx, prompt, tools)
		if err != nil {
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}
		if response == nil {
			return nil, errors.New("LLM returned no message")
		}
		for i := range response.ToolCalls {
			if response.ToolCalls[i].ID == "" {
				response.ToolCalls[i].ID = message.NewCallID()
			}
		}
		result.Iterations++
		mwCtx.Response = response
		state[stateMessages] = append(conversation, response)
		return state, nil
	}

	shouldContinue := func(ctx context.Context, state graph.State) (string, error) {
		conversation := state[stateMessages].([]*message.Message)
		if conversation[len(conversation)-1].HasToolCalls() {
			return NodeTools, nil
		}
		return NodeEnd, nil
	}

	callTools := func(ctx context.Context, state graph.State) (graph.State, error) {
		conversation := state[stateMessages].([]*message.Message)
		last := conversation[len(conversation)-1]
		for _, call := range last.ToolCalls {
			output, err := a.tools.Execute(ctx, call.Name, call.Args)
			if err != nil {
				a.logger.Warn("tool call failed", "tool", call.Name, "error", err)
				output = fmt.Sprintf("Error executing tool %s: %v", call.Name, err)
			}
			result.ToolCalls++
			conversation = append(conversation, message.NewToolResponseMessage(call, output))
		}
		state[stateMessages] = conversation
		return state, nil
	}

	return graph.NewBuilder().
		AddNode(NodeStart, graph.NodeTypeStart, nil).
		AddNode(NodeAgent, graph.NodeTypeStep, callModel).
		AddConditionNode(NodeShouldContinue, shouldContinue, map[string]string{
			NodeTools: NodeTools,
			NodeEnd:   NodeEnd,
		}).
		AddNode(NodeTools, graph.NodeTypeStep, callTools).
		AddNode(NodeEnd, graph.NodeTypeEnd, nil).
		AddEdge(NodeStart, NodeAgent).
		AddEdge(NodeAgent, NodeShouldContinue).
		AddEdge(NodeTools, NodeAgent).
		SetMaxVisits(a.maxIterations).
		Build()
}

type threadIDKey struct{}

// WithThreadID tags ctx with the conversation thread a run belongs to.
func WithThreadID(ctx context.Context, threadID string) context.Context {
	return context.WithValue(ctx, threadIDKey{}, threadID)
}

// ThreadIDFromContext returns the thread id set by WithThreadID.
func ThreadIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(threadIDKey{}).(string)
	return id, ok
}
