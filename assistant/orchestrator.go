package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sweetpotato0/ai-claims/agent"
	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/middleware"
	"github.com/sweetpotato0/ai-claims/middleware/enricher"
	"github.com/sweetpotato0/ai-claims/middleware/errorhandler"
	"github.com/sweetpotato0/ai-claims/middleware/limiter"
	mwlogger "github.com/sweetpotato0/ai-claims/middleware/logger"
	"github.com/sweetpotato0/ai-claims/middleware/validator"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/session"
	"github.com/sweetpotato0/ai-claims/tool"
)

// SystemPrompt instructs the model how to use the claim tools.
const SystemPrompt = `You are an AI assistant for health insurance claim processing.
You can look up claims, member profiles, uploaded documents, interaction notes and policy rules, and you can adjudicate claims with automatic rescue.

When a user asks why a claim was rejected, look the claim up, check the policy rules for the rejection reason and check the member's uploaded documents.
When a rejected claim may be recoverable, call adjudicate_claim_with_rescue and report the final decision with its reasoning.
Quote claim ids, document ids and amounts exactly as the tools return them. Do not invent data the tools did not return.`

// MaxQueryLength bounds a single user query in characters.
const MaxQueryLength = 4000

// Answer is the reply to one query.
type Answer struct {
	Response   string `json:"response"`
	ThreadID   string `json:"thread_id"`
	Iterations int    `json:"-"`
	ToolCalls  int    `json:"-"`
}

// Orchestrator answers natural-language queries with the claim tools and
// keeps the conversation per thread id.
type Orchestrator struct {
	agent    *agent.Agent
	sessions *session.Manager
	trimmer  *HistoryTrimmer
	timeout  time.Duration
	logger   *slog.Logger
}

type options struct {
	maxIterations int
	trimmer       *HistoryTrimmer
	timeout       time.Duration
	rateLimit     *limiter.RateLimiter
	logger        *slog.Logger
	systemPrompt  string
}

// Option configures an Orchestrator.
type Option func(*options)

// WithMaxIterations bounds the model turns per query.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// WithHistoryTrimmer overrides the token budget applied to thread history.
func WithHistoryTrimmer(t *HistoryTrimmer) Option {
	return func(o *options) { o.trimmer = t }
}

// WithTimeout bounds the time spent answering one query. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRateLimit admits at most n queries per window across all threads.
func WithRateLimit(n int, window time.Duration) Option {
	return func(o *options) {
		if n > 0 {
			o.rateLimit = limiter.NewRateLimiter(n, window)
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSystemPrompt replaces SystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *options) { o.systemPrompt = prompt }
}

// NewOrchestrator builds the agent over the tools of provider, usually a
// *Toolset. A nil session manager keeps threads in memory.
func NewOrchestrator(ctx context.Context, llm agent.LLMClient, provider tool.Provider, sessions *session.Manager, opts ...Option) (*Orchestrator, error) {
	o := options{
		maxIterations: agent.DefaultMaxIterations,
		logger:        logging.WithComponent("assistant"),
		systemPrompt:  SystemPrompt,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.trimmer == nil {
		o.trimmer = NewHistoryTrimmer("", DefaultTokenBudget)
	}
	if sessions == nil {
		sessions = session.NewManager(session.NewInMemoryStore())
	}

	registry := tool.NewRegistry()
	if err := registry.RegisterProvider(ctx, provider); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	chain := []middleware.Middleware{
		enricher.NewContextEnricher(enricher.RequestID),
		mwlogger.NewRequestLogger(o.logger),
		errorhandler.NewErrorHandler(errorhandler.Timeouts),
		validator.NewInputValidator(validator.NonEmpty, validator.MaxLength(MaxQueryLength)),
	}
	if o.rateLimit != nil {
		chain = append(chain, o.rateLimit)
	}

	agentOpts := []agent.Option{
		agent.WithName("claims-assistant"),
		agent.WithSystemPrompt(o.systemPrompt),
		agent.WithMaxIterations(o.maxIterations),
		agent.WithLogger(o.logger),
	}
	for _, m := range chain {
		agentOpts = append(agentOpts, agent.WithMiddleware(m))
	}

	return &Orchestrator{
		agent:    agent.New(llm, registry, agentOpts...),
		sessions: sessions,
		trimmer:  o.trimmer,
		timeout:  o.timeout,
		logger:   o.logger,
	}, nil
}

// Query answers query in the given thread. An empty thread id uses
// session.DefaultThreadID. The thread is only extended when the run succeeds.
func (o *Orchestrator) Query(ctx context.Context, query, threadID string) (*Answer, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		threadID = session.DefaultThreadID
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	ctx = agent.WithThreadID(ctx, threadID)

	answer := &Answer{ThreadID: threadID}
	err := o.sessions.Update(ctx, threadID, func(record *session.Record) error {
		history := o.trimmer.Trim(record.Messages)
		result, err := o.agent.Run(ctx, history, query)
		if err != nil {
			return err
		}
		record.Messages = append(message.CloneMessages(history), result.Messages...)
		record.UpdatedAt = time.Now()

		answer.Response = result.Output
		answer.Iterations = result.Iterations
		answer.ToolCalls = result.ToolCalls
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Debug("query answered", "thread_id", threadID, "iterations", answer.Iterations, "tool_calls", answer.ToolCalls)
	return answer, nil
}

// History returns the stored messages of a thread.
func (o *Orchestrator) History(ctx context.Context, threadID string) ([]*message.Message, error) {
	return o.sessions.History(ctx, threadID)
}

// Reset forgets a thread.
func (o *Orchestrator) Reset(ctx context.Context, threadID string) error {
	return o.sessions.Reset(ctx, threadID)
}
