// Package app wires the configured stores, model and tool set into the
// services the binaries run.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/ai-claims/adjudication"
	"github.com/sweetpotato0/ai-claims/agent"
	"github.com/sweetpotato0/ai-claims/assistant"
	"github.com/sweetpotato0/ai-claims/claims"
	claimstore "github.com/sweetpotato0/ai-claims/claims/store"
	"github.com/sweetpotato0/ai-claims/config"
	"github.com/sweetpotato0/ai-claims/mcpserver"
	"github.com/sweetpotato0/ai-claims/member"
	memberstore "github.com/sweetpotato0/ai-claims/member/store"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/policy"
	policystore "github.com/sweetpotato0/ai-claims/policy/store"
	"github.com/sweetpotato0/ai-claims/provider/claude"
	"github.com/sweetpotato0/ai-claims/provider/gemini"
	"github.com/sweetpotato0/ai-claims/provider/openai"
	"github.com/sweetpotato0/ai-claims/session"
	sessionstore "github.com/sweetpotato0/ai-claims/session/store"
	"github.com/sweetpotato0/ai-claims/tool"
)

// Core holds the claim services over the configured stores.
type Core struct {
	Aggregator *claims.Aggregator
	Directory  *member.Directory
	Policies   *policy.Service
	Engine     *adjudication.Engine
	Toolset    *assistant.Toolset

	closers []func() error
}

// Close releases every store connection.
func (c *Core) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// NewCore opens the claim, policy and member stores named by cfg. The memory
// backends are loaded with the sample data set.
func NewCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	logger := logging.WithComponent("app")
	core := &Core{}

	var (
		source claims.RecordSource
		rules  policy.Searcher
	)
	switch cfg.ClaimStore {
	case config.StorePostgres:
		pg, err := claimstore.NewPostgresSource(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		core.closers = append(core.closers, pg.Close)
		source = pg
		rules = policystore.NewPostgresIndex(pg.DB())
	default:
		logger.Info("using in-memory claim store with sample data")
		source = claimstore.NewInMemorySource(claimstore.SampleClaims()...)
		rules = policystore.NewInMemoryIndex(policystore.DefaultRules()...)
	}

	var profiles member.ProfileSource
	switch cfg.MemberStore {
	case config.StoreMongo:
		mongo, err := memberstore.NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			_ = core.Close()
			return nil, err
		}
		core.closers = append(core.closers, func() error { return mongo.Close(context.Background()) })
		profiles = mongo
	default:
		logger.Info("using in-memory member store with sample data")
		profiles = memberstore.NewInMemoryStore(memberstore.SampleProfiles()...)
	}

	core.Aggregator = claims.NewAggregator(source)
	core.Directory = member.NewDirectory(profiles)
	core.Policies = policy.NewService(rules)
	core.Engine = adjudication.New(core.Aggregator, core.Directory)
	core.Toolset = assistant.NewToolset(core.Aggregator, core.Directory, core.Policies, core.Engine)
	return core, nil
}

// NewSessions opens the thread store named by cfg.
func NewSessions(ctx context.Context, cfg *config.Config) (*session.Manager, func() error, error) {
	if cfg.SessionStore != config.StoreRedis {
		return session.NewManager(session.NewInMemoryStore()), func() error { return nil }, nil
	}
	store := sessionstore.NewRedisStore(cfg.Redis)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("connect to Redis: %w", err)
	}
	return session.NewManager(store), store.Close, nil
}

// NewLLM builds the client of the configured provider.
func NewLLM(ctx context.Context, cfg config.LLMConfig) (agent.LLMClient, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	noop := func() error { return nil }

	switch cfg.Provider {
	case config.ProviderClaude:
		c := claude.DefaultConfig(cfg.AnthropicAPIKey)
		c.Temperature = cfg.Temperature
		c.MaxTokens = int64(cfg.MaxTokens)
		if cfg.Model != "" {
			c.Model = cfg.Model
		}
		return claude.New(c), noop, nil
	case config.ProviderGemini:
		c := gemini.DefaultConfig(cfg.GeminiAPIKey)
		c.Temperature = float32(cfg.Temperature)
		c.MaxTokens = cfg.MaxTokens
		if cfg.Model != "" {
			c.Model = cfg.Model
		}
		p, err := gemini.New(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		var c *openai.Config
		if cfg.UsesAzure() {
			c = openai.AzureConfig(cfg.AzureAPIKey, cfg.AzureEndpoint, cfg.AzureDeployment, cfg.AzureAPIVersion)
		} else {
			c = openai.DefaultConfig(cfg.OpenAIAPIKey)
			c.BaseURL = cfg.OpenAIBaseURL
			if cfg.Model != "" {
				c.Model = cfg.Model
			}
		}
		c.Temperature = cfg.Temperature
		c.MaxTokens = int64(cfg.MaxTokens)
		return openai.New(c), noop, nil
	}
}

// NewAssistant builds the orchestrator over llm. The tools come from the
// remote MCP server when cfg.MCPEndpoint is set, otherwise from core. extra
// options are applied after the ones derived from cfg.
func NewAssistant(ctx context.Context, cfg *config.Config, core *Core, llm agent.LLMClient, sessions *session.Manager, logger *slog.Logger, extra ...assistant.Option) (*assistant.Orchestrator, func() error, error) {
	var (
		tools   tool.Provider = core.Toolset
		release               = func() error { return nil }
	)
	if logger == nil {
		logger = logging.WithComponent("assistant")
	}
	if cfg.MCPEndpoint != "" {
		remote, err := mcpserver.Dial(ctx, cfg.MCPEndpoint, nil)
		if err != nil {
			return nil, nil, err
		}
		tools, release = remote, remote.Close
		logger.Info("using remote claim tools", "endpoint", cfg.MCPEndpoint)
	}

	opts := []assistant.Option{
		assistant.WithMaxIterations(cfg.Agent.MaxIterations),
		assistant.WithTimeout(cfg.Agent.QueryTimeout),
		assistant.WithHistoryTrimmer(assistant.NewHistoryTrimmer(cfg.LLM.Model, assistant.DefaultTokenBudget)),
		assistant.WithLogger(logger),
	}
	if cfg.Agent.RateLimit > 0 {
		opts = append(opts, assistant.WithRateLimit(cfg.Agent.RateLimit, cfg.Agent.RateWindow))
	}
	opts = append(opts, extra...)

	orchestrator, err := assistant.NewOrchestrator(ctx, llm, tools, sessions, opts...)
	if err != nil {
		_ = release()
		return nil, nil, err
	}
	return orchestrator, release, nil
}
