package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetpotato0/ai-claims/adjudication"
	"github.com/sweetpotato0/ai-claims/assistant"
	"github.com/sweetpotato0/ai-claims/config"
	"github.com/sweetpotato0/ai-claims/mcpserver"
	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/provider/claude"
	"github.com/sweetpotato0/ai-claims/provider/openai"
	"github.com/sweetpotato0/ai-claims/tool"
)

func memoryConfig() *config.Config {
	cfg := config.FromEnv()
	cfg.ClaimStore = config.StoreMemory
	cfg.MemberStore = config.StoreMemory
	cfg.SessionStore = config.StoreMemory
	cfg.MCPEndpoint = ""
	cfg.Agent.RateLimit = 0
	return cfg
}

func TestNewCoreInMemory(t *testing.T) {
	core, err := NewCore(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer core.Close()

	result, err := core.Engine.Adjudicate(context.Background(), "CLM-2026-022")
	require.NoError(t, err)
	assert.Equal(t, adjudication.DecisionApproved, result.Decision)

	rules, err := core.Policies.SearchByKeyword(context.Background(), "referral", 2)
	require.NoError(t, err)
	assert.NotEmpty(t, rules)

	tools, err := core.Toolset.Tools(context.Background())
	require.NoError(t, err)
	assert.Len(t, tools, 8)
}

func TestNewSessionsInMemory(t *testing.T) {
	sessions, release, err := NewSessions(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer release()
	assert.NotNil(t, sessions.Store())
}

func TestNewLLM(t *testing.T) {
	ctx := context.Background()

	llm, release, err := NewLLM(ctx, config.LLMConfig{Provider: config.ProviderOpenAI, OpenAIAPIKey: "sk-test", MaxTokens: 512})
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, llm)
	assert.NoError(t, release())

	llm, _, err = NewLLM(ctx, config.LLMConfig{
		Provider:        config.ProviderOpenAI,
		AzureAPIKey:     "az",
		AzureEndpoint:   "https://claims.openai.azure.com",
		AzureDeployment: "gpt-4o",
		MaxTokens:       512,
	})
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, llm)

	llm, _, err = NewLLM(ctx, config.LLMConfig{Provider: config.ProviderClaude, AnthropicAPIKey: "sk-ant", MaxTokens: 512})
	require.NoError(t, err)
	assert.IsType(t, &claude.Provider{}, llm)

	_, _, err = NewLLM(ctx, config.LLMConfig{Provider: config.ProviderGemini, MaxTokens: 512})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

// echoLLM calls search_claim once, then repeats the tool output.
type echoLLM struct{}

func (echoLLM) Generate(ctx context.Context, msgs []*message.Message, tools []*tool.Tool) (*message.Message, error) {
	last := msgs[len(msgs)-1]
	if last.Role == message.RoleTool {
		return message.NewMessage(message.RoleAssistant, last.Content), nil
	}
	return message.NewToolCallMessage("", []message.ToolCall{
		{ID: "call-1", Name: assistant.ToolSearchClaim, Args: map[string]any{"claim_id": "CLM-2026-001"}},
	}), nil
}

func (echoLLM) SetTemperature(float64) {}
func (echoLLM) SetMaxTokens(int64)     {}
func (echoLLM) SetModel(string)        {}

func TestNewAssistantLocalTools(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	core, err := NewCore(ctx, cfg)
	require.NoError(t, err)
	defer core.Close()

	orchestrator, release, err := NewAssistant(ctx, cfg, core, echoLLM{}, nil, logging.Discard(),
		assistant.WithHistoryTrimmer(assistant.NewApproximateTrimmer(assistant.DefaultTokenBudget)))
	require.NoError(t, err)
	defer release()

	answer, err := orchestrator.Query(ctx, "Show CLM-2026-001", "")
	require.NoError(t, err)
	assert.Contains(t, answer.Response, "Claim ID: CLM-2026-001")
}

func TestNewAssistantRemoteTools(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	core, err := NewCore(ctx, cfg)
	require.NoError(t, err)
	defer core.Close()

	server, err := mcpserver.NewServer(ctx, core.Toolset, mcpserver.WithLogger(logging.Discard()))
	require.NoError(t, err)
	httpServer := httptest.NewServer(mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil))
	defer httpServer.Close()

	cfg.MCPEndpoint = httpServer.URL
	orchestrator, release, err := NewAssistant(ctx, cfg, core, echoLLM{}, nil, logging.Discard(),
		assistant.WithHistoryTrimmer(assistant.NewApproximateTrimmer(assistant.DefaultTokenBudget)))
	require.NoError(t, err)
	defer release()

	answer, err := orchestrator.Query(ctx, "Show CLM-2026-001", "remote")
	require.NoError(t, err)
	assert.Contains(t, answer.Response, "Claim ID: CLM-2026-001")
}
