// Package claude implements agent.LLMClient over the Anthropic Messages API.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/sweetpotato0/ai-claims/agent"
	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/tool"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

// Config holds Claude provider configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// DefaultConfig returns default Claude configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:    apiKey,
		Model:     DefaultModel,
		MaxTokens: 4096,
	}
}

// Provider implements the LLMClient interface for Claude
type Provider struct {
	mu     sync.RWMutex
	config Config
	client anthropic.Client
}

var _ agent.LLMClient = (*Provider)(nil)

// New creates a new Claude provider using official SDK
func New(config *Config, opts ...option.RequestOption) *Provider {
	cfg := *config
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}

	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	options = append(options, opts...)

	return &Provider{
		config: cfg,
		client: anthropic.NewClient(options...),
	}
}

// Generate implements agent.LLMClient interface
func (p *Provider) Generate(ctx context.Context, messages []*message.Message, tools []*tool.Tool) (*message.Message, error) {
	cfg := p.snapshot()

	system, conversation := toMessageParams(messages)
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(cfg.Model),
		Messages:    conversation,
		MaxTokens:   cfg.MaxTokens,
		Temperature: param.NewOpt(cfg.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(tools) > 0 {
		params.Tools = toToolParams(tools)
	}

	apiMessage, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Claude API error: %w", err)
	}

	var text strings.Builder
	var calls []message.ToolCall
	for _, block := range apiMessage.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return nil, fmt.Errorf("failed to parse tool input: %w", err)
				}
			}
			calls = append(calls, message.ToolCall{ID: block.ID, Name: block.Name, Args: args})
		}
	}
	if len(calls) > 0 {
		return message.NewToolCallMessage(text.String(), calls), nil
	}
	return message.NewMessage(message.RoleAssistant, text.String()), nil
}

func (p *Provider) snapshot() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}

// SetTemperature updates the temperature setting
func (p *Provider) SetTemperature(temp float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config.Temperature = temp
}

// SetMaxTokens updates the max tokens setting
func (p *Provider) SetMaxTokens(max int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config.MaxTokens = max
}

// SetModel updates the model
func (p *Provider) SetModel(model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config.Model = model
}

// toMessageParams splits out the system prompt and converts the rest.
// Consecutive tool replies are merged into one user turn, as the API expects
// every tool_result of a turn in a single message.
func toMessageParams(msgs []*message.Message) (string, []anthropic.MessageParam) {
	var system []string
	out := make([]anthropic.MessageParam, 0, len(msgs))
	var pendingResults []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pendingResults) > 0 {
			out = append(out, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, msg := range msgs {
		if msg.Role == message.RoleTool {
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(msg.ToolID, msg.Content, false))
			continue
		}
		flush()

		switch msg.Role {
		case message.RoleSystem:
			system = append(system, msg.Content)
		case message.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case message.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				args := call.Args
				if args == nil {
					args = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, args, call.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}
	flush()
	return strings.Join(system, "\n"), out
}

func toToolParams(tools []*tool.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := t.InputSchema()
		toolParam := anthropic.ToolParam{
			Name:        t.Name,
			Description: param.NewOpt(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
				Required:   schema["required"].([]string),
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return out
}
