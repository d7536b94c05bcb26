// Package openai implements agent.LLMClient over the OpenAI chat completions
// API, either the public endpoint or an Azure OpenAI deployment.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"github.com/sweetpotato0/ai-claims/agent"
	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/tool"
)

// DefaultModel is used for the public endpoint when no model is configured.
const DefaultModel = "gpt-4o"

// DefaultAzureAPIVersion is the Azure OpenAI API version used when none is set.
const DefaultAzureAPIVersion = "2023-05-15"

// Config holds OpenAI provider configuration
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64

	// Azure settings. When AzureEndpoint is set the provider talks to the
	// deployment named by Model.
	AzureEndpoint   string
	AzureAPIVersion string
}

// DefaultConfig returns default OpenAI configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:    apiKey,
		Model:     DefaultModel,
		MaxTokens: 2000,
	}
}

// AzureConfig returns the configuration for an Azure OpenAI deployment.
func AzureConfig(apiKey, endpoint, deployment, apiVersion string) *Config {
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	return &Config{
		APIKey:          apiKey,
		Model:           deployment,
		MaxTokens:       2000,
		AzureEndpoint:   endpoint,
		AzureAPIVersion: apiVersion,
	}
}

// Provider implements the LLMClient interface for OpenAI
type Provider struct {
	mu     sync.RWMutex
	config Config
	client openaisdk.Client
}

var _ agent.LLMClient = (*Provider)(nil)

// New creates a new OpenAI provider using official SDK
func New(config *Config, opts ...option.RequestOption) *Provider {
	cfg := *config
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	var options []option.RequestOption
	if cfg.AzureEndpoint != "" {
		if cfg.AzureAPIVersion == "" {
			cfg.AzureAPIVersion = DefaultAzureAPIVersion
		}
		options = append(options,
			azure.WithEndpoint(cfg.AzureEndpoint, cfg.AzureAPIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	} else {
		options = append(options, option.WithAPIKey(cfg.APIKey))
		if strings.TrimSpace(cfg.BaseURL) != "" {
			options = append(options, option.WithBaseURL(cfg.BaseURL))
		}
	}
	options = append(options, opts...)

	return &Provider{
		config: cfg,
		client: openaisdk.NewClient(options...),
	}
}

// Generate implements agent.LLMClient interface
func (p *Provider) Generate(ctx context.Context, messages []*message.Message, tools []*tool.Tool) (*message.Message, error) {
	cfg := p.snapshot()

	converted, err := toChatMessages(messages)
	if err != nil {
		return nil, err
	}
	params := openaisdk.ChatCompletionNewParams{
		Messages:    converted,
		Model:       openaisdk.ChatModel(cfg.Model),
		Temperature: param.NewOpt(cfg.Temperature),
	}
	if cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(cfg.MaxTokens)
	}
	if len(tools) > 0 {
		params.Tools = toChatTools(tools)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from OpenAI")
	}

	choice := completion.Choices[0].Message
	calls := make([]message.ToolCall, 0, len(choice.ToolCalls))
	for _, tc := range choice.ToolCalls {
		args := map[string]any{}
		if strings.TrimSpace(tc.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
			}
		}
		calls = append(calls, message.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: args})
	}
	if len(calls) > 0 {
		return message.NewToolCallMessage(choice.Content, calls), nil
	}
	return message.NewMessage(message.RoleAssistant, choice.Content), nil
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

func toChatMessages(msgs []*message.Message) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case message.RoleSystem:
			out = append(out, openaisdk.SystemMessage(msg.Content))
		case message.RoleUser:
			out = append(out, openaisdk.UserMessage(msg.Content))
		case message.RoleAssistant:
			assistantMsg := openaisdk.AssistantMessage(msg.Content)
			if msg.HasToolCalls() {
				calls, err := encodeToolCalls(msg.ToolCalls)
				if err != nil {
					return nil, fmt.Errorf("failed to encode tool calls: %w", err)
				}
				assistantMsg.OfAssistant.ToolCalls = calls
			}
			out = append(out, assistantMsg)
		case message.RoleTool:
			out = append(out, openaisdk.ToolMessage(msg.Content, msg.ToolID))
		}
	}
	return out, nil
}

func encodeToolCalls(calls []message.ToolCall) ([]openaisdk.ChatCompletionMessageToolCallUnionParam, error) {
	params := make([]openaisdk.ChatCompletionMessageToolCallUnionParam, 0, len(calls))
	for _, tc := range calls {
		args := tc.Args
		if args == nil {
			args = make(map[string]any)
		}
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		params = append(params, openaisdk.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openaisdk.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: string(raw),
				},
			},
		})
	}
	return params, nil
}

func toChatTools(tools []*tool.Tool) []openaisdk.ChatCompletionToolUnionParam {
	out := make([]openaisdk.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openaisdk.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: param.NewOpt(t.Description),
			Parameters:  shared.FunctionParameters(t.InputSchema()),
		}))
	}
	return out
}
