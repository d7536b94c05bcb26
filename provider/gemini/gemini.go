// Package gemini implements agent.LLMClient over the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/sweetpotato0/ai-claims/agent"
	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/tool"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-pro"

const (
	roleUser  = "user"
	roleModel = "model"
)

// Config holds Gemini provider configuration
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:    apiKey,
		Model:     DefaultModel,
		MaxTokens: 2048,
	}
}

// Provider implements the LLMClient interface for Google Gemini
type Provider struct {
	mu     sync.RWMutex
	config Config
	client *genai.Client
}

var _ agent.LLMClient = (*Provider)(nil)

// New creates a new Gemini provider.
func New(ctx context.Context, config *Config, opts ...option.ClientOption) (*Provider, error) {
	cfg := *config
	if cfg.APIKey == "" {
		return nil, errors.New("Gemini API key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{config: cfg, client: client}, nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	return p.client.Close()
}

// Generate implements agent.LLMClient interface
func (p *Provider) Generate(ctx context.Context, messages []*message.Message, tools []*tool.Tool) (*message.Message, error) {
	cfg := p.snapshot()

	system, contents := toContents(messages)
	if len(contents) == 0 {
		return nil, errors.New("no conversation to send")
	}

	model := p.client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(tools)}}
	}

	chat := model.StartChat()
	chat.History = contents[:len(contents)-1]
	resp, err := chat.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates in response")
	}
	return fromContent(resp.Candidates[0].Content), nil
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
	p.config.Temperature = float32(temp)
}

// SetMaxTokens updates the max tokens setting
func (p *Provider) SetMaxTokens(max int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config.MaxTokens = int(max)
}

// SetModel updates the model
func (p *Provider) SetModel(model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config.Model = model
}

// toContents converts the conversation. Tool replies become function
// responses in a user turn, merged when consecutive.
func toContents(msgs []*message.Message) (string, []*genai.Content) {
	var system []string
	var out []*genai.Content

	appendParts := func(role string, parts ...genai.Part) {
		if len(parts) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Parts = append(out[n-1].Parts, parts...)
			return
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}

	for _, msg := range msgs {
		switch msg.Role {
		case message.RoleSystem:
			system = append(system, msg.Content)
		case message.RoleUser:
			appendParts(roleUser, genai.Text(msg.Content))
		case message.RoleAssistant:
			var parts []genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: call.Name, Args: call.Args})
			}
			appendParts(roleModel, parts...)
		case message.RoleTool:
			appendParts(roleUser, genai.FunctionResponse{
				Name:     msg.ToolName,
				Response: map[string]any{"result": msg.Content},
			})
		}
	}
	return strings.Join(system, "\n"), out
}

func fromContent(content *genai.Content) *message.Message {
	var text strings.Builder
	var calls []message.ToolCall
	for _, part := range content.Parts {
		switch v := part.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.FunctionCall:
			calls = append(calls, message.ToolCall{ID: message.NewCallID(), Name: v.Name, Args: v.Args})
		}
	}
	if len(calls) > 0 {
		return message.NewToolCallMessage(text.String(), calls)
	}
	return message.NewMessage(message.RoleAssistant, text.String())
}

func toDeclarations(tools []*tool.Tool) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		schema := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, len(t.Parameters)),
		}
		for _, p := range t.Parameters {
			schema.Properties[p.Name] = &genai.Schema{
				Type:        schemaType(p.Type),
				Description: p.Description,
				Enum:        p.Enum,
			}
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schema,
		})
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
