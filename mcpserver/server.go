// Package mcpserver serves the claim tools over the Model Context Protocol
// and consumes them back as a tool.Provider.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sweetpotato0/ai-claims/assistant"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/tool"
)

// Server identity advertised during initialization.
const (
	ServerName    = "claims-assistant"
	ServerTitle   = "Claims Adjudication Tools"
	ServerVersion = "0.1.0"
)

type claimArgs struct {
	ClaimID string `json:"claim_id" jsonschema:"the claim ID, format CLM-2026-XXX"`
}

type memberArgs struct {
	MemberID string `json:"member_id" jsonschema:"member ID, format LAYA-XXXX"`
}

type documentArgs struct {
	MemberID     string `json:"member_id" jsonschema:"member ID, format LAYA-XXXX"`
	DocumentType string `json:"document_type" jsonschema:"document type, e.g. GP Referral Letter"`
}

type policyArgs struct {
	Query string `json:"query" jsonschema:"search query, e.g. MRI referral"`
	Top   int    `json:"top,omitempty" jsonschema:"maximum number of rules to return"`
}

type notesArgs struct {
	MemberID string `json:"member_id" jsonschema:"member ID, format LAYA-XXXX"`
	Keyword  string `json:"keyword" jsonschema:"word or phrase to look for"`
}

type statusArgs struct {
	Status string `json:"status" jsonschema:"claim status: PENDING, APPROVED or REJECTED"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of claims to return"`
}

// Option configures NewServer.
type Option func(*serverConfig)

type serverConfig struct {
	logger *slog.Logger
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer registers every tool of the set on a new MCP server.
func NewServer(ctx context.Context, toolset *assistant.Toolset, opts ...Option) (*mcp.Server, error) {
	cfg := serverConfig{logger: logging.WithComponent("mcpserver")}
	for _, opt := range opts {
		opt(&cfg)
	}

	registry, err := toolset.Registry(ctx)
	if err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Title:   ServerTitle,
		Version: ServerVersion,
	}, nil)

	for _, t := range registry.List() {
		def := &mcp.Tool{Name: t.Name, Description: t.Description}
		switch t.Name {
		case assistant.ToolSearchClaim, assistant.ToolAdjudicateClaim:
			mcp.AddTool(server, def, handle[claimArgs](registry, t.Name, cfg.logger))
		case assistant.ToolGetMemberProfile, assistant.ToolListMemberClaims:
			mcp.AddTool(server, def, handle[memberArgs](registry, t.Name, cfg.logger))
		case assistant.ToolFindMemberDocument:
			mcp.AddTool(server, def, handle[documentArgs](registry, t.Name, cfg.logger))
		case assistant.ToolSearchPolicyRules:
			mcp.AddTool(server, def, handle[policyArgs](registry, t.Name, cfg.logger))
		case assistant.ToolSearchMemberNotes:
			mcp.AddTool(server, def, handle[notesArgs](registry, t.Name, cfg.logger))
		case assistant.ToolListClaimsByStatus:
			mcp.AddTool(server, def, handle[statusArgs](registry, t.Name, cfg.logger))
		default:
			return nil, fmt.Errorf("no argument binding for tool %s", t.Name)
		}
	}
	return server, nil
}

// handle runs the named registry tool with the decoded arguments. Tool
// failures are reported to the client as error results, not protocol errors.
func handle[In any](registry *tool.Registry, name string, logger *slog.Logger) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		args, err := toArgs(in)
		if err != nil {
			return nil, nil, err
		}
		out, err := registry.Execute(ctx, name, args)
		if err != nil {
			logger.Warn("tool call failed", "tool", name, "error", err)
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: out}},
		}, nil, nil
	}
}

// toArgs turns typed arguments into the map form tool handlers take.
// Omitted optional fields stay absent so handler defaults apply.
func toArgs(in any) (map[string]any, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	args := make(map[string]any)
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return args, nil
}
