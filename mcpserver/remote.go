package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sweetpotato0/ai-claims/tool"
)

// ErrClientClosed is returned when the remote session has been closed.
var ErrClientClosed = errors.New("mcp client closed")

// ToolError is returned when the MCP server reports an error result.
type ToolError struct {
	Name    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("mcp tool %s: %s", e.Name, e.Message)
}

// RemoteTools exposes the tools of a connected MCP server as a
// tool.Provider, so an orchestrator can run against a claims-mcp process.
type RemoteTools struct {
	session      *mcp.ClientSession
	toolsChanged chan struct{}

	closeOnce sync.Once
	closeErr  error
}

var _ tool.Provider = (*RemoteTools)(nil)

// Dial connects to a streamable HTTP MCP endpoint. A nil httpClient uses
// http.DefaultClient.
func Dial(ctx context.Context, endpoint string, httpClient *http.Client) (*RemoteTools, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("mcp: endpoint cannot be empty")
	}
	transport := &mcp.StreamableClientTransport{Endpoint: endpoint}
	if httpClient != nil {
		transport.HTTPClient = httpClient
	}
	return Connect(ctx, transport)
}

// Connect performs the initialization handshake over transport and fails
// fast when the server cannot list its tools.
func Connect(ctx context.Context, transport mcp.Transport) (*RemoteTools, error) {
	r := &RemoteTools{toolsChanged: make(chan struct{}, 1)}
	client := mcp.NewClient(&mcp.Implementation{Name: ServerName + "-client", Version: ServerVersion}, &mcp.ClientOptions{
		ToolListChangedHandler: func(context.Context, *mcp.ToolListChangedRequest) {
			select {
			case r.toolsChanged <- struct{}{}:
			default:
			}
		},
	})

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp: connect failed: %w", err)
	}
	r.session = session

	if _, err := r.Tools(ctx); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// Tools lists every remote tool and wraps it as a local tool whose handler
// calls back over the session.
func (r *RemoteTools) Tools(ctx context.Context) ([]*tool.Tool, error) {
	if r.session == nil {
		return nil, ErrClientClosed
	}

	var defs []*mcp.Tool
	params := &mcp.ListToolsParams{}
	for {
		res, err := r.session.ListTools(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("mcp: list tools: %w", err)
		}
		defs = append(defs, res.Tools...)
		if res.NextCursor == "" {
			break
		}
		params.Cursor = res.NextCursor
	}

	tools := make([]*tool.Tool, 0, len(defs))
	for _, def := range defs {
		if def == nil {
			continue
		}
		name := def.Name
		tools = append(tools, &tool.Tool{
			Name:        name,
			Description: def.Description,
			Parameters:  parametersFromSchema(def.InputSchema),
			Handler: func(ctx context.Context, args map[string]any) (string, error) {
				return r.Call(ctx, name, args)
			},
		})
	}
	return tools, nil
}

// Call invokes a remote tool and returns its text output.
func (r *RemoteTools) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if r.session == nil {
		return "", ErrClientClosed
	}
	if args == nil {
		args = make(map[string]any)
	}
	result, err := r.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", err
	}

	text := normalizeContent(result.Content)
	if result.IsError {
		if text == "" {
			text = "tool returned error without message"
		}
		return "", &ToolError{Name: name, Message: text}
	}
	return text, nil
}

// Close ends the session.
func (r *RemoteTools) Close() error {
	r.closeOnce.Do(func() {
		if r.session != nil {
			r.closeErr = r.session.Close()
		}
	})
	return r.closeErr
}

// ToolsChanged fires when the server announces a new tool list.
func (r *RemoteTools) ToolsChanged() <-chan struct{} {
	return r.toolsChanged
}

func normalizeContent(content []mcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, c := range content {
		switch v := c.(type) {
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			if data, err := c.MarshalJSON(); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func parametersFromSchema(schema any) []tool.Parameter {
	schemaMap := toMap(schema)
	if schemaMap == nil {
		return nil
	}
	if typ, _ := schemaMap["type"].(string); strings.ToLower(typ) != "object" {
		return nil
	}
	props, ok := schemaMap["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return nil
	}

	required := make(map[string]bool)
	if list, ok := schemaMap["required"].([]any); ok {
		for _, item := range list {
			if name, ok := item.(string); ok {
				required[name] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]tool.Parameter, 0, len(names))
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		p := tool.Parameter{
			Name:        name,
			Description: stringValue(prop["description"]),
			Type:        stringValue(prop["type"]),
			Default:     prop["default"],
			Required:    required[name],
		}
		if enums, ok := prop["enum"].([]any); ok {
			for _, e := range enums {
				if s, ok := e.(string); ok {
					p.Enum = append(p.Enum, s)
				}
			}
		}
		if p.Type == "" {
			p.Type = "string"
		}
		params = append(params, p)
	}
	return params
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// toMap normalizes a schema of any representation to a generic map.
func toMap(v any) map[string]any {
	switch value := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return value
	case json.RawMessage:
		return unmarshalMap(value)
	case []byte:
		return unmarshalMap(value)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil
		}
		return unmarshalMap(data)
	}
}

func unmarshalMap(data []byte) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
