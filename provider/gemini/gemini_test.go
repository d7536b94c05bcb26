package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/tool"
)

func TestToContents(t *testing.T) {
	a := message.ToolCall{ID: "c1", Name: "search_claim", Args: map[string]any{"claim_id": "A"}}
	b := message.ToolCall{ID: "c2", Name: "get_member_profile", Args: map[string]any{"member_id": "LAYA-1001"}}

	system, contents := toContents([]*message.Message{
		message.NewMessage(message.RoleSystem, "rules"),
		message.NewMessage(message.RoleUser, "look up A"),
		message.NewToolCallMessage("checking", []message.ToolCall{a, b}),
		message.NewToolResponseMessage(a, "claim A"),
		message.NewToolResponseMessage(b, "profile"),
	})

	assert.Equal(t, "rules", system)
	require.Len(t, contents, 3)
	assert.Equal(t, roleUser, contents[0].Role)

	assert.Equal(t, roleModel, contents[1].Role)
	require.Len(t, contents[1].Parts, 3)
	assert.Equal(t, genai.Text("checking"), contents[1].Parts[0])
	assert.Equal(t, "search_claim", contents[1].Parts[1].(genai.FunctionCall).Name)

	assert.Equal(t, roleUser, contents[2].Role)
	require.Len(t, contents[2].Parts, 2)
	resp := contents[2].Parts[1].(genai.FunctionResponse)
	assert.Equal(t, "get_member_profile", resp.Name)
	assert.Equal(t, "profile", resp.Response["result"])
}

func TestFromContent(t *testing.T) {
	msg := fromContent(&genai.Content{Role: roleModel, Parts: []genai.Part{
		genai.Text("Looking "),
		genai.Text("it up"),
		genai.FunctionCall{Name: "search_claim", Args: map[string]any{"claim_id": "CLM-2026-001"}},
	}})

	assert.Equal(t, "Looking it up", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.NotEmpty(t, msg.ToolCalls[0].ID)
	assert.Equal(t, "CLM-2026-001", msg.ToolCalls[0].Args["claim_id"])

	plain := fromContent(&genai.Content{Parts: []genai.Part{genai.Text("done")}})
	assert.False(t, plain.HasToolCalls())
	assert.Equal(t, message.RoleAssistant, plain.Role)
}

func TestToDeclarations(t *testing.T) {
	decls := toDeclarations([]*tool.Tool{{
		Name:        "list_claims_by_status",
		Description: "List claims",
		Parameters: []tool.Parameter{
			{Name: "status", Type: "string", Required: true, Enum: []string{"PENDING"}},
			{Name: "limit", Type: "integer"},
		},
	}})

	require.Len(t, decls, 1)
	params := decls[0].Parameters
	assert.Equal(t, genai.TypeObject, params.Type)
	assert.Equal(t, []string{"status"}, params.Required)
	assert.Equal(t, genai.TypeInteger, params.Properties["limit"].Type)
	assert.Equal(t, []string{"PENDING"}, params.Properties["status"].Enum)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), &Config{})
	assert.Error(t, err)
}
