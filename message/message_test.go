package message

import (
	"testing"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "Tell me about claim CLM-2026-001")

	if msg.Role != RoleUser {
		t.Errorf("Expected role %s, got %s", RoleUser, msg.Role)
	}
	if msg.Content != "Tell me about claim CLM-2026-001" {
		t.Errorf("Unexpected content %q", msg.Content)
	}
	if msg.ID == "" {
		t.Error("Expected non-empty ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("Expected non-zero created time")
	}
	if other := NewMessage(RoleUser, "x"); other.ID == msg.ID {
		t.Error("Expected unique IDs")
	}
}

func TestToolCallRoundTrip(t *testing.T) {
	call := ToolCall{ID: "call1", Name: "search_claim", Args: map[string]any{"claim_id": "CLM-2026-022"}}
	msg := NewToolCallMessage("", []ToolCall{call})

	if msg.Role != RoleAssistant || !msg.HasToolCalls() {
		t.Fatalf("Expected assistant tool call message, got %+v", msg)
	}

	reply := NewToolResponseMessage(call, "Claim found")
	if reply.Role != RoleTool {
		t.Errorf("Expected role %s, got %s", RoleTool, reply.Role)
	}
	if reply.ToolID != "call1" || reply.ToolName != "search_claim" {
		t.Errorf("Expected reply bound to call1/search_claim, got %s/%s", reply.ToolID, reply.ToolName)
	}
	if reply.HasToolCalls() {
		t.Error("Tool replies carry no tool calls")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := NewToolCallMessage("", []ToolCall{{ID: "c", Name: "n", Args: map[string]any{"k": "v"}}})
	clone := Clone(orig)

	clone.ToolCalls[0].Args["k"] = "changed"
	if orig.ToolCalls[0].Args["k"] != "v" {
		t.Error("Clone shares tool call arguments with the original")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) must be nil")
	}
	if CloneMessages(nil) != nil {
		t.Error("CloneMessages(nil) must be nil")
	}
}
