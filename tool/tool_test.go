package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
)

func TestToolExecution(t *testing.T) {
	ctx := context.Background()

	tool := &Tool{
		Name:        "search_claim",
		Description: "Look up a claim",
		Parameters: []Parameter{
			{Name: "claim_id", Type: "string", Description: "Claim id", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			id, err := StringArg(args, "claim_id")
			return "found " + id, err
		},
	}

	result, err := tool.Execute(ctx, map[string]any{"claim_id": " CLM-2026-001 "})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != "found CLM-2026-001" {
		t.Errorf("Expected 'found CLM-2026-001', got '%s'", result)
	}
}

func TestToolValidation(t *testing.T) {
	ctx := context.Background()

	tool := &Tool{
		Name: "test_tool",
		Parameters: []Parameter{
			{Name: "required_param", Type: "string", Description: "Required parameter", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return "ok", nil
		},
	}

	for _, args := range []map[string]any{{}, {"required_param": ""}, {"required_param": nil}} {
		_, err := tool.Execute(ctx, args)
		if !errors.Is(err, errorskg.ErrInvalidInput) {
			t.Errorf("Expected invalid input for %v, got %v", args, err)
		}
	}

	if _, err := tool.Execute(ctx, map[string]any{"required_param": "value"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	noHandler := &Tool{Name: "empty"}
	if _, err := noHandler.Execute(ctx, nil); err == nil {
		t.Error("Expected error for tool without handler")
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	tool1 := &Tool{Name: "b_tool", Description: "Second tool"}
	tool2 := &Tool{Name: "a_tool", Description: "First tool"}

	if err := registry.Register(tool1); err != nil {
		t.Fatalf("Failed to register tool1: %v", err)
	}
	if err := registry.Register(tool2); err != nil {
		t.Fatalf("Failed to register tool2: %v", err)
	}
	if err := registry.Register(tool1); err == nil {
		t.Error("Expected error for duplicate registration, got nil")
	}
	if err := registry.Register(&Tool{}); err == nil {
		t.Error("Expected error for unnamed tool, got nil")
	}

	if _, err := registry.Get("missing"); !errorskg.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}

	tools := registry.List()
	if len(tools) != 2 || tools[0].Name != "a_tool" {
		t.Errorf("Expected tools ordered by name, got %v", tools)
	}

	data, err := json.Marshal(registry)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	var schemas []map[string]any
	if err := json.Unmarshal(data, &schemas); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(schemas) != 2 || schemas[0]["type"] != "function" {
		t.Errorf("Unexpected schemas %v", schemas)
	}
}

func TestInputSchema(t *testing.T) {
	tool := &Tool{
		Name: "list_claims_by_status",
		Parameters: []Parameter{
			{Name: "status", Type: "string", Required: true, Enum: []string{"PENDING", "APPROVED", "REJECTED"}},
			{Name: "limit", Type: "integer", Default: 10},
		},
	}
	schema := tool.InputSchema()

	required := schema["required"].([]string)
	if len(required) != 1 || required[0] != "status" {
		t.Errorf("Expected only status to be required, got %v", required)
	}
	props := schema["properties"].(map[string]any)
	limit := props["limit"].(map[string]any)
	if limit["default"] != 10 {
		t.Errorf("Expected default 10, got %v", limit["default"])
	}
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{name: "absent", value: nil, want: 7},
		{name: "float64", value: float64(3), want: 3},
		{name: "int", value: 4, want: 4},
		{name: "json number", value: json.Number("5"), want: 5},
		{name: "string", value: "6", want: 6},
		{name: "fraction", value: 2.5, wantErr: true},
		{name: "bad string", value: "many", wantErr: true},
		{name: "bool", value: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.value != nil {
				args["limit"] = tt.value
			}
			got, err := IntArg(args, "limit", 7)
			if tt.wantErr {
				if !errors.Is(err, errorskg.ErrInvalidInput) {
					t.Errorf("Expected invalid input, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("IntArg() = %d, %v; want %d", got, err, tt.want)
			}
		})
	}
}
