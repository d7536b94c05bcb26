package graph

import (
	"context"
	"errors"
	"testing"
)

func counterGraph(t *testing.T, limit, maxVisits int) *Graph {
	t.Helper()
	g, err := NewBuilder().
		AddNode("start", NodeTypeStart, nil).
		AddNode("inc", NodeTypeStep, func(ctx context.Context, s State) (State, error) {
			s["count"] = s["count"].(int) + 1
			return s, nil
		}).
		AddConditionNode("check", func(ctx context.Context, s State) (string, error) {
			if s["count"].(int) >= limit {
				return "done", nil
			}
			return "again", nil
		}, map[string]string{"done": "end", "again": "inc"}).
		AddNode("end", NodeTypeEnd, nil).
		AddEdge("start", "inc").
		AddEdge("inc", "check").
		SetMaxVisits(maxVisits).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func TestExecuteLoopsUntilCondition(t *testing.T) {
	g := counterGraph(t, 3, 10)

	state, err := g.Execute(context.Background(), State{"count": 0})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if state["count"] != 3 {
		t.Errorf("Expected count 3, got %v", state["count"])
	}
}

func TestExecuteVisitLimit(t *testing.T) {
	g := counterGraph(t, 100, 4)

	state, err := g.Execute(context.Background(), State{"count": 0})
	if !errors.Is(err, ErrLoopLimit) {
		t.Fatalf("Expected ErrLoopLimit, got %v", err)
	}
	if state["count"] != 4 {
		t.Errorf("Expected the state reached before the limit, got %v", state["count"])
	}
}

func TestExecuteStopsOnNodeError(t *testing.T) {
	boom := errors.New("boom")
	g, err := NewBuilder().
		AddNode("start", NodeTypeStart, nil).
		AddNode("fail", NodeTypeStep, func(context.Context, State) (State, error) { return nil, boom }).
		AddNode("end", NodeTypeEnd, nil).
		AddEdge("start", "fail").
		AddEdge("fail", "end").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := g.Execute(context.Background(), nil); !errors.Is(err, boom) {
		t.Errorf("Expected wrapped node error, got %v", err)
	}
}

func TestExecuteHonoursCancellation(t *testing.T) {
	g := counterGraph(t, 3, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Execute(ctx, State{"count": 0}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestExecuteUnmappedCondition(t *testing.T) {
	g, err := NewBuilder().
		AddNode("start", NodeTypeStart, nil).
		AddConditionNode("route", func(context.Context, State) (string, error) { return "nowhere", nil },
			map[string]string{"ok": "end"}).
		AddNode("end", NodeTypeEnd, nil).
		AddEdge("start", "route").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := g.Execute(context.Background(), nil); err == nil {
		t.Error("Expected error for unmapped condition result")
	}
}

func TestBuilderErrors(t *testing.T) {
	noop := func(ctx context.Context, s State) (State, error) { return s, nil }
	tests := []struct {
		name    string
		builder *Builder
	}{
		{"duplicate node", NewBuilder().AddNode("start", NodeTypeStart, nil).AddNode("start", NodeTypeStep, noop)},
		{"missing start", NewBuilder().AddNode("end", NodeTypeEnd, nil)},
		{"missing end", NewBuilder().AddNode("start", NodeTypeStart, nil)},
		{"unknown edge target", NewBuilder().AddNode("start", NodeTypeStart, nil).AddNode("end", NodeTypeEnd, nil).AddEdge("start", "ghost")},
		{"edge from unknown node", NewBuilder().AddEdge("ghost", "end")},
		{"step without function", NewBuilder().AddNode("s", NodeTypeStep, nil)},
		{"non-positive max visits", NewBuilder().SetMaxVisits(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.builder.Build(); err == nil {
				t.Error("Expected build error")
			}
		})
	}
}
