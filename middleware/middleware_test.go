package middleware

import (
	"context"
	"errors"
	"testing"
)

type recordingMiddleware struct {
	name  string
	err   error
	order *[]string
}

func (m *recordingMiddleware) Name() string { return m.name }

func (m *recordingMiddleware) Execute(ctx *Context, next Handler) error {
	*m.order = append(*m.order, m.name)
	if m.err != nil {
		return m.err
	}
	return next(ctx)
}

func TestMiddlewareChain(t *testing.T) {
	t.Run("empty chain executes final handler", func(t *testing.T) {
		executed := false
		err := NewChain().Execute(NewContext(context.Background()), func(ctx *Context) error {
			executed = true
			return nil
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !executed {
			t.Error("final handler was not executed")
		}
	})

	t.Run("middleware chain executes in order", func(t *testing.T) {
		var order []string
		chain := NewChain(
			&recordingMiddleware{name: "m1", order: &order},
			nil,
			&recordingMiddleware{name: "m2", order: &order},
		)

		_ = chain.Execute(NewContext(context.Background()), func(c *Context) error {
			order = append(order, "final")
			return nil
		})

		expected := []string{"m1", "m2", "final"}
		if len(order) != len(expected) {
			t.Fatalf("expected %v, got %v", expected, order)
		}
		for i, e := range expected {
			if order[i] != e {
				t.Errorf("expected step %d to be %s, got %s", i, e, order[i])
			}
		}
		if len(chain.List()) != 2 {
			t.Errorf("nil middleware must be skipped, got %d entries", len(chain.List()))
		}
	})

	t.Run("error stops chain execution", func(t *testing.T) {
		var order []string
		boom := errors.New("test error")
		chain := NewChain(
			&recordingMiddleware{name: "m1", err: boom, order: &order},
			&recordingMiddleware{name: "m2", order: &order},
		)

		finalCalled := false
		err := chain.Execute(NewContext(context.Background()), func(c *Context) error {
			finalCalled = true
			return nil
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected error from middleware, got %v", err)
		}
		if finalCalled {
			t.Error("final handler should not be called after middleware error")
		}
	})
}

func TestContextDefaults(t *testing.T) {
	var ctx Context
	if ctx.Context() == nil {
		t.Error("zero Context must fall back to context.Background")
	}
}
