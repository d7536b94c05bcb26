package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/middleware"
)

func TestRequestLogger(t *testing.T) {
	t.Run("logs request and response", func(t *testing.T) {
		var buf bytes.Buffer
		mw := NewRequestLogger(slog.New(slog.NewTextHandler(&buf, nil)))

		ctx := middleware.NewContext(context.Background())
		ctx.Input = "Tell me about claim CLM-2026-001"
		ctx.ThreadID = "thread-1"
		err := mw.Execute(ctx, func(c *middleware.Context) error {
			c.Response = message.NewMessage(message.RoleAssistant, "Claim approved")
			return nil
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "agent request") || !strings.Contains(out, "agent response") {
			t.Errorf("expected request and response entries, got: %s", out)
		}
		if !strings.Contains(out, "thread_id=thread-1") {
			t.Errorf("expected thread id in log, got: %s", out)
		}
	})

	t.Run("logs errors and returns them", func(t *testing.T) {
		var buf bytes.Buffer
		mw := NewRequestLogger(slog.New(slog.NewTextHandler(&buf, nil)))
		boom := errors.New("llm unavailable")

		err := mw.Execute(middleware.NewContext(context.Background()), func(c *middleware.Context) error { return boom })
		if !errors.Is(err, boom) {
			t.Errorf("expected error to pass through, got %v", err)
		}
		if !strings.Contains(buf.String(), "agent request failed") {
			t.Errorf("expected failure entry, got: %s", buf.String())
		}
	})

	t.Run("nil logger is a pass-through", func(t *testing.T) {
		called := false
		err := NewRequestLogger(nil).Execute(middleware.NewContext(context.Background()), func(c *middleware.Context) error {
			called = true
			return nil
		})
		if err != nil || !called {
			t.Errorf("expected pass-through, got called=%v err=%v", called, err)
		}
	})
}
