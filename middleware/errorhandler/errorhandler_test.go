package errorhandler

import (
	"context"
	"errors"
	"testing"

	"github.com/sweetpotato0/ai-claims/middleware"
)

func TestErrorHandler(t *testing.T) {
	t.Run("maps deadline errors", func(t *testing.T) {
		mw := NewErrorHandler(Timeouts)
		ctx := middleware.NewContext(context.Background())

		err := mw.Execute(ctx, func(*middleware.Context) error {
			return context.DeadlineExceeded
		})
		if !errors.Is(err, ErrTimeout) || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected timeout wrapping the deadline, got %v", err)
		}
		if ctx.Error != err {
			t.Errorf("expected context error to be recorded, got %v", ctx.Error)
		}
	})

	t.Run("passes other errors through", func(t *testing.T) {
		boom := errors.New("boom")
		err := NewErrorHandler(Timeouts).Execute(middleware.NewContext(context.Background()), func(*middleware.Context) error {
			return boom
		})
		if err != boom {
			t.Errorf("expected original error, got %v", err)
		}
	})

	t.Run("success leaves error unset", func(t *testing.T) {
		ctx := middleware.NewContext(context.Background())
		if err := NewErrorHandler(Timeouts).Execute(ctx, func(*middleware.Context) error { return nil }); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if ctx.Error != nil {
			t.Errorf("expected no recorded error, got %v", ctx.Error)
		}
	})
}
