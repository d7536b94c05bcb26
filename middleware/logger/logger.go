package logger

import (
	"log/slog"
	"time"

	"github.com/sweetpotato0/ai-claims/middleware"
)

// RequestLogger logs each agent run with its duration and outcome.
type RequestLogger struct {
	logger *slog.Logger
}

// NewRequestLogger creates a request logging middleware. A nil logger
// disables logging.
func NewRequestLogger(logger *slog.Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// Name returns the middleware name
func (m *RequestLogger) Name() string {
	return "RequestLogger"
}

// Execute logs the request and the response or error.
func (m *RequestLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if m.logger == nil {
		return next(ctx)
	}

	start := time.Now()
	m.logger.Info("agent request", "thread_id", ctx.ThreadID, "input_chars", len(ctx.Input))

	err := next(ctx)

	attrs := []any{"thread_id", ctx.ThreadID, "duration", time.Since(start)}
	if id, ok := ctx.Metadata["request_id"]; ok {
		attrs = append(attrs, "request_id", id)
	}
	if err != nil {
		m.logger.Error("agent request failed", append(attrs, "error", err)...)
		return err
	}
	if ctx.Response != nil {
		attrs = append(attrs, "output_chars", len(ctx.Response.Content))
	}
	m.logger.Info("agent response", attrs...)
	return nil
}
