package errorhandler

import (
	"context"
	"errors"
	"fmt"

	"github.com/sweetpotato0/ai-claims/middleware"
)

// ErrorHandlerFunc handles errors
type ErrorHandlerFunc func(error) error

// ErrorHandler handles errors in the middleware chain
type ErrorHandler struct {
	handler ErrorHandlerFunc
}

// NewErrorHandler creates an error handling middleware
func NewErrorHandler(handler ErrorHandlerFunc) *ErrorHandler {
	return &ErrorHandler{handler: handler}
}

// Name returns the middleware name
func (m *ErrorHandler) Name() string {
	return "ErrorHandler"
}

// Execute handles errors from downstream middlewares and records the final
// error on the context.
func (m *ErrorHandler) Execute(ctx *middleware.Context, next middleware.Handler) error {
	err := next(ctx)
	if err != nil && m.handler != nil {
		err = m.handler(err)
	}
	ctx.Error = err
	return err
}

// ErrTimeout is returned by Timeouts when a run exceeds its deadline.
var ErrTimeout = errors.New("the assistant took too long to answer")

// Timeouts maps context deadline errors to ErrTimeout, keeping the cause.
func Timeouts(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
