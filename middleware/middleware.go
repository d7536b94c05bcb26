// Package middleware wraps an agent run in a chain of interceptors.
package middleware

import (
	"context"

	"github.com/sweetpotato0/ai-claims/message"
)

// Context represents the middleware execution context
type Context struct {
	// Original user input
	Input string

	// ThreadID identifies the conversation the run belongs to
	ThreadID string

	// Messages sent to the model on the last turn
	Messages []*message.Message

	// Response is the final model message
	Response *message.Message

	// Error from execution
	Error error

	// Metadata for passing data between middlewares
	Metadata map[string]any

	// Internal state
	context context.Context
}

// NewContext creates a new middleware context
func NewContext(ctx context.Context) *Context {
	return &Context{
		Metadata: make(map[string]any),
		context:  ctx,
	}
}

// Context returns the underlying context.Context
func (c *Context) Context() context.Context {
	if c.context == nil {
		return context.Background()
	}
	return c.context
}

// WithContext replaces the underlying context.Context.
func (c *Context) WithContext(ctx context.Context) {
	c.context = ctx
}

// Middleware defines the interface for middleware components
// Middlewares can intercept and modify requests/responses in an agent execution pipeline
type Middleware interface {
	// Name returns the name of the middleware for logging and debugging
	Name() string

	// Execute runs the middleware logic
	// It receives the current context and a next handler to continue the chain
	// Returning error will stop the middleware chain
	Execute(ctx *Context, next Handler) error
}

// Handler is the function called to pass control to the next middleware
type Handler func(*Context) error

// MiddlewareChain represents a sequence of middleware to be executed
type MiddlewareChain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *MiddlewareChain {
	chain := &MiddlewareChain{}
	for _, m := range middlewares {
		chain.Add(m)
	}
	return chain
}

// Add appends a middleware to the chain. Nil middlewares are ignored.
func (c *MiddlewareChain) Add(m Middleware) *MiddlewareChain {
	if m != nil {
		c.middlewares = append(c.middlewares, m)
	}
	return c
}

// List returns the middlewares in execution order.
func (c *MiddlewareChain) List() []Middleware {
	return append([]Middleware(nil), c.middlewares...)
}

// Execute runs all middlewares in the chain
func (c *MiddlewareChain) Execute(ctx *Context, finalHandler Handler) error {
	return c.executeMiddleware(ctx, 0, finalHandler)
}

// executeMiddleware recursively executes middlewares in sequence
func (c *MiddlewareChain) executeMiddleware(ctx *Context, index int, finalHandler Handler) error {
	if index >= len(c.middlewares) {
		return finalHandler(ctx)
	}

	nextHandler := func(ctx *Context) error {
		return c.executeMiddleware(ctx, index+1, finalHandler)
	}
	return c.middlewares[index].Execute(ctx, nextHandler)
}
