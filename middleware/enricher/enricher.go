package enricher

import (
	"github.com/google/uuid"
	"github.com/sweetpotato0/ai-claims/middleware"
)

// EnricherFunc enriches the context
type EnricherFunc func(*middleware.Context) error

// ContextEnricher adds additional data to the middleware context
type ContextEnricher struct {
	enricher EnricherFunc
}

// NewContextEnricher creates a context enriching middleware
func NewContextEnricher(enricher EnricherFunc) *ContextEnricher {
	return &ContextEnricher{enricher: enricher}
}

// Name returns the middleware name
func (m *ContextEnricher) Name() string {
	return "ContextEnricher"
}

// Execute enriches the context
func (m *ContextEnricher) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if m.enricher != nil {
		if err := m.enricher(ctx); err != nil {
			return err
		}
	}
	return next(ctx)
}

// RequestID stamps a fresh request_id into the metadata unless one is set.
func RequestID(ctx *middleware.Context) error {
	if ctx.Metadata == nil {
		ctx.Metadata = make(map[string]any)
	}
	if _, ok := ctx.Metadata["request_id"]; !ok {
		ctx.Metadata["request_id"] = uuid.NewString()
	}
	return nil
}
