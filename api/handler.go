// Package api is the HTTP surface of the claims assistant.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sweetpotato0/ai-claims/adjudication"
	"github.com/sweetpotato0/ai-claims/assistant"
	"github.com/sweetpotato0/ai-claims/claims"
	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/message"
	"github.com/sweetpotato0/ai-claims/middleware/errorhandler"
	"github.com/sweetpotato0/ai-claims/middleware/limiter"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
)

// ServiceName is reported by the health check.
const ServiceName = "claims-assistant"

const defaultListLimit = 10

// Assistant answers natural-language queries per thread;
// *assistant.Orchestrator satisfies it.
type Assistant interface {
	Query(ctx context.Context, query, threadID string) (*assistant.Answer, error)
	History(ctx context.Context, threadID string) ([]*message.Message, error)
	Reset(ctx context.Context, threadID string) error
}

// Handler serves the query endpoint and the read-only claim endpoints.
type Handler struct {
	assistant Assistant
	claims    *claims.Aggregator
	engine    *adjudication.Engine
	logger    *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates the HTTP handlers.
func NewHandler(a Assistant, aggregator *claims.Aggregator, engine *adjudication.Engine, opts ...Option) *Handler {
	h := &Handler{
		assistant: a,
		claims:    aggregator,
		engine:    engine,
		logger:    logging.WithComponent("api"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query    string `json:"query" binding:"required"`
	ThreadID string `json:"thread_id"`
}

// QueryResponse is the reply of POST /api/query.
type QueryResponse struct {
	Response string `json:"response"`
	ThreadID string `json:"thread_id"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// Query handles POST /api/query.
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	answer, err := h.assistant.Query(c.Request.Context(), req.Query, req.ThreadID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, QueryResponse{Response: answer.Response, ThreadID: answer.ThreadID})
}

// ThreadHistory handles GET /api/threads/:id.
func (h *Handler) ThreadHistory(c *gin.Context) {
	threadID := c.Param("id")
	history, err := h.assistant.History(c.Request.Context(), threadID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if history == nil {
		history = []*message.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": threadID, "messages": history})
}

// ResetThread handles DELETE /api/threads/:id.
func (h *Handler) ResetThread(c *gin.Context) {
	if err := h.assistant.Reset(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Claim handles GET /api/claims/:id.
func (h *Handler) Claim(c *gin.Context) {
	claim, err := h.claims.Build(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"claim":         claim,
		"total_claimed": claim.TotalClaimed(),
	})
}

// Adjudicate handles GET /api/claims/:id/adjudication.
func (h *Handler) Adjudicate(c *gin.Context) {
	result, err := h.engine.Adjudicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BatchRequest is the body of POST /api/adjudications.
type BatchRequest struct {
	ClaimIDs []string `json:"claim_ids" binding:"required,min=1,max=100"`
}

// BatchItem is one entry of the batch reply.
type BatchItem struct {
	ClaimID string               `json:"claim_id"`
	Result  *adjudication.Result `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// AdjudicateBatch handles POST /api/adjudications. Claims that cannot be
// decided are reported per item; the request itself still succeeds.
func (h *Handler) AdjudicateBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	results := h.engine.AdjudicateAll(c.Request.Context(), req.ClaimIDs, adjudication.DefaultBatchConcurrency)
	items := make([]BatchItem, len(results))
	for i, r := range results {
		items[i] = BatchItem{ClaimID: r.ClaimID, Result: r.Result}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

// MemberClaims handles GET /api/members/:id/claims.
func (h *Handler) MemberClaims(c *gin.Context) {
	items, err := h.claims.SummarizeByMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": items})
}

// ClaimsByStatus handles GET /api/claims?status=&limit=.
func (h *Handler) ClaimsByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status query parameter is required"})
		return
	}
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer"})
			return
		}
		limit = n
	}

	items, err := h.claims.SearchByStatus(c.Request.Context(), claims.ParseStatus(status), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": items})
}

// fail maps err to a status code and writes the error body.
func (h *Handler) fail(c *gin.Context, err error) {
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// StatusCode maps an error to the HTTP status reported for it.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, errorskg.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errorskg.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, limiter.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, errorhandler.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
