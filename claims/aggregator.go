package claims

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/sweetpotato0/ai-claims/claims")

// Aggregator rebuilds claim aggregates and summaries from a RecordSource.
// It never writes and keeps no state between calls.
type Aggregator struct {
	source RecordSource
	logger *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger used by the aggregator.
func WithLogger(l *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAggregator creates an aggregator over the given record source.
func NewAggregator(source RecordSource, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		source: source,
		logger: logging.WithComponent("claims.aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build fetches the header and every owned record set of a claim and merges
// them into one Claim. A missing header yields an error wrapping ErrNotFound.
func (a *Aggregator) Build(ctx context.Context, claimID string) (claim *Claim, err error) {
	ctx, span := tracer.Start(ctx, "claims.Build")
	span.SetAttributes(attribute.String("claim.id", claimID))
	defer func() { telemetry.End(span, err) }()

	header, err := a.source.FetchHeader(ctx, claimID)
	if err != nil {
		if errorskg.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch claim header %s: %w", claimID, err)
	}
	if header == nil {
		return nil, errorskg.NotFound("claim", claimID)
	}

	claim = &Claim{Header: *header}

	if claim.ReceiptItems, err = a.source.FetchReceipts(ctx, claimID); err != nil {
		return nil, fmt.Errorf("fetch receipts for %s: %w", claimID, err)
	}
	if claim.Dependants, err = a.source.FetchDependants(ctx, claimID); err != nil {
		return nil, fmt.Errorf("fetch dependants for %s: %w", claimID, err)
	}
	if claim.AccidentDetails, err = a.source.FetchAccident(ctx, claimID); err != nil {
		return nil, fmt.Errorf("fetch accident details for %s: %w", claimID, err)
	}
	if claim.PaymentDetails, err = a.source.FetchPayment(ctx, claimID); err != nil {
		return nil, fmt.Errorf("fetch payment details for %s: %w", claimID, err)
	}

	if claim.ReceiptItems == nil {
		claim.ReceiptItems = []ReceiptItem{}
	}
	if claim.Dependants == nil {
		claim.Dependants = []Dependant{}
	}

	a.logger.Debug("claim built",
		"claim_id", claimID,
		"receipts", len(claim.ReceiptItems),
		"dependants", len(claim.Dependants),
		"has_accident", claim.AccidentDetails != nil,
		"has_payment", claim.PaymentDetails != nil)
	return claim, nil
}

// SummarizeByMember lists every claim of a member, most recently submitted first.
func (a *Aggregator) SummarizeByMember(ctx context.Context, membershipNumber string) ([]Summary, error) {
	headers, err := a.source.HeadersByMember(ctx, membershipNumber)
	if err != nil {
		return nil, fmt.Errorf("list claims for member %s: %w", membershipNumber, err)
	}
	return a.summarize(ctx, headers, 0)
}

// SearchByStatus lists at most limit claims with the given status, most
// recently submitted first. A limit of 0 yields an empty list.
func (a *Aggregator) SearchByStatus(ctx context.Context, status Status, limit int) ([]Summary, error) {
	if limit < 0 {
		return nil, errorskg.Invalid("limit must not be negative, got %d", limit)
	}
	if limit == 0 {
		return []Summary{}, nil
	}
	headers, err := a.source.HeadersByStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list claims with status %s: %w", status, err)
	}
	return a.summarize(ctx, headers, limit)
}

func (a *Aggregator) summarize(ctx context.Context, headers []Header, limit int) ([]Summary, error) {
	if len(headers) == 0 {
		return []Summary{}, nil
	}

	sorted := make([]Header, len(headers))
	copy(sorted, headers)
	// Stable so that equal submission dates keep the source order.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmissionDate.After(sorted[j].SubmissionDate)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	ids := make([]string, len(sorted))
	for i, h := range sorted {
		ids[i] = h.ClaimID
	}
	totals, err := a.source.ReceiptTotals(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("sum receipts: %w", err)
	}

	summaries := make([]Summary, len(sorted))
	for i, h := range sorted {
		summaries[i] = summaryOf(h, totals[h.ClaimID])
	}
	return summaries, nil
}
