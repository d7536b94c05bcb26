// Package adjudication decides claims and attempts to rescue rejected ones
// from evidence already on the member's file.
package adjudication

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/ai-claims/claims"
	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/member"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
	"github.com/sweetpotato0/ai-claims/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/sweetpotato0/ai-claims/adjudication")

// Decision is the outcome of an adjudication.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// Reasons returned by the engine.
const (
	ReasonAlreadyProcessed = "already processed"
	ReasonReferralNotFound = "referral required but not found"
)

// Result is the decision for one claim together with the steps that led to it.
type Result struct {
	ClaimID        string            `json:"claim_id"`
	Decision       Decision          `json:"decision"`
	Reason         string            `json:"reason"`
	Category       RejectionCategory `json:"rejection_category,omitempty"`
	DocumentID     string            `json:"document_id,omitempty"`
	ReasoningTrace []string          `json:"reasoning_trace"`
}

// Trace is the ordered reasoning log of a single adjudication.
type Trace struct {
	steps []string
}

// Addf appends a formatted step.
func (t *Trace) Addf(format string, args ...any) {
	t.steps = append(t.steps, fmt.Sprintf(format, args...))
}

// Steps returns a copy of the recorded steps.
func (t *Trace) Steps() []string {
	return append([]string{}, t.steps...)
}

// ClaimBuilder resolves a claim aggregate; *claims.Aggregator satisfies it.
type ClaimBuilder interface {
	Build(ctx context.Context, claimID string) (*claims.Claim, error)
}

// DocumentFinder looks up a member's first document of a type;
// *member.Directory satisfies it.
type DocumentFinder interface {
	FindDocument(ctx context.Context, memberID, docType string) (*member.Document, error)
}

// Engine adjudicates claims. It never writes to any store and holds no
// per-call state, so one Engine may serve concurrent calls.
type Engine struct {
	claims    ClaimBuilder
	documents DocumentFinder
	validator Validator
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithValidator replaces the validation step for non-terminal claims.
func WithValidator(v Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine. Non-terminal claims go through ApproveAll unless
// WithValidator is given.
func New(builder ClaimBuilder, finder DocumentFinder, opts ...Option) *Engine {
	e := &Engine{
		claims:    builder,
		documents: finder,
		validator: ApproveAll,
		logger:    logging.WithComponent("adjudication"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Adjudicate decides a claim. The only error it returns wraps
// errors.ErrNotFound: any failure to load the claim is reported that way.
func (e *Engine) Adjudicate(ctx context.Context, claimID string) (result *Result, err error) {
	ctx, span := tracer.Start(ctx, "adjudication.Adjudicate")
	span.SetAttributes(attribute.String("claim.id", claimID))
	defer func() {
		if result != nil {
			span.SetAttributes(attribute.String("adjudication.decision", string(result.Decision)))
		}
		telemetry.End(span, err)
	}()

	claim, err := e.claims.Build(ctx, claimID)
	if err != nil {
		if !errorskg.IsNotFound(err) {
			e.logger.Warn("claim lookup failed, treating as not found", "claim_id", claimID, "error", err)
		}
		return nil, fmt.Errorf("adjudicate %s: %w", claimID, errorskg.ErrNotFound)
	}

	trace := &Trace{}
	trace.Addf("Analyzing claim %s for member %s (stored status %s)", claim.ClaimID, claim.MembershipNumber, claim.Status)

	var res *Result
	switch claim.Status {
	case claims.StatusApproved:
		trace.Addf("Claim is already approved, nothing to do")
		res = &Result{Decision: DecisionApproved, Reason: ReasonAlreadyProcessed}
	case claims.StatusRejected:
		res = e.rescue(ctx, claim, trace)
	default:
		trace.Addf("Claim is %s, running validation", claim.Status)
		v := e.validator.Validate(ctx, claim, trace)
		res = &Result{Decision: v.Decision, Reason: v.Reason}
	}

	res.ClaimID = claim.ClaimID
	res.ReasoningTrace = trace.Steps()
	e.logger.Debug("claim adjudicated",
		"claim_id", claimID,
		"decision", res.Decision,
		"reason", res.Reason,
		"trace", res.ReasoningTrace)
	return res, nil
}

func (e *Engine) rescue(ctx context.Context, claim *claims.Claim, trace *Trace) *Result {
	reason := claim.Reason()
	category := Classify(reason)
	trace.Addf("Claim was rejected: %q (category %s)", reason, category)

	if category != CategoryMissingReferral {
		trace.Addf("No automatic rescue for this rejection, keeping original decision")
		return &Result{Decision: DecisionRejected, Reason: reason, Category: category}
	}

	trace.Addf("Searching member history of %s for a %s", claim.MembershipNumber, member.TypeGPReferralLetter)
	doc, err := e.documents.FindDocument(ctx, claim.MembershipNumber, member.TypeGPReferralLetter)
	if err != nil || doc == nil {
		if err != nil && !errorskg.IsNotFound(err) {
			e.logger.Warn("document lookup failed, treating as not found",
				"claim_id", claim.ClaimID, "member_id", claim.MembershipNumber, "error", err)
		}
		trace.Addf("No %s on file for member %s", member.TypeGPReferralLetter, claim.MembershipNumber)
		return &Result{Decision: DecisionRejected, Reason: ReasonReferralNotFound, Category: category}
	}

	validUntil := "no expiry"
	if doc.ValidUntil != nil {
		validUntil = doc.ValidUntil.Format("2006-01-02")
	}
	trace.Addf("Found %s %s uploaded %s, valid until %s",
		doc.Type, doc.DocumentID, doc.UploadDate.Format("2006-01-02"), validUntil)
	if doc.Reason != "" {
		trace.Addf("Referral reason: %s", doc.Reason)
	}
	trace.Addf("Referral was on file but not linked to the claim, overriding rejection")

	return &Result{
		Decision:   DecisionApproved,
		Reason:     fmt.Sprintf("auto-approved: found referral %s", doc.DocumentID),
		Category:   category,
		DocumentID: doc.DocumentID,
	}
}
