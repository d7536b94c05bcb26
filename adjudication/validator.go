package adjudication

import (
	"context"

	"github.com/sweetpotato0/ai-claims/claims"
)

// Verdict is what a Validator decides for a non-terminal claim.
type Verdict struct {
	Decision Decision
	Reason   string
}

// Validator decides claims that have not been adjudicated yet.
type Validator interface {
	Validate(ctx context.Context, claim *claims.Claim, trace *Trace) Verdict
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, claim *claims.Claim, trace *Trace) Verdict

func (f ValidatorFunc) Validate(ctx context.Context, claim *claims.Claim, trace *Trace) Verdict {
	return f(ctx, claim, trace)
}

// ReasonAllChecksPassed is the reason given by ApproveAll.
const ReasonAllChecksPassed = "all checks passed"

// ApproveAll approves every claim it is given. It is a placeholder that keeps
// the validation hook in place until real eligibility checks exist.
var ApproveAll Validator = ValidatorFunc(func(_ context.Context, claim *claims.Claim, trace *Trace) Verdict {
	trace.Addf("Validation: no eligibility checks configured, approving %s", claim.ClaimID)
	return Verdict{Decision: DecisionApproved, Reason: ReasonAllChecksPassed}
})
