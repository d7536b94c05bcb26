package adjudication

import "strings"

// RejectionCategory classifies a stored rejection reason.
type RejectionCategory int

const (
	// CategoryNone marks a result for a claim that was not rejected.
	CategoryNone RejectionCategory = iota
	// CategoryOther covers every reason that cannot be rescued automatically.
	CategoryOther
	// CategoryMissingReferral is a rejection for a missing referral letter.
	CategoryMissingReferral
)

func (c RejectionCategory) String() string {
	switch c {
	case CategoryMissingReferral:
		return "MissingReferral"
	case CategoryOther:
		return "Other"
	default:
		return "None"
	}
}

// MarshalText renders the category name in JSON output.
func (c RejectionCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

const referralKeyword = "referral"

// Classify maps a rejection reason to its category. Any reason mentioning
// "referral", in any case, is a missing referral.
func Classify(reason string) RejectionCategory {
	if strings.Contains(strings.ToLower(reason), referralKeyword) {
		return CategoryMissingReferral
	}
	return CategoryOther
}
