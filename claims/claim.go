// Package claims models health-insurance claims and rebuilds full claim
// aggregates from the flat record sets kept by a claim store.
package claims

import (
	"strings"
	"time"
)

// Status is the adjudication state stored on a claim.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseStatus normalises a status name. Unknown names are returned upper-cased
// so callers can still query stores that use other non-terminal states.
func ParseStatus(s string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(s)))
}

// Terminal reports whether the status is APPROVED or REJECTED.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Header is the claim master record: the claimant snapshot taken at
// submission time plus the mutable adjudication fields.
type Header struct {
	ClaimID               string    `json:"claim_id"`
	MembershipNumber      string    `json:"membership_number"`
	Title                 string    `json:"title,omitempty"`
	Surname               string    `json:"surname"`
	Forenames             string    `json:"forenames"`
	DateOfBirth           time.Time `json:"date_of_birth"`
	Telephone             string    `json:"telephone,omitempty"`
	CorrespondenceAddress string    `json:"correspondence_address,omitempty"`
	SubmissionDate        time.Time `json:"submission_date"`
	Status                Status    `json:"status"`
	AssessedAmount        *float64  `json:"assessed_amount,omitempty"`
	RejectionReason       *string   `json:"rejection_reason,omitempty"`
}

// ReceiptItem is one treatment line on a claim.
type ReceiptItem struct {
	ID            int64     `json:"id,omitempty"`
	ClaimID       string    `json:"claim_id"`
	TreatmentType string    `json:"treatment_type"`
	ReceiptDate   time.Time `json:"receipt_date"`
	Cost          float64   `json:"cost"`
}

// Dependant is a person covered by the claim other than the member.
type Dependant struct {
	ID           int64  `json:"id,omitempty"`
	ClaimID      string `json:"claim_id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

// AccidentDetails is present only on claims that arise from an accident or injury.
type AccidentDetails struct {
	ID                       int64      `json:"id,omitempty"`
	ClaimID                  string     `json:"claim_id"`
	Description              string     `json:"description"`
	AccidentDate             *time.Time `json:"accident_date,omitempty"`
	ExpensesRecoverable      bool       `json:"expenses_recoverable"`
	ClaimingThroughSolicitor bool       `json:"claiming_through_solicitor"`
	ClaimingThroughPIAB      bool       `json:"claiming_through_piab"`
	ThirdPartyPolicyDetails  string     `json:"third_party_policy_details,omitempty"`
	MemberSigned             bool       `json:"member_signed"`
	SubscriberSigned         bool       `json:"subscriber_signed"`
}

// PaymentDetails carries the refund instructions for a claim.
type PaymentDetails struct {
	ID                     int64      `json:"id,omitempty"`
	ClaimID                string     `json:"claim_id"`
	UseExistingDirectDebit bool       `json:"use_existing_direct_debit"`
	AccountHolderName      string     `json:"account_holder_name,omitempty"`
	AccountNumber          string     `json:"account_number,omitempty"`
	BankSortCode           string     `json:"bank_sort_code,omitempty"`
	BankNameAndAddress     string     `json:"bank_name_and_address,omitempty"`
	SignatureDate          *time.Time `json:"signature_date,omitempty"`
	IsSigned               bool       `json:"is_signed"`
}

// Claim is the fully populated aggregate. Receipts, dependants, accident and
// payment details are owned by the claim.
type Claim struct {
	Header
	ReceiptItems    []ReceiptItem    `json:"receipt_items"`
	Dependants      []Dependant      `json:"dependants"`
	AccidentDetails *AccidentDetails `json:"accident_details,omitempty"`
	PaymentDetails  *PaymentDetails  `json:"payment_details,omitempty"`
}

// TotalClaimed is the sum of the receipt costs. It is never stored.
func (c *Claim) TotalClaimed() float64 {
	if c == nil {
		return 0
	}
	return TotalCost(c.ReceiptItems)
}

// Reason returns the rejection reason or "" when none is recorded.
func (h *Header) Reason() string {
	if h == nil || h.RejectionReason == nil {
		return ""
	}
	return *h.RejectionReason
}

// FullName joins forenames and surname.
func (h *Header) FullName() string {
	return strings.TrimSpace(h.Forenames + " " + h.Surname)
}

// TotalCost sums the cost of the given receipt items.
func TotalCost(items []ReceiptItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Cost
	}
	return total
}

// Summary is the list view of a claim used for per-member and per-status queries.
type Summary struct {
	ClaimID          string    `json:"claim_id"`
	MembershipNumber string    `json:"membership_number"`
	Surname          string    `json:"surname"`
	SubmissionDate   time.Time `json:"submission_date"`
	Status           Status    `json:"status"`
	TotalClaimed     float64   `json:"total_claimed"`
	AssessedAmount   *float64  `json:"assessed_amount,omitempty"`
	RejectionReason  *string   `json:"rejection_reason,omitempty"`
}

func summaryOf(h Header, total float64) Summary {
	return Summary{
		ClaimID:          h.ClaimID,
		MembershipNumber: h.MembershipNumber,
		Surname:          h.Surname,
		SubmissionDate:   h.SubmissionDate,
		Status:           h.Status,
		TotalClaimed:     total,
		AssessedAmount:   h.AssessedAmount,
		RejectionReason:  h.RejectionReason,
	}
}
