// Package member holds the CRM view of a member: profile, interaction log and
// uploaded supporting documents.
package member

import (
	"strings"
	"time"
)

// TypeGPReferralLetter is the document type a GP uploads to refer a member to a consultant.
const TypeGPReferralLetter = "GP Referral Letter"

// InteractionNote is one entry in a member's contact history.
type InteractionNote struct {
	Date  time.Time `json:"date"`
	Type  string    `json:"type"`
	Agent string    `json:"agent"`
	Note  string    `json:"note"`
}

// Document is a supporting document uploaded by or for the member.
type Document struct {
	DocumentID string     `json:"document_id"`
	Type       string     `json:"type"`
	UploadDate time.Time  `json:"upload_date"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	Provider   string     `json:"provider,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// ValidOn reports whether the document is still valid on the given day.
// Documents without an expiry never lapse.
func (d *Document) ValidOn(day time.Time) bool {
	if d.ValidUntil == nil {
		return true
	}
	return !day.After(*d.ValidUntil)
}

// PolicyDetails summarises the member's current policy year.
type PolicyDetails struct {
	PlanName           string    `json:"plan_name"`
	StartDate          time.Time `json:"start_date"`
	RenewalDate        time.Time `json:"renewal_date"`
	AnnualLimit        float64   `json:"annual_limit"`
	UsedToDate         float64   `json:"used_to_date"`
	LoyaltyBonusActive bool      `json:"loyalty_bonus_active"`
}

// Remaining is the unused part of the annual limit.
func (p *PolicyDetails) Remaining() float64 {
	return p.AnnualLimit - p.UsedToDate
}

// Profile is a member record. Notes and documents keep upload order.
type Profile struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Plan              string            `json:"plan"`
	Tier              string            `json:"tier,omitempty"`
	Email             string            `json:"email,omitempty"`
	Phone             string            `json:"phone,omitempty"`
	Address           string            `json:"address,omitempty"`
	DateOfBirth       *time.Time        `json:"date_of_birth,omitempty"`
	InteractionNotes  []InteractionNote `json:"interaction_notes"`
	UploadedDocuments []Document        `json:"uploaded_documents"`
	PolicyDetails     *PolicyDetails    `json:"policy_details,omitempty"`
}

// FindDocument returns the first uploaded document whose type equals docType,
// ignoring case.
func (p *Profile) FindDocument(docType string) (*Document, bool) {
	want := strings.TrimSpace(docType)
	for i := range p.UploadedDocuments {
		if strings.EqualFold(p.UploadedDocuments[i].Type, want) {
			doc := p.UploadedDocuments[i]
			return &doc, true
		}
	}
	return nil, false
}

// SearchNotes returns the notes whose text contains keyword, ignoring case.
// An empty keyword matches every note.
func (p *Profile) SearchNotes(keyword string) []InteractionNote {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	matches := make([]InteractionNote, 0)
	for _, n := range p.InteractionNotes {
		if needle == "" || strings.Contains(strings.ToLower(n.Note), needle) {
			matches = append(matches, n)
		}
	}
	return matches
}
