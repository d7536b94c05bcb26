package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/sweetpotato0/ai-claims/adjudication"
	"github.com/sweetpotato0/ai-claims/claims"
	"github.com/sweetpotato0/ai-claims/member"
	"github.com/sweetpotato0/ai-claims/policy"
)

// Limits applied by the renderers.
const (
	maxProfileDocuments    = 5
	maxProfileInteractions = 3
	maxNotePreview         = 80
)

func day(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(time.DateOnly)
}

func dayPtr(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return day(*t)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func euro(v float64) string {
	return fmt.Sprintf("€%.2f", v)
}

// RenderClaim formats a claim with its receipts and derived total.
func RenderClaim(c *claims.Claim) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim ID: %s\n", c.ClaimID)
	fmt.Fprintf(&b, "Member: %s (%s)\n", c.FullName(), c.MembershipNumber)
	fmt.Fprintf(&b, "Status: %s\n", c.Status)
	fmt.Fprintf(&b, "Submission Date: %s\n", day(c.SubmissionDate))
	fmt.Fprintf(&b, "Total Claimed: %s\n", euro(c.TotalClaimed()))
	assessed := 0.0
	if c.AssessedAmount != nil {
		assessed = *c.AssessedAmount
	}
	fmt.Fprintf(&b, "Assessed Amount: %s\n", euro(assessed))
	fmt.Fprintf(&b, "Rejection Reason: %s\n", orNA(c.Reason()))

	fmt.Fprintf(&b, "\nReceipts (%d):\n", len(c.ReceiptItems))
	for _, r := range c.ReceiptItems {
		fmt.Fprintf(&b, "  - %s: %s on %s\n", r.TreatmentType, euro(r.Cost), day(r.ReceiptDate))
	}

	fmt.Fprintf(&b, "\nDependants: %d\n", len(c.Dependants))
	fmt.Fprintf(&b, "Has Accident Info: %t", c.AccidentDetails != nil)
	return b.String()
}

// RenderProfile formats a member profile with the most recent documents and
// interactions.
func RenderProfile(p *member.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Member ID: %s\n", p.ID)
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	if p.Tier != "" {
		fmt.Fprintf(&b, "Plan: %s (%s tier)\n", p.Plan, p.Tier)
	} else {
		fmt.Fprintf(&b, "Plan: %s\n", p.Plan)
	}
	fmt.Fprintf(&b, "Email: %s\n", orNA(p.Email))
	fmt.Fprintf(&b, "Phone: %s\n", orNA(p.Phone))

	fmt.Fprintf(&b, "\nUploaded Documents (%d):\n", len(p.UploadedDocuments))
	if len(p.UploadedDocuments) == 0 {
		b.WriteString("  None\n")
	}
	for i, d := range p.UploadedDocuments {
		if i == maxProfileDocuments {
			break
		}
		fmt.Fprintf(&b, "  - %s (uploaded %s, valid until %s)\n", d.Type, day(d.UploadDate), dayPtr(d.ValidUntil))
	}

	fmt.Fprintf(&b, "\nRecent Interactions (%d):\n", len(p.InteractionNotes))
	if len(p.InteractionNotes) == 0 {
		b.WriteString("  None\n")
	}
	for i, n := range p.InteractionNotes {
		if i == maxProfileInteractions {
			break
		}
		fmt.Fprintf(&b, "  - %s (%s): %s\n", day(n.Date), n.Type, preview(n.Note))
	}

	if pd := p.PolicyDetails; pd != nil {
		b.WriteString("\nPolicy Details:\n")
		fmt.Fprintf(&b, "  - Annual Limit: %s\n", euro(pd.AnnualLimit))
		fmt.Fprintf(&b, "  - Used to Date: %s\n", euro(pd.UsedToDate))
		fmt.Fprintf(&b, "  - Remaining: %s\n", euro(pd.Remaining()))
		fmt.Fprintf(&b, "  - Loyalty Bonus: %t\n", pd.LoyaltyBonusActive)
	}
	return strings.TrimRight(b.String(), "\n")
}

func preview(note string) string {
	r := []rune(note)
	if len(r) <= maxNotePreview {
		return note
	}
	return string(r[:maxNotePreview]) + "..."
}

// RenderDocument formats a found document.
func RenderDocument(d *member.Document) string {
	var b strings.Builder
	b.WriteString("Document Found\n\n")
	fmt.Fprintf(&b, "Type: %s\n", d.Type)
	fmt.Fprintf(&b, "Document ID: %s\n", d.DocumentID)
	fmt.Fprintf(&b, "Upload Date: %s\n", day(d.UploadDate))
	fmt.Fprintf(&b, "Valid Until: %s\n", dayPtr(d.ValidUntil))
	fmt.Fprintf(&b, "Provider: %s\n", orNA(d.Provider))
	fmt.Fprintf(&b, "Reason/Purpose: %s", orNA(d.Reason))
	return b.String()
}

// RenderRules formats policy rules, separated by a rule line.
func RenderRules(rules []policy.Rule) string {
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		var b strings.Builder
		fmt.Fprintf(&b, "%s (%s)\n", r.Title, r.RuleID)
		fmt.Fprintf(&b, "Category: %s\n", r.Category)
		fmt.Fprintf(&b, "Coverage: %d%%\n", r.CoveragePercentage)
		fmt.Fprintf(&b, "Requires Referral: %t\n", r.RequiresReferral)
		fmt.Fprintf(&b, "\nDescription:\n%s\n", r.Description)
		reasons := "None listed"
		if len(r.RejectionReasons) > 0 {
			reasons = policy.JoinReasons(r.RejectionReasons)
		}
		fmt.Fprintf(&b, "\nCommon Rejection Reasons:\n%s", reasons)
		if r.Notes != "" {
			fmt.Fprintf(&b, "\n\nNotes: %s", r.Notes)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n"+strings.Repeat("=", 60)+"\n\n")
}

// RenderAdjudication formats a decision with its reasoning trace.
func RenderAdjudication(r *adjudication.Result) string {
	var b strings.Builder
	b.WriteString("ADJUDICATION COMPLETE\n\n")
	fmt.Fprintf(&b, "Claim ID: %s\n", r.ClaimID)
	fmt.Fprintf(&b, "Final Decision: %s\n", r.Decision)
	fmt.Fprintf(&b, "Reason: %s\n", r.Reason)
	if r.Category != adjudication.CategoryNone {
		fmt.Fprintf(&b, "Rejection Category: %s\n", r.Category)
	}
	b.WriteString("\nReasoning Trace:")
	for _, step := range r.ReasoningTrace {
		fmt.Fprintf(&b, "\n  %s", step)
	}
	return b.String()
}

// RenderNotes formats matching interaction notes in full.
func RenderNotes(memberID, keyword string, notes []member.InteractionNote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interaction notes for %s matching %q (%d):", memberID, keyword, len(notes))
	for _, n := range notes {
		fmt.Fprintf(&b, "\n  - %s (%s, %s): %s", day(n.Date), n.Type, orNA(n.Agent), n.Note)
	}
	return b.String()
}

// RenderSummaries formats a claim list under a heading.
func RenderSummaries(heading string, items []claims.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):", heading, len(items))
	for _, s := range items {
		fmt.Fprintf(&b, "\n  - %s | %s | %s | %s | total %s", s.ClaimID, day(s.SubmissionDate), s.MembershipNumber, s.Status, euro(s.TotalClaimed))
		if s.RejectionReason != nil {
			fmt.Fprintf(&b, " | reason: %s", *s.RejectionReason)
		}
	}
	return b.String()
}
