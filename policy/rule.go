// Package policy searches insurance policy rules so that rejections can be
// explained and referral requirements checked.
package policy

import (
	"strings"
	"unicode"
)

// Rule is one policy rule record.
type Rule struct {
	RuleID             string   `json:"rule_id"`
	Category           string   `json:"category"`
	Plan               string   `json:"plan"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	CoveragePercentage int      `json:"coverage_percentage"`
	RequiresReferral   bool     `json:"requires_referral"`
	RejectionReasons   []string `json:"rejection_reasons"`
	Notes              string   `json:"notes,omitempty"`
}

// ReasonSeparator joins rejection reasons when a rule is stored flat.
const ReasonSeparator = "; "

// JoinReasons flattens rejection reasons for storage.
func JoinReasons(reasons []string) string {
	return strings.Join(reasons, ReasonSeparator)
}

// SplitReasons is the inverse of JoinReasons.
func SplitReasons(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ReasonSeparator)
	reasons := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			reasons = append(reasons, p)
		}
	}
	return reasons
}

// Field weights used to rank keyword hits.
const (
	WeightTitle       = 3
	WeightDescription = 2
	WeightReasons     = 2
	WeightCategory    = 1
	WeightNotes       = 1
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {},
	"on": {}, "or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {}, "this": {},
	"that": {}, "why": {}, "what": {}, "does": {}, "do": {}, "i": {},
}

// Terms splits a free-text query into lower-cased search terms, dropping
// stop words and duplicates. Order of first occurrence is kept.
func Terms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// Score ranks a rule against search terms. Each term adds the weight of every
// field it occurs in; zero means no match.
func Score(r *Rule, terms []string) int {
	title := strings.ToLower(r.Title)
	desc := strings.ToLower(r.Description)
	reasons := strings.ToLower(JoinReasons(r.RejectionReasons))
	category := strings.ToLower(r.Category)
	notes := strings.ToLower(r.Notes)

	score := 0
	for _, t := range terms {
		if strings.Contains(title, t) {
			score += WeightTitle
		}
		if strings.Contains(desc, t) {
			score += WeightDescription
		}
		if strings.Contains(reasons, t) {
			score += WeightReasons
		}
		if strings.Contains(category, t) {
			score += WeightCategory
		}
		if strings.Contains(notes, t) {
			score += WeightNotes
		}
	}
	return score
}
