package policy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sweetpotato0/ai-claims/pkg/logging"
)

// Searcher is a ranked keyword index over policy rules.
type Searcher interface {
	// Search returns at most top rules matching query, best match first.
	Search(ctx context.Context, query string, top int) ([]Rule, error)
	// ByCategory returns every rule in a category ordered by rule id.
	ByCategory(ctx context.Context, category string) ([]Rule, error)
}

// DefaultTop is the number of rules returned by a keyword search when the
// caller does not ask for a specific count.
const DefaultTop = 3

// Explanation is the policy context found for a rejection reason.
type Explanation struct {
	RuleFound     bool     `json:"rule_found"`
	RuleID        string   `json:"rule_id,omitempty"`
	Category      string   `json:"category,omitempty"`
	Explanation   string   `json:"explanation"`
	CommonReasons []string `json:"common_reasons,omitempty"`
}

// ReferralRequirement answers whether a treatment needs a referral.
// RequiresReferral is "Yes", "No" or "Unknown".
type ReferralRequirement struct {
	Treatment        string `json:"treatment"`
	RequiresReferral string `json:"requires_referral"`
	Coverage         string `json:"coverage,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// Service answers policy questions over a Searcher.
type Service struct {
	index  Searcher
	logger *slog.Logger
}

// NewService creates a policy service.
func NewService(index Searcher) *Service {
	return &Service{index: index, logger: logging.WithComponent("policy")}
}

// SearchByKeyword returns the top matching rules; top <= 0 means DefaultTop.
func (s *Service) SearchByKeyword(ctx context.Context, query string, top int) ([]Rule, error) {
	if top <= 0 {
		top = DefaultTop
	}
	rules, err := s.index.Search(ctx, query, top)
	if err != nil {
		return nil, fmt.Errorf("search policy rules: %w", err)
	}
	return rules, nil
}

// SearchByCategory returns the rules of a category such as "MRI_SCANS".
func (s *Service) SearchByCategory(ctx context.Context, category string) ([]Rule, error) {
	rules, err := s.index.ByCategory(ctx, strings.ToUpper(strings.TrimSpace(category)))
	if err != nil {
		return nil, fmt.Errorf("list policy rules for %s: %w", category, err)
	}
	return rules, nil
}

// RejectionReasons lists the common rejection reasons of every rule in a category.
func (s *Service) RejectionReasons(ctx context.Context, category string) ([]string, error) {
	rules, err := s.SearchByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	reasons := make([]string, 0)
	for _, r := range rules {
		reasons = append(reasons, r.RejectionReasons...)
	}
	return reasons, nil
}

// ExplainRejection finds the single best rule for a rejection reason.
func (s *Service) ExplainRejection(ctx context.Context, reason string) (*Explanation, error) {
	rules, err := s.SearchByKeyword(ctx, reason, 1)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		s.logger.Debug("no policy rule matches rejection", "reason", reason)
		return &Explanation{RuleFound: false, Explanation: "No matching policy rule found"}, nil
	}
	r := rules[0]
	return &Explanation{
		RuleFound:     true,
		RuleID:        r.RuleID,
		Category:      r.Category,
		Explanation:   r.Description,
		CommonReasons: r.RejectionReasons,
	}, nil
}

// CheckReferralRequirement looks up the best rule for a treatment type.
func (s *Service) CheckReferralRequirement(ctx context.Context, treatment string) (*ReferralRequirement, error) {
	rules, err := s.SearchByKeyword(ctx, treatment, 1)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return &ReferralRequirement{
			Treatment:        treatment,
			RequiresReferral: "Unknown",
			Notes:            "Treatment type not found in policy",
		}, nil
	}
	r := rules[0]
	answer := "No"
	if r.RequiresReferral {
		answer = "Yes"
	}
	return &ReferralRequirement{
		Treatment:        r.Title,
		RequiresReferral: answer,
		Coverage:         fmt.Sprintf("%d%%", r.CoveragePercentage),
		Notes:            r.Description,
	}, nil
}
