// Package assistant exposes the claims core to a language model as a tool
// set and runs the conversational agent over it.
package assistant

import (
	"context"
	"fmt"

	"github.com/sweetpotato0/ai-claims/adjudication"
	"github.com/sweetpotato0/ai-claims/claims"
	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/member"
	"github.com/sweetpotato0/ai-claims/policy"
	"github.com/sweetpotato0/ai-claims/tool"
)

// Tool names.
const (
	ToolSearchClaim        = "search_claim"
	ToolGetMemberProfile   = "get_member_profile"
	ToolFindMemberDocument = "find_member_document"
	ToolSearchPolicyRules  = "search_policy_rules"
	ToolAdjudicateClaim    = "adjudicate_claim_with_rescue"
	ToolSearchMemberNotes  = "search_member_notes"
	ToolListClaimsByStatus = "list_claims_by_status"
	ToolListMemberClaims   = "list_member_claims"
)

const (
	defaultPolicyResults    = 2
	defaultStatusListLength = 10
)

// Toolset binds the claims core to tool handlers. It implements tool.Provider.
type Toolset struct {
	claims   *claims.Aggregator
	members  *member.Directory
	policies *policy.Service
	engine   *adjudication.Engine
}

var _ tool.Provider = (*Toolset)(nil)

// NewToolset creates the tool set over the core services.
func NewToolset(aggregator *claims.Aggregator, directory *member.Directory, policies *policy.Service, engine *adjudication.Engine) *Toolset {
	return &Toolset{
		claims:   aggregator,
		members:  directory,
		policies: policies,
		engine:   engine,
	}
}

// Tools returns the tool definitions.
func (s *Toolset) Tools(ctx context.Context) ([]*tool.Tool, error) {
	return []*tool.Tool{
		{
			Name:        ToolSearchClaim,
			Description: "Searches for claim details by claim ID. Returns full claim information including status, amounts, receipts and dependants.",
			Parameters: []tool.Parameter{
				{Name: "claim_id", Type: "string", Description: "The claim ID (format: CLM-2026-XXX)", Required: true},
			},
			Handler: s.searchClaim,
		},
		{
			Name:        ToolGetMemberProfile,
			Description: "Retrieves a member profile with interaction history and uploaded documents.",
			Parameters: []tool.Parameter{
				{Name: "member_id", Type: "string", Description: "Member ID (format: LAYA-XXXX)", Required: true},
			},
			Handler: s.memberProfile,
		},
		{
			Name:        ToolFindMemberDocument,
			Description: "Searches for a specific document type in a member's upload history.",
			Parameters: []tool.Parameter{
				{Name: "member_id", Type: "string", Description: "Member ID (format: LAYA-XXXX)", Required: true},
				{Name: "document_type", Type: "string", Description: "Type of document, e.g. 'GP Referral Letter' or 'Receipt'", Required: true},
			},
			Handler: s.findDocument,
		},
		{
			Name:        ToolSearchPolicyRules,
			Description: "Searches policy rules by keyword. Use for coverage rules, requirements and rejection reasons.",
			Parameters: []tool.Parameter{
				{Name: "query", Type: "string", Description: "Search query, e.g. 'MRI referral' or 'receipt requirements'", Required: true},
				{Name: "top", Type: "integer", Description: "Maximum number of rules to return", Default: defaultPolicyResults},
			},
			Handler: s.searchPolicy,
		},
		{
			Name:        ToolAdjudicateClaim,
			Description: "Performs full claim adjudication including automatic rescue attempts. Checks all data sources to approve claims that appear rejected.",
			Parameters: []tool.Parameter{
				{Name: "claim_id", Type: "string", Description: "The claim ID to adjudicate", Required: true},
			},
			Handler: s.adjudicate,
		},
		{
			Name:        ToolSearchMemberNotes,
			Description: "Searches a member's interaction notes for a keyword.",
			Parameters: []tool.Parameter{
				{Name: "member_id", Type: "string", Description: "Member ID (format: LAYA-XXXX)", Required: true},
				{Name: "keyword", Type: "string", Description: "Word or phrase to look for, case-insensitive", Required: true},
			},
			Handler: s.searchNotes,
		},
		{
			Name:        ToolListClaimsByStatus,
			Description: "Lists claims with a given status, most recent first.",
			Parameters: []tool.Parameter{
				{Name: "status", Type: "string", Description: "Claim status", Required: true, Enum: []string{string(claims.StatusPending), string(claims.StatusApproved), string(claims.StatusRejected)}},
				{Name: "limit", Type: "integer", Description: "Maximum number of claims to return", Default: defaultStatusListLength},
			},
			Handler: s.listByStatus,
		},
		{
			Name:        ToolListMemberClaims,
			Description: "Lists every claim of a member, most recent first.",
			Parameters: []tool.Parameter{
				{Name: "member_id", Type: "string", Description: "Member ID (format: LAYA-XXXX)", Required: true},
			},
			Handler: s.listMemberClaims,
		},
	}, nil
}

// Close is a no-op; the toolset does not own the services.
func (s *Toolset) Close() error { return nil }

// ToolsChanged returns nil: the tool set is fixed.
func (s *Toolset) ToolsChanged() <-chan struct{} { return nil }

// Registry returns a registry holding every tool of the set.
func (s *Toolset) Registry(ctx context.Context) (*tool.Registry, error) {
	registry := tool.NewRegistry()
	if err := registry.RegisterProvider(ctx, s); err != nil {
		return nil, err
	}
	return registry, nil
}

func (s *Toolset) searchClaim(ctx context.Context, args map[string]any) (string, error) {
	claimID, err := tool.StringArg(args, "claim_id")
	if err != nil {
		return "", err
	}
	claim, err := s.claims.Build(ctx, claimID)
	if errorskg.IsNotFound(err) {
		return fmt.Sprintf("Claim %s not found in system", claimID), nil
	}
	if err != nil {
		return "", err
	}
	return RenderClaim(claim), nil
}

func (s *Toolset) memberProfile(ctx context.Context, args map[string]any) (string, error) {
	memberID, err := tool.StringArg(args, "member_id")
	if err != nil {
		return "", err
	}
	profile, err := s.members.Profile(ctx, memberID)
	if errorskg.IsNotFound(err) {
		return fmt.Sprintf("Member %s not found", memberID), nil
	}
	if err != nil {
		return "", err
	}
	return RenderProfile(profile), nil
}

func (s *Toolset) findDocument(ctx context.Context, args map[string]any) (string, error) {
	memberID, err := tool.StringArg(args, "member_id")
	if err != nil {
		return "", err
	}
	docType, err := tool.StringArg(args, "document_type")
	if err != nil {
		return "", err
	}
	doc, err := s.members.FindDocument(ctx, memberID, docType)
	if errorskg.IsNotFound(err) {
		return fmt.Sprintf("No '%s' found for member %s", docType, memberID), nil
	}
	if err != nil {
		return "", err
	}
	return RenderDocument(doc), nil
}

func (s *Toolset) searchPolicy(ctx context.Context, args map[string]any) (string, error) {
	query, err := tool.StringArg(args, "query")
	if err != nil {
		return "", err
	}
	top, err := tool.IntArg(args, "top", defaultPolicyResults)
	if err != nil {
		return "", err
	}
	rules, err := s.policies.SearchByKeyword(ctx, query, top)
	if err != nil {
		return "", err
	}
	if len(rules) == 0 {
		return fmt.Sprintf("No policy rules found matching: %s", query), nil
	}
	return RenderRules(rules), nil
}

func (s *Toolset) adjudicate(ctx context.Context, args map[string]any) (string, error) {
	claimID, err := tool.StringArg(args, "claim_id")
	if err != nil {
		return "", err
	}
	result, err := s.engine.Adjudicate(ctx, claimID)
	if errorskg.IsNotFound(err) {
		return fmt.Sprintf("Claim %s not found in system", claimID), nil
	}
	if err != nil {
		return "", err
	}
	return RenderAdjudication(result), nil
}

func (s *Toolset) searchNotes(ctx context.Context, args map[string]any) (string, error) {
	memberID, err := tool.StringArg(args, "member_id")
	if err != nil {
		return "", err
	}
	keyword, err := tool.StringArg(args, "keyword")
	if err != nil {
		return "", err
	}
	notes, err := s.members.SearchNotes(ctx, memberID, keyword)
	if errorskg.IsNotFound(err) {
		return fmt.Sprintf("Member %s not found", memberID), nil
	}
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return fmt.Sprintf("No interaction notes mention %q for member %s", keyword, memberID), nil
	}
	return RenderNotes(memberID, keyword, notes), nil
}

func (s *Toolset) listByStatus(ctx context.Context, args map[string]any) (string, error) {
	raw, err := tool.StringArg(args, "status")
	if err != nil {
		return "", err
	}
	limit, err := tool.IntArg(args, "limit", defaultStatusListLength)
	if err != nil {
		return "", err
	}
	status := claims.ParseStatus(raw)
	items, err := s.claims.SearchByStatus(ctx, status, limit)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return fmt.Sprintf("No %s claims found", status), nil
	}
	return RenderSummaries(fmt.Sprintf("%s claims", status), items), nil
}

func (s *Toolset) listMemberClaims(ctx context.Context, args map[string]any) (string, error) {
	memberID, err := tool.StringArg(args, "member_id")
	if err != nil {
		return "", err
	}
	items, err := s.claims.SummarizeByMember(ctx, memberID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return fmt.Sprintf("No claims found for member %s", memberID), nil
	}
	return RenderSummaries(fmt.Sprintf("Claims for %s", memberID), items), nil
}
