package store

import (
	"context"
	"sync"

	"github.com/sweetpotato0/ai-claims/claims"
	errorskg "github.com/sweetpotato0/ai-claims/errors"
)

// InMemorySource implements claims.RecordSource over an in-process map.
// Claims keep their insertion order, which is what ties are broken on.
type InMemorySource struct {
	mu     sync.RWMutex
	claims map[string]claims.Claim
	order  []string
}

// NewInMemorySource creates a source holding the given claims.
func NewInMemorySource(items ...claims.Claim) *InMemorySource {
	s := &InMemorySource{claims: make(map[string]claims.Claim)}
	for _, c := range items {
		s.Put(c)
	}
	return s
}

// Put inserts or replaces a claim.
func (s *InMemorySource) Put(c claims.Claim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[c.ClaimID]; !ok {
		s.order = append(s.order, c.ClaimID)
	}
	s.claims[c.ClaimID] = c
}

// Seed stores every claim. It satisfies the same seeding contract as PostgresSource.
func (s *InMemorySource) Seed(_ context.Context, items []claims.Claim) error {
	for _, c := range items {
		s.Put(c)
	}
	return nil
}

func (s *InMemorySource) get(claimID string) (claims.Claim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[claimID]
	return c, ok
}

func (s *InMemorySource) FetchHeader(_ context.Context, claimID string) (*claims.Header, error) {
	c, ok := s.get(claimID)
	if !ok {
		return nil, errorskg.NotFound("claim", claimID)
	}
	h := c.Header
	return &h, nil
}

func (s *InMemorySource) FetchReceipts(_ context.Context, claimID string) ([]claims.ReceiptItem, error) {
	c, _ := s.get(claimID)
	return append([]claims.ReceiptItem{}, c.ReceiptItems...), nil
}

func (s *InMemorySource) FetchDependants(_ context.Context, claimID string) ([]claims.Dependant, error) {
	c, _ := s.get(claimID)
	return append([]claims.Dependant{}, c.Dependants...), nil
}

func (s *InMemorySource) FetchAccident(_ context.Context, claimID string) (*claims.AccidentDetails, error) {
	c, _ := s.get(claimID)
	if c.AccidentDetails == nil {
		return nil, nil
	}
	a := *c.AccidentDetails
	return &a, nil
}

func (s *InMemorySource) FetchPayment(_ context.Context, claimID string) (*claims.PaymentDetails, error) {
	c, _ := s.get(claimID)
	if c.PaymentDetails == nil {
		return nil, nil
	}
	p := *c.PaymentDetails
	return &p, nil
}

func (s *InMemorySource) HeadersByMember(_ context.Context, membershipNumber string) ([]claims.Header, error) {
	return s.filter(func(h claims.Header) bool { return h.MembershipNumber == membershipNumber }), nil
}

// HeadersByStatus returns every matching header; the aggregator applies the limit.
func (s *InMemorySource) HeadersByStatus(_ context.Context, status claims.Status, _ int) ([]claims.Header, error) {
	return s.filter(func(h claims.Header) bool { return h.Status == status }), nil
}

func (s *InMemorySource) ReceiptTotals(_ context.Context, claimIDs []string) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make(map[string]float64, len(claimIDs))
	for _, id := range claimIDs {
		if c, ok := s.claims[id]; ok {
			totals[id] = claims.TotalCost(c.ReceiptItems)
		}
	}
	return totals, nil
}

func (s *InMemorySource) filter(keep func(claims.Header) bool) []claims.Header {
	s.mu.RLock()
	defer s.mu.RUnlock()
	headers := make([]claims.Header, 0)
	for _, id := range s.order {
		if h := s.claims[id].Header; keep(h) {
			headers = append(headers, h)
		}
	}
	return headers
}

var _ claims.RecordSource = (*InMemorySource)(nil)
