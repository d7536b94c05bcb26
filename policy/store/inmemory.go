package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sweetpotato0/ai-claims/policy"
)

// InMemoryIndex implements policy.Searcher over a fixed rule set.
type InMemoryIndex struct {
	mu    sync.RWMutex
	rules []policy.Rule
}

// NewInMemoryIndex creates an index over rules.
func NewInMemoryIndex(rules ...policy.Rule) *InMemoryIndex {
	idx := &InMemoryIndex{}
	idx.Upsert(rules...)
	return idx
}

// Upsert adds rules, replacing any with the same id.
func (idx *InMemoryIndex) Upsert(rules ...policy.Rule) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, r := range rules {
		replaced := false
		for i := range idx.rules {
			if idx.rules[i].RuleID == r.RuleID {
				idx.rules[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			idx.rules = append(idx.rules, r)
		}
	}
}

func (idx *InMemoryIndex) Search(_ context.Context, query string, top int) ([]policy.Rule, error) {
	terms := policy.Terms(query)
	if len(terms) == 0 || top <= 0 {
		return []policy.Rule{}, nil
	}

	idx.mu.RLock()
	type hit struct {
		rule  policy.Rule
		score int
	}
	hits := make([]hit, 0)
	for i := range idx.rules {
		if score := policy.Score(&idx.rules[i], terms); score > 0 {
			hits = append(hits, hit{rule: idx.rules[i], score: score})
		}
	}
	idx.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].rule.RuleID < hits[j].rule.RuleID
	})
	if len(hits) > top {
		hits = hits[:top]
	}
	rules := make([]policy.Rule, len(hits))
	for i, h := range hits {
		rules[i] = h.rule
	}
	return rules, nil
}

func (idx *InMemoryIndex) ByCategory(_ context.Context, category string) ([]policy.Rule, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	rules := make([]policy.Rule, 0)
	for _, r := range idx.rules {
		if strings.EqualFold(r.Category, category) {
			rules = append(rules, r)
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].RuleID < rules[j].RuleID })
	return rules, nil
}

var _ policy.Searcher = (*InMemoryIndex)(nil)
