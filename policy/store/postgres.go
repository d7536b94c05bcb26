package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/sweetpotato0/ai-claims/policy"
)

const ruleColumns = `rule_id, category, plan, title, description, coverage_percentage,
	requires_referral, rejection_reasons, notes`

// PostgresIndex implements policy.Searcher with ILIKE matching over a
// policy_rules table, ranked with the same field weights as policy.Score.
type PostgresIndex struct {
	db *sql.DB
}

// NewPostgresIndex wraps an open connection pool. The claims database is
// normally shared.
func NewPostgresIndex(db *sql.DB) *PostgresIndex {
	return &PostgresIndex{db: db}
}

// Migrate creates the policy_rules table if it does not exist.
func (p *PostgresIndex) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS policy_rules (
		rule_id VARCHAR(32) PRIMARY KEY,
		category VARCHAR(64) NOT NULL,
		plan VARCHAR(128) NOT NULL,
		title VARCHAR(256) NOT NULL,
		description TEXT NOT NULL,
		coverage_percentage INTEGER NOT NULL DEFAULT 0,
		requires_referral BOOLEAN NOT NULL DEFAULT FALSE,
		rejection_reasons TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_policy_rules_category ON policy_rules(category);
	`)
	if err != nil {
		return fmt.Errorf("failed to create policy_rules table: %w", err)
	}
	return nil
}

// Upsert stores rules, replacing existing rows with the same id.
func (p *PostgresIndex) Upsert(ctx context.Context, rules ...policy.Rule) error {
	for _, r := range rules {
		_, err := p.db.ExecContext(ctx,
			`INSERT INTO policy_rules (`+ruleColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (rule_id) DO UPDATE SET
				category = EXCLUDED.category,
				plan = EXCLUDED.plan,
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				coverage_percentage = EXCLUDED.coverage_percentage,
				requires_referral = EXCLUDED.requires_referral,
				rejection_reasons = EXCLUDED.rejection_reasons,
				notes = EXCLUDED.notes`,
			r.RuleID, r.Category, r.Plan, r.Title, r.Description, r.CoveragePercentage,
			r.RequiresReferral, policy.JoinReasons(r.RejectionReasons), r.Notes)
		if err != nil {
			return fmt.Errorf("failed to upsert rule %s: %w", r.RuleID, err)
		}
	}
	return nil
}

// scoreExpr builds the weighted ILIKE sum for the term placeholders $1..$n.
func scoreExpr(n int) string {
	fields := []struct {
		column string
		weight int
	}{
		{"title", policy.WeightTitle},
		{"description", policy.WeightDescription},
		{"rejection_reasons", policy.WeightReasons},
		{"category", policy.WeightCategory},
		{"notes", policy.WeightNotes},
	}
	parts := make([]string, 0, n*len(fields))
	for i := 1; i <= n; i++ {
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("CASE WHEN %s ILIKE $%d THEN %d ELSE 0 END", f.column, i, f.weight))
		}
	}
	return strings.Join(parts, " + ")
}

func (p *PostgresIndex) Search(ctx context.Context, query string, top int) ([]policy.Rule, error) {
	terms := policy.Terms(query)
	if len(terms) == 0 || top <= 0 {
		return []policy.Rule{}, nil
	}

	args := make([]any, 0, len(terms)+1)
	for _, t := range terms {
		args = append(args, "%"+t+"%")
	}
	args = append(args, top)

	q := fmt.Sprintf(`SELECT %s FROM (
		SELECT %s, (%s) AS score FROM policy_rules
	) ranked
	WHERE score > 0
	ORDER BY score DESC, rule_id
	LIMIT $%d`, ruleColumns, ruleColumns, scoreExpr(len(terms)), len(terms)+1)

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search policy rules: %w", err)
	}
	return collectRules(rows)
}

func (p *PostgresIndex) ByCategory(ctx context.Context, category string) ([]policy.Rule, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM policy_rules WHERE category = $1 ORDER BY rule_id`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list policy rules: %w", err)
	}
	return collectRules(rows)
}

func collectRules(rows *sql.Rows) ([]policy.Rule, error) {
	defer rows.Close()
	rules := make([]policy.Rule, 0)
	for rows.Next() {
		var (
			r       policy.Rule
			reasons string
		)
		if err := rows.Scan(&r.RuleID, &r.Category, &r.Plan, &r.Title, &r.Description,
			&r.CoveragePercentage, &r.RequiresReferral, &reasons, &r.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan policy rule: %w", err)
		}
		r.RejectionReasons = policy.SplitReasons(reasons)
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policy rules: %w", err)
	}
	return rules, nil
}

var _ policy.Searcher = (*PostgresIndex)(nil)
