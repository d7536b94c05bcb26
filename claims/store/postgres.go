package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sweetpotato0/ai-claims/claims"
	errorskg "github.com/sweetpotato0/ai-claims/errors"
)

const headerColumns = `claim_id, membership_number, title, surname, forenames, date_of_birth,
	telephone, correspondence_address, submission_date, status, assessed_amount, rejection_reason`

// PostgresSource implements claims.RecordSource on top of PostgreSQL.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource connects to PostgreSQL and returns a record source.
func NewPostgresSource(ctx context.Context, config *PostgresConfig) (*PostgresSource, error) {
	if config == nil {
		config = DefaultPostgresConfig()
	}

	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return &PostgresSource{db: db}, nil
}

// NewPostgresSourceFromDB wraps an existing connection pool.
func NewPostgresSourceFromDB(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// DB returns the connection pool, for stores sharing the claims database.
func (s *PostgresSource) DB() *sql.DB {
	return s.db
}

// Close closes the underlying connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

// Migrate creates the claim tables if they do not exist.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create claim tables: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHeader(row rowScanner) (*claims.Header, error) {
	var (
		h               claims.Header
		title, phone    sql.NullString
		address, reason sql.NullString
		status          string
		assessed        sql.NullFloat64
	)
	if err := row.Scan(&h.ClaimID, &h.MembershipNumber, &title, &h.Surname, &h.Forenames,
		&h.DateOfBirth, &phone, &address, &h.SubmissionDate, &status, &assessed, &reason); err != nil {
		return nil, err
	}
	h.Title = title.String
	h.Telephone = phone.String
	h.CorrespondenceAddress = address.String
	h.Status = claims.ParseStatus(status)
	if assessed.Valid {
		v := assessed.Float64
		h.AssessedAmount = &v
	}
	if reason.Valid {
		v := reason.String
		h.RejectionReason = &v
	}
	return &h, nil
}

// FetchHeader loads the claim master record.
func (s *PostgresSource) FetchHeader(ctx context.Context, claimID string) (*claims.Header, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+headerColumns+` FROM claims WHERE claim_id = $1`, claimID)
	h, err := scanHeader(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorskg.NotFound("claim", claimID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load claim: %w", err)
	}
	return h, nil
}

// FetchReceipts loads the receipt lines of a claim ordered by receipt date.
func (s *PostgresSource) FetchReceipts(ctx context.Context, claimID string) ([]claims.ReceiptItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim_id, treatment_type, receipt_date, cost
		 FROM claim_receipt_items
		 WHERE claim_id = $1
		 ORDER BY receipt_date, id`, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	items := make([]claims.ReceiptItem, 0)
	for rows.Next() {
		var item claims.ReceiptItem
		if err := rows.Scan(&item.ID, &item.ClaimID, &item.TreatmentType, &item.ReceiptDate, &item.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}
	return items, nil
}

// FetchDependants loads the dependants covered by a claim.
func (s *PostgresSource) FetchDependants(ctx context.Context, claimID string) ([]claims.Dependant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim_id, name, relationship
		 FROM claim_dependants
		 WHERE claim_id = $1
		 ORDER BY id`, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependants: %w", err)
	}
	defer rows.Close()

	deps := make([]claims.Dependant, 0)
	for rows.Next() {
		var d claims.Dependant
		if err := rows.Scan(&d.ID, &d.ClaimID, &d.Name, &d.Relationship); err != nil {
			return nil, fmt.Errorf("failed to scan dependant: %w", err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dependants: %w", err)
	}
	return deps, nil
}

// FetchAccident loads the accident details, or nil when the claim has none.
func (s *PostgresSource) FetchAccident(ctx context.Context, claimID string) (*claims.AccidentDetails, error) {
	var (
		a          claims.AccidentDetails
		date       sql.NullTime
		thirdParty sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, claim_id, description, accident_date, expenses_recoverable,
		        claiming_through_solicitor, claiming_through_piab, third_party_policy_details,
		        member_signed, subscriber_signed
		 FROM claim_accident_details
		 WHERE claim_id = $1`, claimID).
		Scan(&a.ID, &a.ClaimID, &a.Description, &date, &a.ExpensesRecoverable,
			&a.ClaimingThroughSolicitor, &a.ClaimingThroughPIAB, &thirdParty,
			&a.MemberSigned, &a.SubscriberSigned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load accident details: %w", err)
	}
	if date.Valid {
		t := date.Time
		a.AccidentDate = &t
	}
	a.ThirdPartyPolicyDetails = thirdParty.String
	return &a, nil
}

// FetchPayment loads the payment details, or nil when the claim has none.
func (s *PostgresSource) FetchPayment(ctx context.Context, claimID string) (*claims.PaymentDetails, error) {
	var (
		p                        claims.PaymentDetails
		holder, number, sortCode sql.NullString
		bank                     sql.NullString
		signed                   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, claim_id, use_existing_direct_debit, account_holder_name, account_number,
		        bank_sort_code, bank_name_and_address, signature_date, is_signed
		 FROM claim_payment_details
		 WHERE claim_id = $1`, claimID).
		Scan(&p.ID, &p.ClaimID, &p.UseExistingDirectDebit, &holder, &number,
			&sortCode, &bank, &signed, &p.IsSigned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment details: %w", err)
	}
	p.AccountHolderName = holder.String
	p.AccountNumber = number.String
	p.BankSortCode = sortCode.String
	p.BankNameAndAddress = bank.String
	if signed.Valid {
		t := signed.Time
		p.SignatureDate = &t
	}
	return &p, nil
}

// HeadersByMember lists the headers of every claim filed by a member.
func (s *PostgresSource) HeadersByMember(ctx context.Context, membershipNumber string) ([]claims.Header, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+headerColumns+`
		 FROM claims
		 WHERE membership_number = $1
		 ORDER BY submission_date DESC`, membershipNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query member claims: %w", err)
	}
	return collectHeaders(rows)
}

// HeadersByStatus lists the most recent claims with a status.
func (s *PostgresSource) HeadersByStatus(ctx context.Context, status claims.Status, limit int) ([]claims.Header, error) {
	query := `SELECT ` + headerColumns + `
		 FROM claims
		 WHERE status = $1
		 ORDER BY submission_date DESC`
	args := []any{string(status)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims by status: %w", err)
	}
	return collectHeaders(rows)
}

func collectHeaders(rows *sql.Rows) ([]claims.Header, error) {
	defer rows.Close()
	headers := make([]claims.Header, 0)
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		headers = append(headers, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claims: %w", err)
	}
	return headers, nil
}

// ReceiptTotals sums receipt costs per claim in a single grouped query.
func (s *PostgresSource) ReceiptTotals(ctx context.Context, claimIDs []string) (map[string]float64, error) {
	totals := make(map[string]float64, len(claimIDs))
	if len(claimIDs) == 0 {
		return totals, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT claim_id, COALESCE(SUM(cost), 0)
		 FROM claim_receipt_items
		 WHERE claim_id = ANY($1)
		 GROUP BY claim_id`, pq.Array(claimIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to sum receipts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id    string
			total float64
		)
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("failed to scan receipt total: %w", err)
		}
		totals[id] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipt totals: %w", err)
	}
	return totals, nil
}

// Seed upserts the given claims and replaces their owned record sets in one
// transaction.
func (s *PostgresSource) Seed(ctx context.Context, items []claims.Claim) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range items {
		if err = seedClaim(ctx, tx, &items[i]); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}

func seedClaim(ctx context.Context, tx *sql.Tx, c *claims.Claim) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO claims (`+headerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (claim_id) DO UPDATE SET
			membership_number = EXCLUDED.membership_number,
			status = EXCLUDED.status,
			assessed_amount = EXCLUDED.assessed_amount,
			rejection_reason = EXCLUDED.rejection_reason`,
		c.ClaimID, c.MembershipNumber, nullString(c.Title), c.Surname, c.Forenames,
		c.DateOfBirth, nullString(c.Telephone), nullString(c.CorrespondenceAddress),
		c.SubmissionDate, string(c.Status), c.AssessedAmount, c.RejectionReason)
	if err != nil {
		return fmt.Errorf("failed to upsert claim %s: %w", c.ClaimID, err)
	}

	for _, table := range []string{"claim_receipt_items", "claim_dependants", "claim_accident_details", "claim_payment_details"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE claim_id = $1`, c.ClaimID); err != nil {
			return fmt.Errorf("failed to clear %s for %s: %w", table, c.ClaimID, err)
		}
	}

	for _, r := range c.ReceiptItems {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO claim_receipt_items (claim_id, treatment_type, receipt_date, cost)
			 VALUES ($1, $2, $3, $4)`,
			c.ClaimID, r.TreatmentType, r.ReceiptDate, r.Cost); err != nil {
			return fmt.Errorf("failed to insert receipt for %s: %w", c.ClaimID, err)
		}
	}
	for _, d := range c.Dependants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO claim_dependants (claim_id, name, relationship) VALUES ($1, $2, $3)`,
			c.ClaimID, d.Name, d.Relationship); err != nil {
			return fmt.Errorf("failed to insert dependant for %s: %w", c.ClaimID, err)
		}
	}
	if a := c.AccidentDetails; a != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO claim_accident_details (claim_id, description, accident_date, expenses_recoverable,
				claiming_through_solicitor, claiming_through_piab, third_party_policy_details,
				member_signed, subscriber_signed)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ClaimID, a.Description, nullTime(a.AccidentDate), a.ExpensesRecoverable,
			a.ClaimingThroughSolicitor, a.ClaimingThroughPIAB, nullString(a.ThirdPartyPolicyDetails),
			a.MemberSigned, a.SubscriberSigned); err != nil {
			return fmt.Errorf("failed to insert accident details for %s: %w", c.ClaimID, err)
		}
	}
	if p := c.PaymentDetails; p != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO claim_payment_details (claim_id, use_existing_direct_debit, account_holder_name,
				account_number, bank_sort_code, bank_name_and_address, signature_date, is_signed)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ClaimID, p.UseExistingDirectDebit, nullString(p.AccountHolderName),
			nullString(p.AccountNumber), nullString(p.BankSortCode), nullString(p.BankNameAndAddress),
			nullTime(p.SignatureDate), p.IsSigned); err != nil {
			return fmt.Errorf("failed to insert payment details for %s: %w", c.ClaimID, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

const schema = `
CREATE TABLE IF NOT EXISTS claims (
	claim_id VARCHAR(64) PRIMARY KEY,
	membership_number VARCHAR(64) NOT NULL,
	title VARCHAR(16),
	surname VARCHAR(128) NOT NULL,
	forenames VARCHAR(128) NOT NULL,
	date_of_birth DATE NOT NULL,
	telephone VARCHAR(32),
	correspondence_address TEXT,
	submission_date DATE NOT NULL,
	status VARCHAR(16) NOT NULL,
	assessed_amount NUMERIC(12, 2),
	rejection_reason TEXT
);
CREATE INDEX IF NOT EXISTS idx_claims_member ON claims(membership_number);
CREATE INDEX IF NOT EXISTS idx_claims_status_date ON claims(status, submission_date DESC);

CREATE TABLE IF NOT EXISTS claim_receipt_items (
	id BIGSERIAL PRIMARY KEY,
	claim_id VARCHAR(64) NOT NULL REFERENCES claims(claim_id) ON DELETE CASCADE,
	treatment_type VARCHAR(128) NOT NULL,
	receipt_date DATE NOT NULL,
	cost NUMERIC(12, 2) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_claim ON claim_receipt_items(claim_id);

CREATE TABLE IF NOT EXISTS claim_dependants (
	id BIGSERIAL PRIMARY KEY,
	claim_id VARCHAR(64) NOT NULL REFERENCES claims(claim_id) ON DELETE CASCADE,
	name VARCHAR(256) NOT NULL,
	relationship VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS claim_accident_details (
	id BIGSERIAL PRIMARY KEY,
	claim_id VARCHAR(64) NOT NULL UNIQUE REFERENCES claims(claim_id) ON DELETE CASCADE,
	description TEXT NOT NULL,
	accident_date DATE,
	expenses_recoverable BOOLEAN NOT NULL DEFAULT FALSE,
	claiming_through_solicitor BOOLEAN NOT NULL DEFAULT FALSE,
	claiming_through_piab BOOLEAN NOT NULL DEFAULT FALSE,
	third_party_policy_details TEXT,
	member_signed BOOLEAN NOT NULL DEFAULT FALSE,
	subscriber_signed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS claim_payment_details (
	id BIGSERIAL PRIMARY KEY,
	claim_id VARCHAR(64) NOT NULL UNIQUE REFERENCES claims(claim_id) ON DELETE CASCADE,
	use_existing_direct_debit BOOLEAN NOT NULL DEFAULT FALSE,
	account_holder_name VARCHAR(256),
	account_number VARCHAR(64),
	bank_sort_code VARCHAR(32),
	bank_name_and_address TEXT,
	signature_date DATE,
	is_signed BOOLEAN NOT NULL DEFAULT FALSE
);
`

var _ claims.RecordSource = (*PostgresSource)(nil)
