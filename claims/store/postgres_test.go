package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetpotato0/ai-claims/claims"
	errorskg "github.com/sweetpotato0/ai-claims/errors"
)

var headerCols = []string{
	"claim_id", "membership_number", "title", "surname", "forenames", "date_of_birth",
	"telephone", "correspondence_address", "submission_date", "status", "assessed_amount", "rejection_reason",
}

func newMockSource(t *testing.T) (*PostgresSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresSourceFromDB(db), mock
}

func TestPostgresFetchHeader(t *testing.T) {
	src, mock := newMockSource(t)
	dob := day("1985-03-15")
	submitted := day("2026-02-10")

	mock.ExpectQuery(`SELECT .+ FROM claims WHERE claim_id = \$1`).
		WithArgs("CLM-2026-022").
		WillReturnRows(sqlmock.NewRows(headerCols).AddRow(
			"CLM-2026-022", "LAYA-1001", "Mr", "Doe", "John", dob,
			nil, "123 Main St, Dublin 2", submitted, "REJECTED", nil, "Missing GP Referral letter"))

	h, err := src.FetchHeader(context.Background(), "CLM-2026-022")
	require.NoError(t, err)
	assert.Equal(t, claims.StatusRejected, h.Status)
	assert.Equal(t, "", h.Telephone)
	assert.Nil(t, h.AssessedAmount)
	require.NotNil(t, h.RejectionReason)
	assert.Equal(t, "Missing GP Referral letter", *h.RejectionReason)
	assert.True(t, h.SubmissionDate.Equal(submitted))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFetchHeaderNotFound(t *testing.T) {
	src, mock := newMockSource(t)
	mock.ExpectQuery(`SELECT .+ FROM claims WHERE claim_id = \$1`).
		WithArgs("NON-EXISTENT").
		WillReturnError(sql.ErrNoRows)

	_, err := src.FetchHeader(context.Background(), "NON-EXISTENT")
	assert.ErrorIs(t, err, errorskg.ErrNotFound)
}

func TestPostgresFetchHeaderTransportError(t *testing.T) {
	src, mock := newMockSource(t)
	boom := errors.New("connection refused")
	mock.ExpectQuery(`SELECT .+ FROM claims`).WillReturnError(boom)

	_, err := src.FetchHeader(context.Background(), "CLM-1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errorskg.IsNotFound(err))
}

func TestPostgresFetchReceipts(t *testing.T) {
	src, mock := newMockSource(t)
	mock.ExpectQuery(`SELECT id, claim_id, treatment_type, receipt_date, cost\s+FROM claim_receipt_items`).
		WithArgs("CLM-2026-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "claim_id", "treatment_type", "receipt_date", "cost"}).
			AddRow(1, "CLM-2026-001", "GP Visit", day("2025-12-18"), 30.00).
			AddRow(2, "CLM-2026-001", "Physiotherapy", day("2025-12-22"), 45.50))

	items, err := src.FetchReceipts(context.Background(), "CLM-2026-001")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Physiotherapy", items[1].TreatmentType)
	assert.InDelta(t, 75.50, claims.TotalCost(items), 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresOptionalRecordsAbsent(t *testing.T) {
	src, mock := newMockSource(t)
	mock.ExpectQuery(`FROM claim_accident_details`).WithArgs("CLM-1").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM claim_payment_details`).WithArgs("CLM-1").WillReturnError(sql.ErrNoRows)

	accident, err := src.FetchAccident(context.Background(), "CLM-1")
	require.NoError(t, err)
	assert.Nil(t, accident)

	payment, err := src.FetchPayment(context.Background(), "CLM-1")
	require.NoError(t, err)
	assert.Nil(t, payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFetchAccident(t *testing.T) {
	src, mock := newMockSource(t)
	when := day("2026-01-03")
	mock.ExpectQuery(`FROM claim_accident_details`).
		WithArgs("CLM-2026-031").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "claim_id", "description", "accident_date", "expenses_recoverable",
			"claiming_through_solicitor", "claiming_through_piab", "third_party_policy_details",
			"member_signed", "subscriber_signed",
		}).AddRow(7, "CLM-2026-031", "Sprained ankle", when, false, false, true, nil, true, false))

	a, err := src.FetchAccident(context.Background(), "CLM-2026-031")
	require.NoError(t, err)
	require.NotNil(t, a)
	require.NotNil(t, a.AccidentDate)
	assert.True(t, a.AccidentDate.Equal(when))
	assert.True(t, a.ClaimingThroughPIAB)
	assert.Empty(t, a.ThirdPartyPolicyDetails)
}

func TestPostgresHeadersByStatusUsesLimit(t *testing.T) {
	src, mock := newMockSource(t)
	mock.ExpectQuery(`WHERE status = \$1\s+ORDER BY submission_date DESC LIMIT \$2`).
		WithArgs("PENDING", 5).
		WillReturnRows(sqlmock.NewRows(headerCols).AddRow(
			"CLM-2025-118", "LAYA-1001", nil, "Doe", "John", day("1985-03-15"),
			nil, nil, day("2025-12-01"), "PENDING", nil, nil))

	headers, err := src.HeadersByStatus(context.Background(), claims.StatusPending, 5)
	require.NoError(t, err)
	require.Len(t, headers, 1)
	assert.Equal(t, "CLM-2025-118", headers[0].ClaimID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReceiptTotals(t *testing.T) {
	src, mock := newMockSource(t)
	mock.ExpectQuery(`SELECT claim_id, COALESCE\(SUM\(cost\), 0\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"claim_id", "total"}).
			AddRow("CLM-2026-001", 85.50))

	totals, err := src.ReceiptTotals(context.Background(), []string{"CLM-2026-001", "CLM-2025-118"})
	require.NoError(t, err)
	assert.InDelta(t, 85.50, totals["CLM-2026-001"], 1e-9)
	_, ok := totals["CLM-2025-118"]
	assert.False(t, ok)

	empty, err := src.ReceiptTotals(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSeedRollsBackOnFailure(t *testing.T) {
	src, mock := newMockSource(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO claims`).WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := src.Seed(context.Background(), SampleClaims()[:1])
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSeed(t *testing.T) {
	src, mock := newMockSource(t)
	claim := claims.Claim{
		Header: claims.Header{ClaimID: "CLM-9", MembershipNumber: "LAYA-9", Surname: "X", Forenames: "Y",
			DateOfBirth: time.Now(), SubmissionDate: time.Now(), Status: claims.StatusPending},
		ReceiptItems: []claims.ReceiptItem{{TreatmentType: "GP Visit", ReceiptDate: time.Now(), Cost: 30}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO claims`).WillReturnResult(sqlmock.NewResult(0, 1))
	for i := 0; i < 4; i++ {
		mock.ExpectExec(`DELETE FROM claim_`).WithArgs("CLM-9").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(`INSERT INTO claim_receipt_items`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, src.Seed(context.Background(), []claims.Claim{claim}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
