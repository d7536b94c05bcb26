package claims_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetpotato0/ai-claims/claims"
	"github.com/sweetpotato0/ai-claims/claims/store"
	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/pkg/logging"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d
}

func newAggregator(items ...claims.Claim) *claims.Aggregator {
	return claims.NewAggregator(store.NewInMemorySource(items...), claims.WithLogger(logging.Discard()))
}

func TestBuildMergesRecordSets(t *testing.T) {
	agg := newAggregator(store.SampleClaims()...)

	c, err := agg.Build(context.Background(), "CLM-2026-001")
	require.NoError(t, err)

	assert.Equal(t, "LAYA-1001", c.MembershipNumber)
	assert.Equal(t, claims.StatusApproved, c.Status)
	assert.Len(t, c.ReceiptItems, 3)
	assert.Empty(t, c.Dependants)
	assert.Nil(t, c.AccidentDetails)
	require.NotNil(t, c.PaymentDetails)
	assert.True(t, c.PaymentDetails.IsSigned)
	assert.InDelta(t, 85.50, c.TotalClaimed(), 1e-9)
}

func TestBuildToleratesMissingOptionalRecords(t *testing.T) {
	agg := newAggregator(claims.Claim{Header: claims.Header{
		ClaimID:        "CLM-EMPTY",
		Status:         claims.StatusPending,
		SubmissionDate: date(t, "2026-03-01"),
	}})

	c, err := agg.Build(context.Background(), "CLM-EMPTY")
	require.NoError(t, err)
	assert.NotNil(t, c.ReceiptItems)
	assert.NotNil(t, c.Dependants)
	assert.Nil(t, c.AccidentDetails)
	assert.Nil(t, c.PaymentDetails)
	assert.Zero(t, c.TotalClaimed())
}

func TestBuildNotFound(t *testing.T) {
	agg := newAggregator(store.SampleClaims()...)

	c, err := agg.Build(context.Background(), "NON-EXISTENT")
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, errorskg.ErrNotFound), "expected ErrNotFound, got %v", err)
}

type failingSource struct {
	claims.RecordSource
	err error
}

func (f failingSource) FetchHeader(context.Context, string) (*claims.Header, error) {
	return &claims.Header{ClaimID: "CLM-1"}, nil
}

func (f failingSource) FetchReceipts(context.Context, string) ([]claims.ReceiptItem, error) {
	return nil, f.err
}

func TestBuildNeverReturnsPartialClaim(t *testing.T) {
	boom := errors.New("connection reset")
	agg := claims.NewAggregator(failingSource{err: boom}, claims.WithLogger(logging.Discard()))

	c, err := agg.Build(context.Background(), "CLM-1")
	assert.Nil(t, c)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errorskg.IsNotFound(err))
}

func TestTotalClaimed(t *testing.T) {
	tests := []struct {
		name  string
		costs []float64
		want  float64
	}{
		{name: "three receipts", costs: []float64{30.00, 45.50, 10.00}, want: 85.50},
		{name: "no receipts", costs: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &claims.Claim{}
			for _, cost := range tt.costs {
				c.ReceiptItems = append(c.ReceiptItems, claims.ReceiptItem{Cost: cost})
			}
			if got := c.TotalClaimed(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TotalClaimed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarizeByMemberOrdersMostRecentFirst(t *testing.T) {
	agg := newAggregator(store.SampleClaims()...)

	summaries, err := agg.SummarizeByMember(context.Background(), "LAYA-1001")
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	var got []string
	for _, s := range summaries {
		got = append(got, s.SubmissionDate.Format(time.DateOnly))
	}
	assert.Equal(t, []string{"2026-02-10", "2026-01-05", "2025-12-01"}, got)

	assert.InDelta(t, 400.00, summaries[0].TotalClaimed, 1e-9)
	assert.InDelta(t, 85.50, summaries[1].TotalClaimed, 1e-9)
	assert.Zero(t, summaries[2].TotalClaimed)
	require.NotNil(t, summaries[0].RejectionReason)
}

func TestSummarizeByMemberStableOnTies(t *testing.T) {
	same := date(t, "2026-01-01")
	agg := newAggregator(
		claims.Claim{Header: claims.Header{ClaimID: "A", MembershipNumber: "M", SubmissionDate: same}},
		claims.Claim{Header: claims.Header{ClaimID: "B", MembershipNumber: "M", SubmissionDate: same}},
		claims.Claim{Header: claims.Header{ClaimID: "C", MembershipNumber: "M", SubmissionDate: same}},
	)

	for i := 0; i < 5; i++ {
		summaries, err := agg.SummarizeByMember(context.Background(), "M")
		require.NoError(t, err)
		require.Len(t, summaries, 3)
		assert.Equal(t, "A", summaries[0].ClaimID)
		assert.Equal(t, "B", summaries[1].ClaimID)
		assert.Equal(t, "C", summaries[2].ClaimID)
	}
}

func TestSummarizeByMemberUnknownMember(t *testing.T) {
	agg := newAggregator(store.SampleClaims()...)

	summaries, err := agg.SummarizeByMember(context.Background(), "LAYA-9999")
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestSearchByStatus(t *testing.T) {
	agg := newAggregator(store.SampleClaims()...)
	ctx := context.Background()

	rejected, err := agg.SearchByStatus(ctx, claims.StatusRejected, 10)
	require.NoError(t, err)
	require.Len(t, rejected, 2)
	assert.Equal(t, "CLM-2026-022", rejected[0].ClaimID)
	assert.Equal(t, "CLM-2026-031", rejected[1].ClaimID)
	assert.Equal(t, "Nolan", rejected[1].Surname)
	assert.Equal(t, "LAYA-1022", rejected[1].MembershipNumber)

	limited, err := agg.SearchByStatus(ctx, claims.StatusRejected, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "CLM-2026-022", limited[0].ClaimID)

	none, err := agg.SearchByStatus(ctx, claims.StatusRejected, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = agg.SearchByStatus(ctx, claims.StatusRejected, -1)
	assert.ErrorIs(t, err, errorskg.ErrInvalidInput)
}

func TestParseStatus(t *testing.T) {
	if got := claims.ParseStatus(" rejected "); got != claims.StatusRejected {
		t.Errorf("ParseStatus() = %q, want %q", got, claims.StatusRejected)
	}
	if claims.StatusPending.Terminal() {
		t.Error("PENDING must not be terminal")
	}
	if !claims.StatusApproved.Terminal() || !claims.StatusRejected.Terminal() {
		t.Error("APPROVED and REJECTED must be terminal")
	}
}
