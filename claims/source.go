package claims

import "context"

// RecordSource fetches the flat record sets a claim is rebuilt from.
// FetchHeader returns an error wrapping errors.ErrNotFound when the claim does
// not exist; the optional fetches return nil or an empty slice when nothing is
// recorded.
type RecordSource interface {
	FetchHeader(ctx context.Context, claimID string) (*Header, error)
	FetchReceipts(ctx context.Context, claimID string) ([]ReceiptItem, error)
	FetchDependants(ctx context.Context, claimID string) ([]Dependant, error)
	FetchAccident(ctx context.Context, claimID string) (*AccidentDetails, error)
	FetchPayment(ctx context.Context, claimID string) (*PaymentDetails, error)

	// HeadersByMember returns the headers of every claim filed by the member.
	HeadersByMember(ctx context.Context, membershipNumber string) ([]Header, error)
	// HeadersByStatus returns headers with the given status. When limit > 0 a
	// source may return only the limit most recently submitted.
	HeadersByStatus(ctx context.Context, status Status, limit int) ([]Header, error)
	// ReceiptTotals returns the summed receipt cost per claim id. Claims
	// without receipts may be absent from the map.
	ReceiptTotals(ctx context.Context, claimIDs []string) (map[string]float64, error)
}
