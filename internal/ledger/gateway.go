package ledger

import "context"

// Gateway is the narrow contract this layer consumes from the ledger
// network. Every call is a blocking remote operation; implementations must
// honor context cancellation.
type Gateway interface {
	// SubmitTransaction submits a signed transaction and blocks until the
	// ledger confirms or rejects it. A non-nil error means the submission
	// could not be completed (ErrUnavailable for transport failures); a
	// result with a non-success code is returned without error and must be
	// classified by the caller.
	SubmitTransaction(ctx context.Context, tx SignedTx) (*TxResult, error)

	// GetAccountBalance returns the native-currency balance of an address.
	GetAccountBalance(ctx context.Context, address string) (string, error)

	// GetTrustLines returns the credit lines held by an address.
	GetTrustLines(ctx context.Context, address string) ([]TrustLine, error)

	// GetOrderBook returns the aggregated order book for a pair, ordered
	// best quality first, capped at limit.
	GetOrderBook(ctx context.Context, takerGets, takerPays Asset, limit int) ([]BookOffer, error)

	// GetAccountOffers returns the resting offers owned by an address.
	GetAccountOffers(ctx context.Context, address string) ([]AccountOffer, error)

	// AccountExists reports whether an address has a funded ledger entry.
	AccountExists(ctx context.Context, address string) (bool, error)
}
