package signing

import (
	"context"
	"errors"

	"rwa-platform/internal/ledger"
)

// Common errors
var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrWalletNotActivated = errors.New("wallet not activated")
)

// Signer is a ready-to-use signing capability for one wallet. Key material
// never leaves the signing service.
type Signer interface {
	// Address returns the wallet's ledger address.
	Address() string
	// Sign produces a signed transaction for submission.
	Sign(tx ledger.Transaction) (ledger.SignedTx, error)
}

// Gateway resolves wallet identifiers to signing capabilities.
type Gateway interface {
	// GetSigner returns a signer for the wallet. Fails with
	// ErrWalletNotFound for unknown wallets and ErrWalletNotActivated for
	// wallets without a confirmed ledger presence.
	GetSigner(ctx context.Context, walletID string) (Signer, error)
}
