package api

import (
	"errors"
	"net/http"

	"rwa-platform/internal/asset"
	"rwa-platform/internal/dex"
	"rwa-platform/internal/ledger"
	"rwa-platform/internal/signing"
	"rwa-platform/internal/tokenization"
	"rwa-platform/internal/trade"
)

// ErrorCode is a unified API error code.
type ErrorCode string

const (
	CodeValidationError    ErrorCode = "VALIDATION_ERROR"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeNotActivated       ErrorCode = "NOT_ACTIVATED"
	CodeInsufficientFunds  ErrorCode = "INSUFFICIENT_FUNDS"
	CodeInsufficientTokens ErrorCode = "INSUFFICIENT_TOKENS"
	CodeNoLiquidity        ErrorCode = "NO_LIQUIDITY"
	CodeLedgerUnavailable  ErrorCode = "LEDGER_UNAVAILABLE"
	CodeTxRejected         ErrorCode = "TRANSACTION_REJECTED"
	CodeOperationFailed    ErrorCode = "OPERATION_FAILED"
)

// MapError classifies a service error into an HTTP status and API code.
// Classification is by error identity only, never by message text; the
// more specific ledger causes are checked before the generic rejection
// class they also satisfy.
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, asset.ErrValidation),
		errors.Is(err, dex.ErrInvalidOffer),
		errors.Is(err, dex.ErrInvalidBookLimit),
		errors.Is(err, dex.ErrExpirationInPast),
		errors.Is(err, trade.ErrInvalidLimit):
		return http.StatusBadRequest, string(CodeValidationError)

	case errors.Is(err, asset.ErrNotFound),
		errors.Is(err, trade.ErrOrderNotFound),
		errors.Is(err, signing.ErrWalletNotFound),
		errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound, string(CodeNotFound)

	case errors.Is(err, asset.ErrAlreadyTokenized),
		errors.Is(err, asset.ErrAlreadyRedeemed):
		return http.StatusConflict, string(CodeConflict)

	case errors.Is(err, asset.ErrOwnerNotActivated),
		errors.Is(err, signing.ErrWalletNotActivated):
		return http.StatusUnauthorized, string(CodeNotActivated)

	case errors.Is(err, tokenization.ErrInsufficientTokens):
		return http.StatusBadRequest, string(CodeInsufficientTokens)

	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusBadRequest, string(CodeInsufficientFunds)

	case errors.Is(err, dex.ErrNoLiquidity):
		return http.StatusBadRequest, string(CodeNoLiquidity)

	case errors.Is(err, ledger.ErrUnavailable):
		return http.StatusServiceUnavailable, string(CodeLedgerUnavailable)

	case errors.Is(err, ledger.ErrRejected):
		return http.StatusBadRequest, string(CodeTxRejected)

	default:
		return http.StatusInternalServerError, string(CodeOperationFailed)
	}
}
