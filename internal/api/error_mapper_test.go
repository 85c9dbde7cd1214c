package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"rwa-platform/internal/asset"
	"rwa-platform/internal/dex"
	"rwa-platform/internal/ledger"
	"rwa-platform/internal/signing"
	"rwa-platform/internal/tokenization"
	"rwa-platform/internal/trade"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"validation detail", &asset.ValidationError{Field: "name", Reason: "required"}, http.StatusBadRequest, CodeValidationError},
		{"invalid offer", dex.ErrInvalidOffer, http.StatusBadRequest, CodeValidationError},
		{"invalid book limit", dex.ErrInvalidBookLimit, http.StatusBadRequest, CodeValidationError},
		{"expiration in past", dex.ErrExpirationInPast, http.StatusBadRequest, CodeValidationError},
		{"invalid history limit", trade.ErrInvalidLimit, http.StatusBadRequest, CodeValidationError},
		{"asset not found", asset.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"order not found", trade.ErrOrderNotFound, http.StatusNotFound, CodeNotFound},
		{"wallet not found", signing.ErrWalletNotFound, http.StatusNotFound, CodeNotFound},
		{"ledger account not found", ledger.ErrAccountNotFound, http.StatusNotFound, CodeNotFound},
		{"already tokenized", asset.ErrAlreadyTokenized, http.StatusConflict, CodeConflict},
		{"already redeemed", asset.ErrAlreadyRedeemed, http.StatusConflict, CodeConflict},
		{"owner not activated", asset.ErrOwnerNotActivated, http.StatusUnauthorized, CodeNotActivated},
		{"wallet not activated", signing.ErrWalletNotActivated, http.StatusUnauthorized, CodeNotActivated},
		{"insufficient tokens", tokenization.ErrInsufficientTokens, http.StatusBadRequest, CodeInsufficientTokens},
		{"insufficient funds", ledger.ErrInsufficientFunds, http.StatusBadRequest, CodeInsufficientFunds},
		{"no liquidity", dex.ErrNoLiquidity, http.StatusBadRequest, CodeNoLiquidity},
		{"ledger unavailable", ledger.ErrUnavailable, http.StatusServiceUnavailable, CodeLedgerUnavailable},
		{"generic rejection", ledger.ClassifyResult("tecKILLED"), http.StatusBadRequest, CodeTxRejected},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeOperationFailed},
	}

	for _, tc := range cases {
		status, code := MapError(tc.err)
		if status != tc.wantStatus || code != string(tc.wantCode) {
			t.Errorf("%s: got (%d, %s), want (%d, %s)", tc.name, status, code, tc.wantStatus, tc.wantCode)
		}
	}
}

func TestMapError_WrappedCausesSurvive(t *testing.T) {
	wrapped := fmt.Errorf("tokenize: %w", fmt.Errorf("%w: wallet w1", asset.ErrOwnerNotActivated))
	status, code := MapError(wrapped)
	if status != http.StatusUnauthorized || code != string(CodeNotActivated) {
		t.Errorf("Wrapped error misclassified: (%d, %s)", status, code)
	}

	// A specific ledger cause wins over the generic rejection class it
	// also satisfies.
	status, code = MapError(ledger.ClassifyResult("tecUNFUNDED_OFFER"))
	if status != http.StatusBadRequest || code != string(CodeInsufficientFunds) {
		t.Errorf("Specific cause lost to generic class: (%d, %s)", status, code)
	}
}
