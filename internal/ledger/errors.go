package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// ErrUnavailable marks connection failures and timeouts talking to the
	// ledger. Operations seeing it may be retried.
	ErrUnavailable = errors.New("ledger unavailable")

	// ErrRejected marks a deterministic ledger rejection. Never retried.
	ErrRejected = errors.New("transaction rejected")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoCreditLine      = errors.New("no credit line")
	ErrAccountNotFound   = errors.New("account not found")
)

// RejectionError carries the raw engine result code of a rejected
// transaction alongside its taxonomy classification.
type RejectionError struct {
	Code   string
	reason error
}

func (e *RejectionError) Error() string {
	if e.reason != nil {
		return fmt.Sprintf("transaction rejected: %s (%v)", e.Code, e.reason)
	}
	return fmt.Sprintf("transaction rejected: %s", e.Code)
}

func (e *RejectionError) Is(target error) bool {
	if target == ErrRejected {
		return true
	}
	return e.reason != nil && target == e.reason
}

// ClassifyResult maps an engine result code to an error, or nil for
// success. Codes are matched structurally, never by message text: tes* is
// success, everything else is a deterministic rejection classified by its
// known prefixes, with the raw code preserved.
func ClassifyResult(code string) error {
	if strings.HasPrefix(code, "tes") {
		return nil
	}

	switch code {
	case "tecUNFUNDED_PAYMENT", "tecUNFUNDED_OFFER", "tecPATH_PARTIAL", "tecPATH_DRY", "terINSUF_FEE_B":
		return &RejectionError{Code: code, reason: ErrInsufficientFunds}
	case "tecNO_LINE", "tecNO_LINE_INSUF_RESERVE", "tecNO_LINE_REDUNDANT":
		return &RejectionError{Code: code, reason: ErrNoCreditLine}
	case "terNO_ACCOUNT", "tecNO_DST", "tecNO_DST_INSUF_XRP":
		return &RejectionError{Code: code, reason: ErrAccountNotFound}
	}

	return &RejectionError{Code: code}
}
