package tokenization

import "errors"

// Common errors
var (
	ErrTokenizationFailed = errors.New("tokenization failed")
	ErrTransferFailed     = errors.New("transfer failed")
	ErrRedemptionFailed   = errors.New("redemption failed")
	ErrInsufficientTokens = errors.New("insufficient token balance")
)
