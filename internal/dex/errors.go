package dex

import "errors"

// Common errors
var (
	ErrInvalidOffer     = errors.New("invalid offer")
	ErrInvalidBookLimit = errors.New("order book limit out of range")
	ErrExpirationInPast = errors.New("expiration is in the past")
	ErrNoLiquidity      = errors.New("no liquidity for pair")
)
