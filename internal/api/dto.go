package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rwa-platform/internal/ledger"
)

// CreateAssetRequest is the body of POST /asset/create.
type CreateAssetRequest struct {
	Name          string            `json:"name" binding:"required"`
	Description   string            `json:"description"`
	Type          string            `json:"type" binding:"required"`
	Value         string            `json:"value" binding:"required"`
	Location      string            `json:"location"`
	OwnerWalletID string            `json:"owner_wallet_id" binding:"required"`
	Documents     []string          `json:"documents"`
	Metadata      map[string]string `json:"metadata"`
}

// TokenizeRequest is the body of POST /asset/:id/tokenize. Both fields are
// optional; omitted values are derived from the asset.
type TokenizeRequest struct {
	CurrencyCode string `json:"currency_code"`
	TotalSupply  string `json:"total_supply"`
}

// TransferRequest is the body of POST /asset/transfer.
type TransferRequest struct {
	FromWalletID  string `json:"from_wallet_id" binding:"required"`
	ToAddress     string `json:"to_address" binding:"required"`
	CurrencyCode  string `json:"currency_code" binding:"required"`
	IssuerAddress string `json:"issuer_address" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
}

// RedeemRequest is the body of POST /asset/:id/redeem.
type RedeemRequest struct {
	WalletID    string `json:"wallet_id" binding:"required"`
	TokenAmount string `json:"token_amount" binding:"required"`
}

// OfferRequest is the body of POST /dex/offer. Amounts arrive either as a
// plain decimal string (native currency) or as a {currency, issuer, value}
// object (issued currency).
type OfferRequest struct {
	WalletID  string          `json:"wallet_id" binding:"required"`
	TakerGets json.RawMessage `json:"taker_gets" binding:"required"`
	TakerPays json.RawMessage `json:"taker_pays" binding:"required"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

// MarketOrderRequest is the body of POST /dex/market-order.
type MarketOrderRequest struct {
	WalletID  string          `json:"wallet_id" binding:"required"`
	TakerGets json.RawMessage `json:"taker_gets" binding:"required"`
	TakerPays json.RawMessage `json:"taker_pays" binding:"required"`
}

func parseAmount(field string, raw json.RawMessage) (ledger.Amount, error) {
	var a ledger.Amount
	if err := json.Unmarshal(raw, &a); err != nil {
		return ledger.Amount{}, fmt.Errorf("%s: %v", field, err)
	}
	return a, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: not a decimal: %q", field, s)
	}
	return d, nil
}

// parseAssetParam interprets a currency/issuer path pair. The native
// currency has no issuer; path placeholders for it ("-", the native code,
// or an empty value) are accepted.
func parseAssetParam(currency, issuer string) ledger.Asset {
	if currency == ledger.NativeCurrency {
		return ledger.Asset{Currency: ledger.NativeCurrency}
	}
	if issuer == "-" {
		issuer = ""
	}
	return ledger.Asset{Currency: currency, Issuer: issuer}
}
