package asset

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies the real-world asset backing a token supply.
type Type string

const (
	TypeRealEstate Type = "real_estate"
	TypeVehicle    Type = "vehicle"
	TypeArtwork    Type = "artwork"
	TypeCommodity  Type = "commodity"
	TypeEquipment  Type = "equipment"
	TypeOther      Type = "other"
)

// ValidType reports whether t is a known asset type.
func ValidType(t Type) bool {
	switch t {
	case TypeRealEstate, TypeVehicle, TypeArtwork, TypeCommodity, TypeEquipment, TypeOther:
		return true
	}
	return false
}

// Status is the asset lifecycle state. Transitions are strictly forward:
// pending -> tokenized -> redeemed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusTokenized Status = "tokenized"
	StatusRedeemed  Status = "redeemed"
)

// CanTransition reports whether moving from s to next is a legal step.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusTokenized
	case StatusTokenized:
		return next == StatusRedeemed
	}
	return false
}

// VerificationStatus values for the asset record.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// Asset is a registered real-world asset record.
type Asset struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	Type               Type                `json:"type"`
	Value              decimal.Decimal     `json:"value"`
	Location           string              `json:"location,omitempty"`
	OwnerWalletID      string              `json:"owner_wallet_id"`
	OwnerAddress       string              `json:"owner_address"`
	Documents          []string            `json:"documents,omitempty"`
	Metadata           map[string]string   `json:"metadata,omitempty"`
	Status             Status              `json:"status"`
	VerificationStatus string              `json:"verification_status"`
	Tokenization       *TokenizationRecord `json:"tokenization,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	TokenizedAt        *time.Time          `json:"tokenized_at,omitempty"`
	RedeemedAt         *time.Time          `json:"redeemed_at,omitempty"`
	RedeemedBy         string              `json:"redeemed_by,omitempty"`
}

// TokenizationRecord tracks the issued-currency supply backing a tokenized
// asset. AvailableSupply is mutated only by the transfer and redemption
// flows, after ledger confirmation.
type TokenizationRecord struct {
	CurrencyCode    string          `json:"currency_code"`
	TotalSupply     decimal.Decimal `json:"total_supply"`
	AvailableSupply decimal.Decimal `json:"available_supply"`
	IssuerAddress   string          `json:"issuer_address"`
	TxHash          string          `json:"tx_hash"`
	LedgerSequence  uint32          `json:"ledger_sequence"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Summary is the owner-listing projection: identity and headline fields,
// no document payloads.
type Summary struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         Type            `json:"type"`
	Value        decimal.Decimal `json:"value"`
	Status       Status          `json:"status"`
	CurrencyCode string          `json:"currency_code,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Stats aggregates the registry for reporting.
type Stats struct {
	Total          int             `json:"total"`
	ByStatus       map[Status]int  `json:"by_status"`
	ByType         map[Type]int    `json:"by_type"`
	TotalValue     decimal.Decimal `json:"total_value"`
	TokenizedValue decimal.Decimal `json:"tokenized_value"`
}
