package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// NativeCurrency is the reserved code of the ledger's native currency.
// Issued currencies must never use it.
const NativeCurrency = "XRP"

// Asset identifies a currency on the ledger: either the native currency
// (empty issuer) or an issued currency tied to an issuer address.
type Asset struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer,omitempty"`
}

// IsNative reports whether the asset is the ledger's native currency.
func (a Asset) IsNative() bool {
	return a.Currency == NativeCurrency
}

func (a Asset) String() string {
	if a.IsNative() {
		return a.Currency
	}
	return a.Currency + "/" + a.Issuer
}

// Amount is a tagged value: either an amount of the native currency or an
// amount of an issued currency. The discriminator is the currency code; a
// native amount never carries an issuer.
type Amount struct {
	Currency string
	Issuer   string
	Value    decimal.Decimal
}

// NativeAmount builds an amount of the native currency.
func NativeAmount(value decimal.Decimal) Amount {
	return Amount{Currency: NativeCurrency, Value: value}
}

// IssuedAmount builds an amount of an issued currency.
func IssuedAmount(currency, issuer string, value decimal.Decimal) Amount {
	return Amount{Currency: currency, Issuer: issuer, Value: value}
}

// IsNative reports whether the amount is denominated in the native currency.
func (a Amount) IsNative() bool {
	return a.Currency == NativeCurrency && a.Issuer == ""
}

// Asset returns the currency identity of the amount.
func (a Amount) Asset() Asset {
	if a.IsNative() {
		return Asset{Currency: NativeCurrency}
	}
	return Asset{Currency: a.Currency, Issuer: a.Issuer}
}

// SameAsset reports whether two amounts are denominated in the same currency.
func (a Amount) SameAsset(b Amount) bool {
	return a.Asset() == b.Asset()
}

func (a Amount) IsZero() bool {
	return a.Value.IsZero()
}

func (a Amount) String() string {
	if a.IsNative() {
		return a.Value.String() + " " + NativeCurrency
	}
	return fmt.Sprintf("%s %s/%s", a.Value, a.Currency, a.Issuer)
}

// Validate checks the structural rules for an amount: positive value, a
// currency code, and an issuer exactly when the currency is not native.
func (a Amount) Validate() error {
	if a.Currency == "" {
		return fmt.Errorf("amount currency required")
	}
	if !a.Value.IsPositive() {
		return fmt.Errorf("amount value must be positive")
	}
	if a.IsNative() {
		return nil
	}
	if a.Currency == NativeCurrency {
		return fmt.Errorf("native currency cannot carry an issuer")
	}
	if a.Issuer == "" {
		return fmt.Errorf("issuer required for issued currency %s", a.Currency)
	}
	return nil
}

type issuedAmountJSON struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
	Value    string `json:"value"`
}

// MarshalJSON encodes native amounts as a plain decimal string and issued
// amounts as a {currency, issuer, value} object, matching the ledger wire
// convention.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.IsNative() {
		return json.Marshal(a.Value.String())
	}
	return json.Marshal(issuedAmountJSON{
		Currency: a.Currency,
		Issuer:   a.Issuer,
		Value:    a.Value.String(),
	})
}

// UnmarshalJSON accepts both wire shapes.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		value, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("invalid native amount %q: %v", s, err)
		}
		*a = NativeAmount(value)
		return nil
	}

	var obj issuedAmountJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid amount encoding: %v", err)
	}
	value, err := decimal.NewFromString(obj.Value)
	if err != nil {
		return fmt.Errorf("invalid issued amount value %q: %v", obj.Value, err)
	}
	*a = Amount{Currency: obj.Currency, Issuer: obj.Issuer, Value: value}
	return nil
}
