package tokenization

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"rwa-platform/internal/asset"
	"rwa-platform/internal/ledger"
)

var (
	currencyCodeRe = regexp.MustCompile(`^[A-Z0-9]{3}$`)
	addressRe      = regexp.MustCompile(`^r[1-9A-HJ-NP-Za-km-z]{24,34}$`)
)

// DeriveCurrencyCode builds a 3-character issued-currency code from an asset
// name: the first three alphanumeric characters upper-cased, right-padded
// with digits when the name yields fewer. The reserved native code is never
// produced.
func DeriveCurrencyCode(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	code := b.String()
	for i := len(code); i < 3; i++ {
		code += "0"
	}
	if code == ledger.NativeCurrency {
		code = code[:2] + "0"
	}
	return code
}

// DeriveTotalSupply applies the fixed fractional-unit convention: one token
// per 100 units of asset value, floored.
func DeriveTotalSupply(value decimal.Decimal) decimal.Decimal {
	return value.Div(decimal.NewFromInt(100)).Floor()
}

func validateCurrencyCode(code string) error {
	if !currencyCodeRe.MatchString(code) {
		return &asset.ValidationError{Field: "currency_code", Reason: "must be exactly 3 uppercase alphanumeric characters"}
	}
	if code == ledger.NativeCurrency {
		return &asset.ValidationError{Field: "currency_code", Reason: "reserved native currency code"}
	}
	return nil
}

func validateAddress(address string) error {
	if !addressRe.MatchString(address) {
		return &asset.ValidationError{Field: "address", Reason: "not a valid ledger address"}
	}
	return nil
}
