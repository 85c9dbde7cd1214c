package dex

import (
	"testing"

	"github.com/shopspring/decimal"

	"rwa-platform/internal/ledger"
)

func amt(currency, issuer string, value int64) ledger.Amount {
	if currency == ledger.NativeCurrency {
		return ledger.NativeAmount(decimal.NewFromInt(value))
	}
	return ledger.IssuedAmount(currency, issuer, decimal.NewFromInt(value))
}

func TestParseFills_NilMeta(t *testing.T) {
	fills := ParseFills(nil, "rtaker1111111111111111111111")
	if fills == nil || len(fills) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", fills)
	}
}

func TestParseFills_ConsumedOffer(t *testing.T) {
	prevGets := amt("ABC", "rissuer111111111111111111111", 100)
	prevPays := amt("XRP", "", 50)
	meta := &ledger.TxMeta{AffectedNodes: []ledger.AffectedNode{{
		Deleted: &ledger.OfferNode{
			Account:       "rmaker1111111111111111111111",
			Sequence:      7,
			TakerGets:     amt("ABC", "rissuer111111111111111111111", 0),
			TakerPays:     amt("XRP", "", 0),
			PrevTakerGets: &prevGets,
			PrevTakerPays: &prevPays,
		},
	}}}

	fills := ParseFills(meta, "rtaker1111111111111111111111")
	if len(fills) != 1 {
		t.Fatalf("Expected one fill, got %d", len(fills))
	}
	f := fills[0]
	if f.Counterparty != "rmaker1111111111111111111111" {
		t.Errorf("Wrong counterparty: %s", f.Counterparty)
	}
	if f.Received.Currency != "ABC" || !f.Received.Value.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Wrong received amount: %+v", f.Received)
	}
	if !f.Paid.Value.Equal(decimal.NewFromInt(50)) || !f.Paid.IsNative() {
		t.Errorf("Wrong paid amount: %+v", f.Paid)
	}
}

func TestParseFills_SkipsOwnAndUntouchedNodes(t *testing.T) {
	taker := "rtaker1111111111111111111111"
	prevGets := amt("ABC", "rissuer111111111111111111111", 100)
	prevPays := amt("XRP", "", 50)
	meta := &ledger.TxMeta{AffectedNodes: []ledger.AffectedNode{
		// The taker's own resting remainder.
		{Created: &ledger.OfferNode{Account: taker, Sequence: 9}},
		// The taker appearing as a modified node.
		{Modified: &ledger.OfferNode{Account: taker, PrevTakerGets: &prevGets, PrevTakerPays: &prevPays}},
		// A cancellation-style deletion without previous fields.
		{Deleted: &ledger.OfferNode{Account: "rmaker1111111111111111111111", Sequence: 3}},
	}}

	if fills := ParseFills(meta, taker); len(fills) != 0 {
		t.Errorf("Expected no fills, got %v", fills)
	}
}

func TestExtractOfferSequence(t *testing.T) {
	account := "rmaker1111111111111111111111"
	meta := &ledger.TxMeta{AffectedNodes: []ledger.AffectedNode{
		{Created: &ledger.OfferNode{Account: "rother1111111111111111111111", Sequence: 4}},
		{Created: &ledger.OfferNode{Account: account, Sequence: 12}},
	}}
	if got := extractOfferSequence(meta, account, 99); got != 12 {
		t.Errorf("Expected created-node sequence 12, got %d", got)
	}
	if got := extractOfferSequence(&ledger.TxMeta{}, account, 99); got != 99 {
		t.Errorf("Expected fallback to tx sequence 99, got %d", got)
	}
}
