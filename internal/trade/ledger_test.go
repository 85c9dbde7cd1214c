package trade

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rwa-platform/internal/ledger"
)

func testOrder(walletID string, seq uint32, at time.Time) *Order {
	return &Order{
		ID:            fmt.Sprintf("ord_%d", seq),
		WalletID:      walletID,
		TakerGets:     ledger.IssuedAmount("ABC", "rissuer111111111111111111111", decimal.NewFromInt(100)),
		TakerPays:     ledger.NativeAmount(decimal.NewFromInt(50)),
		TxHash:        fmt.Sprintf("HASH%d", seq),
		OfferSequence: seq,
		Status:        OrderActive,
		CreatedAt:     at,
	}
}

func TestActiveOrder_And_MarkCancelled(t *testing.T) {
	l := NewLedger()
	l.RecordOrder(testOrder("w1", 5, time.Now()))

	o, err := l.ActiveOrder("w1", 5)
	if err != nil {
		t.Fatalf("ActiveOrder failed: %v", err)
	}
	if o.OfferSequence != 5 {
		t.Errorf("Wrong order returned: %+v", o)
	}

	cancelled, err := l.MarkCancelled("w1", 5, "CANCELHASH")
	if err != nil {
		t.Fatalf("MarkCancelled failed: %v", err)
	}
	if cancelled.Status != OrderCancelled || cancelled.CancelTxHash != "CANCELHASH" {
		t.Errorf("Cancellation not recorded: %+v", cancelled)
	}

	if _, err := l.ActiveOrder("w1", 5); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Cancelled order must not be active, got %v", err)
	}
	if _, err := l.MarkCancelled("w1", 5, "X"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Double cancel must fail, got %v", err)
	}
}

func TestActiveOrder_WrongWallet(t *testing.T) {
	l := NewLedger()
	l.RecordOrder(testOrder("w1", 5, time.Now()))
	if _, err := l.ActiveOrder("w2", 5); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Orders must be scoped per wallet, got %v", err)
	}
}

func TestOrders_NewestFirst(t *testing.T) {
	l := NewLedger()
	base := time.Now()
	for i := uint32(1); i <= 3; i++ {
		l.RecordOrder(testOrder("w1", i, base.Add(time.Duration(i)*time.Second)))
	}
	orders := l.Orders("w1")
	if len(orders) != 3 {
		t.Fatalf("Expected 3 orders, got %d", len(orders))
	}
	if orders[0].OfferSequence != 3 || orders[2].OfferSequence != 1 {
		t.Errorf("Expected newest first, got %d..%d", orders[0].OfferSequence, orders[2].OfferSequence)
	}
}

func TestHistory_DefaultAndBounds(t *testing.T) {
	l := NewLedger()
	base := time.Now()
	for i := uint32(1); i <= 30; i++ {
		l.RecordOrder(testOrder("w1", i, base.Add(time.Duration(i)*time.Second)))
	}

	entries, err := l.History("w1", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != DefaultHistoryLimit {
		t.Errorf("Expected default page of %d, got %d", DefaultHistoryLimit, len(entries))
	}
	if entries[0].Order.OfferSequence != 30 {
		t.Errorf("Expected newest entry first, got seq %d", entries[0].Order.OfferSequence)
	}

	for _, bad := range []int{-1, MaxHistoryLimit + 1} {
		if _, err := l.History("w1", bad); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("limit %d: expected ErrInvalidLimit, got %v", bad, err)
		}
	}

	entries, err = l.History("w1", 5)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("Expected 5 entries, got %d", len(entries))
	}
}

func TestRecord_CopiesInputs(t *testing.T) {
	l := NewLedger()
	o := testOrder("w1", 1, time.Now())
	l.RecordOrder(o)
	o.Status = OrderCancelled

	stored, err := l.ActiveOrder("w1", 1)
	if err != nil {
		t.Fatalf("Recorded order must be insulated from caller mutation: %v", err)
	}
	if stored.Status != OrderActive {
		t.Errorf("Stored order mutated externally")
	}
}

func TestStats_EmptyLedger(t *testing.T) {
	stats := NewLedger().Stats()
	if stats.TotalOrders != 0 || stats.TotalTrades != 0 || stats.TotalFills != 0 {
		t.Errorf("Empty ledger stats not zeroed: %+v", stats)
	}
}
