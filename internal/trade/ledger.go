package trade

import (
	"errors"
	"sync"
	"time"

	"rwa-platform/internal/ledger"
)

// Common errors
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidLimit  = errors.New("history limit out of range")
)

const (
	// DefaultHistoryLimit applies when a caller passes no limit.
	DefaultHistoryLimit = 20
	// MaxHistoryLimit bounds a single history page.
	MaxHistoryLimit = 100
)

// OrderStatus is the local lifecycle of a recorded offer.
type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderCancelled OrderStatus = "cancelled"
)

// TradeType distinguishes immediate-or-cancel executions from fills of
// resting offers.
type TradeType string

const (
	TradeMarket    TradeType = "market"
	TradeLimitFill TradeType = "limit-fill"
)

// Order is a locally recorded offer.
type Order struct {
	ID            string        `json:"id"`
	WalletID      string        `json:"wallet_id"`
	TakerGets     ledger.Amount `json:"taker_gets"`
	TakerPays     ledger.Amount `json:"taker_pays"`
	TxHash        string        `json:"tx_hash"`
	OfferSequence uint32        `json:"offer_sequence"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	ExpiresAt     *time.Time    `json:"expires_at,omitempty"`
	CancelTxHash  string        `json:"cancel_tx_hash,omitempty"`
}

// Fill is one executed match within a trade.
type Fill struct {
	Counterparty string        `json:"counterparty"`
	Received     ledger.Amount `json:"received"`
	Paid         ledger.Amount `json:"paid"`
}

// Trade is an executed market order and its fills. Immutable once recorded.
type Trade struct {
	ID         string        `json:"id"`
	WalletID   string        `json:"wallet_id"`
	TakerGets  ledger.Amount `json:"taker_gets"`
	TakerPays  ledger.Amount `json:"taker_pays"`
	Fills      []Fill        `json:"fills"`
	TxHash     string        `json:"tx_hash"`
	Status     string        `json:"status"`
	Type       TradeType     `json:"type"`
	ExecutedAt time.Time     `json:"executed_at"`
}

// Entry is one item of a wallet's history: an order or a trade.
type Entry struct {
	Kind  string    `json:"kind"` // "order" | "trade"
	At    time.Time `json:"at"`
	Order *Order    `json:"order,omitempty"`
	Trade *Trade    `json:"trade,omitempty"`
}

// Stats aggregates the ledger contents.
type Stats struct {
	TotalOrders     int `json:"total_orders"`
	ActiveOrders    int `json:"active_orders"`
	CancelledOrders int `json:"cancelled_orders"`
	TotalTrades     int `json:"total_trades"`
	TotalFills      int `json:"total_fills"`
}

// Ledger is an append-only per-wallet history of orders and trades.
type Ledger struct {
	mu      sync.RWMutex
	orders  map[string][]*Order // walletID -> orders, append order
	trades  map[string][]*Trade
	history map[string][]Entry
}

// NewLedger creates an empty trade ledger.
func NewLedger() *Ledger {
	return &Ledger{
		orders:  make(map[string][]*Order),
		trades:  make(map[string][]*Trade),
		history: make(map[string][]Entry),
	}
}

// RecordOrder appends an order to a wallet's history.
func (l *Ledger) RecordOrder(o *Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *o
	l.orders[o.WalletID] = append(l.orders[o.WalletID], &cp)
	l.history[o.WalletID] = append(l.history[o.WalletID], Entry{Kind: "order", At: cp.CreatedAt, Order: &cp})
}

// RecordTrade appends a trade to a wallet's history.
func (l *Ledger) RecordTrade(t *Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *t
	cp.Fills = append([]Fill(nil), t.Fills...)
	l.trades[t.WalletID] = append(l.trades[t.WalletID], &cp)
	l.history[t.WalletID] = append(l.history[t.WalletID], Entry{Kind: "trade", At: cp.ExecutedAt, Trade: &cp})
}

// ActiveOrder returns the wallet's active order with the given offer
// sequence number.
func (l *Ledger) ActiveOrder(walletID string, offerSequence uint32) (*Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, o := range l.orders[walletID] {
		if o.OfferSequence == offerSequence && o.Status == OrderActive {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

// MarkCancelled flips an active order to cancelled and records the
// cancellation transaction.
func (l *Ledger) MarkCancelled(walletID string, offerSequence uint32, cancelTxHash string) (*Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range l.orders[walletID] {
		if o.OfferSequence == offerSequence && o.Status == OrderActive {
			o.Status = OrderCancelled
			o.CancelTxHash = cancelTxHash
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

// Orders returns all recorded orders of a wallet, most recent first.
func (l *Ledger) Orders(walletID string) []*Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src := l.orders[walletID]
	out := make([]*Order, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		cp := *src[i]
		out = append(out, &cp)
	}
	return out
}

// History returns a wallet's most recent entries, newest first. A zero
// limit applies the default; limits outside 1..MaxHistoryLimit are
// rejected.
func (l *Ledger) History(walletID string, limit int) ([]Entry, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, ErrInvalidLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	src := l.history[walletID]
	out := make([]Entry, 0, limit)
	for i := len(src) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, src[i])
	}
	return out, nil
}

// Stats aggregates all recorded orders and trades.
func (l *Ledger) Stats() *Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stats := &Stats{}
	for _, orders := range l.orders {
		for _, o := range orders {
			stats.TotalOrders++
			switch o.Status {
			case OrderActive:
				stats.ActiveOrders++
			case OrderCancelled:
				stats.CancelledOrders++
			}
		}
	}
	for _, trades := range l.trades {
		stats.TotalTrades += len(trades)
		for _, t := range trades {
			stats.TotalFills += len(t.Fills)
		}
	}
	return stats
}
