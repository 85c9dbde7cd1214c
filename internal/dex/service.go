package dex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"rwa-platform/internal/ledger"
	"rwa-platform/internal/signing"
	"rwa-platform/internal/trade"
)

const (
	// MinBookLimit and MaxBookLimit bound order book queries.
	MinBookLimit = 1
	MaxBookLimit = 100
	// DefaultBookLimit applies when a caller passes no limit.
	DefaultBookLimit = 20
)

// Service manages trading offers and executions on the ledger's built-in
// exchange: resting offers, cancellations, immediate-or-cancel market
// orders, order book queries and pair statistics. Matching itself is the
// ledger's job; this layer submits, observes and records.
type Service struct {
	gateway ledger.Gateway
	signers signing.Gateway
	trades  *trade.Ledger
	locks   *ledger.AccountLocks
	log     zerolog.Logger
}

// NewService wires a dex service. locks must be shared with every other
// submitter so per-account sequence ordering holds process-wide.
func NewService(gateway ledger.Gateway, signers signing.Gateway, trades *trade.Ledger, locks *ledger.AccountLocks, log zerolog.Logger) *Service {
	return &Service{
		gateway: gateway,
		signers: signers,
		trades:  trades,
		locks:   locks,
		log:     log.With().Str("component", "dex").Logger(),
	}
}

func validateOfferAmounts(takerGets, takerPays ledger.Amount) error {
	if err := takerGets.Validate(); err != nil {
		return fmt.Errorf("%w: taker_gets: %v", ErrInvalidOffer, err)
	}
	if err := takerPays.Validate(); err != nil {
		return fmt.Errorf("%w: taker_pays: %v", ErrInvalidOffer, err)
	}
	if takerGets.SameAsset(takerPays) {
		return fmt.Errorf("%w: taker_gets and taker_pays must differ", ErrInvalidOffer)
	}
	return nil
}

// CreateOffer submits a resting offer and records it locally with the
// ledger-assigned offer sequence number.
func (s *Service) CreateOffer(ctx context.Context, walletID string, takerGets, takerPays ledger.Amount, expiresAt *time.Time) (*trade.Order, error) {
	if err := validateOfferAmounts(takerGets, takerPays); err != nil {
		return nil, err
	}
	var expiration int64
	if expiresAt != nil {
		if expiresAt.Before(time.Now()) {
			return nil, ErrExpirationInPast
		}
		expiration = expiresAt.Unix()
	}

	signer, err := s.signers.GetSigner(ctx, walletID)
	if err != nil {
		return nil, err
	}
	account := signer.Address()

	unlock := s.locks.Lock(account)
	defer unlock()

	tx := ledger.OfferCreate{
		Account:    account,
		TakerGets:  takerGets,
		TakerPays:  takerPays,
		Expiration: expiration,
	}
	signed, err := signer.Sign(tx)
	if err != nil {
		return nil, err
	}
	res, err := ledger.Submit(ctx, s.gateway, signed, s.log)
	if err != nil {
		return nil, err
	}

	order := &trade.Order{
		ID:            "ord_" + uuid.New().String(),
		WalletID:      walletID,
		TakerGets:     takerGets,
		TakerPays:     takerPays,
		TxHash:        res.Hash,
		OfferSequence: extractOfferSequence(res.Meta, account, res.Sequence),
		Status:        trade.OrderActive,
		CreatedAt:     time.Now().UTC(),
		ExpiresAt:     expiresAt,
	}
	s.trades.RecordOrder(order)

	s.log.Info().
		Str("wallet_id", walletID).
		Str("order_id", order.ID).
		Uint32("offer_sequence", order.OfferSequence).
		Str("tx_hash", res.Hash).
		Msg("offer created")
	return order, nil
}

// CancelOffer cancels the wallet's active offer with the given sequence
// number and marks the local order cancelled.
func (s *Service) CancelOffer(ctx context.Context, walletID string, offerSequence uint32) (*trade.Order, error) {
	if _, err := s.trades.ActiveOrder(walletID, offerSequence); err != nil {
		return nil, err
	}

	signer, err := s.signers.GetSigner(ctx, walletID)
	if err != nil {
		return nil, err
	}
	account := signer.Address()

	unlock := s.locks.Lock(account)
	defer unlock()

	signed, err := signer.Sign(ledger.OfferCancel{Account: account, OfferSequence: offerSequence})
	if err != nil {
		return nil, err
	}
	res, err := ledger.Submit(ctx, s.gateway, signed, s.log)
	if err != nil {
		return nil, err
	}

	order, err := s.trades.MarkCancelled(walletID, offerSequence, res.Hash)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("wallet_id", walletID).
		Uint32("offer_sequence", offerSequence).
		Str("tx_hash", res.Hash).
		Msg("offer cancelled")
	return order, nil
}

// ExecuteMarketOrder submits an immediate-or-cancel offer and records the
// resulting trade with its executed fills. Zero fills is a valid outcome:
// the order completed against an empty book.
func (s *Service) ExecuteMarketOrder(ctx context.Context, walletID string, takerGets, takerPays ledger.Amount) (*trade.Trade, error) {
	if err := validateOfferAmounts(takerGets, takerPays); err != nil {
		return nil, err
	}

	signer, err := s.signers.GetSigner(ctx, walletID)
	if err != nil {
		return nil, err
	}
	account := signer.Address()

	unlock := s.locks.Lock(account)
	defer unlock()

	tx := ledger.OfferCreate{
		Account:   account,
		TakerGets: takerGets,
		TakerPays: takerPays,
		Flags:     ledger.TFImmediateOrCancel,
	}
	signed, err := signer.Sign(tx)
	if err != nil {
		return nil, err
	}
	res, err := ledger.Submit(ctx, s.gateway, signed, s.log)
	if err != nil {
		return nil, err
	}

	fills := ParseFills(res.Meta, account)
	t := &trade.Trade{
		ID:         "trd_" + uuid.New().String(),
		WalletID:   walletID,
		TakerGets:  takerGets,
		TakerPays:  takerPays,
		Fills:      fills,
		TxHash:     res.Hash,
		Status:     "completed",
		Type:       trade.TradeMarket,
		ExecutedAt: time.Now().UTC(),
	}
	s.trades.RecordTrade(t)

	s.log.Info().
		Str("wallet_id", walletID).
		Str("trade_id", t.ID).
		Int("fills", len(fills)).
		Str("tx_hash", res.Hash).
		Msg("market order executed")
	return t, nil
}

// GetOrderBook queries the ledger's book for a pair, ordered by the
// ledger's own priority, capped at limit.
func (s *Service) GetOrderBook(ctx context.Context, takerGets, takerPays ledger.Asset, limit int) ([]ledger.BookOffer, error) {
	if limit < MinBookLimit || limit > MaxBookLimit {
		return nil, fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidBookLimit, limit, MinBookLimit, MaxBookLimit)
	}
	return s.gateway.GetOrderBook(ctx, takerGets, takerPays, limit)
}

// ListOffers returns the wallet's resting offers as the ledger sees them.
func (s *Service) ListOffers(ctx context.Context, walletID string) ([]ledger.AccountOffer, error) {
	signer, err := s.signers.GetSigner(ctx, walletID)
	if err != nil {
		return nil, err
	}
	return s.gateway.GetAccountOffers(ctx, signer.Address())
}

// LocalOrders returns the wallet's locally recorded orders, newest first.
func (s *Service) LocalOrders(walletID string) []*trade.Order {
	return s.trades.Orders(walletID)
}

// History returns the wallet's recorded orders and trades, newest first.
func (s *Service) History(walletID string, limit int) ([]trade.Entry, error) {
	return s.trades.History(walletID, limit)
}

// PairInfo summarizes both directions of a trading pair's book.
type PairInfo struct {
	Base          ledger.Asset     `json:"base"`
	Counter       ledger.Asset     `json:"counter"`
	BestBid       *decimal.Decimal `json:"best_bid,omitempty"`
	BestAsk       *decimal.Decimal `json:"best_ask,omitempty"`
	Spread        *decimal.Decimal `json:"spread,omitempty"`
	SpreadPercent *decimal.Decimal `json:"spread_percent,omitempty"`
	BidCount      int              `json:"bid_count"`
	AskCount      int              `json:"ask_count"`
}

// GetTradingPairInfo derives best bid/ask for base priced in counter, and
// the spread when both sides of the book have at least one offer. Fails
// with ErrNoLiquidity when neither side has any offers.
func (s *Service) GetTradingPairInfo(ctx context.Context, base, counter ledger.Asset) (*PairInfo, error) {
	// Asks: offers giving base, wanting counter. Price = pays/gets.
	asks, err := s.gateway.GetOrderBook(ctx, base, counter, DefaultBookLimit)
	if err != nil {
		return nil, err
	}
	// Bids: offers giving counter, wanting base. Price = gets/pays.
	bids, err := s.gateway.GetOrderBook(ctx, counter, base, DefaultBookLimit)
	if err != nil {
		return nil, err
	}

	if len(asks) == 0 && len(bids) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoLiquidity, base.Currency, counter.Currency)
	}

	info := &PairInfo{
		Base:     base,
		Counter:  counter,
		AskCount: len(asks),
		BidCount: len(bids),
	}

	if len(asks) > 0 {
		best := asks[0].TakerPays.Value.Div(asks[0].TakerGets.Value)
		for _, o := range asks[1:] {
			price := o.TakerPays.Value.Div(o.TakerGets.Value)
			if price.LessThan(best) {
				best = price
			}
		}
		info.BestAsk = &best
	}
	if len(bids) > 0 {
		best := bids[0].TakerGets.Value.Div(bids[0].TakerPays.Value)
		for _, o := range bids[1:] {
			price := o.TakerGets.Value.Div(o.TakerPays.Value)
			if price.GreaterThan(best) {
				best = price
			}
		}
		info.BestBid = &best
	}

	if info.BestAsk != nil && info.BestBid != nil && !info.BestBid.IsZero() {
		spread := info.BestAsk.Sub(*info.BestBid)
		percent := spread.Div(*info.BestBid).Mul(decimal.NewFromInt(100)).Round(4)
		info.Spread = &spread
		info.SpreadPercent = &percent
	}
	return info, nil
}

// Stats aggregates recorded dex activity.
func (s *Service) Stats() *trade.Stats {
	return s.trades.Stats()
}
