package ledger

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// StubLedger is a deterministic in-memory Gateway used by tests and by the
// service in stub mode. It models funded accounts, trust lines, resting
// offers with per-account sequence numbers, and immediate-or-cancel crossing
// that produces the same metadata shapes a real node reports.
type StubLedger struct {
	mu          sync.Mutex
	accounts    map[string]*stubAccount
	ledgerIndex uint32

	// failure injection for tests
	transientFailures int
	rejectNextCode    string

	seqHistory map[string][]uint32
}

type stubAccount struct {
	balance  decimal.Decimal
	sequence uint32
	lines    map[Asset]*TrustLine
	offers   []*stubOffer
}

type stubOffer struct {
	account    string
	sequence   uint32
	takerGets  Amount
	takerPays  Amount
	expiration int64
}

// NewStubLedger creates an empty stub ledger.
func NewStubLedger() *StubLedger {
	return &StubLedger{
		accounts:    make(map[string]*stubAccount),
		ledgerIndex: 1,
		seqHistory:  make(map[string][]uint32),
	}
}

// FundAccount creates an account with a native balance, activating it.
func (s *StubLedger) FundAccount(address string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[address] = &stubAccount{
		balance: balance,
		lines:   make(map[Asset]*TrustLine),
	}
}

// SetTrustLine installs a credit line directly, bypassing a TrustSet.
func (s *StubLedger) SetTrustLine(address, currency, issuer string, balance, limit decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[address]
	if !ok {
		return
	}
	key := Asset{Currency: currency, Issuer: issuer}
	acct.lines[key] = &TrustLine{Account: issuer, Currency: currency, Balance: balance, Limit: limit}
}

// FailTransient makes the next n submissions fail with ErrUnavailable.
func (s *StubLedger) FailTransient(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transientFailures = n
}

// RejectNextWith makes the next submission confirm with the given result code.
func (s *StubLedger) RejectNextWith(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectNextCode = code
}

// SequenceHistory returns every sequence number assigned to an account, in
// assignment order.
func (s *StubLedger) SequenceHistory(address string) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint32, len(s.seqHistory[address]))
	copy(out, s.seqHistory[address])
	return out
}

// SubmitTransaction applies a signed transaction against the in-memory state.
func (s *StubLedger) SubmitTransaction(ctx context.Context, tx SignedTx) (*TxResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transientFailures > 0 {
		s.transientFailures--
		return nil, fmt.Errorf("%w: connection reset", ErrUnavailable)
	}

	acct, ok := s.accounts[tx.Account]
	if !ok {
		return s.result(tx, 0, "terNO_ACCOUNT", nil), nil
	}

	acct.sequence++
	seq := acct.sequence
	s.seqHistory[tx.Account] = append(s.seqHistory[tx.Account], seq)
	s.ledgerIndex++

	if s.rejectNextCode != "" {
		code := s.rejectNextCode
		s.rejectNextCode = ""
		return s.result(tx, seq, code, nil), nil
	}

	switch t := tx.Tx.(type) {
	case Payment:
		code := s.applyPayment(t)
		return s.result(tx, seq, code, nil), nil
	case TrustSet:
		s.applyTrustSet(t)
		return s.result(tx, seq, "tesSUCCESS", nil), nil
	case OfferCreate:
		code, meta := s.applyOfferCreate(t, seq)
		return s.result(tx, seq, code, meta), nil
	case OfferCancel:
		code, meta := s.applyOfferCancel(t)
		return s.result(tx, seq, code, meta), nil
	default:
		return s.result(tx, seq, "temUNKNOWN", nil), nil
	}
}

func (s *StubLedger) result(tx SignedTx, seq uint32, code string, meta *TxMeta) *TxResult {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s:%d", tx.Account, seq, tx.Tx.TxType(), s.ledgerIndex)))
	return &TxResult{
		Hash:        fmt.Sprintf("%X", sum[:16]),
		LedgerIndex: s.ledgerIndex,
		ResultCode:  code,
		Validated:   true,
		Sequence:    seq,
		Meta:        meta,
	}
}

func (s *StubLedger) applyPayment(p Payment) string {
	if p.From == p.To {
		// self-payment: issuance bookkeeping only, no balance movement
		return "tesSUCCESS"
	}
	dest, ok := s.accounts[p.To]
	if !ok {
		return "tecNO_DST"
	}
	src := s.accounts[p.From]

	if p.Amount.IsNative() {
		if src.balance.LessThan(p.Amount.Value) {
			return "tecUNFUNDED_PAYMENT"
		}
		src.balance = src.balance.Sub(p.Amount.Value)
		dest.balance = dest.balance.Add(p.Amount.Value)
		return "tesSUCCESS"
	}

	key := p.Amount.Asset()

	// Issuer sending its own currency mints against the holder's line.
	if p.From == p.Amount.Issuer {
		line, ok := dest.lines[key]
		if !ok {
			return "tecNO_LINE"
		}
		next := line.Balance.Add(p.Amount.Value)
		if next.GreaterThan(line.Limit) {
			return "tecPATH_DRY"
		}
		line.Balance = next
		return "tesSUCCESS"
	}

	// Holder paying: needs sufficient issued balance.
	srcLine, ok := src.lines[key]
	if !ok || srcLine.Balance.LessThan(p.Amount.Value) {
		return "tecUNFUNDED_PAYMENT"
	}

	// Paying the issuer burns; paying another holder needs their line.
	if p.To == p.Amount.Issuer {
		srcLine.Balance = srcLine.Balance.Sub(p.Amount.Value)
		return "tesSUCCESS"
	}

	destLine, ok := dest.lines[key]
	if !ok {
		return "tecNO_LINE"
	}
	if destLine.Balance.Add(p.Amount.Value).GreaterThan(destLine.Limit) {
		return "tecPATH_DRY"
	}
	srcLine.Balance = srcLine.Balance.Sub(p.Amount.Value)
	destLine.Balance = destLine.Balance.Add(p.Amount.Value)
	return "tesSUCCESS"
}

func (s *StubLedger) applyTrustSet(t TrustSet) {
	acct := s.accounts[t.Account]
	key := t.Limit.Asset()
	line, ok := acct.lines[key]
	if !ok {
		acct.lines[key] = &TrustLine{
			Account:  t.Limit.Issuer,
			Currency: t.Limit.Currency,
			Balance:  decimal.Zero,
			Limit:    t.Limit.Value,
		}
		return
	}
	// Re-establishing the same or a new limit is a plain update.
	line.Limit = t.Limit.Value
}

func (s *StubLedger) applyOfferCreate(o OfferCreate, seq uint32) (string, *TxMeta) {
	if o.Expiration > 0 && o.Expiration <= time.Now().Unix() {
		return "tecEXPIRED", nil
	}

	meta := &TxMeta{}
	remainingGets := o.TakerGets.Value
	remainingPays := o.TakerPays.Value

	// Opposing offers give what we want and want what we give.
	opposing := s.collectBook(o.TakerPays.Asset(), o.TakerGets.Asset())

	for _, off := range opposing {
		if off.account == o.Account {
			continue
		}
		if !remainingPays.IsPositive() {
			break
		}
		// Their price (what they want per unit they give) must not
		// exceed what we offer per unit we want.
		theirPrice := off.takerPays.Value.Div(off.takerGets.Value)
		ourPrice := remainingGets.Div(remainingPays)
		if theirPrice.GreaterThan(ourPrice) {
			break
		}

		take := decimal.Min(remainingPays, off.takerGets.Value)
		give := take.Mul(theirPrice)

		prevGets := off.takerGets
		prevPays := off.takerPays
		off.takerGets.Value = off.takerGets.Value.Sub(take)
		off.takerPays.Value = off.takerPays.Value.Sub(give)

		node := &OfferNode{
			Account:       off.account,
			Sequence:      off.sequence,
			TakerGets:     off.takerGets,
			TakerPays:     off.takerPays,
			PrevTakerGets: &prevGets,
			PrevTakerPays: &prevPays,
		}
		if off.takerGets.Value.IsPositive() {
			meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{Modified: node})
		} else {
			meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{Deleted: node})
			s.removeOffer(off.account, off.sequence)
		}

		s.settleFill(o.Account, off.account, Amount{Currency: o.TakerPays.Currency, Issuer: o.TakerPays.Issuer, Value: take},
			Amount{Currency: o.TakerGets.Currency, Issuer: o.TakerGets.Issuer, Value: give})

		remainingPays = remainingPays.Sub(take)
		remainingGets = remainingGets.Sub(give)
	}

	immediateOrCancel := o.Flags&TFImmediateOrCancel != 0
	if !immediateOrCancel && remainingPays.IsPositive() {
		rest := &stubOffer{
			account:    o.Account,
			sequence:   seq,
			takerGets:  Amount{Currency: o.TakerGets.Currency, Issuer: o.TakerGets.Issuer, Value: remainingGets},
			takerPays:  Amount{Currency: o.TakerPays.Currency, Issuer: o.TakerPays.Issuer, Value: remainingPays},
			expiration: o.Expiration,
		}
		s.accounts[o.Account].offers = append(s.accounts[o.Account].offers, rest)
		meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{Created: &OfferNode{
			Account:   o.Account,
			Sequence:  seq,
			TakerGets: rest.takerGets,
			TakerPays: rest.takerPays,
		}})
	}

	return "tesSUCCESS", meta
}

// settleFill moves balances for one fill best-effort: lines are adjusted
// when present, native balances always.
func (s *StubLedger) settleFill(taker, maker string, takerReceives, takerPays Amount) {
	s.adjust(maker, takerReceives, decimal.NewFromInt(-1))
	s.adjust(taker, takerReceives, decimal.NewFromInt(1))
	s.adjust(taker, takerPays, decimal.NewFromInt(-1))
	s.adjust(maker, takerPays, decimal.NewFromInt(1))
}

func (s *StubLedger) adjust(address string, amt Amount, sign decimal.Decimal) {
	acct, ok := s.accounts[address]
	if !ok {
		return
	}
	delta := amt.Value.Mul(sign)
	if amt.IsNative() {
		acct.balance = acct.balance.Add(delta)
		return
	}
	if address == amt.Issuer {
		return
	}
	if line, ok := acct.lines[amt.Asset()]; ok {
		line.Balance = line.Balance.Add(delta)
	}
}

func (s *StubLedger) applyOfferCancel(o OfferCancel) (string, *TxMeta) {
	acct := s.accounts[o.Account]
	for _, off := range acct.offers {
		if off.sequence == o.OfferSequence {
			s.removeOffer(o.Account, o.OfferSequence)
			// A cancelled offer is deleted with untouched fields; no
			// prev fields means no fill is derived from it.
			return "tesSUCCESS", &TxMeta{AffectedNodes: []AffectedNode{{
				Deleted: &OfferNode{
					Account:   off.account,
					Sequence:  off.sequence,
					TakerGets: off.takerGets,
					TakerPays: off.takerPays,
				},
			}}}
		}
	}
	// Cancelling a missing offer succeeds on the ledger.
	return "tesSUCCESS", &TxMeta{}
}

func (s *StubLedger) removeOffer(address string, sequence uint32) {
	acct := s.accounts[address]
	for i, off := range acct.offers {
		if off.sequence == sequence {
			acct.offers = append(acct.offers[:i], acct.offers[i+1:]...)
			return
		}
	}
}

// collectBook gathers resting offers giving `gets` and wanting `pays`,
// sorted best quality first.
func (s *StubLedger) collectBook(gets, pays Asset) []*stubOffer {
	now := time.Now().Unix()
	var book []*stubOffer
	for _, acct := range s.accounts {
		for _, off := range acct.offers {
			if off.expiration > 0 && off.expiration <= now {
				continue
			}
			if off.takerGets.Asset() == gets && off.takerPays.Asset() == pays {
				book = append(book, off)
			}
		}
	}
	sort.Slice(book, func(i, j int) bool {
		qi := book[i].takerPays.Value.Div(book[i].takerGets.Value)
		qj := book[j].takerPays.Value.Div(book[j].takerGets.Value)
		if qi.Equal(qj) {
			return book[i].sequence < book[j].sequence
		}
		return qi.LessThan(qj)
	})
	return book
}

// GetAccountBalance returns the native balance of an address.
func (s *StubLedger) GetAccountBalance(ctx context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[address]
	if !ok {
		return "", ErrAccountNotFound
	}
	return acct.balance.String(), nil
}

// GetTrustLines returns the credit lines held by an address.
func (s *StubLedger) GetTrustLines(ctx context.Context, address string) ([]TrustLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[address]
	if !ok {
		return nil, ErrAccountNotFound
	}
	lines := make([]TrustLine, 0, len(acct.lines))
	for _, line := range acct.lines {
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Currency != lines[j].Currency {
			return lines[i].Currency < lines[j].Currency
		}
		return lines[i].Account < lines[j].Account
	})
	return lines, nil
}

// GetOrderBook returns the aggregated book for a pair, best quality first.
func (s *StubLedger) GetOrderBook(ctx context.Context, takerGets, takerPays Asset, limit int) ([]BookOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book := s.collectBook(takerGets, takerPays)
	if limit > 0 && len(book) > limit {
		book = book[:limit]
	}
	out := make([]BookOffer, 0, len(book))
	for _, off := range book {
		out = append(out, BookOffer{
			Account:   off.account,
			Sequence:  off.sequence,
			TakerGets: off.takerGets,
			TakerPays: off.takerPays,
			Quality:   off.takerPays.Value.Div(off.takerGets.Value),
		})
	}
	return out, nil
}

// GetAccountOffers returns the resting offers owned by an address.
func (s *StubLedger) GetAccountOffers(ctx context.Context, address string) ([]AccountOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[address]
	if !ok {
		return nil, ErrAccountNotFound
	}
	out := make([]AccountOffer, 0, len(acct.offers))
	for _, off := range acct.offers {
		out = append(out, AccountOffer{
			Sequence:   off.sequence,
			TakerGets:  off.takerGets,
			TakerPays:  off.takerPays,
			Expiration: off.expiration,
		})
	}
	return out, nil
}

// AccountExists reports whether an address has a funded entry.
func (s *StubLedger) AccountExists(ctx context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[address]
	return ok, nil
}
