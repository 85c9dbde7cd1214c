package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultRequestTimeout = 10 * time.Second

// WSClient talks JSON-RPC over a websocket to a ledger node. Requests are
// serialized over a single connection; the connection is dialed lazily and
// redialed after a transport failure.
type WSClient struct {
	url     string
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
}

// NewWSClient creates a client for the node at url. Each request is bounded
// by timeout (or a default when zero). No connection is opened until the
// first request.
func NewWSClient(url string, timeout time.Duration, log zerolog.Logger) *WSClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &WSClient{
		url:     url,
		timeout: timeout,
		log:     log.With().Str("component", "ledger-ws").Logger(),
	}
}

// Close shuts the connection down.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

type wsRequest struct {
	ID      uint64         `json:"id"`
	Command string         `json:"command"`
	Params  map[string]any `json:"params,omitempty"`
}

type wsResponse struct {
	ID           uint64          `json:"id"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

func (c *WSClient) call(ctx context.Context, command string, params map[string]any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		dialer := websocket.Dialer{HandshakeTimeout: c.timeout}
		conn, _, err := dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			return fmt.Errorf("%w: dial %s: %v", ErrUnavailable, c.url, err)
		}
		c.conn = conn
		c.log.Info().Str("url", c.url).Msg("connected to ledger node")
	}

	c.nextID++
	req := wsRequest{ID: c.nextID, Command: command, Params: params}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	if err := c.conn.WriteJSON(req); err != nil {
		c.dropConn()
		return fmt.Errorf("%w: write: %v", ErrUnavailable, err)
	}

	var resp wsResponse
	for {
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.dropConn()
			return fmt.Errorf("%w: read: %v", ErrUnavailable, err)
		}
		if resp.ID == req.ID {
			break
		}
		// unsolicited or stale message, skip
	}

	if resp.Status != "success" {
		if resp.ErrorMessage == "actNotFound" {
			return fmt.Errorf("%w: %s", ErrAccountNotFound, command)
		}
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, command, resp.ErrorMessage)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %v", command, err)
	}
	return nil
}

func (c *WSClient) dropConn() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

type wsSubmitResult struct {
	EngineResult string          `json:"engine_result"`
	TxHash       string          `json:"tx_hash"`
	LedgerIndex  uint32          `json:"ledger_index"`
	Validated    bool            `json:"validated"`
	Sequence     uint32          `json:"sequence"`
	Meta         json.RawMessage `json:"meta,omitempty"`
}

type wsMetaNode struct {
	EntryType string          `json:"LedgerEntryType"`
	Kind      string          `json:"kind"` // CreatedNode | ModifiedNode | DeletedNode
	Final     json.RawMessage `json:"FinalFields,omitempty"`
	New       json.RawMessage `json:"NewFields,omitempty"`
	Previous  json.RawMessage `json:"PreviousFields,omitempty"`
}

type wsOfferFields struct {
	Account   string  `json:"Account"`
	Sequence  uint32  `json:"Sequence"`
	TakerGets *Amount `json:"TakerGets,omitempty"`
	TakerPays *Amount `json:"TakerPays,omitempty"`
}

// SubmitTransaction submits a signed transaction and waits for validation.
func (c *WSClient) SubmitTransaction(ctx context.Context, tx SignedTx) (*TxResult, error) {
	params := map[string]any{
		"tx_blob": hex.EncodeToString(tx.Blob),
		"tx_json": txJSON(tx),
	}
	var res wsSubmitResult
	if err := c.call(ctx, "submit", params, &res); err != nil {
		return nil, err
	}

	meta, err := decodeMeta(res.Meta)
	if err != nil {
		return nil, err
	}
	return &TxResult{
		Hash:        res.TxHash,
		LedgerIndex: res.LedgerIndex,
		ResultCode:  res.EngineResult,
		Validated:   res.Validated,
		Sequence:    res.Sequence,
		Meta:        meta,
	}, nil
}

func txJSON(tx SignedTx) map[string]any {
	out := map[string]any{
		"TransactionType": tx.Tx.TxType(),
		"Account":         tx.Account,
	}
	switch t := tx.Tx.(type) {
	case Payment:
		out["Destination"] = t.To
		out["Amount"] = t.Amount
	case TrustSet:
		out["LimitAmount"] = t.Limit
	case OfferCreate:
		out["TakerGets"] = t.TakerGets
		out["TakerPays"] = t.TakerPays
		if t.Flags != 0 {
			out["Flags"] = t.Flags
		}
		if t.Expiration != 0 {
			out["Expiration"] = t.Expiration
		}
	case OfferCancel:
		out["OfferSequence"] = t.OfferSequence
	}
	return out
}

func decodeMeta(raw json.RawMessage) (*TxMeta, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var nodes struct {
		AffectedNodes []wsMetaNode `json:"AffectedNodes"`
	}
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, fmt.Errorf("decode tx meta: %v", err)
	}

	meta := &TxMeta{}
	for _, n := range nodes.AffectedNodes {
		if n.EntryType != "Offer" {
			continue
		}
		node, err := decodeOfferNode(n)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		switch n.Kind {
		case "CreatedNode":
			meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{Created: node})
		case "ModifiedNode":
			meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{Modified: node})
		case "DeletedNode":
			meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{Deleted: node})
		}
	}
	return meta, nil
}

func decodeOfferNode(n wsMetaNode) (*OfferNode, error) {
	fieldsRaw := n.Final
	if len(fieldsRaw) == 0 {
		fieldsRaw = n.New
	}
	if len(fieldsRaw) == 0 {
		return nil, nil
	}
	var fields wsOfferFields
	if err := json.Unmarshal(fieldsRaw, &fields); err != nil {
		return nil, fmt.Errorf("decode offer fields: %v", err)
	}

	node := &OfferNode{
		Account:  fields.Account,
		Sequence: fields.Sequence,
	}
	if fields.TakerGets != nil {
		node.TakerGets = *fields.TakerGets
	}
	if fields.TakerPays != nil {
		node.TakerPays = *fields.TakerPays
	}

	if len(n.Previous) > 0 {
		var prev wsOfferFields
		if err := json.Unmarshal(n.Previous, &prev); err != nil {
			return nil, fmt.Errorf("decode previous offer fields: %v", err)
		}
		node.PrevTakerGets = prev.TakerGets
		node.PrevTakerPays = prev.TakerPays
	}
	return node, nil
}

type wsAccountInfo struct {
	Balance string `json:"balance"`
}

// GetAccountBalance returns the native balance of an address.
func (c *WSClient) GetAccountBalance(ctx context.Context, address string) (string, error) {
	var res wsAccountInfo
	if err := c.call(ctx, "account_info", map[string]any{"account": address}, &res); err != nil {
		return "", err
	}
	return res.Balance, nil
}

type wsTrustLine struct {
	Account  string `json:"account"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
	Limit    string `json:"limit"`
}

// GetTrustLines returns the credit lines held by an address.
func (c *WSClient) GetTrustLines(ctx context.Context, address string) ([]TrustLine, error) {
	var res struct {
		Lines []wsTrustLine `json:"lines"`
	}
	if err := c.call(ctx, "account_lines", map[string]any{"account": address}, &res); err != nil {
		return nil, err
	}
	lines := make([]TrustLine, 0, len(res.Lines))
	for _, l := range res.Lines {
		balance, err := decimal.NewFromString(l.Balance)
		if err != nil {
			return nil, fmt.Errorf("trust line balance %q: %v", l.Balance, err)
		}
		limit, err := decimal.NewFromString(l.Limit)
		if err != nil {
			return nil, fmt.Errorf("trust line limit %q: %v", l.Limit, err)
		}
		lines = append(lines, TrustLine{
			Account:  l.Account,
			Currency: l.Currency,
			Balance:  balance,
			Limit:    limit,
		})
	}
	return lines, nil
}

type wsBookOffer struct {
	Account   string `json:"Account"`
	Sequence  uint32 `json:"Sequence"`
	TakerGets Amount `json:"TakerGets"`
	TakerPays Amount `json:"TakerPays"`
	Quality   string `json:"quality"`
}

// GetOrderBook returns the aggregated book for a pair, best quality first.
func (c *WSClient) GetOrderBook(ctx context.Context, takerGets, takerPays Asset, limit int) ([]BookOffer, error) {
	params := map[string]any{
		"taker_gets": takerGets,
		"taker_pays": takerPays,
		"limit":      limit,
	}
	var res struct {
		Offers []wsBookOffer `json:"offers"`
	}
	if err := c.call(ctx, "book_offers", params, &res); err != nil {
		return nil, err
	}
	offers := make([]BookOffer, 0, len(res.Offers))
	for _, o := range res.Offers {
		quality, err := decimal.NewFromString(o.Quality)
		if err != nil {
			return nil, fmt.Errorf("offer quality %q: %v", o.Quality, err)
		}
		offers = append(offers, BookOffer{
			Account:   o.Account,
			Sequence:  o.Sequence,
			TakerGets: o.TakerGets,
			TakerPays: o.TakerPays,
			Quality:   quality,
		})
	}
	return offers, nil
}

type wsAccountOffer struct {
	Sequence   uint32 `json:"seq"`
	TakerGets  Amount `json:"taker_gets"`
	TakerPays  Amount `json:"taker_pays"`
	Expiration int64  `json:"expiration,omitempty"`
}

// GetAccountOffers returns the resting offers owned by an address.
func (c *WSClient) GetAccountOffers(ctx context.Context, address string) ([]AccountOffer, error) {
	var res struct {
		Offers []wsAccountOffer `json:"offers"`
	}
	if err := c.call(ctx, "account_offers", map[string]any{"account": address}, &res); err != nil {
		return nil, err
	}
	offers := make([]AccountOffer, 0, len(res.Offers))
	for _, o := range res.Offers {
		offers = append(offers, AccountOffer{
			Sequence:   o.Sequence,
			TakerGets:  o.TakerGets,
			TakerPays:  o.TakerPays,
			Expiration: o.Expiration,
		})
	}
	return offers, nil
}

// AccountExists reports whether an address has a funded ledger entry.
func (c *WSClient) AccountExists(ctx context.Context, address string) (bool, error) {
	var res wsAccountInfo
	err := c.call(ctx, "account_info", map[string]any{"account": address}, &res)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	return false, err
}
