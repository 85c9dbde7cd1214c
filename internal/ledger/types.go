package ledger

import (
	"github.com/shopspring/decimal"
)

// Transaction flag bits, matching the ledger's OfferCreate flag values.
const (
	// TFImmediateOrCancel makes an offer match against existing liquidity
	// only; any unfilled remainder is dropped instead of resting.
	TFImmediateOrCancel uint32 = 0x00020000
)

// Transaction is a ledger transaction prior to signing. Concrete types carry
// the fields their transaction kind needs.
type Transaction interface {
	// TxType returns the ledger transaction type name.
	TxType() string
	// Account returns the address the transaction acts for.
	TxAccount() string
}

// Payment moves value (native or issued) between two addresses.
type Payment struct {
	From   string
	To     string
	Amount Amount
}

func (p Payment) TxType() string    { return "Payment" }
func (p Payment) TxAccount() string { return p.From }

// TrustSet declares a credit line: Account is willing to hold up to
// Limit.Value of Limit's issued currency from Limit.Issuer.
type TrustSet struct {
	Account string
	Limit   Amount
}

func (t TrustSet) TxType() string    { return "TrustSet" }
func (t TrustSet) TxAccount() string { return t.Account }

// OfferCreate places an offer on the ledger's order book. With the
// TFImmediateOrCancel flag set it acts as a market order.
type OfferCreate struct {
	Account    string
	TakerGets  Amount
	TakerPays  Amount
	Flags      uint32
	Expiration int64 // unix seconds, 0 for none
}

func (o OfferCreate) TxType() string    { return "OfferCreate" }
func (o OfferCreate) TxAccount() string { return o.Account }

// OfferCancel removes a resting offer by its sequence number.
type OfferCancel struct {
	Account       string
	OfferSequence uint32
}

func (o OfferCancel) TxType() string    { return "OfferCancel" }
func (o OfferCancel) TxAccount() string { return o.Account }

// SignedTx is a transaction plus the signature blob produced by a signer.
type SignedTx struct {
	Account string
	Tx      Transaction
	Blob    []byte
}

// TxResult is the outcome of a submitted transaction once the ledger has
// confirmed or rejected it.
type TxResult struct {
	Hash        string
	LedgerIndex uint32
	ResultCode  string
	Validated   bool
	// Sequence is the per-account sequence number the ledger assigned to
	// the transaction.
	Sequence uint32
	Meta     *TxMeta
}

// TxMeta describes the ledger entries a transaction touched.
type TxMeta struct {
	AffectedNodes []AffectedNode
}

// AffectedNode is one ledger entry change. Exactly one of the three fields
// is set.
type AffectedNode struct {
	Created  *OfferNode
	Modified *OfferNode
	Deleted  *OfferNode
}

// OfferNode is an order-book entry as it appears in transaction metadata.
// For modified and deleted nodes the Prev* fields hold the values before the
// transaction applied; TakerGets/TakerPays hold the final values.
type OfferNode struct {
	Account       string
	Sequence      uint32
	TakerGets     Amount
	TakerPays     Amount
	PrevTakerGets *Amount
	PrevTakerPays *Amount
}

// TrustLine is a holder's credit line toward an issuer.
type TrustLine struct {
	Account  string // issuer address
	Currency string
	Balance  decimal.Decimal
	Limit    decimal.Decimal
}

// BookOffer is one entry of an aggregated order book, best quality first.
type BookOffer struct {
	Account   string
	Sequence  uint32
	TakerGets Amount
	TakerPays Amount
	// Quality is TakerPays/TakerGets: the price the taker pays per unit
	// received. Lower is better for the taker.
	Quality decimal.Decimal
}

// AccountOffer is a resting offer owned by an account.
type AccountOffer struct {
	Sequence   uint32
	TakerGets  Amount
	TakerPays  Amount
	Expiration int64
}
