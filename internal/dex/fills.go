package dex

import (
	"rwa-platform/internal/ledger"
	"rwa-platform/internal/trade"
)

// ParseFills extracts executed fills from transaction metadata. Every offer
// node that was modified or deleted with recorded previous fields represents
// one counterparty whose offer was consumed: the drop in its taker-gets is
// what the taker received from it, the drop in its taker-pays is what the
// taker paid it. Nodes without previous fields (creations, cancellations)
// carry no fill. An empty result is a valid outcome.
func ParseFills(meta *ledger.TxMeta, takerAddress string) []trade.Fill {
	fills := []trade.Fill{}
	if meta == nil {
		return fills
	}
	for _, n := range meta.AffectedNodes {
		node := n.Modified
		if node == nil {
			node = n.Deleted
		}
		if node == nil || node.Account == takerAddress {
			continue
		}
		if node.PrevTakerGets == nil || node.PrevTakerPays == nil {
			continue
		}

		received := node.PrevTakerGets.Value.Sub(node.TakerGets.Value)
		paid := node.PrevTakerPays.Value.Sub(node.TakerPays.Value)
		if !received.IsPositive() && !paid.IsPositive() {
			continue
		}

		fills = append(fills, trade.Fill{
			Counterparty: node.Account,
			Received: ledger.Amount{
				Currency: node.PrevTakerGets.Currency,
				Issuer:   node.PrevTakerGets.Issuer,
				Value:    received,
			},
			Paid: ledger.Amount{
				Currency: node.PrevTakerPays.Currency,
				Issuer:   node.PrevTakerPays.Issuer,
				Value:    paid,
			},
		})
	}
	return fills
}

// extractOfferSequence finds the sequence of the offer a transaction left
// resting for the given account. Falls back to the transaction's own
// sequence, which the ledger uses as the offer identity, when the offer was
// fully consumed on entry.
func extractOfferSequence(meta *ledger.TxMeta, account string, txSequence uint32) uint32 {
	if meta != nil {
		for _, n := range meta.AffectedNodes {
			if n.Created != nil && n.Created.Account == account {
				return n.Created.Sequence
			}
		}
	}
	return txSequence
}
