package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"rwa-platform/internal/dex"
)

// CreateOffer handles POST /dex/offer.
func (h *Handler) CreateOffer(c *gin.Context) {
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}
	takerGets, err := parseAmount("taker_gets", req.TakerGets)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}
	takerPays, err := parseAmount("taker_pays", req.TakerPays)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}

	order, err := h.market.CreateOffer(c.Request.Context(), req.WalletID, takerGets, takerPays, req.ExpiresAt)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "offer created", order)
}

// CancelOffer handles DELETE /dex/offer/:walletId/:offerSequence.
func (h *Handler) CancelOffer(c *gin.Context) {
	seq, err := strconv.ParseUint(c.Param("offerSequence"), 10, 32)
	if err != nil {
		respondValidation(c, fmt.Sprintf("offer_sequence: %v", err))
		return
	}

	order, err := h.market.CancelOffer(c.Request.Context(), c.Param("walletId"), uint32(seq))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "offer cancelled", order)
}

// MarketOrder handles POST /dex/market-order.
func (h *Handler) MarketOrder(c *gin.Context) {
	var req MarketOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}
	takerGets, err := parseAmount("taker_gets", req.TakerGets)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}
	takerPays, err := parseAmount("taker_pays", req.TakerPays)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}

	t, err := h.market.ExecuteMarketOrder(c.Request.Context(), req.WalletID, takerGets, takerPays)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "market order executed", t)
}

// OrderBook handles GET /dex/orderbook.
func (h *Handler) OrderBook(c *gin.Context) {
	takerGets := parseAssetParam(c.Query("taker_gets_currency"), c.Query("taker_gets_issuer"))
	takerPays := parseAssetParam(c.Query("taker_pays_currency"), c.Query("taker_pays_issuer"))
	if takerGets.Currency == "" || takerPays.Currency == "" {
		respondValidation(c, "taker_gets_currency and taker_pays_currency required")
		return
	}

	limit := dex.DefaultBookLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondValidation(c, fmt.Sprintf("limit: %v", err))
			return
		}
		limit = parsed
	}

	offers, err := h.market.GetOrderBook(c.Request.Context(), takerGets, takerPays, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "order book", gin.H{
		"taker_gets": takerGets,
		"taker_pays": takerPays,
		"offers":     offers,
	})
}

// ListOffers handles GET /dex/offers/:walletId.
func (h *Handler) ListOffers(c *gin.Context) {
	walletID := c.Param("walletId")
	offers, err := h.market.ListOffers(c.Request.Context(), walletID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "offers", gin.H{
		"wallet_id": walletID,
		"ledger":    offers,
		"local":     h.market.LocalOrders(walletID),
	})
}

// Trades handles GET /dex/trades/:walletId.
func (h *Handler) Trades(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondValidation(c, fmt.Sprintf("limit: %v", err))
			return
		}
		limit = parsed
	}

	entries, err := h.market.History(c.Param("walletId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "trade history", entries)
}

// PairInfo handles GET /dex/pair/:c1/:i1/:c2/:i2.
func (h *Handler) PairInfo(c *gin.Context) {
	base := parseAssetParam(c.Param("c1"), c.Param("i1"))
	counter := parseAssetParam(c.Param("c2"), c.Param("i2"))

	info, err := h.market.GetTradingPairInfo(c.Request.Context(), base, counter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "trading pair", info)
}

// DexStats handles GET /dex/stats.
func (h *Handler) DexStats(c *gin.Context) {
	respondOK(c, "dex stats", h.market.Stats())
}
