package api

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"rwa-platform/internal/asset"
	"rwa-platform/internal/dex"
	"rwa-platform/internal/tokenization"
)

// Handler exposes the orchestration services over HTTP.
type Handler struct {
	registry *asset.Registry
	tokens   *tokenization.Service
	market   *dex.Service
}

// CreateAsset handles POST /asset/create.
func (h *Handler) CreateAsset(c *gin.Context) {
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}
	value, err := parseDecimal("value", req.Value)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}

	a, err := h.registry.Register(c.Request.Context(), asset.RegisterSpec{
		Name:          req.Name,
		Description:   req.Description,
		Type:          asset.Type(req.Type),
		Value:         value,
		Location:      req.Location,
		OwnerWalletID: req.OwnerWalletID,
		Documents:     req.Documents,
		Metadata:      req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "asset registered", a)
}

// GetAsset handles GET /asset/:id.
func (h *Handler) GetAsset(c *gin.Context) {
	a, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "asset", a)
}

// TokenizeAsset handles POST /asset/:id/tokenize. The body is optional.
func (h *Handler) TokenizeAsset(c *gin.Context) {
	var req TokenizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondValidation(c, err.Error())
		return
	}

	opts := tokenization.TokenizeOptions{CurrencyCode: req.CurrencyCode}
	if req.TotalSupply != "" {
		supply, err := parseDecimal("total_supply", req.TotalSupply)
		if err != nil {
			respondValidation(c, err.Error())
			return
		}
		opts.TotalSupply = &supply
	}

	a, err := h.tokens.Tokenize(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "asset tokenized", a)
}

// Transfer handles POST /asset/transfer.
func (h *Handler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}
	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}

	result, err := h.tokens.Transfer(c.Request.Context(),
		req.FromWalletID, req.ToAddress, req.CurrencyCode, req.IssuerAddress, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "transfer completed", result)
}

// Redeem handles POST /asset/:id/redeem.
func (h *Handler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}
	amount, err := parseDecimal("token_amount", req.TokenAmount)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}

	result, err := h.tokens.Redeem(c.Request.Context(), c.Param("id"), req.WalletID, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "redemption completed", result)
}

// GetBalance handles GET /asset/balance/:walletId/:currencyCode/:issuerAddress.
func (h *Handler) GetBalance(c *gin.Context) {
	balance, err := h.tokens.Balance(c.Request.Context(),
		c.Param("walletId"), c.Param("currencyCode"), c.Param("issuerAddress"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "balance", gin.H{
		"wallet_id":      c.Param("walletId"),
		"currency_code":  c.Param("currencyCode"),
		"issuer_address": c.Param("issuerAddress"),
		"balance":        balance,
	})
}

// ListWalletAssets handles GET /asset/wallet/:walletId.
func (h *Handler) ListWalletAssets(c *gin.Context) {
	summaries, err := h.registry.ListByOwner(c.Request.Context(), c.Param("walletId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "assets", summaries)
}

// AssetStats handles GET /asset/stats.
func (h *Handler) AssetStats(c *gin.Context) {
	stats, err := h.registry.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "asset stats", stats)
}
