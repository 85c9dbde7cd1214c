package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rwa-platform/internal/asset"
	"rwa-platform/internal/dex"
	"rwa-platform/internal/tokenization"
)

// NewRouter builds the HTTP surface over the orchestration services.
func NewRouter(registry *asset.Registry, tokens *tokenization.Service, market *dex.Service, log zerolog.Logger) *gin.Engine {
	h := &Handler{registry: registry, tokens: tokens, market: market}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	assets := r.Group("/asset")
	{
		assets.POST("/create", h.CreateAsset)
		assets.GET("/stats", h.AssetStats)
		assets.GET("/balance/:walletId/:currencyCode/:issuerAddress", h.GetBalance)
		assets.GET("/wallet/:walletId", h.ListWalletAssets)
		assets.POST("/transfer", h.Transfer)
		assets.GET("/:id", h.GetAsset)
		assets.POST("/:id/tokenize", h.TokenizeAsset)
		assets.POST("/:id/redeem", h.Redeem)
	}

	dexGroup := r.Group("/dex")
	{
		dexGroup.POST("/offer", h.CreateOffer)
		dexGroup.DELETE("/offer/:walletId/:offerSequence", h.CancelOffer)
		dexGroup.POST("/market-order", h.MarketOrder)
		dexGroup.GET("/orderbook", h.OrderBook)
		dexGroup.GET("/offers/:walletId", h.ListOffers)
		dexGroup.GET("/trades/:walletId", h.Trades)
		dexGroup.GET("/pair/:c1/:i1/:c2/:i2", h.PairInfo)
		dexGroup.GET("/stats", h.DexStats)
	}

	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	l := log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
