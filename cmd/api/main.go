package main

import (
	"os"

	"github.com/rs/zerolog"

	"rwa-platform/internal/api"
	"rwa-platform/internal/asset"
	"rwa-platform/internal/config"
	"rwa-platform/internal/dex"
	"rwa-platform/internal/ledger"
	"rwa-platform/internal/signing"
	"rwa-platform/internal/tokenization"
	"rwa-platform/internal/trade"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log = log.Level(level)

	var gateway ledger.Gateway
	switch cfg.LedgerMode {
	case config.LedgerModeWebsocket:
		client := ledger.NewWSClient(cfg.LedgerURL, cfg.SubmitTimeout, log)
		defer client.Close()
		gateway = client
	default:
		log.Warn().Msg("running against the in-memory stub ledger")
		gateway = ledger.NewStubLedger()
	}

	signers := signing.NewMemoryRegistry()
	locks := ledger.NewAccountLocks()
	assets := asset.NewMemoryRepository()
	trades := trade.NewLedger()

	registry := asset.NewRegistry(assets, gateway, signers, log)
	tokens := tokenization.NewService(assets, gateway, signers, locks, log)
	market := dex.NewService(gateway, signers, trades, locks, log)

	router := api.NewRouter(registry, tokens, market, log)

	log.Info().Str("addr", cfg.ListenAddr).Str("ledger_mode", cfg.LedgerMode).Msg("starting server")
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
