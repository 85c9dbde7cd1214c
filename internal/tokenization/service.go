package tokenization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"rwa-platform/internal/asset"
	"rwa-platform/internal/ledger"
	"rwa-platform/internal/signing"
)

// Service converts registered assets into issued-currency supplies and
// keeps supply accounting consistent with confirmed ledger state. It covers
// tokenization, issuer and holder transfers, and redemption.
type Service struct {
	repo    asset.Repository
	gateway ledger.Gateway
	signers signing.Gateway
	locks   *ledger.AccountLocks
	flight  singleflight.Group
	log     zerolog.Logger
}

// NewService wires a tokenization service. locks must be the same instance
// used by every other component that submits transactions, so per-account
// sequence ordering holds across the whole process.
func NewService(repo asset.Repository, gateway ledger.Gateway, signers signing.Gateway, locks *ledger.AccountLocks, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		signers: signers,
		locks:   locks,
		log:     log.With().Str("component", "tokenization").Logger(),
	}
}

// TokenizeOptions overrides the derived currency code and supply.
type TokenizeOptions struct {
	CurrencyCode string
	TotalSupply  *decimal.Decimal
}

// Tokenize issues a token supply for a pending asset: a credit line at the
// supply limit under the owner's own address as issuer, then a payment of
// the full supply to the owner. Concurrent calls for the same asset share a
// single execution. Both ledger steps must confirm; a failure after the
// credit line confirmed leaves the operation safely retryable, since
// re-establishing the same limit is a no-op on the ledger.
func (s *Service) Tokenize(ctx context.Context, assetID string, opts TokenizeOptions) (*asset.Asset, error) {
	v, err, _ := s.flight.Do(assetID, func() (any, error) {
		return s.tokenize(ctx, assetID, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*asset.Asset), nil
}

func (s *Service) tokenize(ctx context.Context, assetID string, opts TokenizeOptions) (*asset.Asset, error) {
	a, err := s.repo.Get(assetID)
	if err != nil {
		return nil, err
	}
	if a.Status != asset.StatusPending {
		return nil, fmt.Errorf("%w: asset %s is %s", asset.ErrAlreadyTokenized, assetID, a.Status)
	}

	signer, err := s.signers.GetSigner(ctx, a.OwnerWalletID)
	if err != nil {
		if errors.Is(err, signing.ErrWalletNotActivated) || errors.Is(err, signing.ErrWalletNotFound) {
			return nil, fmt.Errorf("%w: wallet %s", asset.ErrOwnerNotActivated, a.OwnerWalletID)
		}
		return nil, err
	}
	owner := signer.Address()

	currencyCode := opts.CurrencyCode
	if currencyCode == "" {
		currencyCode = DeriveCurrencyCode(a.Name)
	}
	if err := validateCurrencyCode(currencyCode); err != nil {
		return nil, err
	}

	var totalSupply decimal.Decimal
	if opts.TotalSupply != nil {
		totalSupply = *opts.TotalSupply
	} else {
		totalSupply = DeriveTotalSupply(a.Value)
	}
	if !totalSupply.IsPositive() {
		return nil, &asset.ValidationError{Field: "total_supply", Reason: "must be positive"}
	}

	unlock := s.locks.Lock(owner)
	defer unlock()

	// Step 1: credit-line capacity at the supply limit, self-issued.
	supply := ledger.IssuedAmount(currencyCode, owner, totalSupply)
	trustTx, err := signer.Sign(ledger.TrustSet{Account: owner, Limit: supply})
	if err != nil {
		return nil, fmt.Errorf("%w: sign trust set: %w", ErrTokenizationFailed, err)
	}
	if _, err := ledger.Submit(ctx, s.gateway, trustTx, s.log); err != nil {
		return nil, fmt.Errorf("%w: establish credit line: %w", ErrTokenizationFailed, err)
	}

	// Step 2: issue the full supply to the owner.
	issueTx, err := signer.Sign(ledger.Payment{From: owner, To: owner, Amount: supply})
	if err != nil {
		return nil, fmt.Errorf("%w: sign issuance: %w", ErrTokenizationFailed, err)
	}
	issueRes, err := ledger.Submit(ctx, s.gateway, issueTx, s.log)
	if err != nil {
		return nil, fmt.Errorf("%w: issue supply: %w", ErrTokenizationFailed, err)
	}

	updated, err := s.repo.Update(assetID, func(a *asset.Asset) error {
		if !a.Status.CanTransition(asset.StatusTokenized) {
			return fmt.Errorf("%w: asset %s is %s", asset.ErrAlreadyTokenized, assetID, a.Status)
		}
		now := time.Now().UTC()
		a.Status = asset.StatusTokenized
		a.TokenizedAt = &now
		a.UpdatedAt = now
		a.Tokenization = &asset.TokenizationRecord{
			CurrencyCode:    currencyCode,
			TotalSupply:     totalSupply,
			AvailableSupply: totalSupply,
			IssuerAddress:   owner,
			TxHash:          issueRes.Hash,
			LedgerSequence:  issueRes.LedgerIndex,
			CreatedAt:       now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("asset_id", assetID).
		Str("currency_code", currencyCode).
		Str("total_supply", totalSupply.String()).
		Str("issuer", owner).
		Str("tx_hash", issueRes.Hash).
		Msg("asset tokenized")
	return updated, nil
}

// TransferResult reports a completed issued-currency transfer.
type TransferResult struct {
	TxHash       string          `json:"tx_hash"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	CurrencyCode string          `json:"currency_code"`
	Amount       decimal.Decimal `json:"amount"`
}

// Transfer moves an issued-currency balance from a wallet to a ledger
// address. When the sender is the currency's issuer the matching asset's
// available supply is decremented, after and only after ledger confirmation.
func (s *Service) Transfer(ctx context.Context, fromWalletID, toAddress, currencyCode, issuerAddress string, amount decimal.Decimal) (*TransferResult, error) {
	if err := validateAddress(toAddress); err != nil {
		return nil, err
	}
	if err := validateCurrencyCode(currencyCode); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, &asset.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	signer, err := s.signers.GetSigner(ctx, fromWalletID)
	if err != nil {
		return nil, err
	}
	from := signer.Address()

	unlock := s.locks.Lock(from)
	defer unlock()

	payment := ledger.Payment{
		From:   from,
		To:     toAddress,
		Amount: ledger.IssuedAmount(currencyCode, issuerAddress, amount),
	}
	signed, err := signer.Sign(payment)
	if err != nil {
		return nil, fmt.Errorf("%w: sign payment: %w", ErrTransferFailed, err)
	}
	res, err := ledger.Submit(ctx, s.gateway, signed, s.log)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	if from == issuerAddress {
		if err := s.debitAvailableSupply(currencyCode, issuerAddress, amount); err != nil {
			// The ledger transfer is confirmed; accounting divergence
			// is logged, not surfaced as an operation failure.
			s.log.Error().
				Str("currency_code", currencyCode).
				Str("issuer", issuerAddress).
				Err(err).
				Msg("available supply not decremented after issuer transfer")
		}
	}

	s.log.Info().
		Str("from", from).
		Str("to", toAddress).
		Str("currency_code", currencyCode).
		Str("amount", amount.String()).
		Str("tx_hash", res.Hash).
		Msg("transfer confirmed")
	return &TransferResult{
		TxHash:       res.Hash,
		From:         from,
		To:           toAddress,
		CurrencyCode: currencyCode,
		Amount:       amount,
	}, nil
}

func (s *Service) debitAvailableSupply(currencyCode, issuerAddress string, amount decimal.Decimal) error {
	a, err := s.repo.FindByCurrency(currencyCode, issuerAddress)
	if err != nil {
		return err
	}
	_, err = s.repo.Update(a.ID, func(a *asset.Asset) error {
		if a.Tokenization == nil {
			return asset.ErrNotTokenized
		}
		next := a.Tokenization.AvailableSupply.Sub(amount)
		if next.IsNegative() {
			next = decimal.Zero
		}
		a.Tokenization.AvailableSupply = next
		a.UpdatedAt = time.Now().UTC()
		return nil
	})
	return err
}

// RedemptionResult reports a completed redemption.
type RedemptionResult struct {
	TxHash             string          `json:"tx_hash"`
	AssetID            string          `json:"asset_id"`
	TokenAmount        decimal.Decimal `json:"token_amount"`
	RedemptionPercent  decimal.Decimal `json:"redemption_percentage"`
	AssetValueReleased decimal.Decimal `json:"asset_value_released"`
	AssetStatus        asset.Status    `json:"asset_status"`
}

// Redeem burns tokens back to the issuer and computes the proportional
// asset value released. The asset reaches the redeemed terminal state only
// when a single redemption covers the full supply.
func (s *Service) Redeem(ctx context.Context, assetID, walletID string, tokenAmount decimal.Decimal) (*RedemptionResult, error) {
	if !tokenAmount.IsPositive() {
		return nil, &asset.ValidationError{Field: "token_amount", Reason: "must be positive"}
	}

	a, err := s.repo.Get(assetID)
	if err != nil {
		return nil, err
	}
	switch a.Status {
	case asset.StatusTokenized:
	case asset.StatusRedeemed:
		return nil, fmt.Errorf("%w: asset %s", asset.ErrAlreadyRedeemed, assetID)
	default:
		return nil, fmt.Errorf("%w: asset %s is %s", asset.ErrNotTokenized, assetID, a.Status)
	}
	tok := a.Tokenization

	signer, err := s.signers.GetSigner(ctx, walletID)
	if err != nil {
		return nil, err
	}
	holder := signer.Address()

	balance, err := s.holderBalance(ctx, holder, tok.CurrencyCode, tok.IssuerAddress)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(tokenAmount) {
		return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientTokens, balance, tokenAmount)
	}

	percentage := tokenAmount.Div(tok.TotalSupply).Mul(decimal.NewFromInt(100))
	valueReleased := a.Value.Mul(tokenAmount).Div(tok.TotalSupply)

	unlock := s.locks.Lock(holder)
	defer unlock()

	burn := ledger.Payment{
		From:   holder,
		To:     tok.IssuerAddress,
		Amount: ledger.IssuedAmount(tok.CurrencyCode, tok.IssuerAddress, tokenAmount),
	}
	signed, err := signer.Sign(burn)
	if err != nil {
		return nil, fmt.Errorf("%w: sign burn: %w", ErrRedemptionFailed, err)
	}
	res, err := ledger.Submit(ctx, s.gateway, signed, s.log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRedemptionFailed, err)
	}

	status := a.Status
	if tokenAmount.GreaterThanOrEqual(tok.TotalSupply) {
		updated, err := s.repo.Update(assetID, func(a *asset.Asset) error {
			if !a.Status.CanTransition(asset.StatusRedeemed) {
				return nil
			}
			now := time.Now().UTC()
			a.Status = asset.StatusRedeemed
			a.RedeemedAt = &now
			a.RedeemedBy = holder
			a.UpdatedAt = now
			return nil
		})
		if err != nil {
			return nil, err
		}
		status = updated.Status
	}

	s.log.Info().
		Str("asset_id", assetID).
		Str("holder", holder).
		Str("token_amount", tokenAmount.String()).
		Str("value_released", valueReleased.String()).
		Str("tx_hash", res.Hash).
		Msg("redemption confirmed")
	return &RedemptionResult{
		TxHash:             res.Hash,
		AssetID:            assetID,
		TokenAmount:        tokenAmount,
		RedemptionPercent:  percentage.Round(2),
		AssetValueReleased: valueReleased,
		AssetStatus:        status,
	}, nil
}

// Balance returns a wallet's balance of an issued currency, read from its
// credit lines.
func (s *Service) Balance(ctx context.Context, walletID, currencyCode, issuerAddress string) (decimal.Decimal, error) {
	signer, err := s.signers.GetSigner(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.holderBalance(ctx, signer.Address(), currencyCode, issuerAddress)
}

func (s *Service) holderBalance(ctx context.Context, address, currencyCode, issuerAddress string) (decimal.Decimal, error) {
	if address == issuerAddress {
		// The issuer's holding is tracked as available supply, not as a
		// credit line toward itself.
		a, err := s.repo.FindByCurrency(currencyCode, issuerAddress)
		if err != nil {
			return decimal.Zero, err
		}
		return a.Tokenization.AvailableSupply, nil
	}
	lines, err := s.gateway.GetTrustLines(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}
	for _, line := range lines {
		if line.Currency == currencyCode && line.Account == issuerAddress {
			return line.Balance, nil
		}
	}
	return decimal.Zero, nil
}
