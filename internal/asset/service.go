package asset

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"rwa-platform/internal/ledger"
	"rwa-platform/internal/signing"
)

// RegisterSpec is the input for registering an asset.
type RegisterSpec struct {
	Name          string
	Description   string
	Type          Type
	Value         decimal.Decimal
	Location      string
	OwnerWalletID string
	Documents     []string
	Metadata      map[string]string
}

// Registry manages asset records and their status state machine.
type Registry struct {
	repo    Repository
	gateway ledger.Gateway
	signers signing.Gateway
	log     zerolog.Logger
}

// NewRegistry creates a registry backed by repo.
func NewRegistry(repo Repository, gateway ledger.Gateway, signers signing.Gateway, log zerolog.Logger) *Registry {
	return &Registry{
		repo:    repo,
		gateway: gateway,
		signers: signers,
		log:     log.With().Str("component", "asset-registry").Logger(),
	}
}

// Register validates and stores a new asset record in pending status. The
// owner wallet must resolve to an activated ledger account.
func (r *Registry) Register(ctx context.Context, spec RegisterSpec) (*Asset, error) {
	if spec.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if !ValidType(spec.Type) {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown asset type %q", spec.Type)}
	}
	if !spec.Value.IsPositive() {
		return nil, &ValidationError{Field: "value", Reason: "must be positive"}
	}
	if spec.OwnerWalletID == "" {
		return nil, &ValidationError{Field: "owner_wallet_id", Reason: "required"}
	}

	signer, err := r.signers.GetSigner(ctx, spec.OwnerWalletID)
	if err != nil {
		if errors.Is(err, signing.ErrWalletNotActivated) || errors.Is(err, signing.ErrWalletNotFound) {
			return nil, fmt.Errorf("%w: wallet %s", ErrOwnerNotActivated, spec.OwnerWalletID)
		}
		return nil, err
	}

	exists, err := r.gateway.AccountExists(ctx, signer.Address())
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: address %s has no ledger entry", ErrOwnerNotActivated, signer.Address())
	}

	now := time.Now().UTC()
	a := &Asset{
		ID:                 "ast_" + uuid.New().String(),
		Name:               spec.Name,
		Description:        spec.Description,
		Type:               spec.Type,
		Value:              spec.Value,
		Location:           spec.Location,
		OwnerWalletID:      spec.OwnerWalletID,
		OwnerAddress:       signer.Address(),
		Documents:          spec.Documents,
		Metadata:           spec.Metadata,
		Status:             StatusPending,
		VerificationStatus: VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := r.repo.Put(a); err != nil {
		return nil, err
	}

	r.log.Info().
		Str("asset_id", a.ID).
		Str("owner_wallet", a.OwnerWalletID).
		Str("type", string(a.Type)).
		Msg("asset registered")
	return a, nil
}

// Get returns the current projection of an asset.
func (r *Registry) Get(ctx context.Context, id string) (*Asset, error) {
	return r.repo.Get(id)
}

// ListByOwner returns summaries of the assets owned by a wallet.
func (r *Registry) ListByOwner(ctx context.Context, ownerWalletID string) ([]Summary, error) {
	assets, err := r.repo.ListByOwner(ownerWalletID)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(assets))
	for _, a := range assets {
		s := Summary{
			ID:        a.ID,
			Name:      a.Name,
			Type:      a.Type,
			Value:     a.Value,
			Status:    a.Status,
			CreatedAt: a.CreatedAt,
		}
		if a.Tokenization != nil {
			s.CurrencyCode = a.Tokenization.CurrencyCode
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Stats aggregates the registry contents.
func (r *Registry) Stats(ctx context.Context) (*Stats, error) {
	assets, err := r.repo.List()
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		ByStatus:       make(map[Status]int),
		ByType:         make(map[Type]int),
		TotalValue:     decimal.Zero,
		TokenizedValue: decimal.Zero,
	}
	for _, a := range assets {
		stats.Total++
		stats.ByStatus[a.Status]++
		stats.ByType[a.Type]++
		stats.TotalValue = stats.TotalValue.Add(a.Value)
		if a.Status == StatusTokenized {
			stats.TokenizedValue = stats.TokenizedValue.Add(a.Value)
		}
	}
	return stats, nil
}
