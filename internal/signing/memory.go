package signing

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"

	"rwa-platform/internal/ledger"
)

// MemoryRegistry is an in-memory wallet registry and signer. Each wallet
// holds a random secret standing in for real key custody; signatures are
// HMAC digests over the canonical transaction encoding, enough for stub
// ledgers and tests.
type MemoryRegistry struct {
	mu      sync.RWMutex
	wallets map[string]*walletEntry
}

type walletEntry struct {
	address   string
	secret    []byte
	activated bool
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{wallets: make(map[string]*walletEntry)}
}

// Register adds a wallet with its ledger address, not yet activated.
func (r *MemoryRegistry) Register(walletID, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.wallets[walletID]; exists {
		return fmt.Errorf("wallet %s already registered", walletID)
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return err
	}
	r.wallets[walletID] = &walletEntry{address: address, secret: secret}
	return nil
}

// Activate marks a wallet as having a confirmed ledger presence.
func (r *MemoryRegistry) Activate(walletID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return ErrWalletNotFound
	}
	w.activated = true
	return nil
}

// GetSigner returns a signer for an activated wallet.
func (r *MemoryRegistry) GetSigner(ctx context.Context, walletID string) (Signer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	if !w.activated {
		return nil, ErrWalletNotActivated
	}
	return &memorySigner{address: w.address, secret: w.secret}, nil
}

// Address returns the ledger address of a wallet whether or not it is
// activated. Used for lookups that do not need signing.
func (r *MemoryRegistry) Address(walletID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return "", ErrWalletNotFound
	}
	return w.address, nil
}

type memorySigner struct {
	address string
	secret  []byte
}

func (s *memorySigner) Address() string { return s.address }

func (s *memorySigner) Sign(tx ledger.Transaction) (ledger.SignedTx, error) {
	payload, err := json.Marshal(map[string]any{
		"type":    tx.TxType(),
		"account": s.address,
	})
	if err != nil {
		return ledger.SignedTx{}, err
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return ledger.SignedTx{
		Account: s.address,
		Tx:      tx,
		Blob:    mac.Sum(nil),
	}, nil
}
