package asset

import (
	"sync"
)

// Repository is the storage contract for asset records. Update applies a
// mutation atomically under the repository's write discipline so supply
// accounting never interleaves with concurrent readers.
type Repository interface {
	Put(a *Asset) error
	Get(id string) (*Asset, error)
	Update(id string, mutate func(*Asset) error) (*Asset, error)
	ListByOwner(ownerWalletID string) ([]*Asset, error)
	List() ([]*Asset, error)
	// FindByCurrency resolves the asset tokenized as the given issued
	// currency, if any.
	FindByCurrency(currencyCode, issuerAddress string) (*Asset, error)
}

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	assets map[string]*Asset
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{assets: make(map[string]*Asset)}
}

// Put stores a new or replaced asset record.
func (r *MemoryRepository) Put(a *Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[a.ID] = cloneAsset(a)
	return nil
}

// Get returns a copy of the asset.
func (r *MemoryRepository) Get(id string) (*Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAsset(a), nil
}

// Update applies mutate to the stored record under the write lock. The
// mutation sees and edits the live copy; an error aborts without change.
func (r *MemoryRepository) Update(id string, mutate func(*Asset) error) (*Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	work := cloneAsset(a)
	if err := mutate(work); err != nil {
		return nil, err
	}
	r.assets[id] = work
	return cloneAsset(work), nil
}

// ListByOwner returns the assets owned by a wallet.
func (r *MemoryRepository) ListByOwner(ownerWalletID string) ([]*Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Asset
	for _, a := range r.assets {
		if a.OwnerWalletID == ownerWalletID {
			out = append(out, cloneAsset(a))
		}
	}
	return out, nil
}

// List returns every asset.
func (r *MemoryRepository) List() ([]*Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Asset, 0, len(r.assets))
	for _, a := range r.assets {
		out = append(out, cloneAsset(a))
	}
	return out, nil
}

// FindByCurrency resolves a tokenized asset by its currency identity.
func (r *MemoryRepository) FindByCurrency(currencyCode, issuerAddress string) (*Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.assets {
		if a.Tokenization != nil &&
			a.Tokenization.CurrencyCode == currencyCode &&
			a.Tokenization.IssuerAddress == issuerAddress {
			return cloneAsset(a), nil
		}
	}
	return nil, ErrNotFound
}

func cloneAsset(a *Asset) *Asset {
	c := *a
	if a.Documents != nil {
		c.Documents = append([]string(nil), a.Documents...)
	}
	if a.Metadata != nil {
		c.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			c.Metadata[k] = v
		}
	}
	if a.Tokenization != nil {
		tok := *a.Tokenization
		c.Tokenization = &tok
	}
	if a.TokenizedAt != nil {
		t := *a.TokenizedAt
		c.TokenizedAt = &t
	}
	if a.RedeemedAt != nil {
		t := *a.RedeemedAt
		c.RedeemedAt = &t
	}
	return &c
}
