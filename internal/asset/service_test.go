package asset

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"rwa-platform/internal/ledger"
	"rwa-platform/internal/signing"
)

const ownerAddress = "rowner1111111111111111111111"

func newTestRegistry(t *testing.T) (*Registry, *ledger.StubLedger, *signing.MemoryRegistry) {
	t.Helper()
	stub := ledger.NewStubLedger()
	signers := signing.NewMemoryRegistry()
	repo := NewMemoryRepository()
	return NewRegistry(repo, stub, signers, zerolog.Nop()), stub, signers
}

func activatedOwner(t *testing.T, stub *ledger.StubLedger, signers *signing.MemoryRegistry, walletID string) {
	t.Helper()
	if err := signers.Register(walletID, ownerAddress); err != nil {
		t.Fatalf("Register wallet failed: %v", err)
	}
	if err := signers.Activate(walletID); err != nil {
		t.Fatalf("Activate wallet failed: %v", err)
	}
	stub.FundAccount(ownerAddress, decimal.NewFromInt(1000))
}

func validSpec(walletID string) RegisterSpec {
	return RegisterSpec{
		Name:          "Downtown Office Building",
		Description:   "Class A office space",
		Type:          TypeRealEstate,
		Value:         decimal.NewFromInt(750000),
		Location:      "Austin, TX",
		OwnerWalletID: walletID,
	}
}

func TestRegister_HappyPath(t *testing.T) {
	r, stub, signers := newTestRegistry(t)
	activatedOwner(t, stub, signers, "w-owner")

	a, err := r.Register(context.Background(), validSpec("w-owner"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !strings.HasPrefix(a.ID, "ast_") {
		t.Errorf("Expected ast_ prefix, got %s", a.ID)
	}
	if a.Status != StatusPending {
		t.Errorf("New asset should be pending, got %s", a.Status)
	}
	if a.VerificationStatus != VerificationPending {
		t.Errorf("New asset verification should be pending, got %s", a.VerificationStatus)
	}
	if a.OwnerAddress != ownerAddress {
		t.Errorf("Owner address not resolved: %s", a.OwnerAddress)
	}
}

func TestRegister_Validation(t *testing.T) {
	r, stub, signers := newTestRegistry(t)
	activatedOwner(t, stub, signers, "w-owner")

	cases := []struct {
		name   string
		mutate func(*RegisterSpec)
	}{
		{"missing name", func(s *RegisterSpec) { s.Name = "" }},
		{"unknown type", func(s *RegisterSpec) { s.Type = "spaceship" }},
		{"zero value", func(s *RegisterSpec) { s.Value = decimal.Zero }},
		{"negative value", func(s *RegisterSpec) { s.Value = decimal.NewFromInt(-1) }},
		{"missing owner", func(s *RegisterSpec) { s.OwnerWalletID = "" }},
	}
	for _, tc := range cases {
		spec := validSpec("w-owner")
		tc.mutate(&spec)
		_, err := r.Register(context.Background(), spec)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestRegister_WalletNotActivated(t *testing.T) {
	r, _, signers := newTestRegistry(t)
	if err := signers.Register("w-owner", ownerAddress); err != nil {
		t.Fatalf("Register wallet failed: %v", err)
	}

	_, err := r.Register(context.Background(), validSpec("w-owner"))
	if !errors.Is(err, ErrOwnerNotActivated) {
		t.Errorf("Expected ErrOwnerNotActivated, got %v", err)
	}
}

func TestRegister_NoLedgerEntry(t *testing.T) {
	r, _, signers := newTestRegistry(t)
	if err := signers.Register("w-owner", ownerAddress); err != nil {
		t.Fatalf("Register wallet failed: %v", err)
	}
	if err := signers.Activate("w-owner"); err != nil {
		t.Fatalf("Activate wallet failed: %v", err)
	}

	// Activated in the registry but never funded on the ledger.
	_, err := r.Register(context.Background(), validSpec("w-owner"))
	if !errors.Is(err, ErrOwnerNotActivated) {
		t.Errorf("Expected ErrOwnerNotActivated for unfunded address, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	_, err := r.Get(context.Background(), "ast_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListByOwner_NewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	r := NewRegistry(repo, ledger.NewStubLedger(), signing.NewMemoryRegistry(), zerolog.Nop())

	base := time.Now().UTC()
	for i, name := range []string{"First", "Second", "Third"} {
		if err := repo.Put(&Asset{
			ID:            "ast_" + name,
			Name:          name,
			Type:          TypeOther,
			Value:         decimal.NewFromInt(100),
			OwnerWalletID: "w-owner",
			Status:        StatusPending,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	summaries, err := r.ListByOwner(context.Background(), "w-owner")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 summaries, got %d", len(summaries))
	}
	if summaries[0].Name != "Third" || summaries[2].Name != "First" {
		t.Errorf("Expected newest first ordering, got %s..%s", summaries[0].Name, summaries[2].Name)
	}
}

func TestStats_Aggregates(t *testing.T) {
	repo := NewMemoryRepository()
	r := NewRegistry(repo, ledger.NewStubLedger(), signing.NewMemoryRegistry(), zerolog.Nop())

	put := func(id string, typ Type, status Status, value int64) {
		t.Helper()
		if err := repo.Put(&Asset{ID: id, Name: id, Type: typ, Value: decimal.NewFromInt(value), Status: status, OwnerWalletID: "w"}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	put("a1", TypeRealEstate, StatusPending, 100)
	put("a2", TypeRealEstate, StatusTokenized, 200)
	put("a3", TypeArtwork, StatusTokenized, 300)

	stats, err := r.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Expected 3 assets, got %d", stats.Total)
	}
	if stats.ByStatus[StatusTokenized] != 2 || stats.ByType[TypeRealEstate] != 2 {
		t.Errorf("Aggregation mismatch: %+v", stats)
	}
	if !stats.TotalValue.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected total value 600, got %s", stats.TotalValue)
	}
	if !stats.TokenizedValue.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected tokenized value 500, got %s", stats.TokenizedValue)
	}
}

func TestStatusTransitions(t *testing.T) {
	if !StatusPending.CanTransition(StatusTokenized) {
		t.Errorf("pending -> tokenized must be allowed")
	}
	if !StatusTokenized.CanTransition(StatusRedeemed) {
		t.Errorf("tokenized -> redeemed must be allowed")
	}
	for _, bad := range []struct{ from, to Status }{
		{StatusPending, StatusRedeemed},
		{StatusTokenized, StatusPending},
		{StatusRedeemed, StatusPending},
		{StatusRedeemed, StatusTokenized},
	} {
		if bad.from.CanTransition(bad.to) {
			t.Errorf("%s -> %s must be rejected", bad.from, bad.to)
		}
	}
}
