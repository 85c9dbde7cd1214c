package signing

import (
	"context"
	"errors"
	"testing"

	"rwa-platform/internal/ledger"

	"github.com/shopspring/decimal"
)

const testAddress = "rwallet111111111111111111111"

func TestGetSigner_UnknownWallet(t *testing.T) {
	r := NewMemoryRegistry()
	_, err := r.GetSigner(context.Background(), "nope")
	if !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("Expected ErrWalletNotFound, got %v", err)
	}
}

func TestGetSigner_NotActivated(t *testing.T) {
	r := NewMemoryRegistry()
	if err := r.Register("w1", testAddress); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err := r.GetSigner(context.Background(), "w1")
	if !errors.Is(err, ErrWalletNotActivated) {
		t.Errorf("Expected ErrWalletNotActivated, got %v", err)
	}
}

func TestGetSigner_AfterActivation(t *testing.T) {
	r := NewMemoryRegistry()
	if err := r.Register("w1", testAddress); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Activate("w1"); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	signer, err := r.GetSigner(context.Background(), "w1")
	if err != nil {
		t.Fatalf("GetSigner failed: %v", err)
	}
	if signer.Address() != testAddress {
		t.Errorf("Expected address %s, got %s", testAddress, signer.Address())
	}

	signed, err := signer.Sign(ledger.Payment{
		From:   testAddress,
		To:     testAddress,
		Amount: ledger.NativeAmount(decimal.NewFromInt(1)),
	})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if signed.Account != testAddress || len(signed.Blob) == 0 {
		t.Errorf("Signed transaction incomplete: %+v", signed)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewMemoryRegistry()
	if err := r.Register("w1", testAddress); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("w1", testAddress); err == nil {
		t.Errorf("Duplicate registration should fail")
	}
}

func TestActivate_UnknownWallet(t *testing.T) {
	r := NewMemoryRegistry()
	if !errors.Is(r.Activate("nope"), ErrWalletNotFound) {
		t.Errorf("Expected ErrWalletNotFound")
	}
}
