package ledger

import (
	"errors"
	"testing"
)

func TestClassifyResult_Success(t *testing.T) {
	if err := ClassifyResult("tesSUCCESS"); err != nil {
		t.Errorf("Expected nil for tesSUCCESS, got %v", err)
	}
}

func TestClassifyResult_InsufficientFunds(t *testing.T) {
	err := ClassifyResult("tecUNFUNDED_PAYMENT")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Expected ErrInsufficientFunds, got %v", err)
	}
	if !errors.Is(err, ErrRejected) {
		t.Errorf("Rejection should also match ErrRejected")
	}
}

func TestClassifyResult_NoCreditLine(t *testing.T) {
	err := ClassifyResult("tecNO_LINE")
	if !errors.Is(err, ErrNoCreditLine) {
		t.Errorf("Expected ErrNoCreditLine, got %v", err)
	}
}

func TestClassifyResult_UnknownCodePreserved(t *testing.T) {
	err := ClassifyResult("tecWEIRD_NEW_CODE")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("Expected generic rejection, got %v", err)
	}
	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("Expected RejectionError, got %T", err)
	}
	if rej.Code != "tecWEIRD_NEW_CODE" {
		t.Errorf("Raw code not preserved: %s", rej.Code)
	}
}
