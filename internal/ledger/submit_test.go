package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestSubmit_RetriesTransientFailure(t *testing.T) {
	s := newFundedStub(t)
	s.FailTransient(1)

	tx := SignedTx{Account: stubMaker, Tx: Payment{
		From:   stubMaker,
		To:     stubMaker,
		Amount: IssuedAmount("ABC", stubMaker, decimal.NewFromInt(1)),
	}}
	res, err := Submit(context.Background(), s, tx, zerolog.Nop())
	if err != nil {
		t.Fatalf("Submit should succeed after a transient failure: %v", err)
	}
	if !res.Validated {
		t.Errorf("Expected a validated result")
	}
	if len(s.SequenceHistory(stubMaker)) != 1 {
		t.Errorf("Only the successful attempt should consume a sequence")
	}
}

func TestSubmit_DoesNotRetryRejection(t *testing.T) {
	s := newFundedStub(t)
	s.RejectNextWith("tecUNFUNDED_PAYMENT")

	tx := SignedTx{Account: stubMaker, Tx: Payment{
		From:   stubMaker,
		To:     stubTaker,
		Amount: NativeAmount(decimal.NewFromInt(1)),
	}}
	res, err := Submit(context.Background(), s, tx, zerolog.Nop())
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
	if res == nil || res.ResultCode != "tecUNFUNDED_PAYMENT" {
		t.Errorf("Rejected result should still be returned, got %+v", res)
	}
	if len(s.SequenceHistory(stubMaker)) != 1 {
		t.Errorf("A deterministic rejection must not be retried")
	}
}

func TestSubmit_StopsOnContextCancel(t *testing.T) {
	s := newFundedStub(t)
	s.FailTransient(100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tx := SignedTx{Account: stubMaker, Tx: Payment{
		From:   stubMaker,
		To:     stubMaker,
		Amount: IssuedAmount("ABC", stubMaker, decimal.NewFromInt(1)),
	}}
	res, err := Submit(ctx, s, tx, zerolog.Nop())
	if err == nil {
		t.Fatalf("Expected an error with a cancelled context, got result %+v", res)
	}
	if len(s.SequenceHistory(stubMaker)) != 0 {
		t.Errorf("No sequence should be consumed while the ledger is down")
	}
}
