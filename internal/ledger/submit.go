package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultMaxRetries     = 4
)

// Submit submits a signed transaction with exponential-backoff retry for
// transport failures and classifies the confirmed result code. Deterministic
// rejections are returned immediately as errors, never retried. The returned
// TxResult is non-nil whenever the ledger produced one, including alongside a
// rejection error, so callers can keep the hash and raw code.
func Submit(ctx context.Context, gw Gateway, tx SignedTx, log zerolog.Logger) (*TxResult, error) {
	var result *TxResult

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackoff(), defaultMaxRetries), ctx)

	operation := func() error {
		res, err := gw.SubmitTransaction(ctx, tx)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				log.Warn().
					Str("tx_type", tx.Tx.TxType()).
					Str("account", tx.Account).
					Err(err).
					Msg("ledger submission failed, retrying")
				return err
			}
			return backoff.Permanent(err)
		}
		result = res
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	if err := ClassifyResult(result.ResultCode); err != nil {
		log.Debug().
			Str("tx_type", tx.Tx.TxType()).
			Str("tx_hash", result.Hash).
			Str("result_code", result.ResultCode).
			Msg("transaction rejected by ledger")
		return result, err
	}

	log.Debug().
		Str("tx_type", tx.Tx.TxType()).
		Str("tx_hash", result.Hash).
		Uint32("ledger_index", result.LedgerIndex).
		Msg("transaction confirmed")
	return result, nil
}

func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = defaultInitialBackoff
	b.MaxInterval = defaultMaxBackoff
	return b
}
