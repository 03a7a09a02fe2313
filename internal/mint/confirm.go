package mint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/SolForge/internal/solana"
)

var (
	// ErrConfirmationTimeout is returned when a signature was not confirmed
	// within the wait bound. The transaction may still land.
	ErrConfirmationTimeout = errors.New("confirmation timed out")
	// ErrBlockhashExpired is returned when the blockhash of an unconfirmed
	// transaction is no longer valid, so it can never land.
	ErrBlockhashExpired = errors.New("blockhash expired before confirmation")
	// ErrTransactionRejected is returned when the cluster executed the
	// transaction and it failed.
	ErrTransactionRejected = errors.New("transaction rejected")
)

// waitForConfirmation polls the status of sig every interval until it is
// confirmed, fails on chain, expires or ctx ends. expired, when set, is
// asked after every unconfirmed poll. Transient RPC errors keep the loop
// going; the last one is reported on timeout.
func waitForConfirmation(
	ctx context.Context,
	rpc solana.RPC,
	sig string,
	interval time.Duration,
	expired func(context.Context) (bool, error),
) (solana.SignatureStatus, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		st, err := rpc.GetSignatureStatus(ctx, sig)
		switch {
		case err != nil:
			lastErr = err
		case st.Found && st.Err != nil:
			return st, nil
		case st.Confirmed():
			return st, nil
		case expired != nil:
			gone, err := expired(ctx)
			if err != nil {
				lastErr = err
			} else if gone {
				return st, ErrBlockhashExpired
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				if lastErr != nil {
					return solana.SignatureStatus{}, fmt.Errorf("%w (last error: %v)", ErrConfirmationTimeout, lastErr)
				}
				return solana.SignatureStatus{}, ErrConfirmationTimeout
			}
			return solana.SignatureStatus{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
