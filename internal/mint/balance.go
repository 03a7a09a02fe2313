package mint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"go.uber.org/zap"

	"github.com/atinyakov/SolForge/internal/solana"
)

const (
	// MinBalanceLamports is the balance below which an airdrop is requested (0.01 SOL).
	MinBalanceLamports uint64 = 10_000_000
	// AirdropLamports is the amount requested from the faucet (1 SOL).
	AirdropLamports = solana.LamportsPerSOL
	// FeeFloorLamports is the least balance that can still pay a signature fee.
	FeeFloorLamports uint64 = 5000
	// FaucetURL is shown to users when the automatic airdrop is not enough.
	FaucetURL = "https://faucet.solana.com"

	// DefaultAirdropTimeout bounds the wait for airdrop confirmation.
	DefaultAirdropTimeout = 15 * time.Second
	// DefaultPollInterval is the signature status polling period.
	DefaultPollInterval = 500 * time.Millisecond
)

// ErrInsufficientFunds is returned when the payer cannot cover fees even
// after an airdrop attempt.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Guarantor tops up a devnet account through the faucet before a mint.
type Guarantor struct {
	rpc solana.RPC
	log *zap.Logger

	// Timeout bounds the airdrop confirmation wait.
	Timeout time.Duration
	// PollInterval is the status polling period.
	PollInterval time.Duration
}

// NewGuarantor returns a Guarantor with the default bounds.
func NewGuarantor(rpc solana.RPC, log *zap.Logger) *Guarantor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guarantor{
		rpc:          rpc,
		log:          log,
		Timeout:      DefaultAirdropTimeout,
		PollInterval: DefaultPollInterval,
	}
}

// Ensure makes sure account holds at least MinBalanceLamports, requesting an
// airdrop when it does not. Airdrop failures are tolerated as long as the
// account can still pay a fee.
func (g *Guarantor) Ensure(ctx context.Context, account common.PublicKey) error {
	addr := account.ToBase58()

	bal, err := g.rpc.GetBalance(ctx, addr)
	if err != nil {
		return fmt.Errorf("check balance: %w", err)
	}
	if bal >= MinBalanceLamports {
		return nil
	}

	g.log.Info("balance low, requesting airdrop",
		zap.String("account", addr),
		zap.Uint64("lamports", bal),
	)

	if err := g.airdrop(ctx, addr); err != nil {
		g.log.Warn("airdrop failed", zap.String("account", addr), zap.Error(err))
	}

	bal, err = g.rpc.GetBalance(ctx, addr)
	if err != nil {
		return fmt.Errorf("check balance: %w", err)
	}
	if bal < FeeFloorLamports {
		return fmt.Errorf("%w: %s holds %d lamports, fund it at %s", ErrInsufficientFunds, addr, bal, FaucetURL)
	}
	return nil
}

func (g *Guarantor) airdrop(ctx context.Context, addr string) error {
	sig, err := g.rpc.RequestAirdrop(ctx, addr, AirdropLamports)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	st, err := waitForConfirmation(wctx, g.rpc, sig, g.PollInterval, nil)
	if err != nil {
		return err
	}
	if st.Err != nil {
		return fmt.Errorf("airdrop %s failed on chain: %v", sig, st.Err)
	}
	return nil
}
