package mint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/SolForge/internal/solana"
)

// Minter runs the full mint flow: fund the payer, build, sign, submit and
// confirm.
type Minter struct {
	Guarantor *Guarantor
	Builder   *Builder
	Submitter *Submitter
	log       *zap.Logger
}

// NewMinter wires a Minter with default components over rpc.
func NewMinter(rpc solana.RPC, log *zap.Logger) *Minter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Minter{
		Guarantor: NewGuarantor(rpc, log),
		Builder:   NewBuilder(rpc),
		Submitter: NewSubmitter(rpc, log),
		log:       log,
	}
}

// Mint creates one unit of a new token with w as payer and authority.
// p.Payer is overwritten with the wallet address.
func (m *Minter) Mint(ctx context.Context, p Params, w Wallet, obs Observer) (Result, error) {
	p.Payer = w.PublicKey()

	if err := m.Guarantor.Ensure(ctx, p.Payer); err != nil {
		return Result{}, err
	}

	prepared, err := m.Builder.Build(ctx, p)
	if err != nil {
		return Result{}, fmt.Errorf("build mint: %w", err)
	}
	m.log.Debug("mint prepared",
		zap.String("mint", prepared.MintAddress.ToBase58()),
		zap.String("holder", prepared.HoldingAccount.ToBase58()),
		zap.Bool("metadata", p.URI != ""),
	)

	return m.Submitter.Submit(ctx, prepared, w, obs)
}
