// Package solanatest provides an in-memory solana.RPC for tests.
package solanatest

import (
	"context"
	"sync"

	"github.com/blocto/solana-go-sdk/types"

	"github.com/atinyakov/SolForge/internal/solana"
)

// FakeRPC is a scriptable solana.RPC. Zero values answer with empty results;
// the *Func fields override individual methods. Every call is recorded in
// Calls by method name.
type FakeRPC struct {
	mu    sync.Mutex
	Calls []string

	Balances  []uint64 // consumed in order by GetBalance, the last value repeats
	Blockhash solana.Blockhash
	Height    uint64
	Rent      uint64
	Accounts  map[string]bool
	Statuses  []solana.SignatureStatus // consumed in order, the last value repeats

	AirdropFunc func(ctx context.Context, address string, lamports uint64) (string, error)
	SendFunc    func(ctx context.Context, tx types.Transaction) (string, error)
	HeightFunc  func(ctx context.Context) (uint64, error)

	Sent []types.Transaction
}

func (f *FakeRPC) record(name string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, name)
	f.mu.Unlock()
}

// Called reports how many times method name was invoked.
func (f *FakeRPC) Called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *FakeRPC) GetBalance(ctx context.Context, address string) (uint64, error) {
	f.record("GetBalance")
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Balances) == 0 {
		return 0, nil
	}
	b := f.Balances[0]
	if len(f.Balances) > 1 {
		f.Balances = f.Balances[1:]
	}
	return b, nil
}

func (f *FakeRPC) RequestAirdrop(ctx context.Context, address string, lamports uint64) (string, error) {
	f.record("RequestAirdrop")
	if f.AirdropFunc != nil {
		return f.AirdropFunc(ctx, address, lamports)
	}
	return "airdrop-signature", nil
}

func (f *FakeRPC) GetLatestBlockhash(ctx context.Context) (solana.Blockhash, error) {
	f.record("GetLatestBlockhash")
	return f.Blockhash, nil
}

func (f *FakeRPC) GetBlockHeight(ctx context.Context) (uint64, error) {
	f.record("GetBlockHeight")
	if f.HeightFunc != nil {
		return f.HeightFunc(ctx)
	}
	return f.Height, nil
}

func (f *FakeRPC) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	f.record("GetMinimumBalanceForRentExemption")
	return f.Rent, nil
}

func (f *FakeRPC) AccountExists(ctx context.Context, address string) (bool, error) {
	f.record("AccountExists")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Accounts[address], nil
}

func (f *FakeRPC) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	f.record("SendTransaction")
	f.mu.Lock()
	f.Sent = append(f.Sent, tx)
	f.mu.Unlock()
	if f.SendFunc != nil {
		return f.SendFunc(ctx, tx)
	}
	return "tx-signature", nil
}

func (f *FakeRPC) GetSignatureStatus(ctx context.Context, signature string) (solana.SignatureStatus, error) {
	f.record("GetSignatureStatus")
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Statuses) == 0 {
		return solana.SignatureStatus{}, nil
	}
	s := f.Statuses[0]
	if len(f.Statuses) > 1 {
		f.Statuses = f.Statuses[1:]
	}
	return s, nil
}

var _ solana.RPC = (*FakeRPC)(nil)
