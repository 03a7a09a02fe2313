// Package solana provides the narrow chain gateway used by the mint and buy
// flows: an RPC interface over the Solana JSON-RPC API, keypair loading and
// address parsing.
package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/types"
)

const (
	// LamportsPerSOL is the number of lamports in one SOL.
	LamportsPerSOL uint64 = 1_000_000_000

	// DevnetEndpoint is the default RPC endpoint.
	DevnetEndpoint = "https://api.devnet.solana.com"

	// DevnetBlockchainID identifies devnet in the X-Blockchain-Ids header
	// (CAIP-2 style: solana:<truncated genesis hash>).
	DevnetBlockchainID = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
)

// Blockhash is a recent blockhash together with the last block height at
// which a transaction referencing it is still accepted.
type Blockhash struct {
	Hash                 string
	LastValidBlockHeight uint64
}

// Commitment levels reported by getSignatureStatuses.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// SignatureStatus is the observed state of a submitted transaction.
type SignatureStatus struct {
	// Found is false when the cluster does not know the signature yet.
	Found bool
	// Commitment is one of the Commitment* constants.
	Commitment string
	// Err is the on-chain execution error, nil on success.
	Err any
}

// Confirmed reports whether the transaction reached confirmed or finalized
// commitment.
func (s SignatureStatus) Confirmed() bool {
	return s.Found && (s.Commitment == CommitmentConfirmed || s.Commitment == CommitmentFinalized)
}

// RPC is the subset of the Solana JSON-RPC API the application depends on.
// Addresses are base58 strings.
type RPC interface {
	// GetBalance returns the lamport balance of an account.
	GetBalance(ctx context.Context, address string) (uint64, error)
	// RequestAirdrop asks the cluster faucet for lamports and returns the
	// airdrop transaction signature.
	RequestAirdrop(ctx context.Context, address string, lamports uint64) (string, error)
	// GetLatestBlockhash returns a fresh blockhash and its validity bound.
	GetLatestBlockhash(ctx context.Context) (Blockhash, error)
	// GetBlockHeight returns the current block height.
	GetBlockHeight(ctx context.Context) (uint64, error)
	// GetMinimumBalanceForRentExemption returns the rent-exempt minimum for
	// an account of the given data size.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	// AccountExists reports whether an account is allocated on chain.
	AccountExists(ctx context.Context, address string) (bool, error)
	// SendTransaction submits a signed transaction and returns its signature.
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	// GetSignatureStatus returns the current status of a signature.
	GetSignatureStatus(ctx context.Context, signature string) (SignatureStatus, error)
}
