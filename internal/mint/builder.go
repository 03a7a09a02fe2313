// Package mint assembles, signs, submits and confirms the transaction that
// creates a single-unit card token.
package mint

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/atinyakov/SolForge/internal/solana"
)

// Metaplex field limits.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
)

var (
	// ErrStaleBlockhash is returned when the fetched blockhash is already
	// past its last valid block height.
	ErrStaleBlockhash = errors.New("stale blockhash")
	// ErrMissingPayer is returned when Params has no payer.
	ErrMissingPayer = errors.New("missing payer")
	// ErrInvalidMetadata is returned when name, symbol or uri exceed the
	// token metadata limits.
	ErrInvalidMetadata = errors.New("invalid token metadata")
)

// Params describe one mint.
type Params struct {
	// Payer funds the transaction and holds the mint authority. No freeze
	// authority is set.
	Payer common.PublicKey
	// Recipient receives the minted unit. Zero means Payer.
	Recipient common.PublicKey

	// Name, Symbol and URI populate the metadata account. An empty URI
	// selects the plain variant without metadata or master edition.
	Name   string
	Symbol string
	URI    string

	// BeforeSign, when set, sees the assembled message before any signature
	// is applied and may veto it by returning an error.
	BeforeSign func(types.Message) error
}

func (p Params) recipient() common.PublicKey {
	if p.Recipient == (common.PublicKey{}) {
		return p.Payer
	}
	return p.Recipient
}

func (p Params) validate() error {
	if p.Payer == (common.PublicKey{}) {
		return ErrMissingPayer
	}
	if p.URI == "" {
		return nil
	}
	if utf8.RuneCountInString(p.Name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d", ErrInvalidMetadata, MaxNameLength)
	}
	if utf8.RuneCountInString(p.Symbol) > MaxSymbolLength {
		return fmt.Errorf("%w: symbol longer than %d", ErrInvalidMetadata, MaxSymbolLength)
	}
	if len(p.URI) > MaxURILength {
		return fmt.Errorf("%w: uri longer than %d", ErrInvalidMetadata, MaxURILength)
	}
	return nil
}

// Prepared is a mint transaction signed by the fresh mint keypair and
// waiting for the payer's signature.
type Prepared struct {
	Tx             types.Transaction
	MintAddress    common.PublicKey
	HoldingAccount common.PublicKey
	Blockhash      solana.Blockhash
}

// Builder assembles mint transactions. It performs reads only.
type Builder struct {
	rpc     solana.RPC
	newMint func() types.Account
}

// NewBuilder returns a Builder that generates a fresh mint keypair per call.
func NewBuilder(rpc solana.RPC) *Builder {
	return &Builder{rpc: rpc, newMint: types.NewAccount}
}

// Build fetches rent, a blockhash and the block height, assembles the mint
// instructions and co-signs with the fresh mint keypair.
func (b *Builder) Build(ctx context.Context, p Params) (*Prepared, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	rent, err := b.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return nil, fmt.Errorf("mint rent: %w", err)
	}
	bh, err := b.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest blockhash: %w", err)
	}
	height, err := b.rpc.GetBlockHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("block height: %w", err)
	}
	if bh.LastValidBlockHeight <= height {
		return nil, fmt.Errorf("%w: valid until %d, height %d", ErrStaleBlockhash, bh.LastValidBlockHeight, height)
	}

	mintAcc := b.newMint()
	recipient := p.recipient()
	ata, _, err := common.FindAssociatedTokenAddress(recipient, mintAcc.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("associated token address: %w", err)
	}

	ins, err := instructions(p, mintAcc.PublicKey, ata, rent)
	if err != nil {
		return nil, err
	}

	msg := types.NewMessage(types.NewMessageParam{
		FeePayer:        p.Payer,
		RecentBlockhash: bh.Hash,
		Instructions:    ins,
	})
	if p.BeforeSign != nil {
		if err := p.BeforeSign(msg); err != nil {
			return nil, fmt.Errorf("before sign: %w", err)
		}
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: msg,
		Signers: []types.Account{mintAcc},
	})
	if err != nil {
		return nil, fmt.Errorf("new transaction: %w", err)
	}

	return &Prepared{
		Tx:             tx,
		MintAddress:    mintAcc.PublicKey,
		HoldingAccount: ata,
		Blockhash:      bh,
	}, nil
}

// instructions returns the ordered mint instructions: create mint, init
// mint, create holding account, mint one unit, then metadata and master
// edition when a URI is present.
func instructions(p Params, mint, ata common.PublicKey, rent uint64) ([]types.Instruction, error) {
	payer := p.Payer

	ins := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     payer,
			New:      mint,
			Owner:    common.TokenProgramID,
			Lamports: rent,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals: 0,
			Mint:     mint,
			MintAuth: payer,
		}),
		associated_token_account.CreateAssociatedTokenAccount(
			associated_token_account.CreateAssociatedTokenAccountParam{
				Funder:                 payer,
				Owner:                  p.recipient(),
				Mint:                   mint,
				AssociatedTokenAccount: ata,
			},
		),
		token.MintTo(token.MintToParam{
			Mint:   mint,
			To:     ata,
			Auth:   payer,
			Amount: 1,
		}),
	}
	if p.URI == "" {
		return ins, nil
	}

	metadata, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return nil, fmt.Errorf("metadata address: %w", err)
	}
	edition, err := token_metadata.GetMasterEdition(mint)
	if err != nil {
		return nil, fmt.Errorf("master edition address: %w", err)
	}
	maxSupply := uint64(0)

	ins = append(ins,
		token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
			Metadata:                metadata,
			Mint:                    mint,
			MintAuthority:           payer,
			UpdateAuthority:         payer,
			Payer:                   payer,
			UpdateAuthorityIsSigner: true,
			IsMutable:               false,
			Data: token_metadata.DataV2{
				Name:                 p.Name,
				Symbol:               p.Symbol,
				Uri:                  p.URI,
				SellerFeeBasisPoints: 0,
			},
		}),
		token_metadata.CreateMasterEditionV3(token_metadata.CreateMasterEditionParam{
			Edition:         edition,
			Mint:            mint,
			UpdateAuthority: payer,
			MintAuthority:   payer,
			Metadata:        metadata,
			Payer:           payer,
			MaxSupply:       &maxSupply,
		}),
	)
	return ins, nil
}
