package mint

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/SolForge/internal/solana"
	"github.com/atinyakov/SolForge/internal/solana/solanatest"
)

func newFakeRPC() *solanatest.FakeRPC {
	return &solanatest.FakeRPC{
		Blockhash: solana.Blockhash{
			Hash:                 types.NewAccount().PublicKey.ToBase58(),
			LastValidBlockHeight: 100,
		},
		Height: 50,
		Rent:   1_461_600,
	}
}

func TestInstructions_Order(t *testing.T) {
	payer := types.NewAccount().PublicKey
	recipient := types.NewAccount().PublicKey
	mintKey := types.NewAccount().PublicKey
	ata, _, err := common.FindAssociatedTokenAddress(recipient, mintKey)
	require.NoError(t, err)

	tests := []struct {
		name     string
		uri      string
		programs []common.PublicKey
	}{
		{
			name: "plain",
			programs: []common.PublicKey{
				common.SystemProgramID,
				common.TokenProgramID,
				common.SPLAssociatedTokenAccountProgramID,
				common.TokenProgramID,
			},
		},
		{
			name: "with metadata",
			uri:  "ipfs://bafy/metadata.json",
			programs: []common.PublicKey{
				common.SystemProgramID,
				common.TokenProgramID,
				common.SPLAssociatedTokenAccountProgramID,
				common.TokenProgramID,
				common.MetaplexTokenMetaProgramID,
				common.MetaplexTokenMetaProgramID,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{Payer: payer, Recipient: recipient, Name: "Ember Drake", Symbol: "ETF", URI: tt.uri}
			ins, err := instructions(p, mintKey, ata, 1_461_600)
			require.NoError(t, err)
			require.Len(t, ins, len(tt.programs))
			for i, want := range tt.programs {
				assert.Equal(t, want, ins[i].ProgramID, "instruction %d", i)
			}

			// initialize mint: zero decimals, payer as mint authority and
			// no freeze authority
			require.GreaterOrEqual(t, len(ins[1].Data), 35)
			assert.Equal(t, byte(0), ins[1].Data[0])
			assert.Equal(t, byte(0), ins[1].Data[1])
			assert.Equal(t, payer.Bytes(), ins[1].Data[2:34])
			assert.Equal(t, byte(0), ins[1].Data[34], "freeze authority must be unset")

			// mint to: exactly one unit
			require.GreaterOrEqual(t, len(ins[3].Data), 9)
			assert.Equal(t, byte(7), ins[3].Data[0])
			assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(ins[3].Data[1:9]))
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	rpc := newFakeRPC()
	payer := types.NewAccount()
	mintAcc := types.NewAccount()

	b := NewBuilder(rpc)
	b.newMint = func() types.Account { return mintAcc }

	var seen *types.Message
	p, err := b.Build(context.Background(), Params{
		Payer: payer.PublicKey,
		Name:  "Ember Drake",
		BeforeSign: func(m types.Message) error {
			seen = &m
			return nil
		},
	})
	require.NoError(t, err)
	require.NotNil(t, seen)

	assert.Equal(t, mintAcc.PublicKey, p.MintAddress)
	wantATA, _, err := common.FindAssociatedTokenAddress(payer.PublicKey, mintAcc.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, wantATA, p.HoldingAccount, "recipient defaults to payer")
	assert.Equal(t, uint64(100), p.Blockhash.LastValidBlockHeight)

	assert.Equal(t, payer.PublicKey, p.Tx.Message.Accounts[0], "payer pays fees")
	require.Len(t, p.Tx.Signatures, 2)
	assert.Equal(t, make([]byte, 64), []byte(p.Tx.Signatures[0]), "payer signature is pending")
	assert.NotEqual(t, make([]byte, 64), []byte(p.Tx.Signatures[1]), "mint keypair co-signed")

	assert.Equal(t, 0, rpc.Called("SendTransaction"))
	assert.Equal(t, 0, rpc.Called("RequestAirdrop"))
}

func TestBuilder_StaleBlockhash(t *testing.T) {
	rpc := newFakeRPC()
	rpc.Height = 100

	_, err := NewBuilder(rpc).Build(context.Background(), Params{Payer: types.NewAccount().PublicKey})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStaleBlockhash))
	assert.Equal(t, 0, rpc.Called("SendTransaction"))
}

func TestBuilder_Rejects(t *testing.T) {
	veto := errors.New("user declined")
	payer := types.NewAccount().PublicKey

	tests := []struct {
		name string
		p    Params
		want error
	}{
		{name: "missing payer", p: Params{}, want: ErrMissingPayer},
		{
			name: "long name",
			p:    Params{Payer: payer, Name: strings.Repeat("x", MaxNameLength+1), URI: "ipfs://x"},
			want: ErrInvalidMetadata,
		},
		{
			name: "long symbol",
			p:    Params{Payer: payer, Symbol: strings.Repeat("S", MaxSymbolLength+1), URI: "ipfs://x"},
			want: ErrInvalidMetadata,
		},
		{
			name: "vetoed",
			p:    Params{Payer: payer, BeforeSign: func(types.Message) error { return veto }},
			want: veto,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(newFakeRPC()).Build(context.Background(), tt.p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}
