package mint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/SolForge/internal/solana"
	"github.com/atinyakov/SolForge/internal/solana/solanatest"
)

func TestGuarantor_Ensure(t *testing.T) {
	confirmed := []solana.SignatureStatus{{Found: true, Commitment: solana.CommitmentConfirmed}}
	faucetDown := func(context.Context, string, uint64) (string, error) {
		return "", errors.New("429 Too Many Requests")
	}

	tests := []struct {
		name     string
		rpc      *solanatest.FakeRPC
		wantErr  error
		airdrops int
	}{
		{
			name:     "funded",
			rpc:      &solanatest.FakeRPC{Balances: []uint64{MinBalanceLamports}},
			airdrops: 0,
		},
		{
			name:     "airdrop confirmed",
			rpc:      &solanatest.FakeRPC{Balances: []uint64{0, AirdropLamports}, Statuses: confirmed},
			airdrops: 1,
		},
		{
			name:     "faucet down but enough for fees",
			rpc:      &solanatest.FakeRPC{Balances: []uint64{6000}, AirdropFunc: faucetDown},
			airdrops: 1,
		},
		{
			name:     "faucet down and broke",
			rpc:      &solanatest.FakeRPC{Balances: []uint64{0}, AirdropFunc: faucetDown},
			wantErr:  ErrInsufficientFunds,
			airdrops: 1,
		},
		{
			name:     "airdrop never confirms",
			rpc:      &solanatest.FakeRPC{Balances: []uint64{100}},
			wantErr:  ErrInsufficientFunds,
			airdrops: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuarantor(tt.rpc, nil)
			g.Timeout = 20 * time.Millisecond
			g.PollInterval = time.Millisecond

			err := g.Ensure(context.Background(), types.NewAccount().PublicKey)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Contains(t, err.Error(), FaucetURL)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.airdrops, tt.rpc.Called("RequestAirdrop"))
		})
	}
}

func TestMinter_Mint(t *testing.T) {
	rpc := newFakeRPC()
	rpc.Balances = []uint64{AirdropLamports}
	rpc.Statuses = []solana.SignatureStatus{{Found: true, Commitment: solana.CommitmentConfirmed}}

	m := NewMinter(rpc, nil)
	m.Submitter.PollInterval = time.Millisecond

	payer := types.NewAccount()
	treasury := types.NewAccount().PublicKey
	res, err := m.Mint(context.Background(), Params{
		Recipient: treasury,
		Name:      "Ember Drake",
		Symbol:    "ETF",
		URI:       "ipfs://bafy/metadata.json",
	}, KeypairWallet{Account: payer}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, res.MintAddress)
	assert.Equal(t, "tx-signature", res.Signature)
	require.Len(t, rpc.Sent, 1)
	assert.Equal(t, payer.PublicKey, rpc.Sent[0].Message.Accounts[0])
	assert.Equal(t, 0, rpc.Called("RequestAirdrop"))
}

func TestMinter_InsufficientFundsStopsBeforeBuild(t *testing.T) {
	rpc := newFakeRPC()
	rpc.AirdropFunc = func(context.Context, string, uint64) (string, error) {
		return "", errors.New("faucet dry")
	}

	m := NewMinter(rpc, nil)
	_, err := m.Mint(context.Background(), Params{}, KeypairWallet{Account: types.NewAccount()}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, 0, rpc.Called("GetLatestBlockhash"))
	assert.Equal(t, 0, rpc.Called("SendTransaction"))
}
