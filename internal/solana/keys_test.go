package solana

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePublicKey(t *testing.T) {
	acc := types.NewAccount()

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "valid", in: acc.PublicKey.ToBase58()},
		{name: "valid with spaces", in: "  " + acc.PublicKey.ToBase58() + "\n"},
		{name: "empty", in: "", wantErr: true},
		{name: "not base58", in: "0OIl", wantErr: true},
		{name: "too short", in: "Mint111", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePublicKey(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidPublicKey))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, acc.PublicKey, got)
		})
	}
}

func TestKeypairJSONRoundTrip(t *testing.T) {
	acc := types.NewAccount()

	data, err := MarshalKeypairJSON(acc)
	require.NoError(t, err)

	got, err := ParseKeypairJSON(data)
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey, got.PublicKey)
}

func TestParseKeypairJSON_Errors(t *testing.T) {
	cases := map[string]string{
		"not json":     "secret",
		"short array":  "[1,2,3]",
		"out of range": "[" + strings.Repeat("300,", 63) + "300]",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseKeypairJSON([]byte(in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidKeypair))
		})
	}
}

func TestLoadKeypairFile(t *testing.T) {
	acc := types.NewAccount()
	data, err := MarshalKeypairJSON(acc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, data, 0600))

	got, err := LoadKeypairFile(path)
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey, got.PublicKey)

	_, err = LoadKeypairFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRPCErrorMessage(t *testing.T) {
	err := &RPCError{Code: -32002, Message: "simulation failed", Logs: []string{"Program log: a", "Program log: b"}}
	assert.Contains(t, err.Error(), "simulation failed")
	assert.Contains(t, err.Error(), "Program log: b")

	bare := &RPCError{Code: -32000, Message: "oops"}
	assert.NotContains(t, bare.Error(), "logs")
}

func TestSignatureStatusConfirmed(t *testing.T) {
	assert.False(t, SignatureStatus{}.Confirmed())
	assert.False(t, SignatureStatus{Found: true, Commitment: CommitmentProcessed}.Confirmed())
	assert.True(t, SignatureStatus{Found: true, Commitment: CommitmentConfirmed}.Confirmed())
	assert.True(t, SignatureStatus{Found: true, Commitment: CommitmentFinalized}.Confirmed())
}

func TestLogsFromData(t *testing.T) {
	data := map[string]any{"logs": []any{"one", 2, "three"}}
	assert.Equal(t, []string{"one", "three"}, logsFromData(data))
	assert.Nil(t, logsFromData("nope"))
}
