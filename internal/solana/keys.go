package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
)

// ParsePublicKey decodes a base58 address and checks its length.
func ParsePublicKey(s string) (common.PublicKey, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return common.PublicKey{}, fmt.Errorf("%w: empty", ErrInvalidPublicKey)
	}
	b, err := base58.Decode(t)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(b) != common.PublicKeyLength {
		return common.PublicKey{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidPublicKey, common.PublicKeyLength, len(b))
	}
	return common.PublicKeyFromBytes(b), nil
}

// ParseKeypairJSON restores an account from the solana-keygen format:
// a JSON array of 64 integers (seed followed by public key).
func ParseKeypairJSON(data []byte) (types.Account, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return types.Account{}, fmt.Errorf("%w: not a json int array", ErrInvalidKeypair)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return types.Account{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKeypair, ed25519.PrivateKeySize, len(ints))
	}
	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return types.Account{}, fmt.Errorf("%w: byte out of range at %d", ErrInvalidKeypair, i)
		}
		b[i] = byte(v)
	}
	acc, err := types.AccountFromBytes(b)
	if err != nil {
		return types.Account{}, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	return acc, nil
}

// MarshalKeypairJSON encodes acc in the solana-keygen JSON array format.
func MarshalKeypairJSON(acc types.Account) ([]byte, error) {
	ints := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// LoadKeypairFile reads a solana-keygen keypair file.
func LoadKeypairFile(path string) (types.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("read keypair: %w", err)
	}
	return ParseKeypairJSON(data)
}
