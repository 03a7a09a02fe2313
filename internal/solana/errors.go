package solana

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPublicKey is returned for strings that are not base58
	// encoded 32-byte public keys.
	ErrInvalidPublicKey = errors.New("solana: invalid public key")
	// ErrInvalidKeypair is returned for malformed keypair material.
	ErrInvalidKeypair = errors.New("solana: invalid keypair")
)

// RPCError is a JSON-RPC error returned by the node, carrying the
// simulation logs when the node provided them.
type RPCError struct {
	Code    int
	Message string
	Logs    []string
}

func (e *RPCError) Error() string {
	if len(e.Logs) == 0 {
		return fmt.Sprintf("solana rpc: code=%d message=%s", e.Code, e.Message)
	}
	return fmt.Sprintf("solana rpc: code=%d message=%s logs=[%s]", e.Code, e.Message, strings.Join(e.Logs, "; "))
}
