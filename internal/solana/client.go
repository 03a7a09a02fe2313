package solana

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"go.uber.org/zap"
)

// DefaultSendRetries is the transport-level retry count passed to
// sendTransaction when none is configured.
const DefaultSendRetries = 3

// Client implements RPC on top of the blocto JSON-RPC client.
type Client struct {
	rpc        *client.Client
	maxRetries uint64
	log        *zap.Logger
}

// NewClient creates a Client for endpoint. An empty endpoint selects devnet.
// maxRetries is forwarded to the node as the sendTransaction maxRetries option.
func NewClient(endpoint string, maxRetries uint64, log *zap.Logger) *Client {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		ep = DevnetEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		rpc:        client.NewClient(ep),
		maxRetries: maxRetries,
		log:        log,
	}
}

// GetBalance returns the lamport balance of address.
func (c *Client) GetBalance(ctx context.Context, address string) (uint64, error) {
	bal, err := c.rpc.GetBalance(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("getBalance: %w", err)
	}
	return bal, nil
}

// RequestAirdrop requests lamports from the cluster faucet.
func (c *Client) RequestAirdrop(ctx context.Context, address string, lamports uint64) (string, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, address, lamports)
	if err != nil {
		return "", fmt.Errorf("requestAirdrop: %w", err)
	}
	return sig, nil
}

// GetLatestBlockhash returns the latest blockhash and its last valid height.
func (c *Client) GetLatestBlockhash(ctx context.Context) (Blockhash, error) {
	v, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return Blockhash{}, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	return Blockhash{Hash: v.Blockhash, LastValidBlockHeight: v.LatestValidBlockHeight}, nil
}

// GetBlockHeight returns the current block height.
func (c *Client) GetBlockHeight(ctx context.Context) (uint64, error) {
	res, err := c.rpc.RpcClient.GetBlockHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("getBlockHeight: %w", err)
	}
	if res.Error != nil {
		return 0, fmt.Errorf("getBlockHeight: %w", res.Error)
	}
	return res.Result, nil
}

// GetMinimumBalanceForRentExemption returns the rent-exempt minimum for size bytes.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	l, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size)
	if err != nil {
		return 0, fmt.Errorf("getMinimumBalanceForRentExemption: %w", err)
	}
	return l, nil
}

// AccountExists reports whether address holds an allocated account.
// A missing account is not an error.
func (c *Client) AccountExists(ctx context.Context, address string) (bool, error) {
	info, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "not found") ||
			strings.Contains(msg, "could not find account") ||
			strings.Contains(msg, "account does not exist") {
			return false, nil
		}
		return false, fmt.Errorf("getAccountInfo: %w", err)
	}
	// allocated accounts are always rent funded
	return info.Lamports > 0, nil
}

// SendTransaction submits tx with the configured transport retries.
// Node-side failures are returned as *RPCError so preflight logs survive.
func (c *Client) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	sig, err := c.rpc.SendTransactionWithConfig(ctx, tx, client.SendTransactionConfig{
		PreflightCommitment: rpc.CommitmentConfirmed,
		MaxRetries:          c.maxRetries,
	})
	if err != nil {
		var jerr *rpc.JsonRpcError
		if errors.As(err, &jerr) {
			return "", &RPCError{
				Code:    jerr.Code,
				Message: jerr.Message,
				Logs:    logsFromData(jerr.Data),
			}
		}
		return "", fmt.Errorf("sendTransaction: %w", err)
	}
	c.log.Debug("transaction sent", zap.String("signature", sig))
	return sig, nil
}

// GetSignatureStatus returns the status of signature. An unknown signature
// yields Found == false and no error.
func (c *Client) GetSignatureStatus(ctx context.Context, signature string) (SignatureStatus, error) {
	st, err := c.rpc.GetSignatureStatus(ctx, signature)
	if err != nil {
		return SignatureStatus{}, fmt.Errorf("getSignatureStatuses: %w", err)
	}
	if st == nil {
		return SignatureStatus{}, nil
	}
	out := SignatureStatus{Found: true, Err: st.Err}
	if st.ConfirmationStatus != nil {
		out.Commitment = string(*st.ConfirmationStatus)
	}
	return out, nil
}

// logsFromData extracts simulation logs from a JSON-RPC error data payload.
func logsFromData(data any) []string {
	m, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := m["logs"].([]any)
	if !ok {
		return nil
	}
	logs := make([]string, 0, len(raw))
	for _, l := range raw {
		if s, ok := l.(string); ok {
			logs = append(logs, s)
		}
	}
	return logs
}
