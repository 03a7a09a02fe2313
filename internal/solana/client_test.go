package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newNode starts a JSON-RPC endpoint that answers every call with the
// response registered for its method.
func newNode(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		body, ok := responses[req.Method]
		if !ok {
			body = `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetBlockHeight(t *testing.T) {
	node := newNode(t, map[string]string{
		"getBlockHeight": `{"jsonrpc":"2.0","id":1,"result":271828}`,
	})

	h, err := NewClient(node.URL, DefaultSendRetries, nil).GetBlockHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(271828), h)
}

func TestClient_GetBlockHeightNodeError(t *testing.T) {
	node := newNode(t, map[string]string{
		"getBlockHeight": `{"jsonrpc":"2.0","id":1,"error":{"code":-32005,"message":"Node is behind"}}`,
	})

	_, err := NewClient(node.URL, DefaultSendRetries, nil).GetBlockHeight(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Node is behind")
}

func TestClient_GetLatestBlockhash(t *testing.T) {
	node := newNode(t, map[string]string{
		"getLatestBlockhash": `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":{"blockhash":"EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N","lastValidBlockHeight":300}}}`,
	})

	bh, err := NewClient(node.URL, DefaultSendRetries, nil).GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Blockhash{Hash: "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N", LastValidBlockHeight: 300}, bh)
}

func TestDefaultSendRetries_AssignsToConfigFields(t *testing.T) {
	var retries int = DefaultSendRetries
	var maxRetries uint64 = DefaultSendRetries
	assert.Equal(t, 3, retries)
	assert.Equal(t, uint64(3), maxRetries)
}

func TestLogsFromData_ProgramLogs(t *testing.T) {
	logs := logsFromData(map[string]any{"logs": []any{"Program log: a", 7, "Program log: b"}})
	assert.Equal(t, []string{"Program log: a", "Program log: b"}, logs)
	assert.Nil(t, logsFromData("not a map"))
}
