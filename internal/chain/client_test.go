package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Pass method→result pairs; any unknown method returns an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

// rpcBadJSON creates a server that returns malformed JSON.
func rpcBadJSON(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
}

// ---------------------------------------------------------------------------
// GetBalance
// ---------------------------------------------------------------------------

func TestGetBalance(t *testing.T) {
	// 1 ETH
	srv := rpcMock(t, map[string]interface{}{"eth_getBalance": "0xde0b6b3a7640000"})
	defer srv.Close()

	bal, err := NewClient(srv.URL).GetBalance(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", bal.Wei.String())
	assert.Equal(t, "1.000000000000000000", bal.ETH)
}

func TestGetBalanceRPCError(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{})
	defer srv.Close()

	_, err := NewClient(srv.URL).GetBalance(context.Background(), "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
}

func TestGetBalanceMalformedResponse(t *testing.T) {
	srv := rpcBadJSON(t)
	defer srv.Close()

	_, err := NewClient(srv.URL).GetBalance(context.Background(), "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

// ---------------------------------------------------------------------------
// GasPrice / GetGasInfo
// ---------------------------------------------------------------------------

func TestGasPrice(t *testing.T) {
	// 25 gwei
	srv := rpcMock(t, map[string]interface{}{"eth_gasPrice": "0x5d21dba00"})
	defer srv.Close()

	gp, err := NewClient(srv.URL).GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "25000000000", gp.String())
}

func TestGetGasInfo(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_gasPrice": "0x3b9aca00"}) // 1 gwei
	defer srv.Close()

	info, err := NewClient(srv.URL).GetGasInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000), info.GasPrice)
	assert.InDelta(t, 1.0, info.GasPriceGwei, 0.0001)
}

// ---------------------------------------------------------------------------
// EstimateDeployGas
// ---------------------------------------------------------------------------

func TestEstimateDeployGas(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_estimateGas": "0x186a0"}) // 100000
	defer srv.Close()

	gas, err := NewClient(srv.URL).EstimateDeployGas(context.Background(), "0xfrom", "0x6080")
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), gas)
}

func TestEstimateDeployGasOmitsToField(t *testing.T) {
	// A creation estimate must not carry a `to` field.
	var sawTo bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var callObj map[string]interface{}
		require.NoError(t, json.Unmarshal(req.Params[0], &callObj))
		_, sawTo = callObj["to"]
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": "0x5208",
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).EstimateDeployGas(context.Background(), "0xfrom", "0x6080")
	require.NoError(t, err)
	assert.False(t, sawTo, "creation estimate must omit the to field")
}

// ---------------------------------------------------------------------------
// ChainID / nonce / submission
// ---------------------------------------------------------------------------

func TestChainID(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_chainId": "0xaa36a7"}) // sepolia
	defer srv.Close()

	id, err := NewClient(srv.URL).ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), id)
}

func TestGetPendingNonce(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionCount": "0x7"})
	defer srv.Close()

	nonce, err := NewClient(srv.URL).GetPendingNonce(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)
}

func TestSendRawTransaction(t *testing.T) {
	hash := "0x" + "ab"
	srv := rpcMock(t, map[string]interface{}{"eth_sendRawTransaction": hash})
	defer srv.Close()

	got, err := NewClient(srv.URL).SendRawTransaction(context.Background(), "0xf86b...")
	require.NoError(t, err)
	assert.Equal(t, hash, got)
}

func TestSendRawTransactionRejected(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{})
	defer srv.Close()

	_, err := NewClient(srv.URL).SendRawTransaction(context.Background(), "0xf86b...")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// receipts
// ---------------------------------------------------------------------------

func TestGetReceiptMined(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": map[string]interface{}{
		"status":            "0x1",
		"blockNumber":       "0x10",
		"gasUsed":           "0x5208",
		"effectiveGasPrice": "0x3b9aca00",
		"contractAddress":   "0x1111111111111111111111111111111111111111",
	}})
	defer srv.Close()

	r, err := NewClient(srv.URL).GetReceipt(context.Background(), "0xhash")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, uint64(1), r.Status)
	assert.Equal(t, uint64(16), r.BlockNumber)
	assert.Equal(t, uint64(21000), r.GasUsed)
	assert.Equal(t, big.NewInt(1_000_000_000), r.EffectiveGasPrice)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", r.ContractAddress)
}

func TestGetReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	r, err := NewClient(srv.URL).GetReceipt(context.Background(), "0xhash")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestWaitForReceiptImmediate(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": map[string]interface{}{
		"status":      "0x1",
		"blockNumber": "0x10",
		"gasUsed":     "0x5208",
	}})
	defer srv.Close()

	r, err := NewClient(srv.URL).WaitForReceipt(context.Background(), "0xhash", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, uint64(1), r.Status)
}

func TestWaitForReceiptRevertedIsNotAnError(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": map[string]interface{}{
		"status":      "0x0",
		"blockNumber": "0x10",
		"gasUsed":     "0x5208",
	}})
	defer srv.Close()

	r, err := NewClient(srv.URL).WaitForReceipt(context.Background(), "0xhash", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, uint64(0), r.Status)
}

func TestWaitForReceiptTimeout(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	_, err := NewClient(srv.URL).WaitForReceipt(context.Background(), "0xhash", 1*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReceiptTimeout)
}

func TestWaitForReceiptContextCancelled(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL).WaitForReceipt(ctx, "0xhash", time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// Ping
// ---------------------------------------------------------------------------

func TestPing(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x100"})
	defer srv.Close()

	latency, block, err := NewClient(srv.URL).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(256), block)
	assert.Greater(t, latency, time.Duration(0))
}

func TestPingUnreachable(t *testing.T) {
	srv := rpcMock(t, nil)
	srv.Close() // closed server: connection refused

	_, _, err := NewClient(srv.URL).Ping(context.Background())
	require.Error(t, err)
}
