package contract

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

	"github.com/solterm/solterm/internal/chain"
	"github.com/solterm/solterm/internal/wallet"
)

// testKey is a throwaway key used only to produce valid signatures in tests.
const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

// staticProvider is a canned wallet provider.
type staticProvider struct {
	accounts []string
	err      error
}

func (p *staticProvider) Accounts() ([]string, error) { return p.accounts, p.err }

// rpcMock serves fixed JSON-RPC responses per method; unknown methods get an
// RPC error.
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
				"jsonrpc": "2.0", "id": req.ID, "result": result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

func testDeployer(t *testing.T, srv *httptest.Server) (*Deployer, string) {
	t.Helper()
	signer, err := wallet.NewKeySigner(testKey)
	require.NoError(t, err)
	provider := &staticProvider{accounts: []string{signer.Address()}}
	d := NewDeployer(chain.NewClient(srv.URL), provider, signer, big.NewInt(11155111))
	return d, signer.Address()
}

func simpleRequest() *DeploymentRequest {
	return &DeploymentRequest{
		ContractName: "Counter",
		ABI:          ABI{},
		ABIJSON:      []byte(`[]`),
		Bytecode:     "0x6080604052",
	}
}

// oneETH covers the 0.001 ETH floor comfortably.
const oneETH = "0xde0b6b3a7640000"

func happyPathResponses() map[string]interface{} {
	return map[string]interface{}{
		"eth_getBalance":          oneETH,
		"eth_estimateGas":         "0x186a0",    // 100000
		"eth_gasPrice":            "0x3b9aca00", // 1 gwei
		"eth_getTransactionCount": "0x0",
		"eth_sendRawTransaction":  "0xfeedhash",
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":            "0x1",
			"blockNumber":       "0x10",
			"gasUsed":           "0x186a0",
			"effectiveGasPrice": "0x77359400", // 2 gwei
			"contractAddress":   "0x2222222222222222222222222222222222222222",
		},
	}
}

// ---------------------------------------------------------------------------
// wallet and balance gates
// ---------------------------------------------------------------------------

func TestDeployNoProvider(t *testing.T) {
	srv := rpcMock(t, nil)
	defer srv.Close()

	d := NewDeployer(chain.NewClient(srv.URL), nil, nil, big.NewInt(1))
	out := d.Deploy(context.Background(), simpleRequest())

	assert.False(t, out.Success)
	assert.Equal(t, ReasonNoWalletDetected, out.Reason)
}

func TestDeployNoAccounts(t *testing.T) {
	srv := rpcMock(t, nil)
	defer srv.Close()

	signer, err := wallet.NewKeySigner(testKey)
	require.NoError(t, err)
	d := NewDeployer(chain.NewClient(srv.URL), &staticProvider{}, signer, big.NewInt(1))

	out := d.Deploy(context.Background(), simpleRequest())
	assert.Equal(t, ReasonNoAccountConnected, out.Reason)
}

func TestDeployBalanceFetchFails(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{}) // eth_getBalance → RPC error
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	out := d.Deploy(context.Background(), simpleRequest())
	assert.Equal(t, ReasonNetworkError, out.Reason)
}

func TestDeployInsufficientBalance(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getBalance": "0x1"})
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	out := d.Deploy(context.Background(), simpleRequest())

	assert.Equal(t, ReasonInsufficientBalance, out.Reason)
	assert.Equal(t, "0.000000", out.BalanceETH)
	assert.Equal(t, "0.001000", out.MinimumETH)
}

// ---------------------------------------------------------------------------
// gas resolution
// ---------------------------------------------------------------------------

func TestDeployGasEstimationFails(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getBalance": oneETH})
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	out := d.Deploy(context.Background(), simpleRequest())
	assert.Equal(t, ReasonGasEstimationFailed, out.Reason)
}

func TestDeployExplicitGasLimitSkipsEstimation(t *testing.T) {
	// No eth_estimateGas in the mock: an explicit limit must never call it.
	responses := happyPathResponses()
	delete(responses, "eth_estimateGas")
	srv := rpcMock(t, responses)
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	req := simpleRequest()
	req.GasLimit = 300_000

	out := d.Deploy(context.Background(), req)
	assert.True(t, out.Success, "detail: %s", out.Detail)
}

func TestDeployExplicitGasPriceSkipsFetch(t *testing.T) {
	responses := happyPathResponses()
	delete(responses, "eth_gasPrice")
	srv := rpcMock(t, responses)
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	req := simpleRequest()
	req.GasPriceGwei = 3

	out := d.Deploy(context.Background(), req)
	assert.True(t, out.Success, "detail: %s", out.Detail)
}

// ---------------------------------------------------------------------------
// full deployment
// ---------------------------------------------------------------------------

func TestDeploySuccess(t *testing.T) {
	srv := rpcMock(t, happyPathResponses())
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	out := d.Deploy(context.Background(), simpleRequest())

	require.True(t, out.Success, "detail: %s", out.Detail)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", out.ContractAddress)
	assert.Equal(t, "0xfeedhash", out.TxHash)
	assert.Equal(t, uint64(16), out.BlockNumber)
	assert.Equal(t, uint64(100_000), out.GasUsed)
	assert.Equal(t, big.NewInt(2_000_000_000), out.EffectiveGasPrice)
	// 100000 gas * 2 gwei = 0.0002 ETH
	assert.Equal(t, "0.000200000000000000", out.TotalCostETH)
}

func TestDeployWithConstructorArgs(t *testing.T) {
	srv := rpcMock(t, happyPathResponses())
	defer srv.Close()

	abiJSON := []byte(`[{"type":"constructor","inputs":[{"name":"supply","type":"uint256"}]}]`)
	abi, err := ParseABI(abiJSON)
	require.NoError(t, err)
	typed, err := TypeConstructorArgs(abi, []string{"1000"})
	require.NoError(t, err)

	d, _ := testDeployer(t, srv)
	out := d.Deploy(context.Background(), &DeploymentRequest{
		ContractName:    "Token",
		ABI:             abi,
		ABIJSON:         abiJSON,
		Bytecode:        "0x6080604052",
		ConstructorArgs: typed,
	})
	assert.True(t, out.Success, "detail: %s", out.Detail)
}

func TestDeployReverted(t *testing.T) {
	responses := happyPathResponses()
	responses["eth_getTransactionReceipt"] = map[string]interface{}{
		"status":      "0x0",
		"blockNumber": "0x10",
		"gasUsed":     "0x186a0",
	}
	srv := rpcMock(t, responses)
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	out := d.Deploy(context.Background(), simpleRequest())

	assert.False(t, out.Success)
	assert.Equal(t, ReasonReverted, out.Reason)
	assert.Equal(t, "0xfeedhash", out.TxHash)
	assert.Equal(t, uint64(100_000), out.GasUsed)
}

func TestDeployNoAddressInReceipt(t *testing.T) {
	responses := happyPathResponses()
	responses["eth_getTransactionReceipt"] = map[string]interface{}{
		"status":      "0x1",
		"blockNumber": "0x10",
		"gasUsed":     "0x186a0",
	}
	srv := rpcMock(t, responses)
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	out := d.Deploy(context.Background(), simpleRequest())

	assert.Equal(t, ReasonNoAddressReturned, out.Reason)
	assert.Equal(t, "0xfeedhash", out.TxHash)
}

func TestDeployTimeoutCarriesHash(t *testing.T) {
	responses := happyPathResponses()
	responses["eth_getTransactionReceipt"] = nil // forever pending
	srv := rpcMock(t, responses)
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	out := d.WithTimeout(time.Millisecond).Deploy(context.Background(), simpleRequest())

	assert.False(t, out.Success)
	assert.Equal(t, ReasonTimeout, out.Reason)
	assert.Equal(t, "0xfeedhash", out.TxHash, "a timed-out deployment must surface its hash")
}

func TestDeploySubmissionRejected(t *testing.T) {
	responses := happyPathResponses()
	delete(responses, "eth_sendRawTransaction")
	srv := rpcMock(t, responses)
	defer srv.Close()

	d, _ := testDeployer(t, srv)
	out := d.Deploy(context.Background(), simpleRequest())
	assert.Equal(t, ReasonSubmissionFailed, out.Reason)
}

func TestDeployBadArgsFailBeforeSubmission(t *testing.T) {
	srv := rpcMock(t, happyPathResponses())
	defer srv.Close()

	abiJSON := []byte(`[{"type":"constructor","inputs":[{"name":"supply","type":"uint256"}]}]`)
	abi, err := ParseABI(abiJSON)
	require.NoError(t, err)

	d, _ := testDeployer(t, srv)
	out := d.Deploy(context.Background(), &DeploymentRequest{
		ContractName:    "Token",
		ABI:             abi,
		ABIJSON:         abiJSON,
		Bytecode:        "0x6080604052",
		ConstructorArgs: []any{"not an int"}, // wrong representation for uint256
	})
	assert.Equal(t, ReasonSubmissionFailed, out.Reason)
	assert.Empty(t, out.TxHash)
}
