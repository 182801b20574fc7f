package contract

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/solterm/solterm/internal/chain"
	"github.com/solterm/solterm/internal/logging"
	"github.com/solterm/solterm/internal/wallet"
)

// Deployment policy knobs. The 20% estimation buffer and the 1 Gwei premium
// absorb small gas-price movements between estimation and inclusion.
const (
	gasBufferNum = 6 // ceil(estimate * 1.2) == (estimate*6 + 4) / 5
	gasBufferDen = 5

	gasPremiumWei = 1_000_000_000 // 1 Gwei added to the fetched price

	// ConfirmTimeout bounds the receipt wait. After it expires the
	// transaction is reported as timed out but may still be mined later;
	// it is never resubmitted, since a duplicate creation tx would deploy
	// the contract twice.
	ConfirmTimeout = 60 * time.Second
)

// minBalanceWei is a heuristic pre-flight floor (0.001 ETH), not a
// gas-accurate check — the real transaction cost is unknown at that point.
var minBalanceWei = big.NewInt(1_000_000_000_000_000)

// DeploymentRequest describes one deployment attempt. Transient; a retry is
// a fresh request.
type DeploymentRequest struct {
	ContractName    string
	ABI             ABI
	ABIJSON         []byte // raw ABI, handed to the argument encoder
	Bytecode        string // 0x-prefixed creation bytecode, without args
	ConstructorArgs []any  // output of TypeConstructorArgs, same order
	GasLimit        uint64 // 0 = estimate on-chain with buffer
	GasPriceGwei    float64
}

// FailureReason classifies a failed deployment.
type FailureReason string

const (
	ReasonNoWalletDetected    FailureReason = "no wallet detected"
	ReasonNoAccountConnected  FailureReason = "no account connected"
	ReasonInsufficientBalance FailureReason = "insufficient balance"
	ReasonNetworkError        FailureReason = "network error"
	ReasonGasEstimationFailed FailureReason = "gas estimation failed"
	ReasonSubmissionFailed    FailureReason = "submission failed"
	ReasonTimeout             FailureReason = "confirmation timeout"
	ReasonReverted            FailureReason = "reverted"
	ReasonNoAddressReturned   FailureReason = "no contract address in receipt"
)

// DeploymentOutcome is the structured result of a deployment attempt. TxHash
// may be set even on failure (submitted-but-reverted, timed out) — callers
// must surface it so the user can check the transaction later.
type DeploymentOutcome struct {
	Success bool
	Reason  FailureReason
	Detail  string // underlying cause text, empty on success

	ContractAddress   string
	TxHash            string
	BlockNumber       uint64
	GasUsed           uint64
	EffectiveGasPrice *big.Int
	TotalCostETH      string

	// Set alongside ReasonInsufficientBalance.
	BalanceETH string
	MinimumETH string
}

// Failed constructs a failure outcome.
func failed(reason FailureReason, detail string) *DeploymentOutcome {
	return &DeploymentOutcome{Reason: reason, Detail: detail}
}

// Deployer walks a deployment attempt through wallet and balance checks, gas
// resolution, submission and confirmation. Every failure is terminal for the
// invocation and comes back as a typed outcome; no step is retried and no
// error escapes Deploy.
type Deployer struct {
	client   *chain.Client
	provider wallet.Provider
	signer   wallet.Signer
	chainID  *big.Int
	timeout  time.Duration
	log      zerolog.Logger
}

// NewDeployer wires a deployer to its network and wallet collaborators.
func NewDeployer(client *chain.Client, provider wallet.Provider, signer wallet.Signer, chainID *big.Int) *Deployer {
	return &Deployer{
		client:   client,
		provider: provider,
		signer:   signer,
		chainID:  chainID,
		timeout:  ConfirmTimeout,
		log:      logging.NewLogger("deployer"),
	}
}

// WithTimeout overrides the confirmation timeout (tests use short ones).
func (d *Deployer) WithTimeout(timeout time.Duration) *Deployer {
	d.timeout = timeout
	return d
}

// Deploy runs the full deployment state machine:
//
//	WalletCheck → BalanceCheck → GasResolution → Submit → AwaitConfirmation
func (d *Deployer) Deploy(ctx context.Context, req *DeploymentRequest) *DeploymentOutcome {
	// WalletCheck.
	if d.provider == nil || d.signer == nil {
		return failed(ReasonNoWalletDetected, "no wallet provider configured")
	}
	accounts, err := d.provider.Accounts()
	if err != nil {
		return failed(ReasonNoWalletDetected, err.Error())
	}
	if len(accounts) == 0 {
		return failed(ReasonNoAccountConnected, "wallet provider returned no accounts")
	}
	from := accounts[0]
	d.log.Debug().Str("from", from).Str("contract", req.ContractName).Msg("wallet check passed")

	// BalanceCheck. A heuristic floor only — the true cost is not known yet.
	bal, err := d.client.GetBalance(ctx, from)
	if err != nil {
		return failed(ReasonNetworkError, "fetching balance: "+err.Error())
	}
	if bal.Wei.Cmp(minBalanceWei) < 0 {
		out := failed(ReasonInsufficientBalance, "balance below deployment floor")
		out.BalanceETH = chain.FormatETH(bal.Wei, 6)
		out.MinimumETH = chain.FormatETH(minBalanceWei, 6)
		return out
	}

	// Build the init code before gas estimation: creation gas depends on it.
	encodedArgs, err := EncodeConstructorArgs(req.ABIJSON, req.ABI, req.ConstructorArgs)
	if err != nil {
		return failed(ReasonSubmissionFailed, "encoding constructor arguments: "+err.Error())
	}
	initCode := strings.TrimPrefix(req.Bytecode, "0x") + hex.EncodeToString(encodedArgs)
	initCodeBytes, err := hex.DecodeString(initCode)
	if err != nil {
		return failed(ReasonSubmissionFailed, "invalid bytecode hex: "+err.Error())
	}

	// GasResolution: an explicit limit is used verbatim; otherwise estimate
	// and buffer. An estimation failure fails the deployment — silently
	// substituting a fixed default would submit blind.
	gasLimit := req.GasLimit
	if gasLimit == 0 {
		estimated, err := d.client.EstimateDeployGas(ctx, from, "0x"+initCode)
		if err != nil {
			return failed(ReasonGasEstimationFailed, err.Error())
		}
		gasLimit = (estimated*gasBufferNum + gasBufferDen - 1) / gasBufferDen
		d.log.Debug().Uint64("estimated", estimated).Uint64("buffered", gasLimit).Msg("gas estimated")
	}

	var gasPrice *big.Int
	if req.GasPriceGwei > 0 {
		gasPrice = chain.GweiToWei(req.GasPriceGwei)
	} else {
		fetched, err := d.client.GasPrice(ctx)
		if err != nil {
			return failed(ReasonGasEstimationFailed, "fetching gas price: "+err.Error())
		}
		gasPrice = new(big.Int).Add(fetched, big.NewInt(gasPremiumWei))
		// Premium floor: never below 1 Gwei + 1 wei.
		floor := big.NewInt(gasPremiumWei + 1)
		if gasPrice.Cmp(floor) < 0 {
			gasPrice = floor
		}
	}

	// Submit.
	nonce, err := d.client.GetPendingNonce(ctx, from)
	if err != nil {
		return failed(ReasonSubmissionFailed, "fetching nonce: "+err.Error())
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       nil, // contract creation
		Value:    big.NewInt(0),
		Data:     initCodeBytes,
	})

	raw, err := d.signer.SignTx(tx, d.chainID)
	if err != nil {
		return failed(ReasonSubmissionFailed, "signing: "+err.Error())
	}

	hash, err := d.client.SendRawTransaction(ctx, "0x"+hex.EncodeToString(raw))
	if err != nil {
		return failed(ReasonSubmissionFailed, err.Error())
	}
	d.log.Debug().Str("tx", hash).Uint64("gasLimit", gasLimit).Msg("transaction submitted")

	// AwaitConfirmation. On timeout the hash is surfaced and the deployment
	// is NOT retried — the original may still be pending.
	receipt, err := d.client.WaitForReceipt(ctx, hash, d.timeout)
	if err != nil {
		out := failed(ReasonTimeout, err.Error())
		out.TxHash = hash
		return out
	}

	return classifyReceipt(receipt, gasPrice)
}

// classifyReceipt turns a mined receipt into the final outcome.
func classifyReceipt(receipt *chain.Receipt, resolvedGasPrice *big.Int) *DeploymentOutcome {
	if receipt.Status != 1 {
		out := failed(ReasonReverted, "transaction reverted on-chain")
		out.TxHash = receipt.Hash
		out.BlockNumber = receipt.BlockNumber
		out.GasUsed = receipt.GasUsed
		return out
	}

	if receipt.ContractAddress == "" || receipt.ContractAddress == "0x" {
		// Should not happen for a well-formed creation transaction.
		out := failed(ReasonNoAddressReturned, "receipt has success status but no contract address")
		out.TxHash = receipt.Hash
		out.BlockNumber = receipt.BlockNumber
		out.GasUsed = receipt.GasUsed
		return out
	}

	effective := receipt.EffectiveGasPrice
	if effective == nil {
		effective = resolvedGasPrice
	}
	totalWei := new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), effective)

	return &DeploymentOutcome{
		Success:           true,
		ContractAddress:   receipt.ContractAddress,
		TxHash:            receipt.Hash,
		BlockNumber:       receipt.BlockNumber,
		GasUsed:           receipt.GasUsed,
		EffectiveGasPrice: effective,
		TotalCostETH:      chain.FormatETH(totalWei, 18),
	}
}
