package contract

import (
	"context"
	"math/big"
	"strings"

	"github.com/solterm/solterm/internal/chain"
)

// Gas heuristic for a contract-creation transaction: base transaction cost,
// per-byte creation cost, and headroom for constructor execution.
const (
	baseTxGas          = 21_000
	perByteCreationGas = 200
	constructorGasPad  = 50_000
)

// CostEstimate is a derived, never-persisted deployment cost projection.
type CostEstimate struct {
	GasLimit          uint64
	GasPriceGwei      float64
	TotalCostETH      string
	ContractSizeBytes int
	USDEstimate       *float64 // nil when no price was available; approximate at best
}

// GasPriceFunc fetches the current network gas price in wei.
type GasPriceFunc func(ctx context.Context) (*big.Int, error)

// USDPriceFunc fetches the native coin's fiat price. Best-effort only.
type USDPriceFunc func(ctx context.Context) (float64, error)

// EstimateDeploymentCost derives a cost estimate from bytecode size and the
// current gas price. It needs no wallet and never fails on bytecode shape —
// only a failed gas-price fetch yields an error (an *EstimationError).
func EstimateDeploymentCost(ctx context.Context, bytecode string, gasPrice GasPriceFunc, usdPrice USDPriceFunc) (*CostEstimate, error) {
	size := len(strings.TrimPrefix(bytecode, "0x")) / 2
	gasLimit := uint64(baseTxGas + size*perByteCreationGas + constructorGasPad)

	gp, err := gasPrice(ctx)
	if err != nil {
		return nil, &EstimationError{Cause: err}
	}

	totalWei := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gp)

	est := &CostEstimate{
		GasLimit:          gasLimit,
		GasPriceGwei:      chain.WeiToGwei(gp),
		TotalCostETH:      chain.FormatETH(totalWei, 6),
		ContractSizeBytes: size,
	}

	if usdPrice != nil {
		if price, err := usdPrice(ctx); err == nil && price > 0 {
			ethFloat, _ := new(big.Float).Quo(
				new(big.Float).SetInt(totalWei),
				new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
			).Float64()
			usd := ethFloat * price
			est.USDEstimate = &usd
		}
	}

	return est, nil
}
