package chain

import "math/big"

var (
	weiPerETH  = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	weiPerGwei = big.NewInt(1_000_000_000)
)

// WeiToETH converts a wei amount to an 18-decimal ETH string.
func WeiToETH(wei *big.Int) string {
	return FormatETH(wei, 18)
}

// FormatETH converts a wei amount to an ETH string with the given number of
// decimal places.
func FormatETH(wei *big.Int, decimals int) string {
	if wei == nil {
		return "0"
	}
	f := new(big.Float).SetInt(wei)
	f.Quo(f, weiPerETH)
	return f.Text('f', decimals)
}

// WeiToGwei converts a wei value to Gwei as float64.
func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		new(big.Float).SetInt(weiPerGwei),
	).Float64()
	return f
}

// GweiToWei converts a decimal Gwei amount to wei, truncating below 1 wei.
func GweiToWei(gwei float64) *big.Int {
	f := new(big.Float).Mul(
		new(big.Float).SetFloat64(gwei),
		new(big.Float).SetInt(weiPerGwei),
	)
	wei, _ := f.Int(nil)
	return wei
}
