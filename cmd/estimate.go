package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solterm/solterm/internal/compiler"
	"github.com/solterm/solterm/internal/contract"
	"github.com/solterm/solterm/internal/price"
	"github.com/solterm/solterm/internal/ui"
)

var estimateContract string

var estimateCmd = &cobra.Command{
	Use:   "estimate <file.sol>",
	Short: "Estimate the cost of deploying a contract",
	Long: `Compile a contract and project its deployment cost from bytecode size
and the live gas price, without needing a funded wallet.

The gas figure is a size heuristic, not an on-chain simulation; the deploy
command runs a real eth_estimateGas before submitting.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, err := compileSource(args[0])
		if err != nil {
			return err
		}
		if !res.Success {
			return compileFailure(res)
		}
		artifact, err := res.Contract(estimateContract)
		if err != nil {
			return err
		}

		client := newChainClient()
		fetcher := price.NewFetcher(cfg.PriceCurrency)

		sp := ui.NewSpinner("Fetching gas price...")
		sp.Start()
		est, err := contract.EstimateDeploymentCost(
			cmd.Context(),
			artifact.Bytecode,
			client.GasPrice,
			fetcher.PriceFunc(cfg.Network),
		)
		sp.Stop()
		if err != nil {
			return fmt.Errorf("estimating deployment cost: %w", err)
		}

		printEstimate(artifact.Name, est)
		return nil
	},
}

func printEstimate(name string, est *contract.CostEstimate) {
	fmt.Println(ui.Contract(name) + ui.Meta(" deployment estimate"))
	rows := [][2]string{
		{"Contract size", fmt.Sprintf("%d bytes", est.ContractSizeBytes)},
		{"Gas limit", fmt.Sprintf("%d", est.GasLimit)},
		{"Gas price", fmt.Sprintf("%.2f gwei", est.GasPriceGwei)},
		{"Total cost", est.TotalCostETH + " ETH"},
	}
	if est.USDEstimate != nil {
		rows = append(rows, [2]string{"Approx. fiat", fmt.Sprintf("~%.2f %s", *est.USDEstimate, cfg.PriceCurrency)})
	}
	fmt.Println(ui.KeyValueBlock("", rows))
	fmt.Println(ui.Hint("Gas is a size heuristic; the deploy step estimates on-chain before submitting"))
}

func compileFailure(res *compiler.Result) error {
	fmt.Println(ui.Err("Compilation failed"))
	for _, e := range res.Errors {
		fmt.Println(ui.Meta("  " + e))
	}
	return fmt.Errorf("%d compiler error(s)", len(res.Errors))
}

func init() {
	estimateCmd.Flags().StringVar(&estimateContract, "contract", "", "contract name when the file defines several")
}
