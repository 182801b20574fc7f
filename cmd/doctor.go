package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solterm/solterm/internal/contract"
	"github.com/solterm/solterm/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether a deployment would succeed",
	Long: `Run every pre-flight probe — wallet, account, balance floor, RPC
reachability and chain-id match — and report each problem with a fix.
All probes run even after one fails, so a single run shows everything
that needs fixing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newChainClient()
		manager := newWalletManager()

		sp := ui.NewSpinner("Running readiness checks...")
		sp.Start()
		report := contract.NewChecker(client, manager, cfg.ChainID).Check(cmd.Context())
		sp.Stop()

		if report.Ready {
			fmt.Println(ui.Success(fmt.Sprintf("Ready to deploy to %s", cfg.Network)))
			if gas, err := client.GetGasInfo(cmd.Context()); err == nil {
				fmt.Println(ui.Meta(fmt.Sprintf("  Current gas price: %.2f gwei", gas.GasPriceGwei)))
			}
			return nil
		}

		fmt.Println(ui.Warn(fmt.Sprintf("%d issue(s) found", len(report.Issues))))
		for _, issue := range report.Issues {
			fmt.Println(ui.Err(issue))
		}
		return fmt.Errorf("not ready to deploy")
	},
}
