package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solterm/solterm/internal/contract"
	"github.com/solterm/solterm/internal/price"
	"github.com/solterm/solterm/internal/session"
	"github.com/solterm/solterm/internal/ui"
	"github.com/solterm/solterm/internal/wallet"
)

var (
	deployArgs     string
	deployContract string
	deployGasLimit uint64
	deployGasPrice float64
	deployYes      bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy <file.sol>",
	Short: "Compile and deploy a contract",
	Long: `Compile a Solidity file and deploy it with the default wallet.

Constructor arguments are passed comma-separated and typed against the ABI:
  solterm deploy Token.sol --args "MyToken,MTK,1000000"
  solterm deploy Vault.sol --args "0xA0b8...,true" --gas-limit 900000

Before submitting, the projected cost is shown and confirmed (skip with
--yes). A timed-out transaction is never resubmitted — check the printed
hash on an explorer instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	path := args[0]

	res, _, err := compileSource(path)
	if err != nil {
		return err
	}
	if !res.Success {
		return compileFailure(res)
	}
	artifact, err := res.Contract(deployContract)
	if err != nil {
		return err
	}

	var rawArgs []string
	if deployArgs != "" {
		rawArgs = strings.Split(deployArgs, ",")
	}
	typed, err := contract.TypeConstructorArgs(artifact.ABI, rawArgs)
	if err != nil {
		return fmt.Errorf("constructor arguments: %w", err)
	}

	client := newChainClient()
	manager := newWalletManager()

	// Cost preview and confirmation.
	if !deployYes {
		fetcher := price.NewFetcher(cfg.PriceCurrency)
		sp := ui.NewSpinner("Estimating cost...")
		sp.Start()
		est, err := contract.EstimateDeploymentCost(
			cmd.Context(), artifact.Bytecode, client.GasPrice, fetcher.PriceFunc(cfg.Network))
		sp.Stop()
		if err != nil {
			return fmt.Errorf("estimating deployment cost: %w", err)
		}
		printEstimate(artifact.Name, est)
		if !ui.Confirm(fmt.Sprintf("Deploy %s to %s?", artifact.Name, cfg.Network)) {
			fmt.Println(ui.Info("Deployment cancelled"))
			return nil
		}
	}

	var signer wallet.Signer
	if def := manager.Default(); def != nil {
		s, err := manager.SignerFor(def.Address)
		if err != nil {
			return err
		}
		signer = s
	}

	deployer := contract.NewDeployer(client, manager, signer, big.NewInt(cfg.ChainID))

	sp := ui.NewSpinner(fmt.Sprintf("Deploying %s to %s...", artifact.Name, cfg.Network))
	sp.Start()
	outcome := deployer.Deploy(cmd.Context(), &contract.DeploymentRequest{
		ContractName:    artifact.Name,
		ABI:             artifact.ABI,
		ABIJSON:         artifact.ABIJSON,
		Bytecode:        artifact.Bytecode,
		ConstructorArgs: typed,
		GasLimit:        deployGasLimit,
		GasPriceGwei:    deployGasPrice,
	})
	sp.Stop()

	recordDeployment(path, artifact.Name, artifact.ABIJSON, manager.Default(), outcome)
	return printOutcome(artifact.Name, outcome)
}

// recordDeployment writes the attempt into the persisted session: the command
// goes to history, and a successful deployment caches the ABI and updates the
// contract snapshot.
func recordDeployment(path, name string, abiJSON []byte, def *wallet.Wallet, outcome *contract.DeploymentOutcome) {
	store := newSessionStore()
	store.AddToHistory("deploy " + path)
	if def != nil {
		store.UpdateWallet(session.WalletSnapshot{
			Address:   def.Address,
			Network:   cfg.Network,
			Connected: true,
		})
	}
	if outcome.Success {
		store.CacheABI(name, abiJSON)
		store.UpdateSmartWallet(session.SmartWalletSnapshot{
			Address:  outcome.ContractAddress,
			Deployed: true,
		})
	}
}

func printOutcome(name string, out *contract.DeploymentOutcome) error {
	if out.Success {
		fmt.Println(ui.Success(fmt.Sprintf("%s deployed", name)))
		rows := [][2]string{
			{"Address", out.ContractAddress},
			{"Transaction", out.TxHash},
			{"Block", fmt.Sprintf("%d", out.BlockNumber)},
			{"Gas used", fmt.Sprintf("%d", out.GasUsed)},
			{"Total cost", out.TotalCostETH + " ETH"},
		}
		fmt.Println(ui.KeyValueBlock("", rows))
		return nil
	}

	fmt.Println(ui.Err(fmt.Sprintf("Deployment failed: %s", out.Reason)))
	if out.Detail != "" {
		fmt.Println(ui.Meta("  " + out.Detail))
	}

	switch out.Reason {
	case contract.ReasonNoWalletDetected, contract.ReasonNoAccountConnected:
		fmt.Println(ui.Hint("Add a wallet with: solterm wallet add <name>"))
	case contract.ReasonInsufficientBalance:
		fmt.Println(ui.Hint(fmt.Sprintf("Balance %s ETH is below the %s ETH floor — fund the wallet and retry",
			out.BalanceETH, out.MinimumETH)))
	case contract.ReasonTimeout:
		fmt.Println(ui.Hint("The transaction may still be mined — check " + ui.Addr(out.TxHash)))
		fmt.Println(ui.Hint("Do not resubmit: a duplicate would deploy the contract twice"))
	case contract.ReasonReverted:
		fmt.Println(ui.Hint("Constructor reverted — check its require() conditions and arguments"))
	}
	return fmt.Errorf("deployment failed: %s", out.Reason)
}

func init() {
	deployCmd.Flags().StringVar(&deployArgs, "args", "", "comma-separated constructor arguments")
	deployCmd.Flags().StringVar(&deployContract, "contract", "", "contract name when the file defines several")
	deployCmd.Flags().Uint64Var(&deployGasLimit, "gas-limit", 0, "explicit gas limit (0 = estimate on-chain)")
	deployCmd.Flags().Float64Var(&deployGasPrice, "gas-price", 0, "explicit gas price in gwei (0 = fetch + 1 gwei premium)")
	deployCmd.Flags().BoolVarP(&deployYes, "yes", "y", false, "skip the confirmation prompt")
}
