package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/solterm/solterm/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set one configuration key:

  network         human name of the target chain (sepolia, mainnet, ...)
  rpc_url         JSON-RPC endpoint
  chain_id        expected chain id, checked by doctor
  solc_version    pinned solc version (empty = use PATH)
  price_currency  currency for cost estimates (usd, eur, ...)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		switch key {
		case "network":
			cfg.Network = value
		case "rpc_url":
			cfg.RPCURL = value
		case "chain_id":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("chain_id must be an integer: %q", value)
			}
			cfg.ChainID = id
		case "solc_version":
			cfg.SolcVersion = value
		case "price_currency":
			cfg.PriceCurrency = value
		default:
			return fmt.Errorf("unknown config key %q — run `solterm config set --help`", key)
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", key, value)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetCmd)
}
