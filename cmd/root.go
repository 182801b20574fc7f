package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solterm/solterm/internal/chain"
	"github.com/solterm/solterm/internal/config"
	"github.com/solterm/solterm/internal/logging"
	"github.com/solterm/solterm/internal/session"
	"github.com/solterm/solterm/internal/ui"
	"github.com/solterm/solterm/internal/wallet"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/solterm/solterm/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	rpcOverride string
)

// rootCmd is the top-level command. A bare Solidity file as the first
// argument is shorthand for `solterm deploy <file>`.
var rootCmd = &cobra.Command{
	Use:   "solterm [file.sol]",
	Short: "Solidity terminal: compile, estimate and deploy",
	Long: `solterm — compile Solidity, estimate deployment cost, and deploy
to an Ethereum network, all from one terminal.

  solterm Counter.sol              compile + deploy in one step
  solterm estimate Counter.sol     what would it cost?
  solterm doctor                   why would a deployment fail?

Keys live in the OS keychain; only addresses touch disk.`,
	Version: Version,
	Args:    cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		logging.SetVerbose(verbose)
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if rpcOverride != "" {
			cfg.RPCURL = rpcOverride
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Print(ui.Banner())
			return cmd.Help()
		}
		if !strings.HasSuffix(args[0], ".sol") {
			return fmt.Errorf("unknown command %q — expected a subcommand or a .sol file\nRun 'solterm --help' for usage", args[0])
		}
		return runDeploy(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// SOLTERM_CONFIG_DIR env var seeds the --config flag default.
	if envDir := os.Getenv("SOLTERM_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.solterm)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&rpcOverride, "rpc", "", "override the configured RPC endpoint")

	rootCmd.AddCommand(
		compileCmd,
		listCmd,
		estimateCmd,
		deployCmd,
		doctorCmd,
		walletCmd,
		historyCmd,
		runCmd,
		aliasCmd,
		scriptCmd,
		sessionCmd,
		configCmd,
	)
}

// --- shared wiring ---

func newChainClient() *chain.Client {
	return chain.NewClient(cfg.RPCURL)
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
	)
}

func newSessionStore() *session.Store {
	return session.NewStore(session.DefaultFileStorage())
}
