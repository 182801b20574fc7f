package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solterm/solterm/internal/compiler"
	"github.com/solterm/solterm/internal/ui"
)

var compileNoCache bool

var compileCmd = &cobra.Command{
	Use:   "compile <file.sol>",
	Short: "Compile a Solidity source file",
	Long: `Compile a Solidity file with solc and cache the artifacts.

Artifacts land in a temp-dir cache keyed by file modification time, so an
unchanged source never recompiles. Pin a compiler with:
  solterm config set solc_version 0.8.24`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, fromCache, err := compileSource(args[0])
		if err != nil {
			return err
		}
		if !res.Success {
			fmt.Println(ui.Err("Compilation failed"))
			for _, e := range res.Errors {
				fmt.Println(ui.Meta("  " + e))
			}
			return fmt.Errorf("%d compiler error(s)", len(res.Errors))
		}

		if fromCache {
			fmt.Println(ui.Info("Using cached artifacts (source unchanged)"))
		}
		fmt.Println(ui.Success(fmt.Sprintf("Compiled %s", args[0])))

		t := ui.NewTable([]ui.Column{
			{Title: "CONTRACT", Width: 24},
			{Title: "BYTECODE", Width: 12},
			{Title: "CONSTRUCTOR", Width: 40},
		})
		for name, a := range res.Contracts {
			t.AddRow(ui.Row{name, fmt.Sprintf("%d bytes", len(a.Bytecode)/2-1), constructorSignature(a)})
		}
		fmt.Print(t.Render())
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached compilation artifacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := compiler.NewCache().Entries()
		if len(entries) == 0 {
			fmt.Println(ui.Info("No cached artifacts"))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "SOURCE", Width: 44},
			{Title: "CONTRACTS", Width: 28},
			{Title: "COMPILED", Width: 20},
		})
		for _, e := range entries {
			t.AddRow(ui.Row{e.Source, joinMax(e.Contracts, 28), e.CompiledAt.Local().Format("2006-01-02 15:04:05")})
		}
		fmt.Print(t.Render())
		return nil
	},
}

// compileSource compiles through the artifact cache.
func compileSource(path string) (*compiler.Result, bool, error) {
	cache := compiler.NewCache()
	if !compileNoCache {
		if res, ok := cache.Get(path); ok {
			return res, true, nil
		}
	}

	sp := ui.NewSpinner("Compiling " + path + "...")
	sp.Start()
	res, err := compiler.New(cfg.SolcVersion).Compile(path)
	sp.Stop()
	if err != nil {
		return nil, false, err
	}
	cache.Put(path, res)
	return res, false, nil
}

func constructorSignature(a *compiler.Artifact) string {
	inputs := a.ABI.ConstructorInputs()
	if len(inputs) == 0 {
		return "()"
	}
	sig := "("
	for i, p := range inputs {
		if i > 0 {
			sig += ", "
		}
		sig += p.Type + " " + p.Name
	}
	return sig + ")"
}

func joinMax(parts []string, max int) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	if len(out) > max {
		return out[:max-1] + "…"
	}
	return out
}

func init() {
	compileCmd.Flags().BoolVar(&compileNoCache, "no-cache", false, "recompile even when cached artifacts exist")
}
