package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solterm/solterm/internal/ui"
)

// --- history ---

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [n]",
	Short: "Show the persisted command history (optionally only the last n)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := historyLimit
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("history count must be a positive integer, got %q", args[0])
			}
			limit = n
		}

		entries := newSessionStore().History()
		if len(entries) == 0 {
			fmt.Println(ui.Info("No history yet"))
			return nil
		}
		start := 0
		if limit > 0 && len(entries) > limit {
			start = len(entries) - limit
		}
		for i, e := range entries[start:] {
			fmt.Printf("%s %s\n", ui.Meta(fmt.Sprintf("%4d", start+i+1)), e)
		}
		return nil
	},
}

// --- alias ---

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage command aliases",
}

var aliasSetCmd = &cobra.Command{
	Use:   "set <name> <command...>",
	Short: "Create or update an alias",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		command := strings.Join(args[1:], " ")
		newSessionStore().SetAlias(name, command)
		fmt.Println(ui.Success(fmt.Sprintf("Alias %q → %s", name, ui.Val(command))))
		fmt.Println(ui.Hint("Run it with: solterm run " + name))
		return nil
	},
}

var aliasRemoveCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove an alias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newSessionStore().RemoveAlias(args[0])
		fmt.Println(ui.Success(fmt.Sprintf("Alias %q removed", args[0])))
		return nil
	},
}

var aliasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List aliases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		aliases := newSessionStore().Data().Aliases
		if len(aliases) == 0 {
			fmt.Println(ui.Info("No aliases defined"))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Alias", Width: 16},
			{Title: "Command", Width: 56},
		})
		for name, command := range aliases {
			t.AddRow(ui.Row{ui.Val(name), command})
		}
		fmt.Println(t.Render())
		return nil
	},
}

// --- run (alias expansion) ---

var runCmd = &cobra.Command{
	Use:   "run <alias>",
	Short: "Run an aliased command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command, ok := newSessionStore().Alias(args[0])
		if !ok {
			return fmt.Errorf("unknown alias %q — list them with `solterm alias list`", args[0])
		}
		return runCommandLine(cmd, command)
	},
}

// --- script ---

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Manage saved command sequences",
}

var scriptSaveCmd = &cobra.Command{
	Use:   "save <name> <command>...",
	Short: "Save a command sequence",
	Long: `Save a named sequence of commands, one quoted string each:

  solterm script save ship "compile Token.sol" "deploy Token.sol --yes"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if ok := newSessionStore().SaveScript(name, args[1:]); !ok {
			return fmt.Errorf("script limit reached — remove one with `solterm script rm <name>` first")
		}
		fmt.Println(ui.Success(fmt.Sprintf("Script %q saved (%d step(s))", name, len(args)-1)))
		return nil
	},
}

var scriptRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a saved script, stopping at the first failure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		commands, ok := newSessionStore().Script(args[0])
		if !ok {
			return fmt.Errorf("unknown script %q — list them with `solterm script list`", args[0])
		}
		for i, line := range commands {
			fmt.Println(ui.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(commands), line)))
			if err := runCommandLine(cmd, line); err != nil {
				return fmt.Errorf("script %q failed at step %d: %w", args[0], i+1, err)
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Script %q finished", args[0])))
		return nil
	},
}

var scriptRemoveCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a saved script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newSessionStore().RemoveScript(args[0])
		fmt.Println(ui.Success(fmt.Sprintf("Script %q removed", args[0])))
		return nil
	},
}

var scriptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scripts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scripts := newSessionStore().Data().Scripts
		if len(scripts) == 0 {
			fmt.Println(ui.Info("No scripts saved"))
			return nil
		}
		for name, commands := range scripts {
			fmt.Println(ui.Contract(name) + ui.Meta(fmt.Sprintf("  (%d step(s))", len(commands))))
			for _, c := range commands {
				fmt.Println(ui.Meta("    " + c))
			}
		}
		return nil
	},
}

// --- session ---

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Export, import or reset the persisted session",
}

var sessionExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the session as JSON (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := newSessionStore().Export()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Println(string(blob))
			return nil
		}
		if err := os.WriteFile(args[0], blob, 0o600); err != nil {
			return err
		}
		fmt.Println(ui.Success("Session exported to " + args[0]))
		return nil
	},
}

var sessionImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a previously exported session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if reasons := newSessionStore().Import(blob); len(reasons) > 0 {
			fmt.Println(ui.Err("Import rejected — session left untouched"))
			for _, r := range reasons {
				fmt.Println(ui.Meta("  " + r))
			}
			return fmt.Errorf("invalid session file")
		}
		fmt.Println(ui.Success("Session imported"))
		return nil
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear history, aliases, scripts and cached ABIs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.Confirm("Reset the entire session?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		newSessionStore().Reset()
		fmt.Println(ui.Success("Session reset"))
		return nil
	},
}

// runCommandLine re-dispatches a stored command line through the root
// command, exactly as if it were typed at the shell.
func runCommandLine(cmd *cobra.Command, line string) error {
	root := cmd.Root()
	root.SetArgs(strings.Fields(line))
	return root.Execute()
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show only the most recent N entries")
	aliasCmd.AddCommand(aliasSetCmd, aliasRemoveCmd, aliasListCmd)
	scriptCmd.AddCommand(scriptSaveCmd, scriptRunCmd, scriptRemoveCmd, scriptListCmd)
	sessionCmd.AddCommand(sessionExportCmd, sessionImportCmd, sessionResetCmd)
}
