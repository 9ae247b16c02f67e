package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/qfactor/am"
	"github.com/teranos/qfactor/cmd/qfactor/commands"
	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/logger"
)

var rootCmd = &cobra.Command{
	Use:   "qfactor",
	Short: "qfactor - sports factor parser",
	Long: `qfactor turns natural-language sports statements into structured factors.

Available commands:
  parse    - Parse one factor statement
  batch    - Parse a file of factors, one per line
  lookup   - Resolve a name against the entity catalog
  history  - Show saved factors
  serve    - Serve the parser over HTTP and WebSocket
  am       - Manage configuration
  version  - Show build information

Examples:
  qfactor parse "LeBron James scores more than 25 points"
  qfactor parse --json "Chiefs win by 7 or more"
  qfactor serve -v`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs := false
		// Configuration errors are reported by the command that needs it
		if cfg, err := am.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
		}
		if err := logger.Initialize(jsonLogs, commands.Verbosity(cmd)); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	commands.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(commands.ParseCmd)
	rootCmd.AddCommand(commands.BatchCmd)
	rootCmd.AddCommand(commands.LookupCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
