package commands

import (
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/parser"
	"github.com/teranos/qfactor/logger"
	"github.com/teranos/qfactor/server"
)

// ParseCmd parses one factor statement
var ParseCmd = newParseCmd()

func newParseCmd() *cobra.Command {
	var (
		league  string
		explain bool
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "parse TEXT...",
		Short: "Parse a factor statement",
		Long: `Parse a natural-language sports factor into players, teams, conditions
and a factor type. Arguments are joined with spaces, so quoting is optional.

Examples:
  qfactor parse "LeBron James scores more than 25 points"
  qfactor parse Chiefs win by 7 or more --league nfl
  qfactor parse --explain --save Mahomes throws for 300+ yards`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("nothing to parse")
			}
			cfg, p, err := loadParser()
			if err != nil {
				return err
			}
			if save {
				if err := requireStorage(cfg); err != nil {
					return err
				}
			}

			start := time.Now()
			pf := p.ParseWithOptions(text, parser.ParseOptions{League: league})
			elapsed := time.Since(start)
			valid, reason := parser.Validate(pf)
			resp := server.ParseResponse{
				Factor:      pf,
				Valid:       valid,
				Reason:      reason,
				Explanation: parser.Explain(pf),
			}

			if save {
				st, closeStore, err := openStore(cfg)
				defer closeStore()
				if err != nil {
					return err
				}
				if resp.ID, err = st.Save(cmd.Context(), pf); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return printJSON(out, resp)
			}
			if err := printFactor(out, pf); err != nil {
				return err
			}
			if explain {
				pterm.Info.WithWriter(out).Println(resp.Explanation)
			}
			if !valid {
				pterm.Warning.WithWriter(out).Println("Incomplete factor: " + reason)
			}
			if resp.ID != "" {
				pterm.Success.WithWriter(out).Println("Saved as " + resp.ID)
			}
			if logger.ShouldOutput(Verbosity(cmd), logger.OutputTiming) {
				pterm.Info.WithWriter(out).Printf("Parsed in %s\n", elapsed.Round(time.Microsecond))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&league, "league", "l", "", "League hint (ID, name or alias)")
	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "Print a plain-English explanation")
	cmd.Flags().BoolVar(&save, "save", false, "Store the result in the history database")
	return cmd
}
