package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/catalog"
	"github.com/teranos/qfactor/server"
)

// LookupCmd fuzzy-matches a name against the entity catalog
var LookupCmd = newLookupCmd()

func newLookupCmd() *cobra.Command {
	var (
		kindFlag  string
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "lookup TEXT...",
		Short: "Find the catalog entity closest to TEXT",
		Long: `Resolve a name, nickname or misspelling against the entity catalog.

Examples:
  qfactor lookup lebron jmaes
  qfactor lookup Chiefs --type team
  qfactor lookup rebs --type condition --threshold 0.5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := catalog.ParseKind(kindFlag)
			if !ok {
				return errors.WithHint(errors.Newf("unknown entity type %q", kindFlag), "use league, team, player or condition")
			}
			if threshold < 0 || threshold > 1 {
				return errors.Newf("threshold must be between 0 and 1, got %g", threshold)
			}
			_, p, err := loadParser()
			if err != nil {
				return err
			}

			q := strings.Join(args, " ")
			m := p.Catalog().FindEntity(q, kind, threshold)
			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return printJSON(out, server.LookupResponse{
					Query: q, Kind: kind, Threshold: threshold, Match: m, Found: m.Found(),
				})
			}
			if !m.Found() {
				pterm.Warning.WithWriter(out).Printf("No match for %q at threshold %.2f\n", q, threshold)
				return nil
			}
			return renderTable(out, [][]string{
				{"ID", "Name", "Type", "Score"},
				{m.ID, m.Name, string(m.Type), percent(m.Score)},
			})
		},
	}
	cmd.Flags().StringVarP(&kindFlag, "type", "t", "", "Restrict to league, team, player or condition")
	cmd.Flags().Float64Var(&threshold, "threshold", catalog.DefaultThreshold, "Minimum similarity (0-1)")
	return cmd
}
