package commands

import (
	"sort"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qfactor/am"
	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/store"
	"github.com/teranos/qfactor/server"
)

// HistoryCmd lists recently stored factors
var HistoryCmd = newHistoryCmd()

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently saved factors",
		Long: `List factors saved with --save, newest first, with counts per factor type.

Examples:
  qfactor history
  qfactor history --limit 50 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load configuration")
			}
			if err := requireStorage(cfg); err != nil {
				return err
			}
			st, closeStore, err := openStore(cfg)
			defer closeStore()
			if err != nil {
				return err
			}

			records, err := st.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			counts, err := st.CountByType(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return printJSON(out, server.HistoryResponse{Records: records, Counts: counts})
			}
			if len(records) == 0 {
				pterm.Info.WithWriter(out).Println("No saved factors yet")
				return nil
			}
			if err := renderTable(out, historyRows(records)); err != nil {
				return err
			}
			return renderTable(out, countRows(counts))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultRecentLimit, "Number of factors to show")
	return cmd
}

func historyRows(records []*store.Record) [][]string {
	rows := [][]string{{"ID", "Saved", "Type", "Text", "Confidence"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.ID[:min(8, len(r.ID))],
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Factor.FactorType,
			r.Factor.RawText,
			percent(r.Factor.Confidence),
		})
	}
	return rows
}

func countRows(counts map[string]int) [][]string {
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	rows := [][]string{{"Factor type", "Count"}}
	for _, t := range types {
		rows = append(rows, []string{t, strconv.Itoa(counts[t])})
	}
	return rows
}
