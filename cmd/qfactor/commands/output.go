package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qfactor/factor/types"
)

// AddGlobalFlags registers the flags every command understands
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	cmd.PersistentFlags().BoolP("json", "j", false, "Print machine-readable JSON")
}

func jsonOutput(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool("json")
	return on
}

// Verbosity returns the -v count
func Verbosity(cmd *cobra.Command) int {
	n, _ := cmd.Flags().GetCount("verbose")
	return n
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, rows [][]string) error {
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(rows).Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func percent(f float64) string {
	return strconv.Itoa(int(f*100+0.5)) + "%"
}

// conditionString renders a condition as "points > 25 (quarter fourth)"
func conditionString(c types.FactorCondition) string {
	var b strings.Builder
	b.WriteString(c.Text)
	if c.Value != 0 || c.ComparisonType != types.Equal {
		fmt.Fprintf(&b, " %s %s", c.ComparisonType, strconv.FormatFloat(c.Value, 'f', -1, 64))
	}
	if c.TimeFrame != "" {
		b.WriteString(" (")
		if c.TimePosition != "" {
			b.WriteString(c.TimePosition + " ")
		}
		b.WriteString(c.TimeFrame + ")")
	}
	if c.IsNegated {
		b.WriteString(" [negated]")
	}
	return b.String()
}

// printFactor writes a two-column summary of pf followed by its conditions
func printFactor(w io.Writer, pf *types.ParsedFactor) error {
	summary := [][]string{
		{"Field", "Value"},
		{"Text", pf.RawText},
		{"Player", orDash(pf.Player)},
		{"Team", orDash(pf.Team)},
		{"Opponent", orDash(pf.Opponent)},
		{"League", orDash(pf.League)},
		{"Entity", string(pf.EntityType)},
		{"Factor type", pf.FactorType},
		{"Operator", string(pf.ConditionOperator)},
		{"Negated", strconv.FormatBool(pf.IsNegated)},
		{"Confidence", percent(pf.Confidence)},
	}
	if err := renderTable(w, summary); err != nil {
		return err
	}
	if len(pf.Conditions) == 0 {
		return nil
	}

	conds := [][]string{{"#", "Condition", "Type", "Confidence"}}
	for i, c := range pf.Conditions {
		conds = append(conds, []string{strconv.Itoa(i + 1), conditionString(c), string(c.Type), percent(c.Confidence)})
	}
	return renderTable(w, conds)
}
