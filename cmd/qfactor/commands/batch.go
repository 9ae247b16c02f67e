package commands

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/parser"
	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/logger"
)

// BatchCmd parses a file of factor statements, one per line
var BatchCmd = newBatchCmd()

func newBatchCmd() *cobra.Command {
	var (
		league string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Parse one factor per line from FILE (- for stdin)",
		Long: `Parse every non-empty line of FILE. Lines starting with # are skipped.
Factors in the same batch that share a player, team or league get a
small confidence boost.

Examples:
  qfactor batch factors.txt
  cat factors.txt | qfactor batch - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readFactorLines(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if len(texts) == 0 {
				return errors.WithHint(errors.Newf("no factors in %s", args[0]), "write one factor per line")
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
			factors := p.ParseMultiWithOptions(texts, parser.ParseOptions{League: league})
			elapsed := time.Since(start)

			if save {
				st, closeStore, err := openStore(cfg)
				defer closeStore()
				if err != nil {
					return err
				}
				for _, pf := range factors {
					if _, err := st.Save(cmd.Context(), pf); err != nil {
						return err
					}
				}
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				return printJSON(out, factors)
			}
			if err := renderTable(out, batchRows(factors)); err != nil {
				return err
			}
			if save {
				pterm.Success.WithWriter(out).Printf("Saved %d factors\n", len(factors))
			}
			if logger.ShouldOutput(Verbosity(cmd), logger.OutputTiming) {
				pterm.Info.WithWriter(out).Printf("Parsed %d factors in %s\n", len(factors), elapsed.Round(time.Microsecond))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&league, "league", "l", "", "League hint applied to every line")
	cmd.Flags().BoolVar(&save, "save", false, "Store every result in the history database")
	return cmd
}

func batchRows(factors []*types.ParsedFactor) [][]string {
	rows := [][]string{{"#", "Text", "Entity", "Type", "Conditions", "Confidence", "Valid"}}
	for i, pf := range factors {
		valid, _ := parser.Validate(pf)
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			pf.RawText,
			orDash(pf.PrimaryEntity()),
			pf.FactorType,
			strconv.Itoa(len(pf.Conditions)),
			percent(pf.Confidence),
			strconv.FormatBool(valid),
		})
	}
	return rows
}

// readFactorLines reads non-empty, non-comment lines from path, or from
// stdin when path is "-"
func readFactorLines(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s", path)
		}
		defer f.Close()
		r = f
	}

	var texts []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		texts = append(texts, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return texts, nil
}
