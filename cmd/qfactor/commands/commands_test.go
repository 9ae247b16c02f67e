package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qfactor/am"
	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/parser"
	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/server"
	"github.com/teranos/qfactor/version"
)

const lebron = "LeBron James scores more than 25 points"

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// isolate points config discovery at empty directories and selects the
// deterministic pattern backend
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("QFACTOR_PARSER_BACKEND", "pattern")
	am.Reset()
	t.Cleanup(am.Reset)
	return dir
}

func enableStorage(t *testing.T, dir string) {
	t.Setenv("QFACTOR_STORAGE_ENABLED", "true")
	t.Setenv("QFACTOR_STORAGE_PATH", filepath.Join(dir, "history.db"))
	am.Reset()
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "qfactor", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(cmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{cmd.Name()}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestParseCommandJSON(t *testing.T) {
	isolate(t)

	out, err := run(t, newParseCmd(), "", "--json", "LeBron", "James", "scores", "more", "than", "25", "points")
	require.NoError(t, err, out)

	var resp server.ParseResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, lebron, resp.Factor.RawText)
	assert.Equal(t, "LeBron James", resp.Factor.Player)
	assert.Equal(t, types.FactorPlayerScoring, resp.Factor.FactorType)
	assert.True(t, resp.Valid)
	assert.Equal(t, parser.Explain(resp.Factor), resp.Explanation)
	assert.Empty(t, resp.ID)
}

func TestParseCommandTable(t *testing.T) {
	isolate(t)

	out, err := run(t, newParseCmd(), "", "--explain", lebron)
	require.NoError(t, err)
	assert.Contains(t, out, "LeBron James")
	assert.Contains(t, out, "points > 25")
	assert.Contains(t, out, "player_scoring")
	assert.Contains(t, out, "(NBA)")

	out, err = run(t, newParseCmd(), "", "it rains tomorrow")
	require.NoError(t, err)
	assert.Contains(t, out, "Incomplete factor: could not identify a player or team")
}

func TestParseCommandSave(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, newParseCmd(), "", "--save", lebron)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage is disabled")
	assert.NotEmpty(t, errors.GetAllHints(err))

	enableStorage(t, dir)
	out, err := run(t, newParseCmd(), "", "--save", "--json", lebron)
	require.NoError(t, err, out)
	var resp server.ParseResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.ID, 36)

	out, err = run(t, newHistoryCmd(), "", "--json")
	require.NoError(t, err, out)
	var hist server.HistoryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &hist), out)
	require.Len(t, hist.Records, 1)
	assert.Equal(t, resp.ID, hist.Records[0].ID)
	assert.Equal(t, 1, hist.Counts[types.FactorPlayerScoring])

	out, err = run(t, newHistoryCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, resp.ID[:8])
	assert.Contains(t, out, lebron)
}

func TestHistoryRequiresStorage(t *testing.T) {
	isolate(t)
	_, err := run(t, newHistoryCmd(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage is disabled")
}

func TestBatchCommand(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "factors.txt")
	require.NoError(t, os.WriteFile(path, []byte("# weekend picks\n"+lebron+"\n\n  Chiefs win by 7 or more points  \n"), 0o644))

	out, err := run(t, newBatchCmd(), "", "--json", path)
	require.NoError(t, err, out)
	var factors []*types.ParsedFactor
	require.NoError(t, json.Unmarshal([]byte(out), &factors), out)
	require.Len(t, factors, 2)
	assert.Equal(t, "LeBron James", factors[0].Player)
	assert.Equal(t, "Chiefs win by 7 or more points", factors[1].RawText)
	assert.Equal(t, "Kansas City Chiefs", factors[1].Team)

	out, err = run(t, newBatchCmd(), lebron+"\n", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "LeBron James")
	assert.Contains(t, out, "true")
}

func TestBatchCommandErrors(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, newBatchCmd(), "", filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")

	_, err = run(t, newBatchCmd(), "# only comments\n\n", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no factors")
}

func TestLookupCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, newLookupCmd(), "", "--json", "--type", "player", "lebron", "jmaes")
	require.NoError(t, err, out)
	var resp server.LookupResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.True(t, resp.Found)
	assert.Equal(t, "lebron-james", resp.Match.ID)
	assert.Equal(t, "lebron jmaes", resp.Query)

	out, err = run(t, newLookupCmd(), "", "Chiefs")
	require.NoError(t, err)
	assert.Contains(t, out, "Kansas City Chiefs")

	out, err = run(t, newLookupCmd(), "", "zzqxv")
	require.NoError(t, err)
	assert.Contains(t, out, "No match")

	_, err = run(t, newLookupCmd(), "", "--type", "stadium", "x")
	require.Error(t, err)
	_, err = run(t, newLookupCmd(), "", "--threshold", "1.5", "x")
	require.Error(t, err)
}

func TestAmInitAndSet(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, newAmCmd(), "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, am.ConfigFileName)
	require.FileExists(t, filepath.Join(dir, am.ConfigFileName))

	_, err = run(t, newAmCmd(), "", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, newAmCmd(), "", "init", "--force")
	require.NoError(t, err)

	_, err = run(t, newAmCmd(), "", "set", "cache.capacity", "64")
	require.NoError(t, err)
	am.Reset()
	cfg, err := am.Load()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Cache.Capacity)

	_, err = run(t, newAmCmd(), "", "set", "parser.entity_threshold", "3")
	require.Error(t, err)

	_, err = run(t, newAmCmd(), "", "set", "parser.nonsense", "1")
	require.Error(t, err)
}

func TestAmSetUser(t *testing.T) {
	isolate(t)

	_, err := run(t, newAmCmd(), "", "set", "--user", "server.port", "9000")
	require.NoError(t, err)
	require.FileExists(t, am.UserConfigPath())

	am.Reset()
	cfg, err := am.Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestAmShow(t *testing.T) {
	isolate(t)
	t.Setenv("QFACTOR_CLASSIFIER_API_KEY", "s3cret")
	am.Reset()

	out, err := run(t, newAmCmd(), "", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[parser]")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "s3cret")

	out, err = run(t, newAmCmd(), "", "show", "--json")
	require.NoError(t, err)
	var cfg am.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg), out)
	assert.Equal(t, "pattern", cfg.Parser.Backend)
	assert.Equal(t, am.DefaultServerPort, cfg.Server.Port)

	out, err = run(t, newAmCmd(), "", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "parser:")

	_, err = run(t, newAmCmd(), "", "show", "--format", "ini")
	require.Error(t, err)

	out, err = run(t, newAmCmd(), "", "show", "--sources")
	require.NoError(t, err)
	assert.Contains(t, out, "QFACTOR_PARSER_BACKEND")
	assert.Contains(t, out, "No config files found")
}

func TestAmValidate(t *testing.T) {
	isolate(t)
	out, err := run(t, newAmCmd(), "", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	t.Setenv("QFACTOR_PARSER_BACKEND", "quantum")
	am.Reset()
	_, err = run(t, newAmCmd(), "", "validate")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, newVersionCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "qfactor")

	out, err = run(t, newVersionCmd(), "", "--json")
	require.NoError(t, err)
	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.GoVersion)
}
