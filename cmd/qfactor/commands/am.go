package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/qfactor/am"
	"github.com/teranos/qfactor/errors"
)

// AmCmd groups configuration commands
var AmCmd = newAmCmd()

func newAmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "am",
		Short: "Manage qfactor configuration",
		Long: `Display and manage qfactor configuration.

Configuration sources (later overrides earlier):
  1. Built-in defaults
  2. /etc/qfactor/qfactor.toml
  3. ~/.qfactor/qfactor.toml
  4. ./qfactor.toml (searched upward from the working directory)
  5. QFACTOR_* environment variables

Examples:
  qfactor am show                         # Effective configuration as TOML
  qfactor am show --sources               # Where each setting came from
  qfactor am init                         # Write ./qfactor.toml with defaults
  qfactor am set parser.backend syntax    # Change one setting`,
	}
	cmd.AddCommand(newAmShowCmd(), newAmInitCmd(), newAmSetCmd(), newAmValidateCmd())
	return cmd
}

func newAmShowCmd() *cobra.Command {
	var (
		format  string
		sources bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if sources {
				intro, err := am.GetConfigIntrospection()
				if err != nil {
					return err
				}
				if jsonOutput(cmd) {
					return printJSON(out, intro)
				}
				return printSources(cmd, intro)
			}

			cfg, err := am.Load()
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			masked := *cfg
			if masked.Parser.ClassifierAPIKey != "" {
				masked.Parser.ClassifierAPIKey = "********"
			}
			if jsonOutput(cmd) {
				format = "json"
			}

			switch format {
			case "toml":
				data, err := am.Marshal(&masked)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "# qfactor configuration\n%s", data)
			case "yaml":
				data, err := yaml.Marshal(&masked)
				if err != nil {
					return errors.Wrap(err, "failed to marshal config to YAML")
				}
				fmt.Fprintf(out, "# qfactor configuration\n%s", data)
			case "json":
				return printJSON(out, &masked)
			default:
				return errors.WithHint(errors.Newf("unsupported format %q", format), "use toml, yaml or json")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml, yaml, json")
	cmd.Flags().BoolVar(&sources, "sources", false, "Show the source of every setting")
	return cmd
}

func printSources(cmd *cobra.Command, intro *am.ConfigIntrospection) error {
	out := cmd.OutOrStdout()
	if len(intro.ConfigFiles) == 0 {
		pterm.Info.WithWriter(out).Println("No config files found, using defaults")
	}
	for _, f := range intro.ConfigFiles {
		fmt.Fprintf(out, "loaded %s\n", f)
	}
	rows := [][]string{{"Setting", "Value", "Source", "From"}}
	for _, s := range intro.Settings {
		value := fmt.Sprintf("%v", s.Value)
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		rows = append(rows, []string{s.Key, value, string(s.Source), s.SourcePath})
	}
	return renderTable(out, rows)
}

// targetConfigPath picks the file init and set write to
func targetConfigPath(user bool) (string, error) {
	if user {
		path := am.UserConfigPath()
		if path == "" {
			return "", errors.New("cannot determine home directory")
		}
		if err := os.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
			return "", errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
		}
		return path, nil
	}
	if path := am.ProjectConfigPath(); path != "" {
		return path, nil
	}
	return am.ConfigFileName, nil
}

func newAmInitCmd() *cobra.Command {
	var force, user bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file holding every default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := am.ConfigFileName
			if user {
				var err error
				if path, err = targetConfigPath(true); err != nil {
					return err
				}
			}
			if err := am.WriteDefaults(path, force); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file (keeps a backup)")
	cmd.Flags().BoolVar(&user, "user", false, "Write ~/.qfactor/qfactor.toml instead of ./qfactor.toml")
	return cmd
}

func newAmSetCmd() *cobra.Command {
	var user bool
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting in the nearest config file",
		Long: `Change one setting. Lists are comma separated.

Examples:
  qfactor am set parser.backend pattern
  qfactor am set server.allowed_origins http://localhost,https://app.example
  qfactor am set storage.enabled true --user`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, raw := args[0], args[1]
			value, err := am.CoerceValue(key, raw)
			if err != nil {
				return err
			}
			path, err := targetConfigPath(user)
			if err != nil {
				return err
			}
			if err := am.SetValue(path, key, value); err != nil {
				return err
			}
			am.Reset()
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("%s = %v (%s)\n", key, value, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "Write ~/.qfactor/qfactor.toml instead of the project file")
	return cmd
}

func newAmValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := am.Load(); err != nil {
				return errors.Wrap(err, "configuration validation failed")
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Println("Configuration is valid")
			return nil
		},
	}
}
