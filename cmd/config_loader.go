package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/dumpx/pkg/config"
	"github.com/oakwood-commons/dumpx/pkg/settings"
)

// resolveConfigPath returns explicit if set, otherwise the XDG path
// ($XDG_CONFIG_HOME/dumpx/config.yaml, or ~/.config/dumpx/config.yaml) when
// that file exists. An empty result means only the built-in defaults apply.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, settings.ConfigFileName)
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, settings.ConfigFileName)
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// loadConfig merges the file at path (if any) and the flag overrides. The
// engine applies the result on top of the built-in defaults.
func loadConfig(path string, overrides *config.Config) (*config.Config, error) {
	base := config.New()
	if path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		base = fileCfg
	}
	return config.Merge(base, overrides), nil
}

func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dumpx version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return err
		},
	}
}

// newConfigCmd groups the configuration subcommands.
func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect dumpx configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Print the built-in configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.DefaultConfigYAML())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := resolveConfigPath(opts.configFile)
			if path == "" {
				path = "(built-in defaults)"
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Check a configuration file, compiling its rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configFile
			if len(args) > 0 {
				path = args[0]
			}
			path = resolveConfigPath(path)
			if path == "" {
				return fmt.Errorf("no configuration file found")
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d rules)\n", path, cfg.Table.Rules().Len())
			return err
		},
	})
	return cmd
}
