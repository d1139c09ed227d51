package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit moonraker.url and spoolman.url (or export SPOOLCHECK_MOONRAKER_URL / SPOOLCHECK_SPOOLMAN_URL) before starting the daemon.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file, including the [checks] section",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			resolved, err := checks.ResolveConfig(cfg.CheckSettings())
			if err != nil {
				return fmt.Errorf("invalid [checks] section: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Metadata source: %s\n", cfg.Moonraker.MetadataSource)
			fmt.Fprintf(out, "History: %s\n", yesNo(cfg.History.Enabled))
			rows := [][]string{
				checkRow("weight", resolved.Weight),
				checkRow("material", resolved.Material),
				checkRow("filament_name", resolved.FilamentName),
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Enabled", "Severity"}, rows, nil))
			fmt.Fprintf(out, "Weight margin: %s g\n", formatGrams(resolved.WeightMargin))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func checkRow(name string, settings checks.CheckSettings) []string {
	return []string{name, yesNo(settings.Enabled), string(settings.Severity)}
}
