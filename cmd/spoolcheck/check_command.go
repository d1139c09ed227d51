package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spoolcheck/internal/api"
	"spoolcheck/internal/config"
	"spoolcheck/internal/history"
	"spoolcheck/internal/ipc"
	"spoolcheck/internal/logging"
	"spoolcheck/internal/prestart"
)

var errPrintBlocked = errors.New("pre-print checks blocked the print")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var file string
	var asJSON bool
	var local bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the pre-print checks for a file (default: the file Klipper has loaded)",
		Long: "Run the pre-print checks through the daemon. With --local, or when no daemon\n" +
			"is running, the checks run in this process instead. Exits 1 when the decision is block.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filename := strings.TrimSpace(file)

			var session api.Session
			var client *ipc.Client
			if !local {
				client = ctx.tryClient()
			}
			if client != nil {
				defer client.Close()
				remote, err := client.PrePrintChecks(filename)
				if err != nil {
					return fmt.Errorf("pre-print checks: %w", err)
				}
				session = *remote
			} else {
				session, err = runLocalCheck(cmd, cfg, filename)
				if err != nil {
					return err
				}
			}

			if asJSON {
				if err := writeJSON(cmd, session); err != nil {
					return err
				}
			} else {
				renderSession(cmd.OutOrStdout(), session, shouldColorize(cmd.OutOrStdout()))
			}
			if session.Action == "block" {
				return errPrintBlocked
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Gcode file relative to the gcodes root")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the session as JSON")
	cmd.Flags().BoolVar(&local, "local", false, "Run in this process without contacting the daemon")
	return cmd
}

func runLocalCheck(cmd *cobra.Command, cfg *config.Config, filename string) (api.Session, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return api.Session{}, err
	}
	var recorder prestart.Recorder
	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			return api.Session{}, fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		recorder = store
	}
	runner := prestart.NewFromConfig(cfg, prestart.NewClients(cfg), recorder, logging.NewNop())
	result := runner.Run(cmd.Context(), prestart.Request{Filename: filename})
	return api.FromResult(result), nil
}
