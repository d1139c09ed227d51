package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spoolcheck/internal/api"
	"spoolcheck/internal/config"
	"spoolcheck/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pre-print sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var resp api.HistoryResponse
			if client := ctx.tryClient(); client != nil {
				defer client.Close()
				remote, err := client.History(limit)
				if err != nil {
					return err
				}
				resp = *remote
			} else {
				resp, err = readHistory(cmd, cfg, limit)
				if err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd, resp)
			}
			stdout := cmd.OutOrStdout()
			if len(resp.Sessions) == 0 {
				fmt.Fprintln(stdout, "No sessions recorded")
				return nil
			}
			headers := []string{"Finished", "File", "Decision", "Duration", "Summary"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
			fmt.Fprintln(stdout, renderTable(headers, historyRows(resp.Sessions), aligns))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "Maximum number of sessions to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output sessions as JSON")
	return cmd
}

// readHistory reads the history database directly when no daemon is running.
func readHistory(cmd *cobra.Command, cfg *config.Config, limit int) (api.HistoryResponse, error) {
	if !cfg.History.Enabled {
		return api.HistoryResponse{}, errors.New("session history is disabled (history.enabled = false)")
	}
	if _, err := os.Stat(cfg.HistoryPath()); errors.Is(err, os.ErrNotExist) {
		return api.HistoryResponse{Sessions: []api.Session{}}, nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return api.HistoryResponse{}, fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	entries, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return api.HistoryResponse{}, err
	}
	return api.FromHistoryEntries(entries), nil
}
