package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spoolcheck/internal/gcode"
)

type inspectOutput struct {
	Path     string         `json:"path"`
	Metadata gcode.Metadata `json:"metadata"`
	Tool0    inspectTool    `json:"tool0"`
}

type inspectTool struct {
	Material       string   `json:"material,omitempty"`
	FilamentName   string   `json:"filament_name,omitempty"`
	RequiredWeight *float64 `json:"required_weight,omitempty"`
}

func newInspectCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:         "inspect <file.gcode>",
		Short:       "Show the slicer metadata parsed from a gcode file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			meta, err := gcode.ParseFile(path)
			if err != nil {
				return err
			}
			job := meta.Job(filepath.Base(path))
			out := inspectOutput{
				Path:     path,
				Metadata: meta,
				Tool0: inspectTool{
					Material:       job.RequiredMaterial,
					FilamentName:   job.RequiredFilamentName,
					RequiredWeight: job.RequiredWeight,
				},
			}
			if asJSON {
				return writeJSON(cmd, out)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			for _, line := range renderSectionHeader(filepath.Base(path), colorize) {
				fmt.Fprintln(stdout, line)
			}
			slicer := string(meta.Slicer)
			if meta.SlicerVersion != "" {
				slicer += " " + meta.SlicerVersion
			}
			slicerKind := statusInfo
			if meta.Slicer == gcode.SlicerUnknown {
				slicerKind = statusWarn
			}
			fmt.Fprintln(stdout, renderStatusLine("Slicer", slicerKind, slicer, colorize))
			fmt.Fprintln(stdout, renderStatusLine("Filament types", statusInfo, joinOrDash(meta.FilamentTypes), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Filament names", statusInfo, joinOrDash(meta.FilamentNames), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Weights [g]", statusInfo, formatWeights(meta.FilamentWeights), colorize))
			if meta.TotalWeight != nil {
				fmt.Fprintln(stdout, renderStatusLine("Total weight [g]", statusInfo, formatGrams(*meta.TotalWeight), colorize))
			}

			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Tool 0", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderStatusLine("Material", presence(job.RequiredMaterial != ""), orDash(job.RequiredMaterial), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Filament name", presence(job.RequiredFilamentName != ""), orDash(job.RequiredFilamentName), colorize))
			weight := "-"
			if job.RequiredWeight != nil {
				weight = formatGrams(*job.RequiredWeight) + " g"
			}
			fmt.Fprintln(stdout, renderStatusLine("Required weight", presence(job.RequiredWeight != nil), weight, colorize))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output metadata as JSON")
	return cmd
}

func presence(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusWarn
}

func formatWeights(weights []float64) string {
	if len(weights) == 0 {
		return "-"
	}
	parts := make([]string, len(weights))
	for i, weight := range weights {
		parts[i] = formatGrams(weight)
	}
	return strings.Join(parts, ", ")
}

func formatGrams(grams float64) string {
	return strconv.FormatFloat(grams, 'f', 2, 64)
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
