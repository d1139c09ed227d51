package prestart_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/config"
	"spoolcheck/internal/logging"
	"spoolcheck/internal/prestart"
	"spoolcheck/internal/services"
	"spoolcheck/internal/services/moonraker"
	"spoolcheck/internal/testsupport"
)

func newRunner(t *testing.T, cfg *config.Config, recorder prestart.Recorder) *prestart.Runner {
	t.Helper()
	return prestart.NewFromConfig(cfg, prestart.NewClients(cfg), recorder, logging.NewNop())
}

func plaJob(grams float64) moonraker.FileMetadata {
	return moonraker.FileMetadata{
		Slicer:          "PrusaSlicer",
		FilamentType:    moonraker.ToolList{"PLA"},
		FilamentName:    moonraker.ToolList{"Galaxy Black"},
		FilamentWeights: []float64{grams},
	}
}

func TestRunAllowsAndReportsOnConsole(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(4, "PLA", "Galaxy Black", 500))
	printer.SetMetadata("cube.gcode", plaJob(20))
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL), testsupport.WithConsole())

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{Filename: "cube.gcode"})

	if result.Action != checks.ActionAllow || result.Skipped || result.Paused {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.SessionID == "" || result.Outcome.SessionID != result.SessionID {
		t.Fatalf("session id not propagated: %+v", result)
	}
	if len(result.Messages) != 2 || !strings.HasPrefix(result.Messages[0], "weight check passed") {
		t.Fatalf("unexpected messages %q", result.Messages)
	}
	scripts := printer.Scripts()
	if len(scripts) < 2 {
		t.Fatalf("expected console output, got %q", scripts)
	}
	if scripts[0] != "M118 spoolcheck: Running single-spool checks for: cube.gcode" {
		t.Fatalf("unexpected first script %q", scripts[0])
	}
	if last := scripts[len(scripts)-1]; last != "M118 spoolcheck: ✓ All pre-print checks PASSED" {
		t.Fatalf("unexpected summary %q", last)
	}
	if printer.Pauses() != 0 {
		t.Fatalf("allow must not pause, got %d pauses", printer.Pauses())
	}
}

func TestRunBlocksAndPausesOnInsufficientWeight(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(4, "PLA", "Galaxy Black", 10))
	printer.SetMetadata("cube.gcode", plaJob(20))
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL), testsupport.WithConsole())

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{Filename: "cube.gcode"})

	if result.Action != checks.ActionBlock || !result.Paused {
		t.Fatalf("expected blocked and paused, got %+v", result)
	}
	if printer.Pauses() != 1 {
		t.Fatalf("expected one pause, got %d", printer.Pauses())
	}
	if !strings.Contains(result.Messages[0], "short by 10.0 g") {
		t.Fatalf("unexpected messages %q", result.Messages)
	}
	scripts := printer.Scripts()
	if last := scripts[len(scripts)-1]; !strings.HasPrefix(last, `RESPOND TYPE=error MSG="spoolcheck: Pre-print checks FAILED: insufficient filament`) {
		t.Fatalf("unexpected error line %q", last)
	}
}

func TestRunWarnsWithoutPausing(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(4, "PETG", "Galaxy Black", 500))
	printer.SetMetadata("cube.gcode", plaJob(20))
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL), testsupport.WithConsole())

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{Filename: "cube.gcode"})

	if result.Action != checks.ActionWarn || result.Paused || printer.Pauses() != 0 {
		t.Fatalf("expected warn without pause, got %+v", result)
	}
}

func TestRunFailsClosedWithoutActiveSpool(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.SetMetadata("cube.gcode", plaJob(20))
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL))

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{Filename: "cube.gcode"})

	if result.Action != checks.ActionBlock || result.Outcome.Failure != checks.FailureNoActiveSpool {
		t.Fatalf("expected no-active-spool block, got %+v", result)
	}
	if len(result.Messages) != 1 || !strings.HasPrefix(result.Messages[0], "no active spool") {
		t.Fatalf("unexpected messages %q", result.Messages)
	}
	if result.Paused {
		t.Fatal("pause_on_block is disabled, print must not be paused")
	}
}

func TestRunRejectsInvalidCheckSettings(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(4, "PLA", "Galaxy Black", 500))
	printer.SetMetadata("cube.gcode", plaJob(20))
	cfg := testsupport.NewConfig(t,
		testsupport.WithPrinter(printer.URL),
		testsupport.WithChecks(map[string]any{"material_mismatch_severity": "fatal"}),
	)

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{Filename: "cube.gcode"})

	if result.Action != checks.ActionBlock || result.Outcome.Failure != checks.FailureConfig {
		t.Fatalf("expected config block, got %+v", result)
	}
	if printer.SpoolRequests() != 0 {
		t.Fatalf("configuration errors must not reach the inventory, got %d requests", printer.SpoolRequests())
	}
}

func TestRunUsesPrintStatsFilename(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(4, "PLA", "Galaxy Black", 500))
	printer.SetMetadata("queued/part.gcode", plaJob(5))
	printer.SetPrinting("queued/part.gcode")
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL))

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{})

	if result.Filename != "queued/part.gcode" || result.Action != checks.ActionAllow {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRunSkipsWithoutFilename(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(4, "PLA", "Galaxy Black", 500))
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL), testsupport.WithConsole())

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{})

	if !result.Skipped || result.Action != checks.ActionAllow {
		t.Fatalf("expected skip, got %+v", result)
	}
	if len(result.Messages) != 1 || result.Messages[0] != "Pre-print checks skipped: No filename available" {
		t.Fatalf("unexpected messages %q", result.Messages)
	}
	if printer.SpoolRequests() != 0 {
		t.Fatalf("skip must not read the inventory")
	}
	if scripts := printer.Scripts(); len(scripts) != 1 || !strings.Contains(scripts[0], "skipped") {
		t.Fatalf("unexpected console output %q", scripts)
	}
}

func TestRunSkipsWhenMetadataMissing(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL))

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{Filename: "ghost.gcode"})

	if !result.Skipped || result.Action != checks.ActionAllow {
		t.Fatalf("absent metadata must not block, got %+v", result)
	}
	if !strings.Contains(result.Messages[0], "ghost.gcode") {
		t.Fatalf("unexpected messages %q", result.Messages)
	}
}

func TestRunFailsClosedWhenMetadataUnavailable(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(4, "PLA", "Galaxy Black", 500))
	printer.SetMetadata("cube.gcode", plaJob(20))
	printer.FailMetadata(http.StatusServiceUnavailable)
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL), testsupport.WithConsole())

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{Filename: "cube.gcode"})

	if result.Skipped || result.Action != checks.ActionBlock {
		t.Fatalf("expected block on metadata outage, got %+v", result)
	}
	if result.Outcome.Failure != checks.FailureMetadataUnavailable {
		t.Fatalf("unexpected failure kind %q", result.Outcome.Failure)
	}
	if len(result.Messages) != 1 || !strings.HasPrefix(result.Messages[0], "metadata unavailable: ") {
		t.Fatalf("unexpected messages %q", result.Messages)
	}
	if !result.Paused || printer.Pauses() != 1 {
		t.Fatalf("expected the print to be paused, got %+v", result)
	}
	if printer.SpoolRequests() != 0 {
		t.Fatalf("metadata failure must not reach the inventory, got %d requests", printer.SpoolRequests())
	}
	scripts := printer.Scripts()
	if last := scripts[len(scripts)-1]; !strings.HasPrefix(last, "RESPOND TYPE=error") {
		t.Fatalf("unexpected console line %q", last)
	}
}

type metadataFunc func(ctx context.Context, filename string) (checks.JobMetadata, error)

func (f metadataFunc) Job(ctx context.Context, filename string) (checks.JobMetadata, error) {
	return f(ctx, filename)
}

func TestRunMetadataTimeoutBlocksWithoutSpool(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	inventory := checks.InventoryFunc(func(context.Context) (checks.SpoolRecord, error) {
		return checks.SpoolRecord{}, checks.ErrNoActiveSpool
	})
	metadata := metadataFunc(func(context.Context, string) (checks.JobMetadata, error) {
		return checks.JobMetadata{}, services.Wrap(services.ErrTimeout, "moonraker", "file metadata", "request failed", context.DeadlineExceeded)
	})
	runner := prestart.NewRunner(cfg, prestart.Deps{
		Checks:   checks.NewHandler(inventory, logging.NewNop()),
		Metadata: metadata,
		Logger:   logging.NewNop(),
	})

	result := runner.Run(context.Background(), prestart.Request{Filename: "cube.gcode"})

	if result.Skipped || result.Action != checks.ActionBlock {
		t.Fatalf("timeout must not allow the print, got %+v", result)
	}
	if len(result.Messages) != 1 || !strings.Contains(result.Messages[0], "timeout") {
		t.Fatalf("unexpected messages %q", result.Messages)
	}
}

func TestRunSkipsOnlyWhenMetadataNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	inventory := checks.InventoryFunc(func(context.Context) (checks.SpoolRecord, error) {
		t.Error("inventory must not be consulted")
		return checks.SpoolRecord{}, nil
	})
	metadata := metadataFunc(func(context.Context, string) (checks.JobMetadata, error) {
		return checks.JobMetadata{}, services.Wrap(services.ErrNotFound, "moonraker", "file metadata", "http 404", nil)
	})
	runner := prestart.NewRunner(cfg, prestart.Deps{
		Checks:   checks.NewHandler(inventory, logging.NewNop()),
		Metadata: metadata,
		Logger:   logging.NewNop(),
	})

	result := runner.Run(context.Background(), prestart.Request{Filename: "cube.gcode"})

	if !result.Skipped || result.Action != checks.ActionAllow {
		t.Fatalf("expected skip, got %+v", result)
	}
	if want := "Pre-print checks skipped: No slicer metadata for cube.gcode"; len(result.Messages) != 1 || result.Messages[0] != want {
		t.Fatalf("unexpected messages %q", result.Messages)
	}
}

func TestRunParsesLocalGcode(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(9, "PETG", "Prusament PETG", 30))
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL), testsupport.WithGcodeMetadata())
	testsupport.WriteGcode(t, cfg.Paths.GcodeDir, "parts/bracket.gcode", testsupport.PrusaGcode("PETG", "Prusament PETG", 42.5))

	result := newRunner(t, cfg, nil).Run(context.Background(), prestart.Request{Filename: "parts/bracket.gcode"})

	if result.Action != checks.ActionBlock {
		t.Fatalf("expected weight block from parsed file, got %+v", result)
	}
	if !strings.Contains(result.Messages[0], "short by 12.5 g") {
		t.Fatalf("unexpected messages %q", result.Messages)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(4, "PLA", "Galaxy Black", 500))
	printer.SetMetadata("cube.gcode", plaJob(20))
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL), testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)

	runner := newRunner(t, cfg, store)
	first := runner.Run(context.Background(), prestart.Request{Filename: "cube.gcode", SessionID: "fixed-session"})
	second := runner.Run(context.Background(), prestart.Request{})

	if first.SessionID != "fixed-session" {
		t.Fatalf("requested session id not used: %q", first.SessionID)
	}
	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(entries))
	}
	ids := map[string]bool{entries[0].SessionID: true, entries[1].SessionID: true}
	if !ids[first.SessionID] || !ids[second.SessionID] {
		t.Fatalf("history rows %+v missing sessions %s %s", entries, first.SessionID, second.SessionID)
	}
}
