package daemon

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spoolcheck/internal/api"
	"spoolcheck/internal/config"
	"spoolcheck/internal/history"
	"spoolcheck/internal/logging"
	"spoolcheck/internal/preflight"
	"spoolcheck/internal/prestart"
	"spoolcheck/internal/testsupport"
)

func newTestDaemon(t *testing.T, cfg *config.Config, store *history.Store) *Daemon {
	t.Helper()
	var recorder prestart.Recorder
	if store != nil {
		recorder = store
	}
	runner := prestart.NewFromConfig(cfg, prestart.NewClients(cfg), recorder, logging.NewNop())
	d, err := New(cfg, runner, store, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.readiness = func(context.Context) []preflight.Result {
		return []preflight.Result{{Name: "Spoolman", Passed: true, Detail: "Healthy"}}
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func TestDaemonLifecycle(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL))
	d := newTestDaemon(t, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status := d.Status(ctx)
	if !status.Running || status.StartedAt == "" || status.LockFilePath != cfg.LockPath() {
		t.Fatalf("unexpected status %+v", status)
	}
	if len(status.Readiness) != 1 || !status.Readiness[0].Ready {
		t.Fatalf("unexpected readiness %+v", status.Readiness)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	other := newTestDaemon(t, cfg, nil)
	if err := other.Start(ctx); err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock contention error, got %v", err)
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to be stopped")
	}
	if err := other.Start(ctx); err != nil {
		t.Fatalf("expected lock to be released, got %v", err)
	}
}

func TestDaemonStartRejectsInvalidChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithChecks(map[string]any{"enable_weight_check": "sometimes"}))
	d := newTestDaemon(t, cfg, nil)
	err := d.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "[checks]") {
		t.Fatalf("expected [checks] error, got %v", err)
	}
	if d.Running() {
		t.Fatal("daemon must not run with invalid settings")
	}
}

func TestPrePrintChecksRequiresRunningDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newTestDaemon(t, cfg, nil)
	if _, err := d.PrePrintChecks(context.Background(), api.PrePrintRequest{Filename: "a.gcode"}); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestPrePrintChecksTracksLastSession(t *testing.T) {
	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(2, "PLA", "Generic PLA", 300))
	printer.SetMetadata("cube.gcode", testsupportMetadata(40))
	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL), testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)
	d := newTestDaemon(t, cfg, store)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	session, err := d.PrePrintChecks(ctx, api.PrePrintRequest{Filename: "cube.gcode"})
	if err != nil {
		t.Fatalf("PrePrintChecks: %v", err)
	}
	if session.Action != "allow" || session.SessionID == "" {
		t.Fatalf("unexpected session %+v", session)
	}

	status := d.Status(ctx)
	if status.SessionsRun != 1 || status.LastSession == nil || status.LastSession.SessionID != session.SessionID {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.HistoryDBPath != cfg.HistoryPath() {
		t.Fatalf("unexpected history path %q", status.HistoryDBPath)
	}

	resp, err := d.History(ctx, 5)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(resp.Sessions) != 1 || resp.Sessions[0].SessionID != session.SessionID {
		t.Fatalf("unexpected history %+v", resp)
	}
}

func TestHistoryDisabled(t *testing.T) {
	d := newTestDaemon(t, testsupport.NewConfig(t), nil)
	if _, err := d.History(context.Background(), 5); err == nil {
		t.Fatal("expected error when history is disabled")
	}
}
