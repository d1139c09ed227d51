package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spoolcheck/internal/config"
	"spoolcheck/internal/daemon"
	"spoolcheck/internal/ipc"
	"spoolcheck/internal/logging"
	"spoolcheck/internal/prestart"
	"spoolcheck/internal/services/moonraker"
	"spoolcheck/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	printer    *testsupport.FakePrinter
	daemon     *daemon.Daemon
	socketPath string
	configPath string
	logPath    string
}

func plaMetadata(grams float64) moonraker.FileMetadata {
	return moonraker.FileMetadata{
		Slicer:          "PrusaSlicer",
		FilamentType:    moonraker.ToolList{"PLA"},
		FilamentName:    moonraker.ToolList{"Generic PLA"},
		FilamentWeights: []float64{grams},
	}
}

// setupCLITestEnv writes a config file pointing at a fake printer. When
// withDaemon is set a daemon and IPC server are started on the config's socket.
func setupCLITestEnv(t *testing.T, withDaemon bool) *cliTestEnv {
	t.Helper()

	printer := testsupport.NewFakePrinter(t)
	printer.LoadSpool(testsupport.Spool(3, "PLA", "Generic PLA", 250))
	printer.SetMetadata("cube.gcode", plaMetadata(40))
	printer.SetMetadata("huge.gcode", plaMetadata(900))

	cfg := testsupport.NewConfig(t, testsupport.WithPrinter(printer.URL), testsupport.WithHistory())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	env := &cliTestEnv{
		cfg:        cfg,
		printer:    printer,
		socketPath: cfg.SocketPath(),
		configPath: configPath,
		logPath:    filepath.Join(cfg.Paths.LogDir, "spoolcheck-test.log"),
	}
	if !withDaemon {
		return env
	}

	if err := os.WriteFile(env.logPath, nil, 0o644); err != nil {
		t.Fatalf("create log file: %v", err)
	}
	store := testsupport.MustOpenHistory(t, cfg)
	logger := logging.NewNop()
	runner := prestart.NewFromConfig(cfg, prestart.NewClients(cfg), store, logger)
	d, err := daemon.New(cfg, runner, store, logger, env.logPath)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}
	srv, err := ipc.NewServer(ctx, env.socketPath, d, logger)
	if err != nil {
		cancel()
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	env.daemon = d

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})
	return env
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.socketPath, e.configPath)
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q
gcode_dir = %q
api_bind = ""

[moonraker]
url = %q
console_notify = false
pause_on_block = false

[spoolman]
url = %q
retry_attempts = 0

[history]
enabled = %t
`,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Paths.GcodeDir,
		cfg.Moonraker.URL,
		cfg.Spoolman.URL,
		cfg.History.Enabled,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
