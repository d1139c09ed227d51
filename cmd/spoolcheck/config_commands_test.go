package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "config.toml")

	stdout, _, err := runCLI(t, []string{"config", "init", "--path", target}, filepath.Join(dir, "none.sock"), "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, stdout, "Wrote sample configuration")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[checks]") {
		t.Fatal("sample config missing [checks] section")
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, filepath.Join(dir, "none.sock"), ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, filepath.Join(dir, "none.sock"), ""); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t, false)

	stdout, _, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, stdout, env.configPath)
	requireContains(t, stdout, "material")
	requireContains(t, stdout, "Configuration valid")
}

func TestConfigValidateRejectsBadChecks(t *testing.T) {
	env := setupCLITestEnv(t, false)
	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("\n[checks]\nmaterial_mismatch_severity = \"fatal\"\n"); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	_, _, err = env.run(t, "config", "validate")
	if err == nil || !strings.Contains(err.Error(), "[checks]") {
		t.Fatalf("expected [checks] error, got %v", err)
	}
}
