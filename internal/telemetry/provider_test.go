package telemetry_test

import (
	"context"
	"testing"

	"spoolcheck/internal/telemetry"
	"spoolcheck/internal/testsupport"
)

func TestSetupNoopWithoutEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Telemetry.OTLPEndpoint = ""

	shutdown, err := telemetry.Setup(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupNilConfig(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), nil)
	if err != nil || shutdown == nil {
		t.Fatalf("expected noop shutdown, got %v", err)
	}
}

func TestSetupCreatesProviderWithEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	// Non-routable so nothing is exported.
	cfg.Telemetry.OTLPEndpoint = "http://192.0.2.1:4318"
	cfg.Telemetry.ServiceName = "spoolcheck-test"

	shutdown, err := telemetry.Setup(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
