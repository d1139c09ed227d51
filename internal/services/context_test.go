package services_test

import (
	"context"
	"testing"

	"spoolcheck/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithFilename(ctx, "benchy.gcode")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "sess-1" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if name, ok := services.FilenameFromContext(ctx); !ok || name != "benchy.gcode" {
		t.Fatalf("unexpected filename: %v %v", name, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestFilenameBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithFilename(ctx, "")
	if _, ok := services.FilenameFromContext(ctx); ok {
		t.Fatal("expected no filename value")
	}
}
