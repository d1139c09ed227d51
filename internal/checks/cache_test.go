package checks_test

import (
	"context"
	"errors"
	"testing"

	"spoolcheck/internal/checks"
)

func TestSpoolCacheMemoizesValue(t *testing.T) {
	inv := &countingInventory{spool: plaSpool()}
	cache := checks.NewSpoolCache(inv)
	for i := 0; i < 3; i++ {
		spool, err := cache.ActiveSpool(context.Background())
		if err != nil || spool.ID != 3 {
			t.Fatalf("unexpected result %+v %v", spool, err)
		}
	}
	if inv.calls != 1 || cache.Fetches() != 1 {
		t.Fatalf("expected one fetch, got inventory=%d cache=%d", inv.calls, cache.Fetches())
	}
}

func TestSpoolCacheMemoizesError(t *testing.T) {
	inv := &countingInventory{err: errors.New("timeout")}
	cache := checks.NewSpoolCache(inv)
	_, first := cache.ActiveSpool(context.Background())
	_, second := cache.ActiveSpool(context.Background())
	if !errors.Is(first, checks.ErrInventoryUnavailable) || first != second {
		t.Fatalf("expected identical wrapped errors, got %v / %v", first, second)
	}
	if inv.calls != 1 {
		t.Fatalf("expected one fetch, got %d", inv.calls)
	}
}

func TestSpoolCacheNilInventory(t *testing.T) {
	_, err := checks.NewSpoolCache(nil).ActiveSpool(context.Background())
	if !errors.Is(err, checks.ErrInventoryUnavailable) {
		t.Fatalf("expected ErrInventoryUnavailable, got %v", err)
	}
}
