package checks

import (
	"context"
	"errors"
	"fmt"
)

// Inventory reports the spool currently loaded on the printer. Implementations
// return errors wrapping ErrNoActiveSpool or ErrInventoryUnavailable.
type Inventory interface {
	ActiveSpool(ctx context.Context) (SpoolRecord, error)
}

// InventoryFunc adapts a function to the Inventory interface.
type InventoryFunc func(ctx context.Context) (SpoolRecord, error)

func (f InventoryFunc) ActiveSpool(ctx context.Context) (SpoolRecord, error) {
	return f(ctx)
}

// SpoolCache memoizes the active spool for a single session. The first call
// fetches from the inventory; later calls return the same record or the same
// error. It is not safe for concurrent use and must not outlive its session.
type SpoolCache struct {
	inventory Inventory
	fetched   bool
	fetches   int
	spool     SpoolRecord
	err       error
}

// NewSpoolCache returns an empty cache over inv.
func NewSpoolCache(inv Inventory) *SpoolCache {
	return &SpoolCache{inventory: inv}
}

// ActiveSpool returns the memoized spool, fetching it on first use.
func (c *SpoolCache) ActiveSpool(ctx context.Context) (SpoolRecord, error) {
	if c.fetched {
		return c.spool, c.err
	}
	c.fetched = true
	c.fetches++
	if c.inventory == nil {
		c.err = fmt.Errorf("%w: no inventory configured", ErrInventoryUnavailable)
		return c.spool, c.err
	}

	spool, err := c.inventory.ActiveSpool(ctx)
	switch {
	case err == nil:
		c.spool = spool
	case errors.Is(err, ErrNoActiveSpool), errors.Is(err, ErrInventoryUnavailable):
		c.err = err
	default:
		c.err = fmt.Errorf("%w: %w", ErrInventoryUnavailable, err)
	}
	return c.spool, c.err
}

// Fetches reports how many times the inventory was queried.
func (c *SpoolCache) Fetches() int {
	return c.fetches
}
