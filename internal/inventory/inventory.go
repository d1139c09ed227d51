// Package inventory resolves the printer's active spool by combining
// Moonraker's Spoolman integration (which spool is loaded) with Spoolman
// itself (what that spool is).
package inventory

import (
	"context"
	"fmt"
	"strings"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/services/spoolman"
)

// SpoolIDSource reports the spool ID selected on the printer.
type SpoolIDSource interface {
	ActiveSpoolID(ctx context.Context) (int64, bool, error)
}

// SpoolSource fetches a spool record by ID.
type SpoolSource interface {
	GetSpool(ctx context.Context, id int64) (spoolman.Spool, error)
}

// Service implements checks.Inventory.
type Service struct {
	ids    SpoolIDSource
	spools SpoolSource
}

// NewService wires the two lookups together.
func NewService(ids SpoolIDSource, spools SpoolSource) *Service {
	return &Service{ids: ids, spools: spools}
}

// ActiveSpool returns the loaded spool. A printer without a selected spool
// yields checks.ErrNoActiveSpool; every lookup failure, including a selected
// spool Spoolman does not know, yields checks.ErrInventoryUnavailable.
func (s *Service) ActiveSpool(ctx context.Context) (checks.SpoolRecord, error) {
	if s == nil || s.ids == nil || s.spools == nil {
		return checks.SpoolRecord{}, fmt.Errorf("%w: inventory not configured", checks.ErrInventoryUnavailable)
	}
	id, ok, err := s.ids.ActiveSpoolID(ctx)
	if err != nil {
		return checks.SpoolRecord{}, fmt.Errorf("%w: read active spool id: %w", checks.ErrInventoryUnavailable, err)
	}
	if !ok {
		return checks.SpoolRecord{}, fmt.Errorf("%w: moonraker reports no spool selected", checks.ErrNoActiveSpool)
	}

	spool, err := s.spools.GetSpool(ctx, id)
	if err != nil {
		return checks.SpoolRecord{}, fmt.Errorf("%w: fetch spool %d: %w", checks.ErrInventoryUnavailable, id, err)
	}
	return ToRecord(spool), nil
}

// ToRecord converts a Spoolman spool to the engine's record.
func ToRecord(spool spoolman.Spool) checks.SpoolRecord {
	record := checks.SpoolRecord{
		ID:           spool.ID,
		Material:     strings.TrimSpace(spool.Filament.Material),
		FilamentName: strings.TrimSpace(spool.Filament.Name),
		Vendor:       strings.TrimSpace(spool.VendorName()),
	}
	if spool.RemainingWeight != nil {
		remaining := *spool.RemainingWeight
		record.RemainingWeight = &remaining
	}
	return record
}
