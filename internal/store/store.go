// Package store defines the remote item store contract and the column
// tiers shared by its adapters. Every call is scoped by the
// authenticated user id; callers never pass ownership claims beyond
// the active session.
package store

import (
	"context"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/errs"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// Store persists saved items and trips for one user.
//
// FetchAll returns items newest-first, capped at the adapter's fetch
// limit. A fetch error is ambiguous for callers: it could mean "no
// items" or "fetch failed", so callers should fall back to cached
// state instead of destructively overwriting.
type Store interface {
	FetchAll(ctx context.Context, userID string) ([]types.SavedItem, error)
	Insert(ctx context.Context, userID string, it types.SavedItem) error
	Update(ctx context.Context, userID, id string, patch types.ItemPatch) error
	Delete(ctx context.Context, userID, id string) error

	ListTrips(ctx context.Context, userID string) ([]types.Trip, error)
	InsertTrip(ctx context.Context, t types.Trip) error
	UpdateTrip(ctx context.Context, userID, id string, patch types.TripPatch) error
	DeleteTrip(ctx context.Context, userID, id string) error

	HealthCheck(ctx context.Context) error
}

// WriteWithTiers runs do against each write tier in order, degrading
// to the next smaller column set on schema drift. Any other error
// stops the loop. The same client binary must work against both old
// and new remote schemas; this is where that happens.
func WriteWithTiers(do func(Tier) error) error {
	var lastErr error
	for _, t := range WriteTiers() {
		err := do(t)
		if err == nil {
			return nil
		}
		if !errs.IsSchemaDrift(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}
