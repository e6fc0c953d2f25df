package snapkeep

import (
	"context"
	"time"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/ids"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// Trips returns a snapshot of the in-memory trip list.
func (c *Client) Trips() []types.Trip {
	return c.snapshotTrips()
}

// Trip returns one trip by id.
func (c *Client) Trip(id string) (types.Trip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.trips {
		if t.ID == id {
			return t, nil
		}
	}
	return types.Trip{}, ErrNotFound
}

// TripItems returns the items attached to a trip. A dangling TripID on
// an item is tolerated elsewhere; here it simply never matches.
func (c *Client) TripItems(tripID string) []types.SavedItem {
	var out []types.SavedItem
	for _, it := range c.snapshotItems() {
		if it.TripID == tripID {
			out = append(out, it)
		}
	}
	return out
}

// AddTrip creates a trip optimistically and persists it.
func (c *Client) AddTrip(ctx context.Context, t types.Trip) (types.Trip, error) {
	uid, err := c.userID()
	if err != nil {
		return types.Trip{}, err
	}
	if err := types.ValidateTrip(t); err != nil {
		return types.Trip{}, err
	}
	if t.ID == "" {
		t.ID = ids.New("trip")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if t.CreatedAt == "" {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	t.UserID = uid

	err = c.run(ctx, t.ID, func(jobCtx context.Context) error {
		c.mu.Lock()
		c.trips = append([]types.Trip{t}, c.trips...)
		c.mu.Unlock()

		if sErr := c.store.InsertTrip(jobCtx, t); sErr != nil {
			c.mu.Lock()
			c.trips = removeTrip(c.trips, t.ID)
			c.mu.Unlock()
			rollbacksTotal.WithLabelValues("add_trip").Inc()
			mutationsTotal.WithLabelValues("add_trip", outcomeFailed).Inc()
			return sErr
		}
		mutationsTotal.WithLabelValues("add_trip", outcomeOK).Inc()
		c.saveCache(jobCtx, uid)
		return nil
	})
	if err != nil {
		return types.Trip{}, err
	}
	return t, nil
}

// UpdateTrip applies a partial patch optimistically, rolling back on
// failure.
func (c *Client) UpdateTrip(ctx context.Context, id string, patch types.TripPatch) (types.Trip, error) {
	uid, err := c.userID()
	if err != nil {
		return types.Trip{}, err
	}

	var updated types.Trip
	err = c.run(ctx, id, func(jobCtx context.Context) error {
		c.mu.Lock()
		idx := tripIndexOf(c.trips, id)
		if idx < 0 {
			c.mu.Unlock()
			return ErrNotFound
		}
		before := c.trips[idx]
		after := patch.Apply(before)
		after.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		c.trips[idx] = after
		c.mu.Unlock()

		if sErr := c.store.UpdateTrip(jobCtx, uid, id, patch); sErr != nil {
			c.mu.Lock()
			if j := tripIndexOf(c.trips, id); j >= 0 {
				c.trips[j] = before
			}
			c.mu.Unlock()
			rollbacksTotal.WithLabelValues("update_trip").Inc()
			mutationsTotal.WithLabelValues("update_trip", outcomeFailed).Inc()
			return sErr
		}

		updated = after
		mutationsTotal.WithLabelValues("update_trip", outcomeOK).Inc()
		c.saveCache(jobCtx, uid)
		return nil
	})
	if err != nil {
		return types.Trip{}, err
	}
	return updated, nil
}

// RemoveTrip deletes a trip. Items referencing it keep their TripID;
// the reference is weak and dangling references are tolerated.
func (c *Client) RemoveTrip(ctx context.Context, id string) error {
	uid, err := c.userID()
	if err != nil {
		return err
	}

	return c.run(ctx, id, func(jobCtx context.Context) error {
		c.mu.Lock()
		idx := tripIndexOf(c.trips, id)
		if idx < 0 {
			c.mu.Unlock()
			return ErrNotFound
		}
		removed := c.trips[idx]
		c.trips = append(c.trips[:idx:idx], c.trips[idx+1:]...)
		c.mu.Unlock()

		if sErr := c.store.DeleteTrip(jobCtx, uid, id); sErr != nil {
			c.mu.Lock()
			c.trips = insertTripAt(c.trips, removed, idx)
			c.mu.Unlock()
			rollbacksTotal.WithLabelValues("remove_trip").Inc()
			mutationsTotal.WithLabelValues("remove_trip", outcomeFailed).Inc()
			return sErr
		}
		mutationsTotal.WithLabelValues("remove_trip", outcomeOK).Inc()
		c.saveCache(jobCtx, uid)
		return nil
	})
}

// UpcomingTrips returns trips whose end date (or start date when no
// end is set) is today or later, soonest first.
func (c *Client) UpcomingTrips() []types.Trip {
	upcoming, _ := partitionTrips(c.snapshotTrips(), time.Now())
	return upcoming
}

// PastTrips returns trips that already ended, most recent first.
func (c *Client) PastTrips() []types.Trip {
	_, past := partitionTrips(c.snapshotTrips(), time.Now())
	return past
}

func partitionTrips(trips []types.Trip, now time.Time) (upcoming, past []types.Trip) {
	today := now.UTC().Truncate(24 * time.Hour)
	for _, t := range trips {
		end := parseDate(t.EndDate)
		if end.IsZero() {
			end = parseDate(t.StartDate)
		}
		// Undated trips stay in the upcoming list.
		if end.IsZero() || !end.Before(today) {
			upcoming = append(upcoming, t)
		} else {
			past = append(past, t)
		}
	}
	return upcoming, past
}

// parseDate accepts the loosely-validated date strings trips carry.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func tripIndexOf(trips []types.Trip, id string) int {
	for i, t := range trips {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func removeTrip(trips []types.Trip, id string) []types.Trip {
	idx := tripIndexOf(trips, id)
	if idx < 0 {
		return trips
	}
	return append(trips[:idx:idx], trips[idx+1:]...)
}

func insertTripAt(trips []types.Trip, t types.Trip, idx int) []types.Trip {
	if idx < 0 || idx > len(trips) {
		idx = len(trips)
	}
	out := make([]types.Trip, 0, len(trips)+1)
	out = append(out, trips[:idx]...)
	out = append(out, t)
	out = append(out, trips[idx:]...)
	return out
}
