package snapkeep

import (
	"context"
	"strings"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/geo"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// BackfillCoordinates scans for items without coordinates and tries to
// resolve them, at most batch-size items per pass. Each item is
// attempted once per session regardless of outcome, so a flaky
// geocoder cannot be hammered by repeated passes. Lookup failures are
// swallowed; resolved coordinates flow through the normal update path
// and therefore serialize against user edits on the same item.
func (c *Client) BackfillCoordinates(ctx context.Context) {
	if c.geo == nil {
		return
	}
	if _, err := c.userID(); err != nil {
		return
	}

	candidates := c.nextBackfillBatch()
	for _, it := range candidates {
		res, err := c.resolveItem(ctx, it)
		if err != nil || !res.Resolved() {
			backfillLookups.WithLabelValues(outcomeFailed).Inc()
			c.logger.Debug().Err(err).Str("itemId", it.ID).Msg("coordinate backfill unresolved")
			continue
		}

		patch := types.ItemPatch{
			Coordinates: &types.Coordinates{Latitude: *res.Latitude, Longitude: *res.Longitude},
		}
		if res.MapsURL != "" && it.MapsURL == "" {
			patch.MapsURL = &res.MapsURL
		}
		if _, err := c.UpdateItem(ctx, it.ID, patch); err != nil {
			backfillLookups.WithLabelValues(outcomeFailed).Inc()
			c.logger.Warn().Err(err).Str("itemId", it.ID).Msg("coordinate backfill persist failed")
			continue
		}
		backfillLookups.WithLabelValues(outcomeOK).Inc()
	}
}

// nextBackfillBatch picks up to the batch size of unattempted items
// missing coordinates, and marks them attempted immediately.
func (c *Client) nextBackfillBatch() []types.SavedItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	var batch []types.SavedItem
	for _, it := range c.items {
		if len(batch) >= c.backfill {
			break
		}
		if it.Coordinates != nil || c.attempted[it.ID] {
			continue
		}
		if strings.TrimSpace(it.Title) == "" && strings.TrimSpace(it.Location) == "" && it.PlaceID == "" {
			continue
		}
		c.attempted[it.ID] = true
		batch = append(batch, it)
	}
	return batch
}

// resolveItem tries the place id first, then a ladder of text queries
// from most to least specific.
func (c *Client) resolveItem(ctx context.Context, it types.SavedItem) (geo.Result, error) {
	if it.PlaceID != "" {
		res, err := c.geo.ResolveByPlaceID(ctx, it.PlaceID)
		if err == nil && res.Resolved() {
			return res, nil
		}
	}

	hints := geo.Hints{Title: it.Title}
	var lastErr error
	for _, q := range backfillQueries(it) {
		res, err := c.geo.Resolve(ctx, q, hints)
		if err != nil {
			lastErr = err
			continue
		}
		if res.Resolved() {
			return res, nil
		}
	}
	return geo.Result{}, lastErr
}

// backfillQueries builds the lookup ladder: "title, location", then
// location alone, then title alone.
func backfillQueries(it types.SavedItem) []string {
	title := strings.TrimSpace(it.Title)
	location := strings.TrimSpace(it.Location)

	var queries []string
	if title != "" && location != "" {
		queries = append(queries, title+", "+location)
	}
	if location != "" {
		queries = append(queries, location)
	}
	if title != "" {
		queries = append(queries, title)
	}
	return queries
}
