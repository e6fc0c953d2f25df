package snapkeep

import "context"

// Prime loads the cached snapshot into memory, typically at startup
// before the first remote fetch. No-op without a cache or session.
func (c *Client) Prime(ctx context.Context) {
	if c.cache == nil {
		return
	}
	uid, ok := c.session.UserID()
	if !ok {
		return
	}
	items := c.cache.LoadItems(ctx, uid)
	trips := c.cache.LoadTrips(ctx, uid)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 && items != nil {
		c.items = items
	}
	if len(c.trips) == 0 && trips != nil {
		c.trips = trips
	}
}

// Refresh replaces the in-memory state with the remote truth. A fetch
// failure is ambiguous (it could also mean "no items"), so on error
// the current state is kept and the cache backfills any gap instead of
// destructively overwriting.
func (c *Client) Refresh(ctx context.Context) error {
	uid, err := c.userID()
	if err != nil {
		return err
	}

	items, itemsErr := c.store.FetchAll(ctx, uid)
	trips, tripsErr := c.store.ListTrips(ctx, uid)

	c.mu.Lock()
	if itemsErr == nil {
		c.items = items
	} else {
		c.logger.Warn().Err(itemsErr).Msg("item fetch failed, keeping local state")
		if len(c.items) == 0 && c.cache != nil {
			if cached := c.cache.LoadItems(ctx, uid); cached != nil {
				c.items = cached
			}
		}
	}
	if tripsErr == nil {
		c.trips = trips
	} else {
		c.logger.Warn().Err(tripsErr).Msg("trip fetch failed, keeping local state")
		if len(c.trips) == 0 && c.cache != nil {
			if cached := c.cache.LoadTrips(ctx, uid); cached != nil {
				c.trips = cached
			}
		}
	}
	c.mu.Unlock()

	if itemsErr != nil {
		return itemsErr
	}
	if tripsErr != nil {
		return tripsErr
	}
	c.saveCache(ctx, uid)
	return nil
}

// HealthCheck probes the remote store.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.store.HealthCheck(ctx)
}
