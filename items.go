package snapkeep

import (
	"context"
	"time"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/ids"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// Items returns a read-only snapshot of the in-memory item list,
// newest first.
func (c *Client) Items() []types.SavedItem {
	return c.snapshotItems()
}

// Item returns one item by id.
func (c *Client) Item(id string) (types.SavedItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, nil
		}
	}
	return types.SavedItem{}, ErrNotFound
}

// AddItem validates, optimistically inserts and persists a new item.
// The item is visible in Items() for the whole duration of the remote
// call and removed again if the persist fails. Blocks until the
// outcome is known.
func (c *Client) AddItem(ctx context.Context, it types.SavedItem) (types.SavedItem, error) {
	uid, err := c.userID()
	if err != nil {
		return types.SavedItem{}, err
	}
	if err := types.ValidateItem(it); err != nil {
		return types.SavedItem{}, err
	}
	if it.ID == "" {
		it.ID = ids.New("item")
	}
	if it.CreatedAt == "" {
		it.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if it.Category == "" {
		it.Category = types.CategoryOther
	}

	var saved types.SavedItem
	err = c.run(ctx, it.ID, func(jobCtx context.Context) error {
		// Optimistic apply: newest first.
		c.mu.Lock()
		c.items = append([]types.SavedItem{it}, c.items...)
		c.mu.Unlock()

		// Materialize before persist; inline payloads must never
		// reach the remote store. A materialization failure costs the
		// image, not the save.
		persist := it
		uri, mErr := c.media.Materialize(jobCtx, uid, it.ID, it.ImageURI)
		if mErr != nil {
			c.logger.Warn().Err(mErr).Str("itemId", it.ID).Msg("image materialization failed")
			uri = ""
		}
		persist.ImageURI = uri

		if sErr := c.store.Insert(jobCtx, uid, persist); sErr != nil {
			c.mu.Lock()
			c.items = removeItem(c.items, it.ID)
			c.mu.Unlock()
			rollbacksTotal.WithLabelValues("add").Inc()
			mutationsTotal.WithLabelValues("add", outcomeFailed).Inc()
			return sErr
		}

		// Confirm: the in-memory copy keeps the materialized URI.
		c.mu.Lock()
		c.items = replaceItem(c.items, persist)
		c.mu.Unlock()
		saved = persist

		mutationsTotal.WithLabelValues("add", outcomeOK).Inc()
		c.saveCache(jobCtx, uid)
		return nil
	})
	if err != nil {
		return types.SavedItem{}, err
	}
	return saved, nil
}

// UpdateItem applies a partial patch optimistically and persists it,
// restoring the previous state on failure.
func (c *Client) UpdateItem(ctx context.Context, id string, patch types.ItemPatch) (types.SavedItem, error) {
	uid, err := c.userID()
	if err != nil {
		return types.SavedItem{}, err
	}
	if patch.IsZero() {
		return c.Item(id)
	}

	var updated types.SavedItem
	err = c.run(ctx, id, func(jobCtx context.Context) error {
		c.mu.Lock()
		idx := indexOf(c.items, id)
		if idx < 0 {
			c.mu.Unlock()
			return ErrNotFound
		}
		before := c.items[idx]
		after := patch.Apply(before)
		c.items[idx] = after
		c.mu.Unlock()

		// The patch may carry a fresh capture; never let inline data
		// through to the store.
		if p := patch.ImageURI; p != nil && types.IsInlineImage(*p) {
			uri, mErr := c.media.Materialize(jobCtx, uid, id, *p)
			if mErr != nil {
				c.logger.Warn().Err(mErr).Str("itemId", id).Msg("image materialization failed")
				uri = ""
			}
			patch.ImageURI = &uri
			after.ImageURI = uri
			c.mu.Lock()
			c.items = replaceItem(c.items, after)
			c.mu.Unlock()
		}

		if sErr := c.store.Update(jobCtx, uid, id, patch); sErr != nil {
			c.mu.Lock()
			if j := indexOf(c.items, id); j >= 0 {
				c.items[j] = before
			}
			c.mu.Unlock()
			rollbacksTotal.WithLabelValues("update").Inc()
			mutationsTotal.WithLabelValues("update", outcomeFailed).Inc()
			return sErr
		}

		updated = after
		mutationsTotal.WithLabelValues("update", outcomeOK).Inc()
		c.saveCache(jobCtx, uid)
		return nil
	})
	if err != nil {
		return types.SavedItem{}, err
	}
	return updated, nil
}

// RemoveItem deletes an item optimistically. If the remote delete
// fails the item is restored at its original list position.
func (c *Client) RemoveItem(ctx context.Context, id string) error {
	uid, err := c.userID()
	if err != nil {
		return err
	}

	return c.run(ctx, id, func(jobCtx context.Context) error {
		c.mu.Lock()
		idx := indexOf(c.items, id)
		if idx < 0 {
			c.mu.Unlock()
			return ErrNotFound
		}
		removed := c.items[idx]
		c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
		c.mu.Unlock()

		if sErr := c.store.Delete(jobCtx, uid, id); sErr != nil {
			c.mu.Lock()
			c.items = insertAt(c.items, removed, idx)
			c.mu.Unlock()
			rollbacksTotal.WithLabelValues("remove").Inc()
			mutationsTotal.WithLabelValues("remove", outcomeFailed).Inc()
			return sErr
		}

		mutationsTotal.WithLabelValues("remove", outcomeOK).Inc()
		c.saveCache(jobCtx, uid)
		return nil
	})
}

func indexOf(items []types.SavedItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func removeItem(items []types.SavedItem, id string) []types.SavedItem {
	idx := indexOf(items, id)
	if idx < 0 {
		return items
	}
	return append(items[:idx:idx], items[idx+1:]...)
}

func replaceItem(items []types.SavedItem, it types.SavedItem) []types.SavedItem {
	if idx := indexOf(items, it.ID); idx >= 0 {
		items[idx] = it
	}
	return items
}

func insertAt(items []types.SavedItem, it types.SavedItem, idx int) []types.SavedItem {
	if idx < 0 || idx > len(items) {
		idx = len(items)
	}
	out := make([]types.SavedItem, 0, len(items)+1)
	out = append(out, items[:idx]...)
	out = append(out, it)
	out = append(out, items[idx:]...)
	return out
}
