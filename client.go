// Package snapkeep is the reconciliation engine behind the
// save-places app. It owns the in-memory item list for the active
// session, applies mutations optimistically, persists them through a
// store adapter and rolls back on failure. Mutations on the same item
// id are serialized through a sharded FIFO executor so a second edit
// can never clobber the first one's rollback.
package snapkeep

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/auth"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/cache"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/enrich"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/extract"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/geo"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/media"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/shardqueue"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/store"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// Client is the engine facade. All exported methods are safe for
// concurrent use.
type Client struct {
	store    store.Store
	cache    *cache.Snapshots
	media    media.Materializer
	geo      geo.Resolver
	enrich   enrich.Enricher
	extract  extract.Extractor
	session  auth.SessionSource
	exec     *shardqueue.ShardExecutor
	logger   zerolog.Logger
	backfill int

	mu        sync.Mutex
	items     []types.SavedItem
	trips     []types.Trip
	attempted map[string]bool // item ids the backfill already tried this session
	closed    bool
}

// New builds a Client around a store adapter and session source.
// Collaborators default to disabled implementations; use options to
// wire them in.
func New(s store.Store, session auth.SessionSource, opts ...Option) *Client {
	c := &Client{
		store:     s,
		media:     media.Passthrough{},
		enrich:    enrich.Disabled{},
		session:   session,
		logger:    zerolog.Nop(),
		backfill:  3,
		attempted: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.exec == nil {
		// Each queued job is a whole mutation (apply, persist,
		// confirm or roll back); re-running one would double-apply,
		// so the executor never retries.
		c.exec = shardqueue.NewShardExecutor(shardqueue.Config{
			Shards:      4,
			QueueSize:   64,
			MaxAttempts: 1,
		})
	}
	return c
}

// Flush waits until every mutation submitted so far for the current
// set of items and trips has completed. Useful before reading state
// that concurrent callers may still be writing.
func (c *Client) Flush(ctx context.Context) error {
	c.mu.Lock()
	keys := make([]string, 0, len(c.items)+len(c.trips))
	for _, it := range c.items {
		keys = append(keys, it.ID)
	}
	for _, tr := range c.trips {
		keys = append(keys, tr.ID)
	}
	c.mu.Unlock()

	for _, key := range keys {
		if err := c.exec.Barrier(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Close drains in-flight mutations and releases resources.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.exec.Stop()
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

// userID returns the active user or ErrNoSession.
func (c *Client) userID() (string, error) {
	uid, ok := c.session.UserID()
	if !ok {
		return "", ErrNoSession
	}
	return uid, nil
}

// run submits a mutation keyed by id and blocks until it finishes.
// The per-id FIFO guarantees two mutations on the same item execute in
// submission order, each seeing the other's completed state.
func (c *Client) run(ctx context.Context, id string, mutation func(ctx context.Context) error) error {
	done := make(chan error, 1)
	err := c.exec.Submit(ctx, id, shardqueue.JobFunc(func(jobCtx context.Context) error {
		e := mutation(jobCtx)
		done <- e
		// The mutation's failure is reported to the caller; the
		// executor must not treat it as a job failure.
		return nil
	}))
	if err != nil {
		return mapSubmitErr(err)
	}
	select {
	case e := <-done:
		return e
	case <-ctx.Done():
		return ctx.Err()
	}
}

// snapshotItems returns a copy of the in-memory list.
func (c *Client) snapshotItems() []types.SavedItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.SavedItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Client) snapshotTrips() []types.Trip {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Trip, len(c.trips))
	copy(out, c.trips)
	return out
}

// saveCache persists the current snapshot, best-effort.
func (c *Client) saveCache(ctx context.Context, userID string) {
	if c.cache == nil {
		return
	}
	c.cache.SaveItems(ctx, userID, c.snapshotItems())
	c.cache.SaveTrips(ctx, userID, c.snapshotTrips())
}
