package snapkeep

import (
	"github.com/rs/zerolog"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/cache"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/enrich"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/extract"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/geo"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/media"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/shardqueue"
)

// Option configures a Client.
type Option func(*Client)

// WithCache attaches a local snapshot cache. The cache is read when
// the remote fetch fails and refreshed after successful mutations.
func WithCache(s *cache.Snapshots) Option {
	return func(c *Client) { c.cache = s }
}

// WithMaterializer sets the image materializer used before persisting.
func WithMaterializer(m media.Materializer) Option {
	return func(c *Client) { c.media = m }
}

// WithResolver enables coordinate backfill through r.
func WithResolver(r geo.Resolver) Option {
	return func(c *Client) { c.geo = r }
}

// WithEnricher sets the place verification backend.
func WithEnricher(e enrich.Enricher) Option {
	return func(c *Client) { c.enrich = e }
}

// WithExtractor sets the screenshot extraction backend used by
// SaveScreenshot.
func WithExtractor(e extract.Extractor) Option {
	return func(c *Client) { c.extract = e }
}

// WithExecutor overrides the mutation executor. The executor must not
// retry jobs.
func WithExecutor(e *shardqueue.ShardExecutor) Option {
	return func(c *Client) { c.exec = e }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithBackfillBatch caps how many items one backfill pass geocodes.
func WithBackfillBatch(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.backfill = n
		}
	}
}
