package snapkeep

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/auth"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/cache"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/config"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/enrich"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/extract"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/geo"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/media"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/store"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/store/postgres"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/store/postgrest"
)

// FromConfig wires a Client from environment configuration. The
// session is derived from the configured access token; collaborators
// without configuration are left disabled rather than failing.
func FromConfig(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	session := sessionFromConfig(cfg)

	s, err := storeFromConfig(ctx, cfg, session, log)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithLogger(log),
		WithBackfillBatch(cfg.BackfillBatch),
	}

	if snapshots, err := openCache(cfg, log); err != nil {
		log.Warn().Err(err).Msg("snapshot cache unavailable, running without it")
	} else {
		opts = append(opts, WithCache(snapshots))
	}

	if cfg.BaseURL != "" {
		mediaDir, _ := cache.MediaDir()
		opts = append(opts, WithMaterializer(media.NewUploader(
			cfg.BaseURL, cfg.APIKey, cfg.StorageBucket, session,
			media.WithLocalDir(mediaDir),
			media.WithLogger(log),
		)))
	}

	if cfg.GeminiAPIKey != "" {
		opts = append(opts,
			WithResolver(geo.NewGeminiResolver(cfg.GeminiAPIKey, cfg.GeminiModel,
				geo.WithFallbackModel(cfg.GeminiFallback),
				geo.WithTimeout(cfg.RequestTimeout),
				geo.WithLogger(log),
			)),
			WithExtractor(extract.NewGeminiExtractor(cfg.GeminiAPIKey, cfg.GeminiModel,
				extract.WithLogger(log),
			)),
		)
	}

	if cfg.MapsFunctionURL != "" {
		opts = append(opts, WithEnricher(enrich.New(cfg.MapsFunctionURL, session,
			enrich.WithLogger(log),
		)))
	}

	return New(s, session, opts...), nil
}

func sessionFromConfig(cfg config.Config) auth.SessionSource {
	if cfg.AccessToken == "" {
		return auth.NoSession
	}
	return auth.NewTokenSession(cfg.AccessToken)
}

func storeFromConfig(ctx context.Context, cfg config.Config, session auth.SessionSource, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.PostgresDSN,
			postgres.WithFetchLimit(cfg.FetchLimit),
			postgres.WithLogger(log),
		)
	default:
		return postgrest.New(cfg.BaseURL, cfg.APIKey, session,
			postgrest.WithFetchLimit(cfg.FetchLimit),
			postgrest.WithTimeout(cfg.RequestTimeout),
			postgrest.WithLogger(log),
		), nil
	}
}

func openCache(cfg config.Config, log zerolog.Logger) (*cache.Snapshots, error) {
	if cfg.CacheDir != "" {
		return cache.Open(cfg.CacheDir+"/snapshots.db", log)
	}
	return cache.OpenDefault(log)
}
