// Package config resolves SDK settings from the environment.
// Variables use the SNAPKEEP_ prefix.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store drivers. PostgREST talks to the hosted REST surface; postgres
// connects straight to the database. Both tolerate old remote schemas.
const (
	DriverPostgrest = "postgrest"
	DriverPostgres  = "postgres"
)

// Config holds everything needed to wire a Client from the environment.
type Config struct {
	// Remote store
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgrest"`
	BaseURL     string `envconfig:"BASE_URL"`     // e.g. https://xyz.supabase.co
	APIKey      string `envconfig:"API_KEY"`      // service anon key
	AccessToken string `envconfig:"ACCESS_TOKEN"` // user session JWT
	PostgresDSN string `envconfig:"POSTGRES_DSN"` // only for the postgres driver

	// Object storage
	StorageBucket string `envconfig:"STORAGE_BUCKET" default:"screenshots"`

	// Collaborators
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	GeminiModel     string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GeminiFallback  string `envconfig:"GEMINI_FALLBACK_MODEL" default:"gemini-1.5-flash"`
	MapsFunctionURL string `envconfig:"MAPS_FUNCTION_URL"` // gemini-maps edge function

	// Behavior knobs
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	FetchLimit     int           `envconfig:"FETCH_LIMIT" default:"100"`
	BackfillBatch  int           `envconfig:"BACKFILL_BATCH" default:"3"`
	CacheDir       string        `envconfig:"CACHE_DIR"` // defaults to the user cache dir

	// Default map region when nothing is resolved (San Francisco).
	DefaultRegionLat float64 `envconfig:"DEFAULT_REGION_LAT" default:"37.7749"`
	DefaultRegionLng float64 `envconfig:"DEFAULT_REGION_LNG" default:"-122.4194"`
}

// Load reads SNAPKEEP_* variables and validates driver requirements.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("snapkeep", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver-specific requirements.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgrest:
		if c.BaseURL == "" {
			return fmt.Errorf("config: BASE_URL required for the %s driver", DriverPostgrest)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("config: POSTGRES_DSN required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("config: unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.FetchLimit <= 0 || c.BackfillBatch <= 0 {
		return fmt.Errorf("config: FETCH_LIMIT and BACKFILL_BATCH must be positive")
	}
	return nil
}
