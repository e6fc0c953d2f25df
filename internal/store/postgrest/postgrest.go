// Package postgrest is the Store adapter for a PostgREST-fronted
// Postgres backend (Supabase-style). All writes go through the column
// tier loop so the same binary works against schemas that predate the
// enrichment columns.
package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/auth"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/errs"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/store"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

const (
	itemsTable = "saved_items"
	tripsTable = "trips"
)

// Store talks to {baseURL}/rest/v1. The apikey header carries the
// project key; the Authorization bearer carries the user session token
// so row-level security applies.
type Store struct {
	http       *resty.Client
	session    auth.SessionSource
	fetchLimit int
	logger     zerolog.Logger
}

// Option customizes the adapter.
type Option func(*Store)

// WithFetchLimit caps how many items FetchAll requests.
func WithFetchLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.fetchLimit = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.http.SetTimeout(d) }
}

// WithLogger sets the adapter's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New builds a PostgREST-backed Store. baseURL is the project root
// (without the /rest/v1 suffix); apiKey is the project anon key.
func New(baseURL, apiKey string, session auth.SessionSource, opts ...Option) *Store {
	c := resty.New().
		SetBaseURL(baseURL+"/rest/v1").
		SetHeader("Content-Type", "application/json").
		SetHeader("apikey", apiKey).
		SetHeader("Prefer", "return=minimal").
		SetTimeout(30 * time.Second)

	s := &Store{
		http:       c,
		session:    session,
		fetchLimit: 100,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) bearer() string {
	if tok := s.session.AccessToken(); tok != "" {
		return "Bearer " + tok
	}
	return ""
}

func (s *Store) request(ctx context.Context) *resty.Request {
	r := s.http.R().SetContext(ctx)
	if b := s.bearer(); b != "" {
		r.SetHeader("Authorization", b)
	}
	return r
}

// respErr turns a non-2xx PostgREST response into a classified error,
// mapping the unknown-column code to schema drift so writes can
// degrade.
func respErr(resp *resty.Response, operation string) error {
	body := resp.String()
	if resp.StatusCode() == http.StatusBadRequest && errs.DriftBody(body) {
		return &errs.SchemaDriftError{
			Underlying: fmt.Errorf("%s rejected: %s", operation, body),
		}
	}
	return errs.NewHTTPError(resp.StatusCode(), body, operation)
}

func (s *Store) FetchAll(ctx context.Context, userID string) ([]types.SavedItem, error) {
	var rows []store.Row
	resp, err := s.request(ctx).
		SetQueryParams(map[string]string{
			"select":  "*",
			"user_id": "eq." + userID,
			"order":   "created_at.desc",
			"limit":   strconv.Itoa(s.fetchLimit),
		}).
		SetResult(&rows).
		Get("/" + itemsTable)
	if err != nil {
		return nil, errs.NewNetworkError("fetch items", err)
	}
	if resp.IsError() {
		return nil, respErr(resp, "fetch items")
	}

	items := make([]types.SavedItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.Item())
	}
	return items, nil
}

func (s *Store) Insert(ctx context.Context, userID string, it types.SavedItem) error {
	return store.WriteWithTiers(func(tier store.Tier) error {
		payload := store.ItemColumns(userID, it, tier)
		resp, err := s.request(ctx).
			SetBody(payload).
			Post("/" + itemsTable)
		if err != nil {
			return errs.NewNetworkError("insert item", err)
		}
		if resp.IsError() {
			e := respErr(resp, "insert item")
			if errs.IsSchemaDrift(e) {
				s.logger.Warn().Str("itemId", it.ID).Str("tier", tier.String()).
					Msg("insert rejected for unknown column, degrading")
			}
			return e
		}
		return nil
	})
}

func (s *Store) Update(ctx context.Context, userID, id string, patch types.ItemPatch) error {
	return store.WriteWithTiers(func(tier store.Tier) error {
		payload := store.PatchColumns(patch, tier)
		if len(payload) == 0 {
			// Every patched column was dropped by the tier filter:
			// nothing left the remote schema can store.
			return nil
		}
		resp, err := s.request(ctx).
			SetQueryParam("id", "eq."+id).
			SetQueryParam("user_id", "eq."+userID).
			SetBody(payload).
			Patch("/" + itemsTable)
		if err != nil {
			return errs.NewNetworkError("update item", err)
		}
		if resp.IsError() {
			e := respErr(resp, "update item")
			if errs.IsSchemaDrift(e) {
				s.logger.Warn().Str("itemId", id).Str("tier", tier.String()).
					Msg("update rejected for unknown column, degrading")
			}
			return e
		}
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	resp, err := s.request(ctx).
		SetQueryParam("id", "eq."+id).
		SetQueryParam("user_id", "eq."+userID).
		Delete("/" + itemsTable)
	if err != nil {
		return errs.NewNetworkError("delete item", err)
	}
	if resp.IsError() {
		return respErr(resp, "delete item")
	}
	return nil
}

func (s *Store) ListTrips(ctx context.Context, userID string) ([]types.Trip, error) {
	var rows []store.TripRow
	resp, err := s.request(ctx).
		SetQueryParams(map[string]string{
			"select":  "*",
			"user_id": "eq." + userID,
			"order":   "start_date.desc.nullslast,created_at.desc",
		}).
		SetResult(&rows).
		Get("/" + tripsTable)
	if err != nil {
		return nil, errs.NewNetworkError("list trips", err)
	}
	if resp.IsError() {
		return nil, respErr(resp, "list trips")
	}

	trips := make([]types.Trip, 0, len(rows))
	for _, r := range rows {
		trips = append(trips, r.Trip())
	}
	return trips, nil
}

func (s *Store) InsertTrip(ctx context.Context, t types.Trip) error {
	resp, err := s.request(ctx).
		SetBody(store.TripColumns(t)).
		Post("/" + tripsTable)
	if err != nil {
		return errs.NewNetworkError("insert trip", err)
	}
	if resp.IsError() {
		return respErr(resp, "insert trip")
	}
	return nil
}

func (s *Store) UpdateTrip(ctx context.Context, userID, id string, patch types.TripPatch) error {
	payload := store.TripPatchColumns(patch, time.Now().UTC().Format(time.RFC3339))
	resp, err := s.request(ctx).
		SetQueryParam("id", "eq."+id).
		SetQueryParam("user_id", "eq."+userID).
		SetBody(payload).
		Patch("/" + tripsTable)
	if err != nil {
		return errs.NewNetworkError("update trip", err)
	}
	if resp.IsError() {
		return respErr(resp, "update trip")
	}
	return nil
}

func (s *Store) DeleteTrip(ctx context.Context, userID, id string) error {
	resp, err := s.request(ctx).
		SetQueryParam("id", "eq."+id).
		SetQueryParam("user_id", "eq."+userID).
		Delete("/" + tripsTable)
	if err != nil {
		return errs.NewNetworkError("delete trip", err)
	}
	if resp.IsError() {
		return respErr(resp, "delete trip")
	}
	return nil
}

// HealthCheck probes the REST root; any authenticated response means
// the backend is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	resp, err := s.request(ctx).
		SetQueryParam("limit", "1").
		SetQueryParam("select", "id").
		Get("/" + itemsTable)
	if err != nil {
		return errs.NewNetworkError("health check", err)
	}
	if resp.IsError() {
		return respErr(resp, "health check")
	}
	return nil
}

var _ store.Store = (*Store)(nil)
