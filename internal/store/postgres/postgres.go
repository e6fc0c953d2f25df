// Package postgres is the Store adapter for a direct Postgres
// connection, used by server-side callers that bypass the REST
// gateway. It shares the column tier loop with the PostgREST adapter:
// an undefined-column error degrades the write instead of failing it.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/errs"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/store"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

const undefinedColumn = "42703"

// Store executes SQL against Postgres through a pgx pool.
type Store struct {
	pool       *pgxpool.Pool
	fetchLimit int
	logger     zerolog.Logger
}

// Option customizes the adapter.
type Option func(*Store)

// WithFetchLimit caps how many items FetchAll returns.
func WithFetchLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.fetchLimit = n
		}
	}
}

// WithLogger sets the adapter's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New connects a pool to dsn.
func New(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &Store{pool: pool, fetchLimit: 100, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewWithPool wraps an existing pool, used by tests and callers that
// manage the pool themselves.
func NewWithPool(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, fetchLimit: 100, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// classify maps a pgx error: undefined column becomes schema drift so
// the tier loop can degrade, everything else is a recoverable store
// error.
func classify(err error, operation string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedColumn {
		return &errs.SchemaDriftError{
			Column:     pgErr.ColumnName,
			Underlying: fmt.Errorf("%s rejected: %w", operation, err),
		}
	}
	return errs.NewNetworkError(operation, err)
}

// sortedColumns returns the payload's column names in a stable order
// so generated SQL is deterministic.
func sortedColumns(payload map[string]any) []string {
	cols := make([]string, 0, len(payload))
	for c := range payload {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func insertSQL(table string, payload map[string]any) (string, []any) {
	cols := sortedColumns(payload)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = payload[c]
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return sql, args
}

func updateSQL(table string, payload map[string]any, userID, id string) (string, []any) {
	cols := sortedColumns(payload)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+2)
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
		args = append(args, payload[c])
	}
	args = append(args, id, userID)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND user_id = $%d",
		table, strings.Join(sets, ", "), len(cols)+1, len(cols)+2)
	return sql, args
}

// scanItems decodes rows selected with * into Rows without pinning the
// column list, so older schemas with fewer columns still scan.
func scanItems(rows pgx.Rows) ([]types.SavedItem, error) {
	defer rows.Close()

	descs := rows.FieldDescriptions()
	var items []types.SavedItem
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		record := make(map[string]any, len(descs))
		for i, d := range descs {
			record[d.Name] = values[i]
		}
		raw, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode row: %w", err)
		}
		var r store.Row
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		items = append(items, r.Item())
	}
	return items, rows.Err()
}

func scanTrips(rows pgx.Rows) ([]types.Trip, error) {
	defer rows.Close()

	descs := rows.FieldDescriptions()
	var trips []types.Trip
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		record := make(map[string]any, len(descs))
		for i, d := range descs {
			record[d.Name] = values[i]
		}
		raw, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode row: %w", err)
		}
		var r store.TripRow
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		trips = append(trips, r.Trip())
	}
	return trips, rows.Err()
}

func (s *Store) FetchAll(ctx context.Context, userID string) ([]types.SavedItem, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT * FROM saved_items WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2",
		userID, s.fetchLimit)
	if err != nil {
		return nil, classify(err, "fetch items")
	}
	return scanItems(rows)
}

func (s *Store) Insert(ctx context.Context, userID string, it types.SavedItem) error {
	return store.WriteWithTiers(func(tier store.Tier) error {
		sql, args := insertSQL("saved_items", store.ItemColumns(userID, it, tier))
		if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
			e := classify(err, "insert item")
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
			return nil
		}
		sql, args := updateSQL("saved_items", payload, userID, id)
		if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
			e := classify(err, "update item")
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
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM saved_items WHERE id = $1 AND user_id = $2", id, userID); err != nil {
		return classify(err, "delete item")
	}
	return nil
}

func (s *Store) ListTrips(ctx context.Context, userID string) ([]types.Trip, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT * FROM trips WHERE user_id = $1 ORDER BY start_date DESC NULLS LAST, created_at DESC",
		userID)
	if err != nil {
		return nil, classify(err, "list trips")
	}
	return scanTrips(rows)
}

func (s *Store) InsertTrip(ctx context.Context, t types.Trip) error {
	sql, args := insertSQL("trips", store.TripColumns(t))
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return classify(err, "insert trip")
	}
	return nil
}

func (s *Store) UpdateTrip(ctx context.Context, userID, id string, patch types.TripPatch) error {
	payload := store.TripPatchColumns(patch, nowISO())
	sql, args := updateSQL("trips", payload, userID, id)
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return classify(err, "update trip")
	}
	return nil
}

func (s *Store) DeleteTrip(ctx context.Context, userID, id string) error {
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM trips WHERE id = $1 AND user_id = $2", id, userID); err != nil {
		return classify(err, "delete trip")
	}
	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errs.NewNetworkError("health check", err)
	}
	return nil
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

var _ store.Store = (*Store)(nil)
