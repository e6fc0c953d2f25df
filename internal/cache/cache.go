// Package cache keeps a per-user snapshot of the last known item list
// so the UI can paint instantly on cold start. It is never
// authoritative: a successful remote fetch always wins, and every
// failure mode here degrades to "no snapshot".
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// Snapshots is a SQLite-backed snapshot store keyed by user id.
type Snapshots struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates (or opens) the snapshot database at path.
func Open(path string, log zerolog.Logger) (*Snapshots, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Snapshots{db: db, log: log}, nil
}

// OpenDefault opens the snapshot database under the app cache dir.
func OpenDefault(log zerolog.Logger) (*Snapshots, error) {
	path, err := DBPath()
	if err != nil {
		return nil, err
	}
	return Open(path, log)
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ItemSnapshots (
            UserId TEXT PRIMARY KEY,
            Items TEXT NOT NULL,
            SavedAt TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS TripSnapshots (
            UserId TEXT PRIMARY KEY,
            Trips TEXT NOT NULL,
            SavedAt TIMESTAMP NOT NULL
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveItems overwrites the snapshot for userID. Best-effort: failures
// are logged and swallowed.
func (s *Snapshots) SaveItems(ctx context.Context, userID string, items []types.SavedItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		s.log.Warn().Err(err).Msg("cache: marshal items")
		return
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ItemSnapshots (UserId, Items, SavedAt) VALUES (?,?,?)
         ON CONFLICT(UserId) DO UPDATE SET Items=excluded.Items, SavedAt=excluded.SavedAt`,
		userID, string(raw), time.Now().UTC())
	if err != nil {
		s.log.Warn().Err(err).Str("userId", userID).Msg("cache: save items")
	}
}

// LoadItems returns the last snapshot for userID, or nil if there is
// none. Corrupt data is treated as absent, not an error.
func (s *Snapshots) LoadItems(ctx context.Context, userID string) []types.SavedItem {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT Items FROM ItemSnapshots WHERE UserId = ?`, userID).Scan(&raw)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Warn().Err(err).Str("userId", userID).Msg("cache: load items")
		}
		return nil
	}
	var items []types.SavedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn().Err(err).Str("userId", userID).Msg("cache: corrupt snapshot dropped")
		return nil
	}
	return items
}

// SaveTrips overwrites the trip snapshot for userID. Best-effort.
func (s *Snapshots) SaveTrips(ctx context.Context, userID string, trips []types.Trip) {
	raw, err := json.Marshal(trips)
	if err != nil {
		s.log.Warn().Err(err).Msg("cache: marshal trips")
		return
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO TripSnapshots (UserId, Trips, SavedAt) VALUES (?,?,?)
         ON CONFLICT(UserId) DO UPDATE SET Trips=excluded.Trips, SavedAt=excluded.SavedAt`,
		userID, string(raw), time.Now().UTC())
	if err != nil {
		s.log.Warn().Err(err).Str("userId", userID).Msg("cache: save trips")
	}
}

// LoadTrips returns the last trip snapshot for userID, or nil.
func (s *Snapshots) LoadTrips(ctx context.Context, userID string) []types.Trip {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT Trips FROM TripSnapshots WHERE UserId = ?`, userID).Scan(&raw)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Warn().Err(err).Str("userId", userID).Msg("cache: load trips")
		}
		return nil
	}
	var trips []types.Trip
	if err := json.Unmarshal([]byte(raw), &trips); err != nil {
		s.log.Warn().Err(err).Str("userId", userID).Msg("cache: corrupt snapshot dropped")
		return nil
	}
	return trips
}

// Close releases the underlying database handle.
func (s *Snapshots) Close() error { return s.db.Close() }
