package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aqipro/aqipro/internal/aqi"
)

// SQLiteStore is the on-disk Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the state database at the given path
// and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	// The CLI is single-process; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS favorites (
		name TEXT PRIMARY KEY,
		added_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recents (
		name TEXT PRIMARY KEY,
		touched_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recents_touched ON recents(touched_at DESC);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetReading implements Store.
func (s *SQLiteStore) GetReading(ctx context.Context, key string) (*CachedReading, error) {
	var payload string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM readings WHERE key = ?`, key).
		Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reading: %w", err)
	}

	var reading aqi.Reading
	if err := json.Unmarshal([]byte(payload), &reading); err != nil {
		return nil, fmt.Errorf("decode cached reading: %w", err)
	}

	return &CachedReading{
		Reading:   reading,
		FetchedAt: time.Unix(fetchedAt, 0).UTC(),
	}, nil
}

// PutReading implements Store.
func (s *SQLiteStore) PutReading(ctx context.Context, key string, reading *aqi.Reading, fetchedAt time.Time) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO readings (key, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, string(payload), fetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("put reading: %w", err)
	}
	return nil
}

// Favorites implements Store.
func (s *SQLiteStore) Favorites(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM favorites ORDER BY added_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

// AddFavorite implements Store.
func (s *SQLiteStore) AddFavorite(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (name, added_at) VALUES (?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite implements Store.
func (s *SQLiteStore) RemoveFavorite(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// IsFavorite implements Store.
func (s *SQLiteStore) IsFavorite(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return true, nil
}

// Recents implements Store.
func (s *SQLiteStore) Recents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM recents ORDER BY touched_at DESC LIMIT ?`, MaxRecents)
	if err != nil {
		return nil, fmt.Errorf("list recents: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

// TouchRecent implements Store.
func (s *SQLiteStore) TouchRecent(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("touch recent: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recents (name, touched_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET touched_at = excluded.touched_at`,
		name, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("touch recent: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM recents WHERE name NOT IN (
			SELECT name FROM recents ORDER BY touched_at DESC LIMIT ?
		)`, MaxRecents)
	if err != nil {
		return fmt.Errorf("trim recents: %w", err)
	}

	return tx.Commit()
}

// ClearRecents implements Store.
func (s *SQLiteStore) ClearRecents(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recents`)
	if err != nil {
		return fmt.Errorf("clear recents: %w", err)
	}
	return nil
}

// LastQuery implements Store.
func (s *SQLiteStore) LastQuery(ctx context.Context) (string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'last_query'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get last query: %w", err)
	}
	return raw, nil
}

// SetLastQuery implements Store.
func (s *SQLiteStore) SetLastQuery(ctx context.Context, raw string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('last_query', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, raw)
	if err != nil {
		return fmt.Errorf("set last query: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanNames(rows *sql.Rows) ([]string, error) {
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
