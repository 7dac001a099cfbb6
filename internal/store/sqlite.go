package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/twinmaps/twinmap/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS pairings (
	id         TEXT PRIMARY KEY,
	locations  TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_pairings_created_at ON pairings(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreatePairing(ctx context.Context, locations map[string]model.RawLocation) (*model.Pairing, error) {
	raw := model.RawPairing{
		ID:        uuid.New().String(),
		Locations: locations,
		CreatedAt: time.Now().UTC(),
	}
	pairing, err := raw.Pairing()
	if err != nil {
		return nil, err
	}

	locJSON, err := json.Marshal(pairing.Locations)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal locations")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pairings (id, locations, created_at) VALUES (?, ?, ?)`,
		pairing.ID, string(locJSON), pairing.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert pairing")
	}
	return &pairing, nil
}

func (s *SQLiteStore) GetPairing(ctx context.Context, id string) (*model.Pairing, error) {
	var (
		locJSON   []byte
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT locations, created_at FROM pairings WHERE id = ?`, id,
	).Scan(&locJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get pairing %s", id)
	}

	locs, err := model.DecodeRawLocations(locJSON)
	if err != nil {
		return nil, err
	}
	raw := model.RawPairing{ID: id, Locations: locs, CreatedAt: createdAt}
	pairing, err := raw.Pairing()
	if err != nil {
		return nil, err
	}
	return &pairing, nil
}

func (s *SQLiteStore) ListPairings(ctx context.Context) ([]model.RawPairing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, locations, created_at FROM pairings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pairings")
	}
	defer rows.Close()

	var raws []model.RawPairing
	for rows.Next() {
		var (
			id        string
			locJSON   []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &locJSON, &createdAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pairing")
		}
		locs, err := model.DecodeRawLocations(locJSON)
		if err != nil {
			// A corrupt row is surfaced to validation as an empty record,
			// not an error, so one bad row cannot blank the listing.
			locs = nil
		}
		raws = append(raws, model.RawPairing{ID: id, Locations: locs, CreatedAt: createdAt})
	}
	return raws, eris.Wrap(rows.Err(), "sqlite: list pairings iterate")
}

func (s *SQLiteStore) DeletePairing(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pairings WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete pairing %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
