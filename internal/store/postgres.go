package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/twinmaps/twinmap/internal/db"
	"github.com/twinmaps/twinmap/internal/model"
)

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS pairings (
	id         TEXT PRIMARY KEY,
	locations  JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pairings_created_at ON pairings(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreatePairing(ctx context.Context, locations map[string]model.RawLocation) (*model.Pairing, error) {
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
		return nil, eris.Wrap(err, "postgres: marshal locations")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO pairings (id, locations, created_at) VALUES ($1, $2, $3)`,
		pairing.ID, locJSON, pairing.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert pairing")
	}
	return &pairing, nil
}

func (s *PostgresStore) GetPairing(ctx context.Context, id string) (*model.Pairing, error) {
	var (
		locJSON   []byte
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT locations, created_at FROM pairings WHERE id = $1`, id,
	).Scan(&locJSON, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get pairing %s", id)
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

func (s *PostgresStore) ListPairings(ctx context.Context) ([]model.RawPairing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, locations, created_at FROM pairings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pairings")
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
			return nil, eris.Wrap(err, "postgres: scan pairing")
		}
		locs, err := model.DecodeRawLocations(locJSON)
		if err != nil {
			locs = nil
		}
		raws = append(raws, model.RawPairing{ID: id, Locations: locs, CreatedAt: createdAt})
	}
	return raws, eris.Wrap(rows.Err(), "postgres: list pairings iterate")
}

func (s *PostgresStore) DeletePairing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pairings WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete pairing %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
