package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinmaps/twinmap/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

func TestPostgresStore_CreatePairing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO pairings`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := s.CreatePairing(context.Background(), testLocations())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Len(t, created.Locations, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreatePairing_RejectsMalformed(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// No Exec expectation: a malformed record must never reach the pool.
	_, err := s.CreatePairing(context.Background(), map[string]model.RawLocation{
		"seattle": {Label: "only one", Coordinates: []float64{47.6, -122.3}},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPairing(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	locJSON := []byte(`{"seattle":{"label":"Pike Place Market","coordinates":[47.6097,-122.3422]},"portland":{"label":"Powell's Books","coordinates":[45.5232,-122.6819]}}`)
	mock.ExpectQuery(`SELECT locations, created_at FROM pairings WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"locations", "created_at"}).AddRow(locJSON, createdAt))

	got, err := s.GetPairing(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, createdAt, got.CreatedAt)
	assert.Equal(t, model.LatLng{47.6097, -122.3422}, got.Locations["seattle"].Coordinates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPairing_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT locations, created_at FROM pairings WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetPairing(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPairings(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "locations", "created_at"}).
		AddRow("p1", []byte(`{"seattle":{"label":"a","coordinates":[47.6,-122.3]},"portland":{"label":"b","coordinates":[45.5,-122.6]}}`), createdAt).
		AddRow("corrupt", []byte(`not json`), createdAt)
	mock.ExpectQuery(`SELECT id, locations, created_at FROM pairings`).
		WillReturnRows(rows)

	raws, err := s.ListPairings(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	pairings := model.FilterValid(raws)
	require.Len(t, pairings, 1)
	assert.Equal(t, "p1", pairings[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeletePairing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM pairings WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.DeletePairing(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeletePairing_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM pairings WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, s.DeletePairing(context.Background(), "missing"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS pairings`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
