package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinmaps/twinmap/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testLocations() map[string]model.RawLocation {
	return map[string]model.RawLocation{
		"seattle":  {Label: "Pike Place Market", Coordinates: []float64{47.6097, -122.3422}},
		"portland": {Label: "Powell's Books", Coordinates: []float64{45.5232, -122.6819}},
	}
}

func TestSQLite_CreateAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreatePairing(ctx, testLocations())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := st.GetPairing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Pike Place Market", got.Locations["seattle"].Label)
	assert.Equal(t, model.LatLng{45.5232, -122.6819}, got.Locations["portland"].Coordinates)
}

func TestSQLite_CreateRejectsMalformed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreatePairing(ctx, map[string]model.RawLocation{
		"seattle": {Label: "only one", Coordinates: []float64{47.6, -122.3}},
	})
	assert.Error(t, err)

	raws, err := st.ListPairings(ctx)
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestSQLite_Get_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetPairing(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_List(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := st.CreatePairing(ctx, testLocations())
	require.NoError(t, err)
	second, err := st.CreatePairing(ctx, testLocations())
	require.NoError(t, err)

	raws, err := st.ListPairings(ctx)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	ids := []string{raws[0].ID, raws[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)

	pairings := model.FilterValid(raws)
	assert.Len(t, pairings, 2)
}

func TestSQLite_Delete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreatePairing(ctx, testLocations())
	require.NoError(t, err)

	require.NoError(t, st.DeletePairing(ctx, created.ID))

	_, err = st.GetPairing(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, st.DeletePairing(ctx, created.ID), ErrNotFound)
}

func TestSQLite_ListSurvivesCorruptRow(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreatePairing(ctx, testLocations())
	require.NoError(t, err)

	// Hand-corrupted row: listing must still return it (as an empty raw
	// record) so validation can skip it without blanking the set.
	_, err = st.db.ExecContext(ctx,
		`INSERT INTO pairings (id, locations, created_at) VALUES ('corrupt', 'not json', datetime('now'))`)
	require.NoError(t, err)

	raws, err := st.ListPairings(ctx)
	require.NoError(t, err)
	assert.Len(t, raws, 2)

	pairings := model.FilterValid(raws)
	require.Len(t, pairings, 1)
	assert.Equal(t, created.ID, pairings[0].ID)
}
