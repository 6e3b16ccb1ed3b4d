package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pos-catalog/internal/model"
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

func TestSQLite_UpsertPos_InsertAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	saved, err := st.UpsertPos(ctx, campusCafe())
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := st.GetPos(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Campus Cafe", got.Name)
	assert.Equal(t, model.PosTypeCafe, got.Type)
	assert.Equal(t, model.CampusAltstadt, got.Campus)
	assert.Equal(t, model.Address{Street: "Grabengasse", HouseNumber: "1", PostalCode: "69117", City: "Heidelberg"}, got.Address)
	require.NotNil(t, got.Latitude)
	require.NotNil(t, got.Longitude)
	assert.InDelta(t, 49.41, *got.Latitude, 1e-9)
	assert.InDelta(t, 8.71, *got.Longitude, 1e-9)
}

func TestSQLite_UpsertPos_NullCoordinates(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := campusCafe()
	p.Latitude = nil
	saved, err := st.UpsertPos(ctx, p)
	require.NoError(t, err)
	assert.Nil(t, saved.Latitude)
	require.NotNil(t, saved.Longitude)
}

func TestSQLite_UpsertPos_UpdateByID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	saved, err := st.UpsertPos(ctx, campusCafe())
	require.NoError(t, err)

	saved.Name = "Campus Cafe II"
	saved.Type = model.PosTypeRestaurant
	updated, err := st.UpsertPos(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "Campus Cafe II", updated.Name)
	assert.Equal(t, model.PosTypeRestaurant, updated.Type)

	all, err := st.ListPos(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLite_UpsertPos_DuplicateName(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertPos(ctx, campusCafe())
	require.NoError(t, err)

	_, err = st.UpsertPos(ctx, campusCafe())
	var dup *model.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Campus Cafe", dup.Name)

	all, err := st.ListPos(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "failed upsert must not leave a row behind")
}

func TestSQLite_UpsertPos_RenameOntoTakenName(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertPos(ctx, campusCafe())
	require.NoError(t, err)
	other := campusCafe()
	other.Name = "Mensa"
	saved, err := st.UpsertPos(ctx, other)
	require.NoError(t, err)

	saved.Name = "Campus Cafe"
	_, err = st.UpsertPos(ctx, saved)
	var dup *model.DuplicateNameError
	require.ErrorAs(t, err, &dup)

	got, err := st.GetPos(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mensa", got.Name)
}

func TestSQLite_UpsertPos_ConcurrentSameName(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = st.UpsertPos(ctx, campusCafe())
		}()
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		var de *model.DuplicateNameError
		switch {
		case err == nil:
			ok++
		case assert.ErrorAs(t, err, &de):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestSQLite_GetPos_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetPos(context.Background(), "nope")
	var nf *model.PosNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.ID)
}

func TestSQLite_ListPos_OrderedByName(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, name := range []string{"Zeughaus", "Alte Mensa", "Marstall"} {
		p := campusCafe()
		p.Name = name
		_, err := st.UpsertPos(ctx, p)
		require.NoError(t, err)
	}

	list, err := st.ListPos(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Alte Mensa", list[0].Name)
	assert.Equal(t, "Marstall", list[1].Name)
	assert.Equal(t, "Zeughaus", list[2].Name)
}

func TestSQLite_ListPos_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	list, err := st.ListPos(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLite_ClearPos(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := range 3 {
		p := campusCafe()
		p.Name = fmt.Sprintf("POS %d", i)
		_, err := st.UpsertPos(ctx, p)
		require.NoError(t, err)
	}

	n, err := st.ClearPos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err := st.ListPos(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}
