package table

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}

func seedSpots(t *testing.T, st *SQLiteStore) {
	t.Helper()
	_, err := st.DB().Exec(`CREATE TABLE spots (
		id INTEGER PRIMARY KEY,
		location TEXT,
		latitude FLOAT,
		longitude FLOAT
	)`)
	require.NoError(t, err)
	_, err = st.DB().Exec(`INSERT INTO spots (id, location, latitude, longitude) VALUES
		(1, 'Boston, MA', 42.36, -71.06),
		(2, 'Salem, MA', NULL, NULL),
		(3, 'Lowell, MA', NULL, NULL)`)
	require.NoError(t, err)
}

func TestSQLite_HasColumn(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedSpots(t, st)
	ctx := context.Background()

	ok, err := st.HasColumn(ctx, "spots", "location")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = st.HasColumn(ctx, "spots", "geometry")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_AddColumn(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedSpots(t, st)
	ctx := context.Background()

	require.NoError(t, st.AddColumn(ctx, "spots", "geocoder", ColumnText))

	ok, err := st.HasColumn(ctx, "spots", "geocoder")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLite_PrimaryKeys(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedSpots(t, st)
	ctx := context.Background()

	pks, err := st.PrimaryKeys(ctx, "spots")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, pks)
}

func TestSQLite_PrimaryKeys_Composite(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.DB().Exec(`CREATE TABLE pairs (
		a TEXT, b TEXT, v TEXT,
		PRIMARY KEY (a, b)
	)`)
	require.NoError(t, err)

	pks, err := st.PrimaryKeys(context.Background(), "pairs")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, pks)
}

func TestSQLite_PrimaryKeys_RowidFallback(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.DB().Exec(`CREATE TABLE bare (v TEXT)`)
	require.NoError(t, err)

	pks, err := st.PrimaryKeys(context.Background(), "bare")
	require.NoError(t, err)
	assert.Equal(t, []string{"rowid"}, pks)
}

func TestSQLite_Count(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedSpots(t, st)
	ctx := context.Background()

	n, err := st.Count(ctx, "spots")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = st.CountWhere(ctx, "spots", `"latitude" IS NULL OR "longitude" IS NULL`)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLite_Rows(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedSpots(t, st)

	cursor, err := st.Rows(context.Background(), "spots", `"latitude" IS NULL`)
	require.NoError(t, err)
	defer cursor.Close() //nolint:errcheck

	var keys []string
	for cursor.Next() {
		key, row := cursor.Pair()
		keys = append(keys, key.String())
		assert.Nil(t, row["latitude"])
		assert.NotEmpty(t, row["location"])
	}
	require.NoError(t, cursor.Err())
	assert.Equal(t, []string{"2", "3"}, keys)
}

func TestSQLite_Rows_RowidTable(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.DB().Exec(`CREATE TABLE bare (v TEXT)`)
	require.NoError(t, err)
	_, err = st.DB().Exec(`INSERT INTO bare (v) VALUES ('x'), ('y')`)
	require.NoError(t, err)

	cursor, err := st.Rows(context.Background(), "bare", "")
	require.NoError(t, err)
	defer cursor.Close() //nolint:errcheck

	var n int
	for cursor.Next() {
		key, row := cursor.Pair()
		n++
		assert.Len(t, key, 1)
		assert.NotNil(t, key[0])
		assert.NotNil(t, row["v"])
	}
	require.NoError(t, cursor.Err())
	assert.Equal(t, 2, n)
}

func TestSQLite_Get(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedSpots(t, st)
	ctx := context.Background()

	row, err := st.Get(ctx, "spots", Key{int64(2)})
	require.NoError(t, err)
	assert.Equal(t, "Salem, MA", row["location"])

	_, err = st.Get(ctx, "spots", Key{int64(99)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_Update(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedSpots(t, st)
	ctx := context.Background()

	err := st.Update(ctx, "spots", Key{int64(2)}, Row{
		"latitude":  42.52,
		"longitude": -70.89,
	}, nil)
	require.NoError(t, err)

	row, err := st.Get(ctx, "spots", Key{int64(2)})
	require.NoError(t, err)
	assert.InDelta(t, 42.52, row["latitude"], 0.001)
	assert.InDelta(t, -70.89, row["longitude"], 0.001)

	// Other rows untouched.
	row, err = st.Get(ctx, "spots", Key{int64(3)})
	require.NoError(t, err)
	assert.Nil(t, row["latitude"])
}

func TestSQLite_Update_MissingRow(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedSpots(t, st)

	err := st.Update(context.Background(), "spots", Key{int64(99)}, Row{"latitude": 1.0}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_Update_KeyMismatch(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedSpots(t, st)

	err := st.Update(context.Background(), "spots", Key{1, 2}, Row{"latitude": 1.0}, nil)
	assert.Error(t, err)
}
