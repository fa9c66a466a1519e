package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/memoria/internal/client/localdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, localdb.RunMigrations(context.Background(), db))
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyAccessToken, "tok-1"))

	v, err := r.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", v)
}

func TestGet_Missing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSet_Upsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyCurrentDraft, "old"))
	require.NoError(t, r.Set(ctx, KeyCurrentDraft, "new"))

	v, err := r.Get(ctx, KeyCurrentDraft)
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestDeleteAndClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", "1"))
	require.NoError(t, r.Set(ctx, "b", "2"))

	require.NoError(t, r.Delete(ctx, "a"))
	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, r.Clear(ctx))
	v, err = r.Get(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT value FROM metadata`).WillReturnError(sql.ErrConnDone)
	_, err = r.Get(ctx, "k")
	assert.ErrorIs(t, err, sql.ErrConnDone)

	mock.ExpectExec(`INSERT INTO metadata`).WillReturnError(sql.ErrConnDone)
	assert.ErrorIs(t, r.Set(ctx, "k", "v"), sql.ErrConnDone)

	mock.ExpectExec(`DELETE FROM metadata WHERE key`).WillReturnError(sql.ErrConnDone)
	assert.ErrorIs(t, r.Delete(ctx, "k"), sql.ErrConnDone)

	mock.ExpectExec(`DELETE FROM metadata`).WillReturnError(sql.ErrConnDone)
	assert.ErrorIs(t, r.Clear(ctx), sql.ErrConnDone)

	assert.NoError(t, mock.ExpectationsWereMet())
}
