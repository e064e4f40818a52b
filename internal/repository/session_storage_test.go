package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRepoMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, driver)
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestFileSessionStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	store, err := NewFileSessionStorage(path)
	require.NoError(t, err)
	ctx := context.Background()

	raw, err := store.Get(ctx, "authentication")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, store.Set(ctx, "authentication", []byte(`{"isSigned":true}`)))
	require.NoError(t, store.Set(ctx, "account", []byte(`{"checked":true}`)))

	raw, err = store.Get(ctx, "authentication")
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSigned":true}`, string(raw))

	require.NoError(t, store.Delete(ctx, "authentication"))
	raw, err = store.Get(ctx, "authentication")
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = store.Get(ctx, "account")
	require.NoError(t, err)
	assert.JSONEq(t, `{"checked":true}`, string(raw))
}

func TestFileSessionStorageCorruptDocumentReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileSessionStorage(path)
	require.NoError(t, err)

	raw, err := store.Get(context.Background(), "authentication")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, store.Set(context.Background(), "authentication", []byte(`{}`)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"authentication":{}}`, string(data))
}

func TestSQLSessionStorageGet(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t, "sqlite")
	defer cleanup()
	repo := NewSQLSessionStorage(db)

	mock.ExpectQuery("SELECT payload FROM portal_sessions WHERE session_key = \\?").
		WithArgs("authentication").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"isSigned":true}`))

	raw, err := repo.Get(context.Background(), "authentication")
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSigned":true}`, string(raw))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSessionStorageGetMissing(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t, "sqlite")
	defer cleanup()
	repo := NewSQLSessionStorage(db)

	mock.ExpectQuery("SELECT payload FROM portal_sessions").
		WithArgs("authentication").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	raw, err := repo.Get(context.Background(), "authentication")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSQLSessionStorageSetUsesDriverPlaceholders(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t, "postgres")
	defer cleanup()
	repo := NewSQLSessionStorage(db)

	mock.ExpectExec("VALUES \\(\\$1, \\$2, \\$3\\)").
		WithArgs("authentication", `{"isSigned":false}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM portal_sessions WHERE session_key = \\$1").
		WithArgs("authentication").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Set(context.Background(), "authentication", []byte(`{"isSigned":false}`)))
	require.NoError(t, repo.Delete(context.Background(), "authentication"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSessionStorageMigrate(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t, "sqlite")
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS portal_sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewSQLSessionStorage(db).Migrate(context.Background()))
}
