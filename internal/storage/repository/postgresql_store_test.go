package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/database"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
)

func newPostgreSQLTestStore(t *testing.T) (*PostgreSQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewPostgreSQLStore("postgres", db, database.NewTxManager(db), "vault", newTestLogger()), mock
}

func TestPostgreSQLStore_IsAvailable(t *testing.T) {
	ctx := context.Background()

	t.Run("ping succeeds", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectPing()

		assert.True(t, store.IsAvailable(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		assert.False(t, store.IsAvailable(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLStore_Write(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(`INSERT INTO vault_entries (namespace, storage_key, data, updated_at)`)

	t.Run("success", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectExec(query).
			WithArgs("vault", "profile", []byte("data"), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.True(t, store.Write(ctx, "profile", []byte("data")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectExec(query).WillReturnError(errors.New("boom"))

		assert.False(t, store.Write(ctx, "profile", []byte("data")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLStore_Read(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT data FROM vault_entries WHERE namespace = $1 AND storage_key = $2`)

	t.Run("found", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectQuery(query).
			WithArgs("vault", "profile").
			WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte("data")))

		data, outcome := store.Read(ctx, "profile")
		assert.Equal(t, storageDomain.OutcomeFound, outcome)
		assert.Equal(t, []byte("data"), data)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectQuery(query).WithArgs("vault", "missing").WillReturnError(sql.ErrNoRows)

		data, outcome := store.Read(ctx, "missing")
		assert.Equal(t, storageDomain.OutcomeAbsent, outcome)
		assert.Nil(t, data)
	})

	t.Run("unavailable", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectQuery(query).WithArgs("vault", "profile").WillReturnError(sql.ErrConnDone)

		_, outcome := store.Read(ctx, "profile")
		assert.Equal(t, storageDomain.OutcomeUnavailable, outcome)
	})
}

func TestPostgreSQLStore_Delete(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(`DELETE FROM vault_entries WHERE namespace = $1 AND storage_key = $2`)

	store, mock := newPostgreSQLTestStore(t)
	mock.ExpectExec(query).WithArgs("vault", "missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(query).WithArgs("vault", "profile").WillReturnError(errors.New("boom"))

	assert.True(t, store.Delete(ctx, "missing"))
	assert.False(t, store.Delete(ctx, "profile"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLStore_Shred(t *testing.T) {
	ctx := context.Background()
	selectQuery := regexp.QuoteMeta(`SELECT octet_length(data) FROM vault_entries`)
	updateQuery := regexp.QuoteMeta(`UPDATE vault_entries SET data = $1`)
	deleteQuery := regexp.QuoteMeta(`DELETE FROM vault_entries`)

	t.Run("overwrites every pass then deletes", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectQuery).
			WithArgs("vault", "profile").
			WillReturnRows(sqlmock.NewRows([]string{"octet_length"}).AddRow(3))
		mock.ExpectExec(updateQuery).
			WithArgs([]byte{0x00, 0x00, 0x00}, "vault", "profile").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(updateQuery).
			WithArgs([]byte{0xFF, 0xFF, 0xFF}, "vault", "profile").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(updateQuery).
			WithArgs(sqlmock.AnyArg(), "vault", "profile").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(deleteQuery).
			WithArgs("vault", "profile").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.True(t, store.Shred(ctx, "profile", storageDomain.WipePasses))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row commits without writes", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectQuery).WithArgs("vault", "missing").WillReturnError(sql.ErrNoRows)
		mock.ExpectCommit()

		assert.True(t, store.Shred(ctx, "missing", storageDomain.WipePasses))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed pass rolls back", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectQuery).
			WithArgs("vault", "profile").
			WillReturnRows(sqlmock.NewRows([]string{"octet_length"}).AddRow(3))
		mock.ExpectExec(updateQuery).WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		assert.False(t, store.Shred(ctx, "profile", storageDomain.WipePasses))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLStore_List(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT storage_key FROM vault_entries WHERE namespace = $1 ORDER BY storage_key`)

	t.Run("success", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectQuery(query).
			WithArgs("vault").
			WillReturnRows(sqlmock.NewRows([]string{"storage_key"}).AddRow("a").AddRow("b"))

		keys, ok := store.List(ctx)
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, keys)
	})

	t.Run("query error", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectQuery(query).WillReturnError(errors.New("boom"))

		keys, ok := store.List(ctx)
		assert.False(t, ok)
		assert.Nil(t, keys)
	})

	t.Run("scan error", func(t *testing.T) {
		store, mock := newPostgreSQLTestStore(t)
		mock.ExpectQuery(query).
			WillReturnRows(sqlmock.NewRows([]string{"storage_key"}).AddRow("a").RowError(0, errors.New("bad row")))

		_, ok := store.List(ctx)
		assert.False(t, ok)
	})
}
