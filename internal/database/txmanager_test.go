package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManager_WithTx(t *testing.T) {
	t.Run("Success_Commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE vault_entries").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			_, err := GetTx(ctx, db).ExecContext(ctx, "UPDATE vault_entries SET data = $1", []byte{0})
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_Rollback", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		fnErr := errors.New("overwrite failed")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			return fnErr
		})

		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_RollbackFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		rbErr := errors.New("connection reset")
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(rbErr)

		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			return errors.New("overwrite failed")
		})

		assert.ErrorIs(t, err, rbErr)
		assert.ErrorContains(t, err, "overwrite failed")
	})

	t.Run("Error_Commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			return nil
		})

		assert.ErrorContains(t, err, "commit transaction")
	})

	t.Run("Nested_ReusesOuterTransaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM vault_entries").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		txm := NewTxManager(db)
		err = txm.WithTx(context.Background(), func(ctx context.Context) error {
			return txm.WithTx(ctx, func(ctx context.Context) error {
				_, err := GetTx(ctx, db).ExecContext(ctx, "DELETE FROM vault_entries WHERE storage_key = $1", "k")
				return err
			})
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Panic_RollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "boom", func() {
			_ = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_Begin", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			called = true
			return nil
		})

		assert.ErrorContains(t, err, "begin transaction")
		assert.False(t, called)
	})
}

func TestGetTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, db, GetTx(context.Background(), db))

	mock.ExpectBegin()
	mock.ExpectCommit()
	err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		_, isTx := GetTx(ctx, db).(interface{ Commit() error })
		assert.True(t, isTx)
		return nil
	})
	require.NoError(t, err)
}
