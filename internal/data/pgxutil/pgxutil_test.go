package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSQLTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE ref_sequences").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = WithSQLTx(ctx, db, SQLTxConfig{Fn: func(tx *sql.Tx) error {
			_, execErr := tx.ExecContext(ctx, "UPDATE ref_sequences SET value = value + 1")
			return execErr
		}})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and returns fn error unchanged", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		sentinel := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err = WithSQLTx(ctx, db, SQLTxConfig{Fn: func(*sql.Tx) error { return sentinel }})
		require.ErrorIs(t, err, sentinel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin().WillReturnError(errors.New("no connection"))
		err = WithSQLTx(ctx, db, SQLTxConfig{Fn: func(*sql.Tx) error { return nil }})
		require.ErrorContains(t, err, "begin tx")
	})

	t.Run("nil fn", func(t *testing.T) {
		require.Error(t, WithSQLTx(ctx, nil, SQLTxConfig{}))
	})
}
