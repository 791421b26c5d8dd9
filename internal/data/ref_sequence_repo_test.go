package data

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/jobdispatch/internal/domain/ref"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

func newRefSequenceMock(t *testing.T) (*RefSequenceRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRefSequenceRepo(db), mock
}

func TestRefSequenceRepo_Next(t *testing.T) {
	repo, mock := newRefSequenceMock(t)

	mock.ExpectQuery(`INSERT INTO ref_sequences`).
		WithArgs("JD-").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(42)))

	v, err := repo.Next(context.Background(), "JD-")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefSequenceRepo_Next_Errors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "bigint overflow is exhaustion",
			err:  &pgconn.PgError{Code: pgerrcode.NumericValueOutOfRange, Message: "bigint out of range"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ref.ErrCounterExhausted)
			},
		},
		{
			name: "connection failure is unavailable",
			err:  &pgconn.PgError{Code: pgerrcode.AdminShutdown},
			check: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsUnavailable(err))
			},
		},
		{
			name: "unknown error propagates",
			err:  errors.New("driver: bad connection"),
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "bad connection")
				assert.ErrorContains(t, err, "JD-")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRefSequenceMock(t)
			mock.ExpectQuery(`INSERT INTO ref_sequences`).WithArgs("JD-").WillReturnError(tt.err)

			v, err := repo.Next(context.Background(), "JD-")
			require.Error(t, err)
			assert.Zero(t, v)
			tt.check(t, err)
		})
	}
}

func TestRefSequenceRepo_Current(t *testing.T) {
	repo, mock := newRefSequenceMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT value FROM ref_sequences`).
		WithArgs("JD-").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(7)))
	mock.ExpectQuery(`SELECT value FROM ref_sequences`).
		WithArgs("AR-").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	v, err := repo.Current(ctx, "JD-")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = repo.Current(ctx, "AR-")
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}
