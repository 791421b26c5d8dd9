package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/target/jobdispatch/internal/core"
	"github.com/target/jobdispatch/internal/domain/ref"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

// RefSequenceRepo is the PostgreSQL ref counter. Each prefix owns one row in ref_sequences and
// the increment is a single upsert, so concurrent callers in any process get distinct values.
type RefSequenceRepo struct {
	DB *sql.DB
}

var (
	_ ref.Counter                = (*RefSequenceRepo)(nil)
	_ core.RefSequenceRepository = (*RefSequenceRepo)(nil)
)

// NewRefSequenceRepo creates a RefSequenceRepo.
func NewRefSequenceRepo(db *sql.DB) *RefSequenceRepo {
	return &RefSequenceRepo{DB: db}
}

const nextRefSequenceQuery = `
	INSERT INTO ref_sequences (prefix, value)
	VALUES ($1, 1)
	ON CONFLICT (prefix) DO UPDATE
	SET value = ref_sequences.value + 1,
	    updated_at = now()
	RETURNING value`

// Next increments and returns the counter for prefix, starting at 1.
func (r *RefSequenceRepo) Next(ctx context.Context, prefix string) (int64, error) {
	var value int64
	if err := r.DB.QueryRowContext(ctx, nextRefSequenceQuery, prefix).Scan(&value); err != nil {
		return 0, mapRefSequenceError(err, prefix)
	}
	return value, nil
}

// Current returns the last value handed out for prefix, or 0 when none has been.
func (r *RefSequenceRepo) Current(ctx context.Context, prefix string) (int64, error) {
	var value int64
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM ref_sequences WHERE prefix = $1`, prefix).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, mapRefSequenceError(err, prefix)
	}
	return value, nil
}

func mapRefSequenceError(err error, prefix string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.NumericValueOutOfRange {
		return fmt.Errorf("%w: %s", ref.ErrCounterExhausted, prefix)
	}
	return fmt.Errorf("ref sequence %s: %w", prefix, apperrors.MapDBError(err))
}
