package data

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/jobdispatch/internal/domain/model"
	"github.com/target/jobdispatch/internal/domain/ref"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

const testDispatchID = "6f1c2a0e-8d4b-4c3e-9a57-2b1d0e4f5a61"

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type memCounter struct {
	n     atomic.Int64
	err   error
	calls atomic.Int32
}

func (c *memCounter) Next(context.Context, string) (int64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return c.n.Add(1), nil
}

type dispatchRepoFixture struct {
	repo    *JobDispatchRepo
	mock    sqlmock.Sqlmock
	counter *memCounter
	clock   *FixedTimeProvider
}

func newDispatchRepoFixture(t *testing.T) *dispatchRepoFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	counter := &memCounter{}
	gen, err := ref.NewGenerator(ref.GeneratorOptions{
		Counter:  counter,
		Prefixes: map[string]string{model.JobDispatchRefEntity: "JD-"},
	})
	require.NoError(t, err)

	clock := NewFixedTimeProvider(testNow)
	repo := NewJobDispatchRepo(db, JobDispatchRepoConfig{
		Refs:         gen,
		TimeProvider: clock,
	})
	return &dispatchRepoFixture{repo: repo, mock: mock, counter: counter, clock: clock}
}

type dispatchRow struct {
	ref       string
	status    model.JobDispatchStatus
	ranAt     any
	runningID any
	count     int
}

func dispatchRows(rows ...dispatchRow) *sqlmock.Rows {
	out := sqlmock.NewRows(jobDispatchColumnNames)
	for _, r := range rows {
		out.AddRow(testDispatchID, r.ref, "ExportReport", nil, r.runningID, nil,
			string(r.status), r.ranAt, nil, nil, nil, r.count, testNow, testNow)
	}
	return out
}

func TestJobDispatchRepo_Create_GeneratesRef(t *testing.T) {
	f := newDispatchRepoFixture(t)

	f.mock.ExpectQuery(`INSERT INTO job_dispatches`).
		WithArgs("JD-000001", "ExportReport", nil, nil, nil, "pending", sqlmock.AnyArg()).
		WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000001", status: model.JobDispatchStatusPending}))

	jd, err := f.repo.Create(context.Background(), &model.CreateJobDispatchRequest{Name: " ExportReport "})
	require.NoError(t, err)
	assert.Equal(t, "JD-000001", jd.Ref)
	assert.Equal(t, model.JobDispatchStatusPending, jd.Status)
	assert.Nil(t, jd.RunningAuditRequestID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestJobDispatchRepo_Create_PreservesExplicitRef(t *testing.T) {
	f := newDispatchRepoFixture(t)

	f.mock.ExpectQuery(`INSERT INTO job_dispatches`).
		WithArgs("LEGACY-7", "ExportReport", nil, nil, nil, "pending", sqlmock.AnyArg()).
		WillReturnRows(dispatchRows(dispatchRow{ref: "LEGACY-7", status: model.JobDispatchStatusPending}))

	jd, err := f.repo.Create(context.Background(), &model.CreateJobDispatchRequest{Name: "ExportReport", Ref: "LEGACY-7"})
	require.NoError(t, err)
	assert.Equal(t, "LEGACY-7", jd.Ref)
	assert.Zero(t, f.counter.calls.Load(), "counter must not be consumed for explicit refs")
}

func refTaken() error {
	return &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		TableName:      "job_dispatches",
		ConstraintName: "job_dispatches_ref_key",
	}
}

func TestJobDispatchRepo_Create_RedrawsGeneratedRefOnCollision(t *testing.T) {
	f := newDispatchRepoFixture(t)

	f.mock.ExpectQuery(`INSERT INTO job_dispatches`).
		WithArgs("JD-000001", "ExportReport", nil, nil, nil, "pending", sqlmock.AnyArg()).
		WillReturnError(refTaken())
	f.mock.ExpectQuery(`INSERT INTO job_dispatches`).
		WithArgs("JD-000002", "ExportReport", nil, nil, nil, "pending", sqlmock.AnyArg()).
		WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000002", status: model.JobDispatchStatusPending}))

	jd, err := f.repo.Create(context.Background(), &model.CreateJobDispatchRequest{Name: "ExportReport"})
	require.NoError(t, err)
	assert.Equal(t, "JD-000002", jd.Ref)
	assert.Equal(t, int32(2), f.counter.calls.Load())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestJobDispatchRepo_Create_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newDispatchRepoFixture(t)
	for range maxGeneratedRefAttempts {
		f.mock.ExpectQuery(`INSERT INTO job_dispatches`).WillReturnError(refTaken())
	}

	_, err := f.repo.Create(context.Background(), &model.CreateJobDispatchRequest{Name: "ExportReport"})
	require.True(t, apperrors.IsConflict(err))
	assert.Equal(t, int32(maxGeneratedRefAttempts), f.counter.calls.Load())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestJobDispatchRepo_Create_Failures(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		f := newDispatchRepoFixture(t)
		_, err := f.repo.Create(context.Background(), &model.CreateJobDispatchRequest{})
		require.True(t, apperrors.IsValidation(err))
		assert.Zero(t, f.counter.calls.Load())
	})

	t.Run("counter unavailable aborts before insert", func(t *testing.T) {
		f := newDispatchRepoFixture(t)
		down := errors.New("connection refused")
		f.counter.err = down

		_, err := f.repo.Create(context.Background(), &model.CreateJobDispatchRequest{Name: "ExportReport"})
		require.ErrorIs(t, err, down)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("duplicate ref is a conflict", func(t *testing.T) {
		f := newDispatchRepoFixture(t)
		f.mock.ExpectQuery(`INSERT INTO job_dispatches`).WillReturnError(&pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			TableName:      "job_dispatches",
			ConstraintName: "job_dispatches_ref_key",
		})

		_, err := f.repo.Create(context.Background(), &model.CreateJobDispatchRequest{Name: "ExportReport", Ref: "JD-000001"})
		require.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "ref", apperrors.GetField(err))
		assert.Contains(t, err.Error(), "JD-000001")
	})

	t.Run("unknown audit request is a foreign key error", func(t *testing.T) {
		f := newDispatchRepoFixture(t)
		f.mock.ExpectQuery(`INSERT INTO job_dispatches`).WillReturnError(&pgconn.PgError{
			Code:           pgerrcode.ForeignKeyViolation,
			TableName:      "job_dispatches",
			ConstraintName: "job_dispatches_dispatch_audit_request_id_fkey",
		})

		auditID := "550e8400-e29b-41d4-a716-446655440000"
		_, err := f.repo.Create(context.Background(), &model.CreateJobDispatchRequest{
			Name:                   "ExportReport",
			DispatchAuditRequestID: &auditID,
		})
		assert.Equal(t, apperrors.ErrCodeForeignKey, apperrors.GetCode(err))
	})
}

func TestJobDispatchRepo_Get(t *testing.T) {
	f := newDispatchRepoFixture(t)
	ctx := context.Background()
	ranAt := testNow.Add(-time.Minute)
	runningID := "550e8400-e29b-41d4-a716-446655440000"

	f.mock.ExpectQuery(`FROM job_dispatches WHERE id = \$1`).
		WithArgs(testDispatchID).
		WillReturnRows(dispatchRows(dispatchRow{
			ref: "JD-000003", status: model.JobDispatchStatusRunning, ranAt: ranAt, runningID: runningID, count: 2,
		}))

	jd, err := f.repo.GetByID(ctx, testDispatchID)
	require.NoError(t, err)
	assert.Equal(t, "JD-000003", jd.Ref)
	assert.Equal(t, 2, jd.Count)
	require.NotNil(t, jd.RanAt)
	assert.True(t, ranAt.Equal(*jd.RanAt))
	assert.True(t, jd.HasRunningAuditRequest())

	f.mock.ExpectQuery(`FROM job_dispatches WHERE ref = \$1`).
		WithArgs("JD-999999").
		WillReturnRows(sqlmock.NewRows(jobDispatchColumnNames))

	_, err = f.repo.GetByRef(ctx, "JD-999999")
	require.True(t, apperrors.IsNotFound(err))

	_, err = f.repo.GetByID(ctx, "not-a-uuid")
	require.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestJobDispatchRepo_List(t *testing.T) {
	f := newDispatchRepoFixture(t)
	failed := model.JobDispatchStatusFailed

	f.mock.ExpectQuery(regexp.QuoteMeta(
		`FROM "job_dispatches" WHERE "status" = $1 AND "name" = $2 AND "job_batch_id" = $3 ` +
			`ORDER BY "created_at" DESC, "id" DESC LIMIT $4 OFFSET $5`)).
		WithArgs("failed", "ExportReport", "batch-1", maxListLimit, 0).
		WillReturnRows(dispatchRows(
			dispatchRow{ref: "JD-000002", status: failed},
			dispatchRow{ref: "JD-000001", status: failed},
		))

	list, err := f.repo.List(context.Background(), model.JobDispatchListOptions{
		Status:     &failed,
		Name:       "ExportReport",
		JobBatchID: "batch-1",
		Limit:      5000,
		Offset:     -3,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "JD-000002", list[0].Ref)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestJobDispatchRepo_Stats(t *testing.T) {
	f := newDispatchRepoFixture(t)

	f.mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM job_dispatches GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 3).
			AddRow("failed", 1))

	stats, err := f.repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats[model.JobDispatchStatusPending])
	assert.Equal(t, 1, stats[model.JobDispatchStatusFailed])
	assert.Equal(t, 0, stats[model.JobDispatchStatusRunning])
	assert.Len(t, stats, len(model.AllJobDispatchStatuses))
}

func TestJobDispatchRepo_MarkRunning(t *testing.T) {
	runningID := "550e8400-e29b-41d4-a716-446655440000"

	t.Run("pending to running", func(t *testing.T) {
		f := newDispatchRepoFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FOR UPDATE`).WithArgs(testDispatchID).
			WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000001", status: model.JobDispatchStatusPending}))
		f.mock.ExpectQuery(`UPDATE job_dispatches`).
			WithArgs(testDispatchID, "running", testNow, runningID, nil).
			WillReturnRows(dispatchRows(dispatchRow{
				ref: "JD-000001", status: model.JobDispatchStatusRunning, ranAt: testNow, runningID: runningID, count: 1,
			}))
		f.mock.ExpectCommit()

		jd, err := f.repo.MarkRunning(context.Background(), testDispatchID,
			model.MarkRunningRequest{RunningAuditRequestID: &runningID})
		require.NoError(t, err)
		assert.Equal(t, model.JobDispatchStatusRunning, jd.Status)
		assert.Equal(t, 1, jd.Count)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("completed cannot run again", func(t *testing.T) {
		f := newDispatchRepoFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FOR UPDATE`).WithArgs(testDispatchID).
			WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000001", status: model.JobDispatchStatusCompleted}))
		f.mock.ExpectRollback()

		_, err := f.repo.MarkRunning(context.Background(), testDispatchID, model.MarkRunningRequest{})
		require.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "status", apperrors.GetField(err))
		assert.Contains(t, err.Error(), "JD-000001 cannot move from completed to running")
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("missing dispatch", func(t *testing.T) {
		f := newDispatchRepoFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`FOR UPDATE`).WithArgs(testDispatchID).
			WillReturnRows(sqlmock.NewRows(jobDispatchColumnNames))
		f.mock.ExpectRollback()

		_, err := f.repo.MarkRunning(context.Background(), testDispatchID, model.MarkRunningRequest{})
		require.True(t, apperrors.IsNotFound(err))
	})

	t.Run("invalid audit id", func(t *testing.T) {
		f := newDispatchRepoFixture(t)
		bad := "nope"
		_, err := f.repo.MarkRunning(context.Background(), testDispatchID,
			model.MarkRunningRequest{RunningAuditRequestID: &bad})
		require.True(t, apperrors.IsValidation(err))
	})
}

func TestJobDispatchRepo_Finish_RecordsRunTime(t *testing.T) {
	f := newDispatchRepoFixture(t)
	ranAt := testNow
	f.clock.AddTime(1500 * time.Millisecond)
	finishedAt := testNow.Add(1500 * time.Millisecond)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).WithArgs(testDispatchID).
		WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000001", status: model.JobDispatchStatusRunning, ranAt: ranAt}))
	f.mock.ExpectQuery(`UPDATE job_dispatches`).
		WithArgs(testDispatchID, "completed", finishedAt, int64(1500)).
		WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000001", status: model.JobDispatchStatusCompleted, ranAt: ranAt}))
	f.mock.ExpectCommit()

	jd, err := f.repo.Finish(context.Background(), testDispatchID, model.JobDispatchStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.JobDispatchStatusCompleted, jd.Status)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	_, err = f.repo.Finish(context.Background(), testDispatchID, model.JobDispatchStatusAborted)
	require.True(t, apperrors.IsValidation(err))
}

func TestJobDispatchRepo_TimeoutAndAbort(t *testing.T) {
	f := newDispatchRepoFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).WithArgs(testDispatchID).
		WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000001", status: model.JobDispatchStatusRunning}))
	f.mock.ExpectQuery(`UPDATE job_dispatches SET status = \$2, updated_at`).
		WithArgs(testDispatchID, "timeout", testNow).
		WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000001", status: model.JobDispatchStatusTimeout}))
	f.mock.ExpectCommit()

	jd, err := f.repo.MarkTimedOut(context.Background(), testDispatchID)
	require.NoError(t, err)
	assert.Equal(t, model.JobDispatchStatusTimeout, jd.Status)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).WithArgs(testDispatchID).
		WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000001", status: model.JobDispatchStatusTimeout}))
	f.mock.ExpectRollback()

	_, err = f.repo.Abort(context.Background(), testDispatchID)
	require.True(t, apperrors.IsConflict(err))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestJobDispatchRepo_AssignRef(t *testing.T) {
	f := newDispatchRepoFixture(t)
	ctx := context.Background()

	f.mock.ExpectQuery(`UPDATE job_dispatches`).
		WithArgs(testDispatchID, "JD-000001", testNow).
		WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000001", status: model.JobDispatchStatusPending}))

	jd, err := f.repo.AssignRef(ctx, testDispatchID, "")
	require.NoError(t, err)
	assert.Equal(t, "JD-000001", jd.Ref)

	f.mock.ExpectQuery(`UPDATE job_dispatches`).
		WithArgs(testDispatchID, "OPS-1", testNow).
		WillReturnRows(sqlmock.NewRows(jobDispatchColumnNames))

	_, err = f.repo.AssignRef(ctx, testDispatchID, "OPS-1")
	require.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, int32(1), f.counter.calls.Load())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestJobDispatchRepo_AssignRef_RedrawsGeneratedRefOnCollision(t *testing.T) {
	f := newDispatchRepoFixture(t)

	f.mock.ExpectQuery(`UPDATE job_dispatches`).
		WithArgs(testDispatchID, "JD-000001", testNow).
		WillReturnError(refTaken())
	f.mock.ExpectQuery(`UPDATE job_dispatches`).
		WithArgs(testDispatchID, "JD-000002", testNow).
		WillReturnRows(dispatchRows(dispatchRow{ref: "JD-000002", status: model.JobDispatchStatusPending}))

	jd, err := f.repo.AssignRef(context.Background(), testDispatchID, "")
	require.NoError(t, err)
	assert.Equal(t, "JD-000002", jd.Ref)

	f.mock.ExpectQuery(`UPDATE job_dispatches`).
		WithArgs(testDispatchID, "OPS-1", testNow).
		WillReturnError(refTaken())
	_, err = f.repo.AssignRef(context.Background(), testDispatchID, "OPS-1")
	require.True(t, apperrors.IsConflict(err))
	assert.Equal(t, int32(2), f.counter.calls.Load())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestJobDispatchRepo_AssignRef_TooLong(t *testing.T) {
	f := newDispatchRepoFixture(t)

	_, err := f.repo.AssignRef(context.Background(), testDispatchID, strings.Repeat("R", maxRefLength+1))
	require.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "ref", apperrors.GetField(err))
	assert.Contains(t, err.Error(), "at most 64 characters")
	assert.Zero(t, f.counter.calls.Load())
}
