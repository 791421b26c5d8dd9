package data

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/target/jobdispatch/internal/data/pgxutil"
	"github.com/target/jobdispatch/internal/domain/model"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

// transitionUpdate renders the UPDATE for a transition. $1 is always the dispatch id.
type transitionUpdate func(current *model.JobDispatch, now time.Time) (string, []any)

// transition locks the dispatch row, checks that its status may move to next and applies update.
func (r *JobDispatchRepo) transition(
	ctx context.Context,
	id string,
	next model.JobDispatchStatus,
	update transitionUpdate,
) (*model.JobDispatch, error) {
	if uuid.Validate(id) != nil {
		return nil, jobDispatchNotFound(id)
	}

	var out *model.JobDispatch
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		current, err := scanJobDispatch(tx.QueryRowContext(ctx,
			`SELECT `+jobDispatchColumns+` FROM job_dispatches WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(next) {
			conflict := apperrors.Conflictf("job dispatch %s cannot move from %s to %s", current.Ref, current.Status, next)
			conflict.Field = "status"
			return conflict
		}

		query, args := update(current, r.timeProvider.Now())
		out, err = scanJobDispatch(tx.QueryRowContext(ctx, query+` RETURNING `+jobDispatchColumns, args...))
		return err
	}})
	if err != nil {
		return nil, mapJobDispatchError(err, id, "update job dispatch status")
	}

	r.logger.DebugContext(ctx, "job dispatch status changed",
		"id", out.ID,
		"ref", out.Ref,
		"status", out.Status,
		"count", out.Count,
	)
	return out, nil
}

// MarkRunning starts a new attempt: status becomes running, ran_at is set and count is
// incremented. Allowed from pending, failed and timeout.
func (r *JobDispatchRepo) MarkRunning(
	ctx context.Context,
	id string,
	req model.MarkRunningRequest,
) (*model.JobDispatch, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	return r.transition(ctx, id, model.JobDispatchStatusRunning,
		func(_ *model.JobDispatch, now time.Time) (string, []any) {
			return `
				UPDATE job_dispatches
				SET status = $2,
				    ran_at = $3,
				    count = count + 1,
				    running_audit_request_id = $4,
				    timeout_at = COALESCE($5, timeout_at),
				    completed_at = NULL,
				    run_time_ms = NULL,
				    updated_at = $3
				WHERE id = $1`,
				[]any{id, string(model.JobDispatchStatusRunning), now, req.RunningAuditRequestID, req.TimeoutAt}
		})
}

// Finish ends the running attempt as completed or failed and records its run time.
func (r *JobDispatchRepo) Finish(
	ctx context.Context,
	id string,
	status model.JobDispatchStatus,
) (*model.JobDispatch, error) {
	if status != model.JobDispatchStatusCompleted && status != model.JobDispatchStatusFailed {
		return nil, apperrors.ValidationField("status", "finish status must be completed or failed")
	}
	return r.transition(ctx, id, status, func(current *model.JobDispatch, now time.Time) (string, []any) {
		var runTimeMs *int64
		if current.RanAt != nil {
			ms := max(now.Sub(*current.RanAt).Milliseconds(), 0)
			runTimeMs = &ms
		}
		return `
			UPDATE job_dispatches
			SET status = $2, completed_at = $3, run_time_ms = $4, updated_at = $3
			WHERE id = $1`,
			[]any{id, string(status), now, runTimeMs}
	})
}

// MarkTimedOut records that the running attempt passed its deadline.
func (r *JobDispatchRepo) MarkTimedOut(ctx context.Context, id string) (*model.JobDispatch, error) {
	return r.transition(ctx, id, model.JobDispatchStatusTimeout,
		func(_ *model.JobDispatch, now time.Time) (string, []any) {
			return `UPDATE job_dispatches SET status = $2, updated_at = $3 WHERE id = $1`,
				[]any{id, string(model.JobDispatchStatusTimeout), now}
		})
}

// Abort cancels a pending or running dispatch.
func (r *JobDispatchRepo) Abort(ctx context.Context, id string) (*model.JobDispatch, error) {
	return r.transition(ctx, id, model.JobDispatchStatusAborted,
		func(_ *model.JobDispatch, now time.Time) (string, []any) {
			return `UPDATE job_dispatches SET status = $2, completed_at = $3, updated_at = $3 WHERE id = $1`,
				[]any{id, string(model.JobDispatchStatusAborted), now}
		})
}
