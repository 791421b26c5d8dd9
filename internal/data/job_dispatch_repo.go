package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/target/jobdispatch/internal/core"
	"github.com/target/jobdispatch/internal/data/database"
	"github.com/target/jobdispatch/internal/domain/model"
	"github.com/target/jobdispatch/internal/domain/ref"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

// JobDispatchRepoConfig holds dependencies for the job dispatch repository.
type JobDispatchRepoConfig struct {
	Refs         ref.Assigner // Required for Create and AssignRef
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobDispatchRepo provides database operations for job dispatch records.
type JobDispatchRepo struct {
	DB           *sql.DB
	refs         ref.Assigner
	timeProvider TimeProvider
	logger       *slog.Logger
}

var _ core.JobDispatchRepository = (*JobDispatchRepo)(nil)

// NewJobDispatchRepo creates a new JobDispatchRepo.
func NewJobDispatchRepo(db *sql.DB, cfg JobDispatchRepoConfig) *JobDispatchRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = RealTimeProvider{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobDispatchRepo{
		DB:           db,
		refs:         cfg.Refs,
		timeProvider: tp,
		logger:       logger.With("component", "job_dispatch_repo"),
	}
}

var jobDispatchColumnNames = []string{
	"id",
	"ref",
	"name",
	"job_batch_id",
	"running_audit_request_id",
	"dispatch_audit_request_id",
	"status",
	"ran_at",
	"completed_at",
	"timeout_at",
	"run_time_ms",
	"count",
	"created_at",
	"updated_at",
}

var jobDispatchColumns = strings.Join(jobDispatchColumnNames, ", ")

type jobDispatchRowData struct {
	jobBatchID, runningAuditRequestID, dispatchAuditRequestID sql.NullString
	ranAt, completedAt, timeoutAt                             sql.NullTime
	runTimeMs                                                 sql.NullInt64
}

func (d *jobDispatchRowData) scanInto(scanner rowScanner, jd *model.JobDispatch) error {
	return scanner.Scan(
		&jd.ID,
		&jd.Ref,
		&jd.Name,
		&d.jobBatchID,
		&d.runningAuditRequestID,
		&d.dispatchAuditRequestID,
		&jd.Status,
		&d.ranAt,
		&d.completedAt,
		&d.timeoutAt,
		&d.runTimeMs,
		&jd.Count,
		&jd.CreatedAt,
		&jd.UpdatedAt,
	)
}

func (d *jobDispatchRowData) apply(jd *model.JobDispatch) {
	jd.JobBatchID = cloneNullableString(d.jobBatchID)
	jd.RunningAuditRequestID = cloneNullableString(d.runningAuditRequestID)
	jd.DispatchAuditRequestID = cloneNullableString(d.dispatchAuditRequestID)
	jd.RanAt = cloneNullableTime(d.ranAt)
	jd.CompletedAt = cloneNullableTime(d.completedAt)
	jd.TimeoutAt = cloneNullableTime(d.timeoutAt)
	jd.RunTimeMs = cloneNullableInt64(d.runTimeMs)
}

func scanJobDispatch(scanner rowScanner) (*model.JobDispatch, error) {
	jd := &model.JobDispatch{}
	var data jobDispatchRowData
	if err := data.scanInto(scanner, jd); err != nil {
		return nil, err
	}
	data.apply(jd)
	return jd, nil
}

func jobDispatchNotFound(key string) error {
	return apperrors.NotFoundf("job dispatch %s not found", key)
}

// mapJobDispatchError converts driver errors into AppErrors; AppErrors pass through untouched.
func mapJobDispatchError(err error, key, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return jobDispatchNotFound(key)
	}
	return fmt.Errorf("%s: %w", op, apperrors.MapDBError(err))
}

// refConflict reports unique violations on the ref column with a message naming the ref.
func refConflict(err error, refValue string) error {
	mapped := apperrors.MapDBError(err)
	if apperrors.IsConflict(mapped) && apperrors.GetField(mapped) == "ref" {
		conflict := apperrors.Conflictf("ref %q is already in use", refValue)
		conflict.Field = "ref"
		conflict.Cause = err
		return conflict
	}
	return nil
}

// maxRefLength matches the length check on create requests.
const maxRefLength = 64

// maxGeneratedRefAttempts bounds retries when a generated ref collides with an explicit one.
const maxGeneratedRefAttempts = 3

// Create inserts a new pending job dispatch. A ref is generated first when the request has none;
// an explicit ref is stored unchanged. A generated ref that is already taken by an explicit ref
// is discarded and a fresh one is drawn.
func (r *JobDispatchRepo) Create(
	ctx context.Context,
	req *model.CreateJobDispatchRequest,
) (*model.JobDispatch, error) {
	if req == nil {
		return nil, apperrors.Validation("request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	if r.refs == nil {
		return nil, errors.New("ref assigner is not configured")
	}

	for attempt := 1; ; attempt++ {
		generated, err := r.refs.EnsureRef(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("assign job dispatch ref: %w", err)
		}

		jd, err := r.insert(ctx, req)
		if err == nil {
			r.logger.DebugContext(ctx, "job dispatch created",
				"id", jd.ID,
				"ref", jd.Ref,
				"name", jd.Name,
				"ref_generated", generated,
			)
			return jd, nil
		}

		conflict := refConflict(err, req.Ref)
		if conflict == nil {
			return nil, fmt.Errorf("create job dispatch: %w", apperrors.MapDBError(err))
		}
		if !generated || attempt >= maxGeneratedRefAttempts {
			return nil, conflict
		}
		r.logger.WarnContext(ctx, "generated ref already in use, drawing another",
			"ref", req.Ref,
			"attempt", attempt,
		)
		req.Ref = ""
	}
}

func (r *JobDispatchRepo) insert(ctx context.Context, req *model.CreateJobDispatchRequest) (*model.JobDispatch, error) {
	now := r.timeProvider.Now()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO job_dispatches (
			ref, name, job_batch_id, dispatch_audit_request_id, timeout_at, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+jobDispatchColumns,
		req.Ref, req.Name, req.JobBatchID, req.DispatchAuditRequestID, req.TimeoutAt,
		string(model.JobDispatchStatusPending), now,
	)
	return scanJobDispatch(row)
}

// GetByID retrieves a job dispatch by id.
func (r *JobDispatchRepo) GetByID(ctx context.Context, id string) (*model.JobDispatch, error) {
	if uuid.Validate(id) != nil {
		return nil, jobDispatchNotFound(id)
	}
	jd, err := scanJobDispatch(r.DB.QueryRowContext(ctx,
		`SELECT `+jobDispatchColumns+` FROM job_dispatches WHERE id = $1`, id))
	if err != nil {
		return nil, mapJobDispatchError(err, id, "get job dispatch")
	}
	return jd, nil
}

// GetByRef retrieves a job dispatch by its ref.
func (r *JobDispatchRepo) GetByRef(ctx context.Context, refValue string) (*model.JobDispatch, error) {
	if strings.TrimSpace(refValue) == "" {
		return nil, jobDispatchNotFound(`""`)
	}
	jd, err := scanJobDispatch(r.DB.QueryRowContext(ctx,
		`SELECT `+jobDispatchColumns+` FROM job_dispatches WHERE ref = $1`, refValue))
	if err != nil {
		return nil, mapJobDispatchError(err, refValue, "get job dispatch by ref")
	}
	return jd, nil
}

// List returns job dispatches matching opts, newest first.
func (r *JobDispatchRepo) List(
	ctx context.Context,
	opts model.JobDispatchListOptions,
) ([]*model.JobDispatch, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	queryOpts := []database.ListQueryOption{
		database.WithColumns(jobDispatchColumnNames...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithOrderBy("id", "DESC"),
		database.WithLimit(limit),
		database.WithOffset(max(opts.Offset, 0)),
	}
	if opts.Status != nil {
		queryOpts = append(queryOpts,
			database.WithCondition(database.WhereCond("status", database.Equal, string(*opts.Status))))
	}
	if name := strings.TrimSpace(opts.Name); name != "" {
		queryOpts = append(queryOpts, database.WithCondition(database.WhereCond("name", database.Equal, name)))
	}
	if batch := strings.TrimSpace(opts.JobBatchID); batch != "" {
		queryOpts = append(queryOpts,
			database.WithCondition(database.WhereCond("job_batch_id", database.Equal, batch)))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions("job_dispatches", queryOpts...))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list job dispatches: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	result := []*model.JobDispatch{}
	for rows.Next() {
		jd, scanErr := scanJobDispatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan job dispatch: %w", scanErr)
		}
		result = append(result, jd)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job dispatches: %w", apperrors.MapDBError(err))
	}
	return result, nil
}

// Stats returns the number of dispatches per status. Every known status is present.
func (r *JobDispatchRepo) Stats(ctx context.Context) (model.JobDispatchStats, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM job_dispatches GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job dispatch stats: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	stats := make(model.JobDispatchStats, len(model.AllJobDispatchStatuses))
	for _, s := range model.AllJobDispatchStatuses {
		stats[s] = 0
	}
	for rows.Next() {
		var (
			status model.JobDispatchStatus
			count  int
		)
		if err = rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan job dispatch stats: %w", err)
		}
		stats[status] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job dispatch stats: %w", apperrors.MapDBError(err))
	}
	return stats, nil
}

// refRequest lets AssignRef reuse EnsureRef for a dispatch that is already stored.
type refRequest struct{ ref string }

func (r *refRequest) RefPrefixKey() string { return model.JobDispatchRefEntity }
func (r *refRequest) CurrentRef() string   { return r.ref }
func (r *refRequest) SetRef(v string)      { r.ref = v }

// AssignRef replaces the ref of an existing dispatch. An empty ref generates a new one.
func (r *JobDispatchRepo) AssignRef(ctx context.Context, id, refValue string) (*model.JobDispatch, error) {
	if uuid.Validate(id) != nil {
		return nil, jobDispatchNotFound(id)
	}
	if len(refValue) > maxRefLength {
		invalid := apperrors.Validationf("ref must be at most %d characters", maxRefLength)
		invalid.Field = "ref"
		return nil, invalid
	}
	if r.refs == nil {
		return nil, errors.New("ref assigner is not configured")
	}

	holder := &refRequest{ref: strings.TrimSpace(refValue)}
	var jd *model.JobDispatch
	for attempt := 1; ; attempt++ {
		generated, err := r.refs.EnsureRef(ctx, holder)
		if err != nil {
			return nil, fmt.Errorf("assign job dispatch ref: %w", err)
		}

		jd, err = scanJobDispatch(r.DB.QueryRowContext(ctx, `
			UPDATE job_dispatches
			SET ref = $2, updated_at = $3
			WHERE id = $1
			RETURNING `+jobDispatchColumns,
			id, holder.ref, r.timeProvider.Now(),
		))
		if err == nil {
			break
		}
		conflict := refConflict(err, holder.ref)
		if conflict == nil {
			return nil, mapJobDispatchError(err, id, "assign job dispatch ref")
		}
		if !generated || attempt >= maxGeneratedRefAttempts {
			return nil, conflict
		}
		holder.ref = ""
	}

	r.logger.InfoContext(ctx, "job dispatch ref reassigned", "id", jd.ID, "ref", jd.Ref)
	return jd, nil
}
