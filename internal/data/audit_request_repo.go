package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/target/jobdispatch/internal/core"
	"github.com/target/jobdispatch/internal/domain/model"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

// AuditRequestRepo reads audit request data owned by the audit subsystem.
type AuditRequestRepo struct {
	DB *sql.DB
}

var _ core.AuditRequestReader = (*AuditRequestRepo)(nil)

// NewAuditRequestRepo creates an AuditRequestRepo.
func NewAuditRequestRepo(db *sql.DB) *AuditRequestRepo {
	return &AuditRequestRepo{DB: db}
}

const auditSummaryColumns = `id, url, api_log_count, error_log_count, log_line_count, created_at`

func auditRequestNotFound(id string) error {
	return apperrors.NotFoundf("audit request %s not found", id)
}

// GetSummary returns the stored counters for an audit request.
func (r *AuditRequestRepo) GetSummary(ctx context.Context, id string) (*model.AuditRequestSummary, error) {
	if uuid.Validate(id) != nil {
		return nil, auditRequestNotFound(id)
	}

	var s model.AuditRequestSummary
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+auditSummaryColumns+` FROM audit_requests WHERE id = $1`, id,
	).Scan(&s.ID, &s.URL, &s.APILogCount, &s.ErrorLogCount, &s.LogLineCount, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auditRequestNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get audit request summary: %w", apperrors.MapDBError(err))
	}
	return &s, nil
}

// ListSummaries returns summaries keyed by id. Ids that do not exist are absent from the map.
func (r *AuditRequestRepo) ListSummaries(
	ctx context.Context,
	ids []string,
) (map[string]*model.AuditRequestSummary, error) {
	out := make(map[string]*model.AuditRequestSummary, len(ids))

	seen := make(map[string]struct{}, len(ids))
	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || uuid.Validate(id) != nil {
			continue
		}
		seen[id] = struct{}{}
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	if len(args) == 0 {
		return out, nil
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+auditSummaryColumns+` FROM audit_requests WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit request summaries: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var s model.AuditRequestSummary
		if err = rows.Scan(&s.ID, &s.URL, &s.APILogCount, &s.ErrorLogCount, &s.LogLineCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit request summary: %w", err)
		}
		out[s.ID] = &s
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit request summaries: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// GetLogs returns the raw log text of an audit request.
func (r *AuditRequestRepo) GetLogs(ctx context.Context, id string) (string, error) {
	if uuid.Validate(id) != nil {
		return "", auditRequestNotFound(id)
	}

	var logs sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT logs FROM audit_requests WHERE id = $1`, id).Scan(&logs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", auditRequestNotFound(id)
	}
	if err != nil {
		return "", fmt.Errorf("get audit request logs: %w", apperrors.MapDBError(err))
	}
	return logs.String, nil
}

// ListErrorLogEntries returns the error-log entries of an audit request, oldest first.
func (r *AuditRequestRepo) ListErrorLogEntries(
	ctx context.Context,
	auditRequestID string,
) ([]*model.ErrorLogEntry, error) {
	if uuid.Validate(auditRequestID) != nil {
		return []*model.ErrorLogEntry{}, nil
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, audit_request_id, error_class, code, level, message, file, line, stack_trace, created_at
		FROM audit_error_log_entries
		WHERE audit_request_id = $1
		ORDER BY created_at ASC, id ASC`, auditRequestID)
	if err != nil {
		return nil, fmt.Errorf("list error log entries: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	entries := []*model.ErrorLogEntry{}
	for rows.Next() {
		var (
			e          model.ErrorLogEntry
			stackTrace []byte
		)
		if err = rows.Scan(&e.ID, &e.AuditRequestID, &e.ErrorClass, &e.Code, &e.Level, &e.Message,
			&e.File, &e.Line, &stackTrace, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error log entry: %w", err)
		}
		e.StackTrace = cloneRawJSON(stackTrace)
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate error log entries: %w", apperrors.MapDBError(err))
	}
	return entries, nil
}

// ListAPILogs returns the API-call log entries of an audit request, oldest first.
func (r *AuditRequestRepo) ListAPILogs(ctx context.Context, auditRequestID string) ([]*model.APILog, error) {
	if uuid.Validate(auditRequestID) != nil {
		return []*model.APILog{}, nil
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, audit_request_id, service_name, method, url, status_code,
		       request, response, run_time_ms, started_at, created_at
		FROM audit_api_logs
		WHERE audit_request_id = $1
		ORDER BY created_at ASC, id ASC`, auditRequestID)
	if err != nil {
		return nil, fmt.Errorf("list api logs: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	logs := []*model.APILog{}
	for rows.Next() {
		var (
			l                 model.APILog
			request, response []byte
			runTime           sql.NullInt64
			startedAt         sql.NullTime
		)
		if err = rows.Scan(&l.ID, &l.AuditRequestID, &l.ServiceName, &l.Method, &l.URL, &l.StatusCode,
			&request, &response, &runTime, &startedAt, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api log: %w", err)
		}
		l.Request = cloneRawJSON(request)
		l.Response = cloneRawJSON(response)
		l.RunTimeMs = cloneNullableInt64(runTime)
		l.StartedAt = cloneNullableTime(startedAt)
		logs = append(logs, &l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api logs: %w", apperrors.MapDBError(err))
	}
	return logs, nil
}
