package data

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/jobdispatch/internal/errors"
)

const (
	auditID      = "550e8400-e29b-41d4-a716-446655440000"
	otherAuditID = "9b2e7c1a-3f4d-4e5b-8a6c-7d8e9f0a1b2c"
)

func newAuditRepoMock(t *testing.T) (*AuditRequestRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuditRequestRepo(db), mock
}

var summaryCols = []string{"id", "url", "api_log_count", "error_log_count", "log_line_count", "created_at"}

func TestAuditRequestRepo_GetSummary(t *testing.T) {
	repo, mock := newAuditRepoMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`FROM audit_requests WHERE id = \$1`).WithArgs(auditID).
		WillReturnRows(sqlmock.NewRows(summaryCols).AddRow(auditID, "/jobs/export", 2, 3, 120, testNow))

	s, err := repo.GetSummary(ctx, auditID)
	require.NoError(t, err)
	assert.Equal(t, 2, s.APILogCount)
	assert.Equal(t, 3, s.ErrorLogCount)
	assert.Equal(t, 120, s.LogLineCount)

	mock.ExpectQuery(`FROM audit_requests WHERE id = \$1`).WithArgs(otherAuditID).
		WillReturnRows(sqlmock.NewRows(summaryCols))

	_, err = repo.GetSummary(ctx, otherAuditID)
	require.True(t, apperrors.IsNotFound(err))

	_, err = repo.GetSummary(ctx, "garbage")
	require.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRequestRepo_ListSummaries(t *testing.T) {
	repo, mock := newAuditRepoMock(t)

	mock.ExpectQuery(`WHERE id IN \(\$1, \$2\)`).WithArgs(auditID, otherAuditID).
		WillReturnRows(sqlmock.NewRows(summaryCols).AddRow(auditID, "/a", 1, 0, 4, testNow))

	out, err := repo.ListSummaries(context.Background(), []string{auditID, "bad", auditID, otherAuditID})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[auditID].LogLineCount)

	empty, err := repo.ListSummaries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRequestRepo_GetLogs(t *testing.T) {
	repo, mock := newAuditRepoMock(t)

	mock.ExpectQuery(`SELECT logs FROM audit_requests`).WithArgs(auditID).
		WillReturnRows(sqlmock.NewRows([]string{"logs"}).AddRow("line 1\nline 2"))

	logs, err := repo.GetLogs(context.Background(), auditID)
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2", logs)

	mock.ExpectQuery(`SELECT logs FROM audit_requests`).WithArgs(otherAuditID).
		WillReturnRows(sqlmock.NewRows([]string{"logs"}))

	_, err = repo.GetLogs(context.Background(), otherAuditID)
	require.True(t, apperrors.IsNotFound(err))
}

func TestAuditRequestRepo_ListErrorLogEntries(t *testing.T) {
	repo, mock := newAuditRepoMock(t)

	mock.ExpectQuery(`FROM audit_error_log_entries`).WithArgs(auditID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "audit_request_id", "error_class", "code", "level", "message", "file", "line", "stack_trace", "created_at",
		}).
			AddRow("e1", auditID, "RuntimeError", "E1", "error", "boom", "export.go", 10, []byte(`["export.go:10"]`), testNow).
			AddRow("e2", auditID, "Timeout", "", "critical", "slow", "", 0, nil, testNow))

	entries, err := repo.ListErrorLogEntries(context.Background(), auditID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "boom", entries[0].Message)
	assert.JSONEq(t, `["export.go:10"]`, string(entries[0].StackTrace))
	assert.Nil(t, entries[1].StackTrace)

	none, err := repo.ListErrorLogEntries(context.Background(), "bad")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAuditRequestRepo_ListAPILogs(t *testing.T) {
	repo, mock := newAuditRepoMock(t)
	started := testNow.Add(-time.Second)

	mock.ExpectQuery(`FROM audit_api_logs`).WithArgs(auditID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "audit_request_id", "service_name", "method", "url", "status_code",
			"request", "response", "run_time_ms", "started_at", "created_at",
		}).
			AddRow("a1", auditID, "billing", "POST", "/charge", 502, []byte(`{"amount":5}`), nil, int64(850), started, testNow))

	logs, err := repo.ListAPILogs(context.Background(), auditID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 502, logs[0].StatusCode)
	assert.Equal(t, json.RawMessage(`{"amount":5}`), logs[0].Request)
	assert.Nil(t, logs[0].Response)
	require.NotNil(t, logs[0].RunTimeMs)
	assert.Equal(t, int64(850), *logs[0].RunTimeMs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
