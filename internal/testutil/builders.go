package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/target/jobdispatch/internal/domain/model"
)

// JobDispatchRequestBuilder builds CreateJobDispatchRequest values for tests.
type JobDispatchRequestBuilder struct {
	req *model.CreateJobDispatchRequest
}

// NewJobDispatchRequest creates a builder with sensible defaults.
func NewJobDispatchRequest() *JobDispatchRequestBuilder {
	return &JobDispatchRequestBuilder{
		req: &model.CreateJobDispatchRequest{Name: "ExportReport"},
	}
}

// WithName sets the job name.
func (b *JobDispatchRequestBuilder) WithName(name string) *JobDispatchRequestBuilder {
	b.req.Name = name
	return b
}

// WithRef sets an explicit ref.
func (b *JobDispatchRequestBuilder) WithRef(ref string) *JobDispatchRequestBuilder {
	b.req.Ref = ref
	return b
}

// WithBatch sets the job batch id.
func (b *JobDispatchRequestBuilder) WithBatch(batchID string) *JobDispatchRequestBuilder {
	b.req.JobBatchID = &batchID
	return b
}

// WithDispatchAuditRequest links the queue-time audit request.
func (b *JobDispatchRequestBuilder) WithDispatchAuditRequest(id string) *JobDispatchRequestBuilder {
	b.req.DispatchAuditRequestID = &id
	return b
}

// WithTimeoutAt sets the timeout deadline.
func (b *JobDispatchRequestBuilder) WithTimeoutAt(at time.Time) *JobDispatchRequestBuilder {
	b.req.TimeoutAt = &at
	return b
}

// Build returns the request.
func (b *JobDispatchRequestBuilder) Build() *model.CreateJobDispatchRequest {
	return b.req
}

// AuditRequestSeed describes an audit request row inserted by SeedAuditRequest.
type AuditRequestSeed struct {
	URL           string
	Logs          string
	LogLineCount  int
	ErrorMessages []string
	APICalls      []string
}

// SeedAuditRequest inserts an audit request together with its error and API log entries and
// returns its id. The stored counts mirror the inserted entries.
func SeedAuditRequest(t TestingTB, db *sql.DB, seed AuditRequestSeed) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if seed.URL == "" {
		seed.URL = "/jobs/export"
	}

	var id string
	err := db.QueryRowContext(ctx, `
		INSERT INTO audit_requests (url, logs, log_line_count, error_log_count, api_log_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		seed.URL, seed.Logs, seed.LogLineCount, len(seed.ErrorMessages), len(seed.APICalls),
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed audit request: %v", err)
	}

	for _, msg := range seed.ErrorMessages {
		if _, err = db.ExecContext(ctx, `
			INSERT INTO audit_error_log_entries (audit_request_id, error_class, level, message)
			VALUES ($1, 'RuntimeError', 'error', $2)`, id, msg); err != nil {
			t.Fatalf("Failed to seed error log entry: %v", err)
		}
	}
	for _, call := range seed.APICalls {
		if _, err = db.ExecContext(ctx, `
			INSERT INTO audit_api_logs (audit_request_id, service_name, method, url, status_code)
			VALUES ($1, 'upstream', 'GET', $2, 200)`, id, call); err != nil {
			t.Fatalf("Failed to seed api log: %v", err)
		}
	}
	return id
}
