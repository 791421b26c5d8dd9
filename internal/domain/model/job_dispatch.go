// Package model defines the core data types used throughout the job dispatch service.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobDispatchStatus represents the lifecycle state of a job dispatch.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobDispatchStatus string

const (
	// JobDispatchStatusPending indicates the job was queued but has not started.
	JobDispatchStatusPending JobDispatchStatus = "pending"
	// JobDispatchStatusRunning indicates an attempt is in progress.
	JobDispatchStatusRunning JobDispatchStatus = "running"
	// JobDispatchStatusCompleted indicates the last attempt finished successfully.
	JobDispatchStatusCompleted JobDispatchStatus = "completed"
	// JobDispatchStatusFailed indicates the last attempt raised an error.
	JobDispatchStatusFailed JobDispatchStatus = "failed"
	// JobDispatchStatusTimeout indicates the scheduler observed the attempt pass timeout_at.
	JobDispatchStatusTimeout JobDispatchStatus = "timeout"
	// JobDispatchStatusAborted indicates the dispatch was cancelled before completing.
	JobDispatchStatusAborted JobDispatchStatus = "aborted"
)

// AllJobDispatchStatuses lists every known status in display order.
var AllJobDispatchStatuses = []JobDispatchStatus{
	JobDispatchStatusPending,
	JobDispatchStatusRunning,
	JobDispatchStatusCompleted,
	JobDispatchStatusFailed,
	JobDispatchStatusTimeout,
	JobDispatchStatusAborted,
}

// Valid returns true if the status is one of the known lifecycle states.
func (s JobDispatchStatus) Valid() bool {
	for _, known := range AllJobDispatchStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further attempts are expected from this state.
func (s JobDispatchStatus) Terminal() bool {
	return s == JobDispatchStatusCompleted || s == JobDispatchStatusAborted
}

// jobDispatchTransitions lists the statuses reachable from each state.
var jobDispatchTransitions = map[JobDispatchStatus][]JobDispatchStatus{
	JobDispatchStatusPending: {JobDispatchStatusRunning, JobDispatchStatusAborted},
	JobDispatchStatusRunning: {
		JobDispatchStatusCompleted,
		JobDispatchStatusFailed,
		JobDispatchStatusTimeout,
		JobDispatchStatusAborted,
	},
	JobDispatchStatusFailed:  {JobDispatchStatusRunning},
	JobDispatchStatusTimeout: {JobDispatchStatusRunning},
}

// CanTransitionTo reports whether a dispatch in state s may move to next.
func (s JobDispatchStatus) CanTransitionTo(next JobDispatchStatus) bool {
	for _, allowed := range jobDispatchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler so statuses can be parsed from query strings and env.
func (s *JobDispatchStatus) UnmarshalText(text []byte) error {
	v := JobDispatchStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid job dispatch status: %q", v)
	}
	*s = v
	return nil
}

// JobDispatch is one tracked execution attempt of a named background job.
//
// RunningAuditRequestID and DispatchAuditRequestID are non-owning references to audit
// requests; either may be nil, and a non-nil id may point at a row that no longer exists.
type JobDispatch struct {
	ID                     string            `json:"id"                                  db:"id"`
	Ref                    string            `json:"ref"                                 db:"ref"`
	Name                   string            `json:"name"                                db:"name"`
	JobBatchID             *string           `json:"job_batch_id"                        db:"job_batch_id"`
	RunningAuditRequestID  *string           `json:"running_audit_request_id"            db:"running_audit_request_id"`
	DispatchAuditRequestID *string           `json:"dispatch_audit_request_id"           db:"dispatch_audit_request_id"`
	Status                 JobDispatchStatus `json:"status"                              db:"status"`
	RanAt                  *time.Time        `json:"ran_at"                              db:"ran_at"`
	CompletedAt            *time.Time        `json:"completed_at"                        db:"completed_at"`
	TimeoutAt              *time.Time        `json:"timeout_at"                          db:"timeout_at"`
	RunTimeMs              *int64            `json:"run_time_ms"                         db:"run_time_ms"`
	Count                  int               `json:"count"                               db:"count"`
	CreatedAt              time.Time         `json:"created_at"                          db:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"                          db:"updated_at"`
}

// HasRunningAuditRequest reports whether a running audit request is linked.
func (j *JobDispatch) HasRunningAuditRequest() bool {
	return j != nil && j.RunningAuditRequestID != nil && *j.RunningAuditRequestID != ""
}

// CreateJobDispatchRequest represents a request to record a new job dispatch.
type CreateJobDispatchRequest struct {
	Name                   string     `json:"name"`
	Ref                    string     `json:"ref,omitempty"`
	JobBatchID             *string    `json:"job_batch_id,omitempty"`
	DispatchAuditRequestID *string    `json:"dispatch_audit_request_id,omitempty"`
	TimeoutAt              *time.Time `json:"timeout_at,omitempty"`
}

// RefPrefixKey implements ref.Referenceable.
func (r *CreateJobDispatchRequest) RefPrefixKey() string { return JobDispatchRefEntity }

// CurrentRef implements ref.Referenceable.
func (r *CreateJobDispatchRequest) CurrentRef() string { return r.Ref }

// SetRef implements ref.Referenceable.
func (r *CreateJobDispatchRequest) SetRef(v string) { r.Ref = v }

// JobDispatchRefEntity is the entity key used to look up the job dispatch ref prefix.
const JobDispatchRefEntity = "job_dispatch"

const (
	maxJobNameLength = 255
	maxRefLength     = 64
)

// Validate validates the CreateJobDispatchRequest fields.
func (r *CreateJobDispatchRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return errors.New("name is required")
	}
	if len(r.Name) > maxJobNameLength {
		return fmt.Errorf("name must be at most %d characters", maxJobNameLength)
	}
	if len(r.Ref) > maxRefLength {
		return fmt.Errorf("ref must be at most %d characters", maxRefLength)
	}
	if r.DispatchAuditRequestID != nil {
		if _, err := uuid.Parse(*r.DispatchAuditRequestID); err != nil {
			return errors.New("dispatch audit request id must be a valid UUID")
		}
	}
	return nil
}

// MarkRunningRequest carries the run-time context recorded when an attempt starts.
type MarkRunningRequest struct {
	RunningAuditRequestID *string    `json:"running_audit_request_id,omitempty"`
	TimeoutAt             *time.Time `json:"timeout_at,omitempty"`
}

// Validate validates the MarkRunningRequest fields.
func (r *MarkRunningRequest) Validate() error {
	if r.RunningAuditRequestID != nil {
		if _, err := uuid.Parse(*r.RunningAuditRequestID); err != nil {
			return errors.New("running audit request id must be a valid UUID")
		}
	}
	return nil
}

// JobDispatchListOptions filters List queries.
type JobDispatchListOptions struct {
	Status     *JobDispatchStatus
	Name       string
	JobBatchID string
	Limit      int
	Offset     int
}

// JobDispatchStats holds counts of dispatches per status.
type JobDispatchStats map[JobDispatchStatus]int
