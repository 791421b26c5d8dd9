// Package core defines the ports between the service layer and the data layer.
package core

import (
	"context"

	"github.com/target/jobdispatch/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Service implementations depend on these interfaces, not on concrete repositories.

// JobDispatchRepository defines persistence operations for job dispatch records.
type JobDispatchRepository interface {
	Create(ctx context.Context, req *model.CreateJobDispatchRequest) (*model.JobDispatch, error)
	GetByID(ctx context.Context, id string) (*model.JobDispatch, error)
	GetByRef(ctx context.Context, ref string) (*model.JobDispatch, error)
	List(ctx context.Context, opts model.JobDispatchListOptions) ([]*model.JobDispatch, error)
	AssignRef(ctx context.Context, id, ref string) (*model.JobDispatch, error)
	MarkRunning(ctx context.Context, id string, req model.MarkRunningRequest) (*model.JobDispatch, error)
	Finish(ctx context.Context, id string, status model.JobDispatchStatus) (*model.JobDispatch, error)
	MarkTimedOut(ctx context.Context, id string) (*model.JobDispatch, error)
	Abort(ctx context.Context, id string) (*model.JobDispatch, error)
	Stats(ctx context.Context) (model.JobDispatchStats, error)
}

// AuditRequestReader is the read side of the audit subsystem consumed by job dispatch views.
// GetSummary and GetLogs return a NotFound error when the audit request does not exist.
type AuditRequestReader interface {
	GetSummary(ctx context.Context, id string) (*model.AuditRequestSummary, error)
	ListSummaries(ctx context.Context, ids []string) (map[string]*model.AuditRequestSummary, error)
	GetLogs(ctx context.Context, id string) (string, error)
	ListErrorLogEntries(ctx context.Context, auditRequestID string) ([]*model.ErrorLogEntry, error)
	ListAPILogs(ctx context.Context, auditRequestID string) ([]*model.APILog, error)
}

// RefSequenceRepository exposes the persisted ref counters for administration.
type RefSequenceRepository interface {
	Next(ctx context.Context, prefix string) (int64, error)
	Current(ctx context.Context, prefix string) (int64, error)
}

// RefCounterSyncer raises a secondary counter so it never re-issues values from the primary.
type RefCounterSyncer interface {
	SyncAtLeast(ctx context.Context, prefix string, floor int64) (int64, error)
}
