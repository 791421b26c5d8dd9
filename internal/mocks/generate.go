// Package mocks provides gomock implementations of the core ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockJobDispatchRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), "id").Return(dispatch, nil)
package mocks

// Create, GetByID, GetByRef, List, AssignRef, MarkRunning, Finish, MarkTimedOut, Abort, Stats
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_dispatch_repository_mock.go github.com/target/jobdispatch/internal/core JobDispatchRepository

// GetSummary, ListSummaries, GetLogs, ListErrorLogEntries, ListAPILogs
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_request_reader_mock.go github.com/target/jobdispatch/internal/core AuditRequestReader

// Next, Current
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ref_sequence_repository_mock.go github.com/target/jobdispatch/internal/core RefSequenceRepository

// SyncAtLeast
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ref_counter_syncer_mock.go github.com/target/jobdispatch/internal/core RefCounterSyncer
