package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/jobdispatch/internal/core"
	"github.com/target/jobdispatch/internal/domain/model"
	"github.com/target/jobdispatch/internal/domain/projection"
	apperrors "github.com/target/jobdispatch/internal/errors"
	"github.com/target/jobdispatch/internal/observability/metrics"
)

// JobDispatchServiceOptions groups dependencies for JobDispatchService.
type JobDispatchServiceOptions struct {
	Repo    core.JobDispatchRepository // Required: job dispatch repository
	Audits  core.AuditRequestReader    // Required: read side of the audit subsystem
	Metrics *metrics.Metrics           // Optional: Prometheus instruments
	Logger  *slog.Logger               // Optional: structured logger
}

// JobDispatchService records job dispatch lifecycles and builds their correlation views.
type JobDispatchService struct {
	repo     core.JobDispatchRepository
	audits   core.AuditRequestReader
	resolver *projection.Resolver
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewJobDispatchService constructs a new JobDispatchService.
func NewJobDispatchService(opts JobDispatchServiceOptions) (*JobDispatchService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobDispatchRepository is required")
	}
	if opts.Audits == nil {
		return nil, errors.New("AuditRequestReader is required")
	}

	resolverOpts := projection.ResolverOptions{
		Loader:   opts.Audits,
		NotFound: apperrors.IsNotFound,
	}
	if opts.Metrics != nil {
		resolverOpts.Observer = opts.Metrics
	}
	resolver, err := projection.NewResolver(resolverOpts)
	if err != nil {
		return nil, fmt.Errorf("create view resolver: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &JobDispatchService{
		repo:     opts.Repo,
		audits:   opts.Audits,
		resolver: resolver,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "job_dispatch_service"),
	}, nil
}

// MustNewJobDispatchService constructs a new JobDispatchService and panics on error.
func MustNewJobDispatchService(opts JobDispatchServiceOptions) *JobDispatchService {
	svc, err := NewJobDispatchService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobDispatchService: %v", err))
	}
	return svc
}

// Create records a new pending dispatch. A ref is generated when the request carries none.
func (s *JobDispatchService) Create(ctx context.Context, req *model.CreateJobDispatchRequest) (*model.JobDispatch, error) {
	d, err := s.repo.Create(ctx, req)
	if err != nil {
		s.metrics.ObserveTransition(metrics.TransitionMetric{Transition: "create", Err: err})
		return nil, fmt.Errorf("create job dispatch: %w", err)
	}
	s.metrics.ObserveTransition(metrics.TransitionMetric{Name: d.Name, Transition: "create"})
	s.logger.InfoContext(ctx, "job dispatch created", "id", d.ID, "ref", d.Ref, "name", d.Name)
	return d, nil
}

// GetByID retrieves a dispatch by id.
func (s *JobDispatchService) GetByID(ctx context.Context, id string) (*model.JobDispatch, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByRef retrieves a dispatch by ref.
func (s *JobDispatchService) GetByRef(ctx context.Context, ref string) (*model.JobDispatch, error) {
	return s.repo.GetByRef(ctx, ref)
}

// List returns a page of dispatches.
func (s *JobDispatchService) List(ctx context.Context, opts model.JobDispatchListOptions) ([]*model.JobDispatch, error) {
	return s.repo.List(ctx, opts)
}

// Stats returns dispatch counts per status.
func (s *JobDispatchService) Stats(ctx context.Context) (model.JobDispatchStats, error) {
	return s.repo.Stats(ctx)
}

// AssignRef sets the ref of an existing dispatch; an empty ref assigns a newly generated one.
func (s *JobDispatchService) AssignRef(ctx context.Context, id, ref string) (*model.JobDispatch, error) {
	d, err := s.repo.AssignRef(ctx, id, ref)
	if err != nil {
		return nil, fmt.Errorf("assign ref: %w", err)
	}
	s.logger.InfoContext(ctx, "job dispatch ref assigned", "id", d.ID, "ref", d.Ref)
	return d, nil
}

// Start marks a dispatch as running, linking the audit request of the new attempt.
func (s *JobDispatchService) Start(ctx context.Context, id string, req model.MarkRunningRequest) (*model.JobDispatch, error) {
	return s.observe(ctx, "run", func() (*model.JobDispatch, error) {
		return s.repo.MarkRunning(ctx, id, req)
	})
}

// Complete finishes the running attempt successfully.
func (s *JobDispatchService) Complete(ctx context.Context, id string) (*model.JobDispatch, error) {
	return s.observe(ctx, string(model.JobDispatchStatusCompleted), func() (*model.JobDispatch, error) {
		return s.repo.Finish(ctx, id, model.JobDispatchStatusCompleted)
	})
}

// Fail finishes the running attempt with an error.
func (s *JobDispatchService) Fail(ctx context.Context, id string) (*model.JobDispatch, error) {
	return s.observe(ctx, string(model.JobDispatchStatusFailed), func() (*model.JobDispatch, error) {
		return s.repo.Finish(ctx, id, model.JobDispatchStatusFailed)
	})
}

// TimeOut records that the running attempt passed its timeout.
func (s *JobDispatchService) TimeOut(ctx context.Context, id string) (*model.JobDispatch, error) {
	return s.observe(ctx, string(model.JobDispatchStatusTimeout), func() (*model.JobDispatch, error) {
		return s.repo.MarkTimedOut(ctx, id)
	})
}

// Abort cancels a pending or running dispatch.
func (s *JobDispatchService) Abort(ctx context.Context, id string) (*model.JobDispatch, error) {
	return s.observe(ctx, string(model.JobDispatchStatusAborted), func() (*model.JobDispatch, error) {
		return s.repo.Abort(ctx, id)
	})
}

func (s *JobDispatchService) observe(
	ctx context.Context,
	transition string,
	fn func() (*model.JobDispatch, error),
) (*model.JobDispatch, error) {
	d, err := fn()
	if err != nil {
		s.metrics.ObserveTransition(metrics.TransitionMetric{Transition: transition, Err: err})
		if apperrors.IsConflict(err) || apperrors.IsNotFound(err) {
			s.logger.DebugContext(ctx, "job dispatch transition rejected", "transition", transition, "error", err)
		} else {
			s.logger.ErrorContext(ctx, "job dispatch transition failed", "transition", transition, "error", err)
		}
		return nil, fmt.Errorf("%s job dispatch: %w", transition, err)
	}

	var runTime time.Duration
	if d.RunTimeMs != nil {
		runTime = time.Duration(*d.RunTimeMs) * time.Millisecond
	}
	s.metrics.ObserveTransition(metrics.TransitionMetric{
		Name:       d.Name,
		Transition: transition,
		Duration:   runTime,
	})
	s.logger.InfoContext(ctx, "job dispatch transitioned",
		"id", d.ID,
		"ref", d.Ref,
		"status", d.Status,
		"count", d.Count,
	)
	return d, nil
}

// GetView builds the correlation view of a dispatch and resolves the requested derived fields.
func (s *JobDispatchService) GetView(ctx context.Context, id string, fs projection.FieldSet) (*projection.View, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, d, fs)
}

// GetViewByRef is GetView keyed by ref.
func (s *JobDispatchService) GetViewByRef(ctx context.Context, ref string, fs projection.FieldSet) (*projection.View, error) {
	d, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, d, fs)
}

func (s *JobDispatchService) view(ctx context.Context, d *model.JobDispatch, fs projection.FieldSet) (*projection.View, error) {
	var running *model.AuditRequestSummary
	if d.HasRunningAuditRequest() {
		summary, err := s.audits.GetSummary(ctx, *d.RunningAuditRequestID)
		switch {
		case apperrors.IsNotFound(err):
			s.logger.DebugContext(ctx, "running audit request not found",
				"id", d.ID,
				"audit_request_id", *d.RunningAuditRequestID,
			)
		case err != nil:
			return nil, fmt.Errorf("load running audit request: %w", err)
		default:
			running = summary
		}
	}

	v := projection.BuildView(d, running)
	if err := s.resolver.Resolve(ctx, v, fs); err != nil {
		return nil, err
	}
	return v, nil
}

// ListViews returns a page of dispatches with their audit counts. Derived fields are not
// resolved for lists.
func (s *JobDispatchService) ListViews(ctx context.Context, opts model.JobDispatchListOptions) ([]*projection.View, error) {
	dispatches, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(dispatches))
	for _, d := range dispatches {
		if d.HasRunningAuditRequest() {
			ids = append(ids, *d.RunningAuditRequestID)
		}
	}
	var summaries map[string]*model.AuditRequestSummary
	if len(ids) > 0 {
		summaries, err = s.audits.ListSummaries(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load running audit requests: %w", err)
		}
	}

	views := make([]*projection.View, len(dispatches))
	for i, d := range dispatches {
		var running *model.AuditRequestSummary
		if d.HasRunningAuditRequest() {
			running = summaries[*d.RunningAuditRequestID]
		}
		views[i] = projection.BuildView(d, running)
	}
	return views, nil
}
