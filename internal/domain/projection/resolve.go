package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/target/jobdispatch/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// Loader reads the audit data behind derived fields. Implementations report a missing audit
// request with an error for which NotFound returns true.
type Loader interface {
	GetLogs(ctx context.Context, auditRequestID string) (string, error)
	ListErrorLogEntries(ctx context.Context, auditRequestID string) ([]*model.ErrorLogEntry, error)
	ListAPILogs(ctx context.Context, auditRequestID string) ([]*model.APILog, error)
}

// FieldObserver is notified after each derived field is resolved.
type FieldObserver interface {
	FieldResolved(field string, d time.Duration, err error)
}

// Resolver computes requested derived fields of a View.
type Resolver struct {
	loader   Loader
	observer FieldObserver
	notFound func(error) bool
}

// ResolverOptions groups dependencies for NewResolver.
type ResolverOptions struct {
	Loader   Loader           // Required
	NotFound func(error) bool // Required: classifies missing audit requests
	Observer FieldObserver    // Optional
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions) (*Resolver, error) {
	if opts.Loader == nil {
		return nil, errors.New("loader is required")
	}
	if opts.NotFound == nil {
		return nil, errors.New("not-found classifier is required")
	}
	return &Resolver{loader: opts.Loader, observer: opts.Observer, notFound: opts.NotFound}, nil
}

// Resolve computes the fields in fs and stores them on v. Fields that were not requested are
// never loaded. Without a running audit request (or when it no longer exists) logs resolve to ""
// and collections to empty lists. Requested fields load concurrently; the first storage failure
// is returned and v is left without derived fields.
func (r *Resolver) Resolve(ctx context.Context, v *View, fs FieldSet) error {
	if v == nil || len(fs) == 0 {
		return nil
	}

	if !v.Dispatch.HasRunningAuditRequest() {
		for f := range fs {
			v.setDerived(f, emptyValue(f))
		}
		return nil
	}
	auditID := *v.Dispatch.RunningAuditRequestID

	names := fs.Names()
	results := make([]any, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		f := Field(name)
		sel := fs[f]
		g.Go(func() error {
			start := time.Now()
			val, err := r.resolveField(gctx, auditID, f, sel)
			if r.observer != nil {
				r.observer.FieldResolved(name, time.Since(start), err)
			}
			if err != nil {
				return fmt.Errorf("resolve %s: %w", name, err)
			}
			results[i] = val
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range names {
		v.setDerived(Field(name), results[i])
	}
	return nil
}

func (r *Resolver) resolveField(ctx context.Context, auditID string, f Field, sel *Selection) (any, error) {
	switch f {
	case FieldLogs:
		logs, err := r.loader.GetLogs(ctx, auditID)
		if err != nil {
			if r.notFound(err) {
				return "", nil
			}
			return nil, err
		}
		return logs, nil
	case FieldErrors:
		entries, err := r.loader.ListErrorLogEntries(ctx, auditID)
		if err != nil {
			if r.notFound(err) {
				return []map[string]any{}, nil
			}
			return nil, err
		}
		docs := make([]map[string]any, len(entries))
		for i, e := range entries {
			docs[i] = e.Fields()
		}
		return sel.Apply(docs)
	case FieldAPILogs:
		logs, err := r.loader.ListAPILogs(ctx, auditID)
		if err != nil {
			if r.notFound(err) {
				return []map[string]any{}, nil
			}
			return nil, err
		}
		docs := make([]map[string]any, len(logs))
		for i, l := range logs {
			docs[i] = l.Fields()
		}
		return sel.Apply(docs)
	default:
		return nil, fmt.Errorf("unknown field %q", f)
	}
}

func emptyValue(f Field) any {
	if f == FieldLogs {
		return ""
	}
	return []map[string]any{}
}
