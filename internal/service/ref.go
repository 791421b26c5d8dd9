package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/jobdispatch/internal/core"
)

// RefGenerator is the subset of ref.Generator used by RefService.
type RefGenerator interface {
	Generate(ctx context.Context, prefix string) (string, error)
	PrefixFor(entity string) (string, error)
}

// RefServiceOptions groups dependencies for RefService.
type RefServiceOptions struct {
	Refs      RefGenerator               // Required
	Primary   core.RefSequenceRepository // Required: the counter refs are generated from
	Secondary core.RefCounterSyncer      // Optional: standby counter kept ahead of Primary
	Logger    *slog.Logger               // Optional
}

// RefService exposes ref generation and counter administration.
type RefService struct {
	refs      RefGenerator
	primary   core.RefSequenceRepository
	secondary core.RefCounterSyncer
	logger    *slog.Logger
}

// NewRefService constructs a new RefService.
func NewRefService(opts RefServiceOptions) (*RefService, error) {
	if opts.Refs == nil {
		return nil, errors.New("ref generator is required")
	}
	if opts.Primary == nil {
		return nil, errors.New("primary ref counter is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RefService{
		refs:      opts.Refs,
		primary:   opts.Primary,
		secondary: opts.Secondary,
		logger:    logger.With("component", "ref_service"),
	}, nil
}

// Next generates a ref for prefix.
func (s *RefService) Next(ctx context.Context, prefix string) (string, error) {
	ref, err := s.refs.Generate(ctx, prefix)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "ref generated", "prefix", prefix, "ref", ref)
	return ref, nil
}

// NextFor generates a ref using the prefix configured for an entity key.
func (s *RefService) NextFor(ctx context.Context, entity string) (string, error) {
	prefix, err := s.refs.PrefixFor(entity)
	if err != nil {
		return "", err
	}
	return s.Next(ctx, prefix)
}

// Current returns the last value handed out for prefix by the primary counter.
func (s *RefService) Current(ctx context.Context, prefix string) (int64, error) {
	return s.primary.Current(ctx, prefix)
}

// SyncSecondary raises the secondary counter to at least the primary's current value and
// returns the secondary's resulting value.
func (s *RefService) SyncSecondary(ctx context.Context, prefix string) (int64, error) {
	if s.secondary == nil {
		return 0, errors.New("no secondary ref counter configured")
	}
	floor, err := s.primary.Current(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("read primary counter: %w", err)
	}
	value, err := s.secondary.SyncAtLeast(ctx, prefix, floor)
	if err != nil {
		return 0, fmt.Errorf("sync secondary counter: %w", err)
	}
	s.logger.InfoContext(ctx, "secondary ref counter synced", "prefix", prefix, "floor", floor, "value", value)
	return value, nil
}
