package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/jobdispatch/internal/domain/ref"
	"github.com/target/jobdispatch/internal/mocks"
)

type refServiceFixture struct {
	svc       *RefService
	primary   *mocks.MockRefSequenceRepository
	secondary *mocks.MockRefCounterSyncer
}

func newRefServiceFixture(t *testing.T, withSecondary bool) refServiceFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := refServiceFixture{primary: mocks.NewMockRefSequenceRepository(ctrl)}

	gen, err := ref.NewGenerator(ref.GeneratorOptions{
		Counter:  f.primary,
		Prefixes: map[string]string{"job_dispatch": "JD-"},
	})
	require.NoError(t, err)

	opts := RefServiceOptions{Refs: gen, Primary: f.primary}
	if withSecondary {
		f.secondary = mocks.NewMockRefCounterSyncer(ctrl)
		opts.Secondary = f.secondary
	}
	f.svc, err = NewRefService(opts)
	require.NoError(t, err)
	return f
}

func TestNewRefService(t *testing.T) {
	_, err := NewRefService(RefServiceOptions{})
	require.Error(t, err)
}

func TestRefService_Next(t *testing.T) {
	ctx := context.Background()
	f := newRefServiceFixture(t, false)
	f.primary.EXPECT().Next(ctx, "JD-").Return(int64(42), nil)
	f.primary.EXPECT().Next(ctx, "JD-").Return(int64(43), nil)

	got, err := f.svc.Next(ctx, "JD-")
	require.NoError(t, err)
	assert.Equal(t, "JD-000042", got)

	got, err = f.svc.NextFor(ctx, "job_dispatch")
	require.NoError(t, err)
	assert.Equal(t, "JD-000043", got)

	_, err = f.svc.NextFor(ctx, "audit_request")
	require.ErrorIs(t, err, ref.ErrUnknownEntity)
}

func TestRefService_Next_CounterUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newRefServiceFixture(t, false)
	down := errors.New("connection refused")
	f.primary.EXPECT().Next(ctx, "JD-").Return(int64(0), down)

	got, err := f.svc.Next(ctx, "JD-")
	require.ErrorIs(t, err, down)
	assert.Empty(t, got)
}

func TestRefService_SyncSecondary(t *testing.T) {
	ctx := context.Background()

	t.Run("raises secondary to primary", func(t *testing.T) {
		f := newRefServiceFixture(t, true)
		f.primary.EXPECT().Current(ctx, "JD-").Return(int64(120), nil)
		f.secondary.EXPECT().SyncAtLeast(ctx, "JD-", int64(120)).Return(int64(120), nil)

		got, err := f.svc.SyncSecondary(ctx, "JD-")
		require.NoError(t, err)
		assert.Equal(t, int64(120), got)
	})

	t.Run("primary failure", func(t *testing.T) {
		f := newRefServiceFixture(t, true)
		f.primary.EXPECT().Current(ctx, "JD-").Return(int64(0), errors.New("down"))

		_, err := f.svc.SyncSecondary(ctx, "JD-")
		require.Error(t, err)
	})

	t.Run("no secondary configured", func(t *testing.T) {
		f := newRefServiceFixture(t, false)
		_, err := f.svc.SyncSecondary(ctx, "JD-")
		require.Error(t, err)
	})
}
