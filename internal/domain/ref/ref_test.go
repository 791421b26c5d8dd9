package ref

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type atomicCounter struct {
	values sync.Map
}

func (c *atomicCounter) Next(_ context.Context, prefix string) (int64, error) {
	v, _ := c.values.LoadOrStore(prefix, new(atomic.Int64))
	return v.(*atomic.Int64).Add(1), nil
}

type stubCounter struct {
	value int64
	err   error
}

func (s stubCounter) Next(context.Context, string) (int64, error) { return s.value, s.err }

type recordingObserver struct {
	mu    sync.Mutex
	calls []error
}

func (o *recordingObserver) RefGenerated(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, err)
}

type entity struct {
	ref string
}

func (e *entity) RefPrefixKey() string { return "job_dispatch" }
func (e *entity) CurrentRef() string   { return e.ref }
func (e *entity) SetRef(v string)      { e.ref = v }

func newTestGenerator(t *testing.T, c Counter) *Generator {
	t.Helper()
	g, err := NewGenerator(GeneratorOptions{
		Counter:  c,
		Prefixes: map[string]string{"job_dispatch": "JD-"},
	})
	require.NoError(t, err)
	return g
}

func TestValidatePrefix(t *testing.T) {
	valid := []string{"JD-", "JD", "A", "TEAM2-", "ABCDEFGH"}
	for _, p := range valid {
		assert.NoError(t, ValidatePrefix(p), p)
	}
	invalid := []string{"", "jd-", "-", "JD--", "ABCDEFGHI", "1JD", "J D"}
	for _, p := range invalid {
		assert.ErrorIs(t, ValidatePrefix(p), ErrInvalidPrefix, p)
	}
}

func TestFormatAndParse(t *testing.T) {
	assert.Equal(t, "JD-000042", Format("JD-", 42))
	assert.Equal(t, "JD-1234567", Format("JD-", 1234567))

	prefix, seq, err := Parse("JD-000042")
	require.NoError(t, err)
	assert.Equal(t, "JD-", prefix)
	assert.Equal(t, int64(42), seq)

	prefix, seq, err = Parse("AR1234567")
	require.NoError(t, err)
	assert.Equal(t, "AR", prefix)
	assert.Equal(t, int64(1234567), seq)

	for _, bad := range []string{"", "JD-", "JD-42", "000042", "jd-000042", "JD-000000"} {
		_, _, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidRef, bad)
	}
}

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(GeneratorOptions{})
	require.Error(t, err)

	_, err = NewGenerator(GeneratorOptions{
		Counter:  &atomicCounter{},
		Prefixes: map[string]string{"job_dispatch": "bad prefix"},
	})
	require.ErrorIs(t, err, ErrInvalidPrefix)
}

func TestGenerator_Generate(t *testing.T) {
	g := newTestGenerator(t, &atomicCounter{})
	ctx := context.Background()

	first, err := g.Generate(ctx, "JD-")
	require.NoError(t, err)
	second, err := g.Generate(ctx, "JD-")
	require.NoError(t, err)
	other, err := g.Generate(ctx, "AR-")
	require.NoError(t, err)

	assert.Equal(t, "JD-000001", first)
	assert.Equal(t, "JD-000002", second)
	assert.Equal(t, "AR-000001", other)
}

func TestGenerator_PropagatesCounterFailures(t *testing.T) {
	ctx := context.Background()
	unavailable := errors.New("connection refused")

	observer := &recordingObserver{}
	g, err := NewGenerator(GeneratorOptions{
		Counter:  stubCounter{err: unavailable},
		Prefixes: map[string]string{"job_dispatch": "JD-"},
		Observer: observer,
	})
	require.NoError(t, err)

	ref, err := g.Generate(ctx, "JD-")
	require.ErrorIs(t, err, unavailable)
	assert.Empty(t, ref)
	require.Len(t, observer.calls, 1)
	assert.ErrorIs(t, observer.calls[0], unavailable)

	exhausted := newTestGenerator(t, stubCounter{value: 0})
	_, err = exhausted.Generate(ctx, "JD-")
	require.ErrorIs(t, err, ErrCounterExhausted)

	_, err = exhausted.Generate(ctx, "not valid")
	require.ErrorIs(t, err, ErrInvalidPrefix)
}

func TestGenerator_EnsureRef(t *testing.T) {
	g := newTestGenerator(t, &atomicCounter{})
	ctx := context.Background()

	t.Run("assigns when missing", func(t *testing.T) {
		e := &entity{}
		assigned, err := g.EnsureRef(ctx, e)
		require.NoError(t, err)
		assert.True(t, assigned)
		assert.Regexp(t, `^JD-\d{6,}$`, e.ref)
	})

	t.Run("preserves explicit ref", func(t *testing.T) {
		e := &entity{ref: "CUSTOM-1"}
		assigned, err := g.EnsureRef(ctx, e)
		require.NoError(t, err)
		assert.False(t, assigned)
		assert.Equal(t, "CUSTOM-1", e.ref)
	})

	t.Run("unknown entity", func(t *testing.T) {
		bare := newTestGenerator(t, &atomicCounter{})
		bare.prefixes = map[string]string{}
		_, err := bare.EnsureRef(ctx, &entity{})
		require.ErrorIs(t, err, ErrUnknownEntity)
	})

	t.Run("failure leaves entity untouched", func(t *testing.T) {
		failing := newTestGenerator(t, stubCounter{err: errors.New("down")})
		e := &entity{}
		_, err := failing.EnsureRef(ctx, e)
		require.Error(t, err)
		assert.Empty(t, e.ref)
	})
}

func TestGenerator_ConcurrentCallersGetDistinctRefs(t *testing.T) {
	const n = 1000
	g := newTestGenerator(t, &atomicCounter{})

	refs := make([]string, n)
	var eg errgroup.Group
	for i := range n {
		eg.Go(func() error {
			r, err := g.Generate(context.Background(), "JD-")
			refs[i] = r
			return err
		})
	}
	require.NoError(t, eg.Wait())

	seen := make(map[string]struct{}, n)
	for _, r := range refs {
		_, dup := seen[r]
		require.False(t, dup, "duplicate ref %s", r)
		seen[r] = struct{}{}
	}
	assert.Len(t, seen, n)
}
