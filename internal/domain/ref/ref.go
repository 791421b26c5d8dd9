// Package ref generates and assigns human-readable reference codes ("refs") for persisted entities.
//
// A ref is a prefix followed by a zero-padded sequence number, e.g. "JD-000042". Sequence
// numbers come from a Counter that lives outside the process (PostgreSQL or Redis), so codes are
// unique across every process sharing the same counter storage.
package ref

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// minDigits is the minimum width of the numeric suffix.
const minDigits = 6

var (
	// ErrInvalidPrefix is returned when a prefix does not match the allowed shape.
	ErrInvalidPrefix = errors.New("invalid ref prefix")
	// ErrInvalidRef is returned when a ref cannot be parsed.
	ErrInvalidRef = errors.New("invalid ref")
	// ErrCounterExhausted is returned when the counter can no longer produce a positive value.
	ErrCounterExhausted = errors.New("ref counter exhausted")
	// ErrUnknownEntity is returned when no prefix is configured for an entity key.
	ErrUnknownEntity = errors.New("no ref prefix configured for entity")
)

// 1-8 upper-case alphanumerics, optionally followed by a single '-'.
var rePrefix = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,7}-?$`)

// ValidatePrefix checks that prefix is usable as a ref prefix.
func ValidatePrefix(prefix string) error {
	if !rePrefix.MatchString(prefix) {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	return nil
}

// Format renders a ref from a prefix and a positive sequence value.
func Format(prefix string, seq int64) string {
	return prefix + fmt.Sprintf("%0*d", minDigits, seq)
}

// Parse splits a ref into its prefix and sequence value.
func Parse(ref string) (string, int64, error) {
	idx := strings.LastIndexFunc(ref, func(r rune) bool { return r < '0' || r > '9' })
	prefix, digits := ref[:idx+1], ref[idx+1:]
	if len(digits) < minDigits {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	if err := ValidatePrefix(prefix); err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return prefix, seq, nil
}

// Counter hands out strictly increasing values per prefix. Implementations must be atomic
// across processes.
type Counter interface {
	Next(ctx context.Context, prefix string) (int64, error)
}

// Referenceable is implemented by entities that carry a ref.
type Referenceable interface {
	// RefPrefixKey names the entity type, used to look up its prefix.
	RefPrefixKey() string
	CurrentRef() string
	SetRef(ref string)
}

// Assigner fills in refs on entities about to be persisted.
type Assigner interface {
	Generate(ctx context.Context, prefix string) (string, error)
	EnsureRef(ctx context.Context, entity Referenceable) (bool, error)
}

// Observer is notified of each generation attempt.
type Observer interface {
	RefGenerated(prefix string, err error)
}

// GeneratorOptions groups dependencies for NewGenerator.
type GeneratorOptions struct {
	Counter  Counter           // Required
	Prefixes map[string]string // Required: entity key → prefix
	Observer Observer          // Optional
}

// Generator produces refs from a Counter.
type Generator struct {
	counter  Counter
	prefixes map[string]string
	observer Observer
}

var _ Assigner = (*Generator)(nil)

// NewGenerator validates the configured prefixes and returns a Generator.
func NewGenerator(opts GeneratorOptions) (*Generator, error) {
	if opts.Counter == nil {
		return nil, errors.New("ref counter is required")
	}
	prefixes := make(map[string]string, len(opts.Prefixes))
	for entity, prefix := range opts.Prefixes {
		if err := ValidatePrefix(prefix); err != nil {
			return nil, fmt.Errorf("entity %s: %w", entity, err)
		}
		prefixes[entity] = prefix
	}
	return &Generator{counter: opts.Counter, prefixes: prefixes, observer: opts.Observer}, nil
}

// PrefixFor returns the configured prefix for an entity key.
func (g *Generator) PrefixFor(entity string) (string, error) {
	prefix, ok := g.prefixes[entity]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	return prefix, nil
}

// Generate returns a new ref for prefix. Counter failures are returned as-is; a value is
// never reused or invented locally.
func (g *Generator) Generate(ctx context.Context, prefix string) (string, error) {
	ref, err := g.generate(ctx, prefix)
	if g.observer != nil {
		g.observer.RefGenerated(prefix, err)
	}
	return ref, err
}

func (g *Generator) generate(ctx context.Context, prefix string) (string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return "", err
	}
	seq, err := g.counter.Next(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("next ref sequence for %s: %w", prefix, err)
	}
	if seq <= 0 {
		return "", fmt.Errorf("%w: prefix %s returned %d", ErrCounterExhausted, prefix, seq)
	}
	return Format(prefix, seq), nil
}

// EnsureRef assigns a ref when the entity has none. It reports whether a ref was assigned;
// entities that already carry a ref are left untouched.
func (g *Generator) EnsureRef(ctx context.Context, entity Referenceable) (bool, error) {
	if entity == nil {
		return false, errors.New("entity is required")
	}
	if strings.TrimSpace(entity.CurrentRef()) != "" {
		return false, nil
	}
	prefix, err := g.PrefixFor(entity.RefPrefixKey())
	if err != nil {
		return false, err
	}
	ref, err := g.Generate(ctx, prefix)
	if err != nil {
		return false, err
	}
	entity.SetRef(ref)
	return true, nil
}
