package config

import (
	"fmt"
	"strings"

	"github.com/target/jobdispatch/internal/domain/ref"
)

// RefBackend selects where ref counters live.
type RefBackend string

const (
	// RefBackendPostgres keeps counters in the ref_sequences table.
	RefBackendPostgres RefBackend = "postgres"
	// RefBackendRedis keeps counters in Redis keys incremented with INCR.
	RefBackendRedis RefBackend = "redis"
)

// RefsConfig controls reference-code generation.
type RefsConfig struct {
	Backend           RefBackend `env:"BACKEND"             envDefault:"postgres"`
	JobDispatchPrefix string     `env:"JOB_DISPATCH_PREFIX" envDefault:"JD-"`
	// RedisKeyPrefix namespaces counter keys when Backend is redis.
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"ref_seq:"`
}

// Sanitize normalises backend names and prefixes.
func (c *RefsConfig) Sanitize() {
	c.Backend = RefBackend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	if c.Backend == "" {
		c.Backend = RefBackendPostgres
	}
	c.JobDispatchPrefix = strings.TrimSpace(c.JobDispatchPrefix)
	if c.RedisKeyPrefix = strings.TrimSpace(c.RedisKeyPrefix); c.RedisKeyPrefix == "" {
		c.RedisKeyPrefix = "ref_seq:"
	}
}

// Validate checks the backend and every configured prefix.
func (c *RefsConfig) Validate() error {
	switch c.Backend {
	case RefBackendPostgres, RefBackendRedis:
	default:
		return fmt.Errorf("REFS_BACKEND must be one of: %s, %s", RefBackendPostgres, RefBackendRedis)
	}
	if err := ref.ValidatePrefix(c.JobDispatchPrefix); err != nil {
		return fmt.Errorf("REFS_JOB_DISPATCH_PREFIX: %w", err)
	}
	return nil
}

// Prefixes returns the entity key to prefix map consumed by ref.NewGenerator.
func (c *RefsConfig) Prefixes() map[string]string {
	return map[string]string{"job_dispatch": c.JobDispatchPrefix}
}
