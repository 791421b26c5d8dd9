package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Postgres.Name != "jobdispatch" || cfg.Postgres.Port != 5432 {
		t.Fatalf("unexpected postgres defaults: %#v", cfg.Postgres)
	}
	if cfg.Refs.Backend != RefBackendPostgres {
		t.Fatalf("expected postgres ref backend, got %q", cfg.Refs.Backend)
	}
	if cfg.Refs.JobDispatchPrefix != "JD-" {
		t.Fatalf("expected JD- prefix, got %q", cfg.Refs.JobDispatchPrefix)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.HTTP.ShutdownTimeout != 15*time.Second {
		t.Fatalf("unexpected http defaults: %#v", cfg.HTTP)
	}
	if !cfg.Observability.Metrics.IsEnabled() {
		t.Fatal("expected metrics to be enabled by default")
	}
	if cfg.NeedsRedis() {
		t.Fatal("postgres backend should not require redis")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_URI", "redis://cache:6379/0")
	t.Setenv("REDIS_CLUSTER_NODES", "a:7000,b:7001")
	t.Setenv("REFS_BACKEND", " Redis ")
	t.Setenv("REFS_JOB_DISPATCH_PREFIX", "JOB-")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OBSERVABILITY_METRICS_RUNTIME", "false")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Postgres.Host != "db.internal" || cfg.Postgres.Port != 6543 {
		t.Fatalf("unexpected postgres config: %#v", cfg.Postgres)
	}
	if !reflect.DeepEqual(cfg.Redis.ClusterNodes, []string{"a:7000", "b:7001"}) {
		t.Fatalf("unexpected cluster nodes: %#v", cfg.Redis.ClusterNodes)
	}
	if cfg.Refs.Backend != RefBackendRedis || !cfg.NeedsRedis() {
		t.Fatalf("expected redis backend, got %q", cfg.Refs.Backend)
	}
	if got := cfg.Refs.Prefixes(); !reflect.DeepEqual(got, map[string]string{"job_dispatch": "JOB-"}) {
		t.Fatalf("unexpected prefixes: %#v", got)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTP.Addr)
	}
	if cfg.Observability.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.Observability.SlogLevel())
	}
	if cfg.Observability.Metrics.RuntimeCollectors {
		t.Fatal("expected runtime collectors to be disabled")
	}
}

func TestRefsConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RefsConfig
		wantErr bool
	}{
		{name: "postgres", cfg: RefsConfig{Backend: RefBackendPostgres, JobDispatchPrefix: "JD-"}},
		{name: "redis", cfg: RefsConfig{Backend: RefBackendRedis, JobDispatchPrefix: "JD"}},
		{name: "unknown backend", cfg: RefsConfig{Backend: "etcd", JobDispatchPrefix: "JD-"}, wantErr: true},
		{name: "lowercase prefix", cfg: RefsConfig{Backend: RefBackendPostgres, JobDispatchPrefix: "jd-"}, wantErr: true},
		{name: "empty prefix", cfg: RefsConfig{Backend: RefBackendPostgres}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRefsConfig_Sanitize(t *testing.T) {
	cfg := RefsConfig{Backend: "", JobDispatchPrefix: " JD- ", RedisKeyPrefix: "  "}
	cfg.Sanitize()

	if cfg.Backend != RefBackendPostgres {
		t.Fatalf("expected postgres fallback, got %q", cfg.Backend)
	}
	if cfg.JobDispatchPrefix != "JD-" {
		t.Fatalf("expected trimmed prefix, got %q", cfg.JobDispatchPrefix)
	}
	if cfg.RedisKeyPrefix != "ref_seq:" {
		t.Fatalf("expected default redis key prefix, got %q", cfg.RedisKeyPrefix)
	}
}

func TestObservabilityConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for raw, want := range tests {
		c := ObservabilityConfig{LogLevel: raw}
		c.Sanitize()
		if got := c.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Fatal("expected NODE_ENV=development to enable dev mode")
	}
}
