// Package config holds process-wide settings read once at startup from the
// environment. Every setting has a documented default so the gateway runs
// out of the box in a single-process, SQLite-backed configuration.
package config

import (
	"github.com/Chyrain/LLMGateway/common/env"
)

var (
	// ServerPort is the port the gateway's HTTP server listens on.
	ServerPort = env.String("GATEWAY_PORT", "8080")

	// GatewayKey is the bearer credential callers must present in the
	// Authorization header. Empty disables auth checks (local/dev only).
	GatewayKey = env.String("GATEWAY_KEY", "")

	// DebugEnabled toggles verbose structured logging.
	DebugEnabled = env.Bool("GATEWAY_DEBUG", false)

	// SQLDSN selects the backing store: empty means SQLite, a "postgres://"
	// prefix means PostgreSQL, anything else is treated as a MySQL DSN.
	SQLDSN = env.String("SQL_DSN", "")

	// RedisConnString, when set, backs the candidate cache with Redis instead
	// of the in-process go-cache. Empty disables Redis.
	RedisConnString = env.String("REDIS_CONN_STRING", "")

	// QuotaAlertThreshold is the used_ratio percentage at or above which a
	// model's quota_status transitions to near-exhaust (spec.md §4.7).
	QuotaAlertThreshold = env.Float64("QUOTA_ALERT_THRESHOLD", 80)

	// DispatchUnaryTimeout bounds a single non-streaming upstream call.
	DispatchUnaryTimeout = env.Duration("DISPATCH_UNARY_TIMEOUT_SECONDS", 120)

	// DispatchStreamTimeout bounds a single streaming upstream call, from
	// opening it through relaying its body.
	DispatchStreamTimeout = env.Duration("DISPATCH_STREAM_TIMEOUT_SECONDS", 300)

	// ProbeTimeout bounds a single connectivity probe request.
	ProbeTimeout = env.Duration("PROBE_TIMEOUT_SECONDS", 10)

	// ClaudeTestModel is the model id used to build Anthropic test/probe
	// requests. Configurable because Anthropic's latest aliases are
	// date-stamped and bit-rot (spec.md §9).
	ClaudeTestModel = env.String("CLAUDE_TEST_MODEL", "claude-sonnet-4-20250514")

	// AdaptersConfigPath optionally points at a YAML file that overrides the
	// default path and default test model of already registered specs at
	// startup. It cannot add a spec that has no built-in adaptor.
	AdaptersConfigPath = env.String("ADAPTERS_CONFIG_PATH", "")

	// MaxIdleConnsPerHost bounds the shared upstream HTTP client's
	// per-host connection pool.
	MaxIdleConnsPerHost = env.Int("MAX_IDLE_CONNS_PER_HOST", 50)

	// ShutdownTimeout bounds how long the server waits for in-flight
	// requests to drain on shutdown.
	ShutdownTimeout = env.Duration("SHUTDOWN_TIMEOUT_SECONDS", 30)
)
