// Package config manages application configuration for the authuser API.
//
// Configuration is read from environment variables. An optional .env file
// in the working directory is loaded first; real environment variables win.
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - ServerConfig: HTTP port, timeouts, CORS origins, link base URL
//   - LogConfig: slog level
//   - StoreConfig: user store backend (surreal, postgres, memory)
//   - DatabaseConfig: SurrealDB connection settings
//   - PostgresConfig: PostgreSQL DSN and pool size
//   - CacheConfig: optional Redis read-through cache
//   - RateLimitConfig: per-client token bucket
//   - MetricsConfig: Prometheus /metrics exposure
//
// # Environment Variables
//
//	SERVER_PORT           - HTTP server port (default: 8080)
//	API_BASE_URL          - Prefix for hypermedia links (default: from request)
//	LOG_LEVEL             - debug, info, warn, error (default: info)
//	STORE_BACKEND         - surreal, postgres, memory (default: surreal)
//	DB_HOST, DB_PORT      - SurrealDB address (default: localhost:8000)
//	DATABASE_URL          - PostgreSQL DSN
//	CACHE_ENABLED         - Enable Redis cache (default: false)
//	REDIS_ADDR            - Redis address (default: localhost:6379)
//	METRICS_ENABLED       - Serve /metrics (default: true)
package config
