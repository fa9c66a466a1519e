package config

import "time"

// Cache backends for the draft snapshot cache.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds runtime settings for the memoria CLI.
//
// Fields:
//   - ServerURL: base URL of the memoria API.
//   - DataDir: directory for the local sqlite files; empty means the user config dir.
//   - CacheBackend: draft snapshot cache, one of sqlite, redis or none.
//   - RedisAddr: host:port used when CacheBackend is redis.
//   - RetryAttempts: extra attempts for negotiation and transfer; 0 disables retries.
//   - RetryBaseDelay: first backoff interval, doubled on every retry.
//   - Language: BCP 47 tag for user-facing messages.
//   - RequestTimeout: per-request deadline for API calls.
//   - Concurrency: parallel pipelines for batch uploads.
//   - Verbose: log at debug level instead of warn.
type Config struct {
	ServerURL      string
	DataDir        string
	CacheBackend   string
	RedisAddr      string
	RetryAttempts  int
	RetryBaseDelay time.Duration
	Language       string
	RequestTimeout time.Duration
	Concurrency    int
	Verbose        bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DataDir = ""
	c.CacheBackend = CacheSQLite
	c.RedisAddr = "127.0.0.1:6379"
	c.RetryAttempts = 0
	c.RetryBaseDelay = 500 * time.Millisecond
	c.Language = "pt-BR"
	c.RequestTimeout = 30 * time.Second
	c.Concurrency = 4
	c.Verbose = false
}
