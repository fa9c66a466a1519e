package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

const (
	flagConfig      = "config"
	flagServer      = "server"
	flagDataDir     = "data-dir"
	flagCache       = "cache"
	flagRedisAddr   = "redis-addr"
	flagRetries     = "retries"
	flagRetryDelay  = "retry-delay"
	flagLanguage    = "lang"
	flagTimeout     = "timeout"
	flagConcurrency = "concurrency"
	flagVerbose     = "verbose"
)

// BindFlags registers every setting on fs, using the current values of cfg
// as defaults. Call LoadDefaults first.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP(flagConfig, "c", "", "path to a JSON config file")
	fs.StringVarP(&cfg.ServerURL, flagServer, "a", cfg.ServerURL, "memoria API base URL")
	fs.StringVar(&cfg.DataDir, flagDataDir, cfg.DataDir, "directory for local state")
	fs.StringVar(&cfg.CacheBackend, flagCache, cfg.CacheBackend, "draft cache backend: sqlite, redis or none")
	fs.StringVar(&cfg.RedisAddr, flagRedisAddr, cfg.RedisAddr, "redis address for --cache=redis")
	fs.IntVar(&cfg.RetryAttempts, flagRetries, cfg.RetryAttempts, "extra attempts for upload negotiation and transfer")
	fs.DurationVar(&cfg.RetryBaseDelay, flagRetryDelay, cfg.RetryBaseDelay, "initial retry backoff")
	fs.StringVar(&cfg.Language, flagLanguage, cfg.Language, "language for messages")
	fs.DurationVar(&cfg.RequestTimeout, flagTimeout, cfg.RequestTimeout, "API request timeout")
	fs.IntVar(&cfg.Concurrency, flagConcurrency, cfg.Concurrency, "parallel uploads in batch mode")
	fs.BoolVarP(&cfg.Verbose, flagVerbose, "v", cfg.Verbose, "verbose logging")
}

// Resolve overlays the JSON file named by --config, skipping any field whose
// flag was set explicitly, and validates the result.
func Resolve(fs *pflag.FlagSet, cfg *Config) error {
	path, err := fs.GetString(flagConfig)
	if err != nil {
		return err
	}
	if path != "" {
		if err := applyJSON(cfg, path, fs.Changed); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// Validate rejects settings the CLI cannot run with.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case CacheSQLite, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	return nil
}
