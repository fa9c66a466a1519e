package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/memoria/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept either strings like "3s" or integer nanoseconds via timex.Duration.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	DataDir        string         `json:"data_dir"`
	CacheBackend   string         `json:"cache_backend"`
	RedisAddr      string         `json:"redis_addr"`
	RetryAttempts  *int           `json:"retry_attempts"`
	RetryBaseDelay timex.Duration `json:"retry_base_delay"`
	Language       string         `json:"language"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	Concurrency    int            `json:"concurrency"`
	Verbose        *bool          `json:"verbose"`
}

// applyJSON copies the values present in the file into cfg. changed reports
// whether a flag was given on the command line; those fields are left alone.
func applyJSON(cfg *Config, path string, changed func(name string) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString := func(flag string, dst *string, v string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}
	setDuration := func(flag string, dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 && !changed(flag) {
			*dst = v.Duration
		}
	}

	setString(flagServer, &cfg.ServerURL, jc.ServerURL)
	setString(flagDataDir, &cfg.DataDir, jc.DataDir)
	setString(flagCache, &cfg.CacheBackend, jc.CacheBackend)
	setString(flagRedisAddr, &cfg.RedisAddr, jc.RedisAddr)
	setString(flagLanguage, &cfg.Language, jc.Language)
	setDuration(flagRetryDelay, &cfg.RetryBaseDelay, jc.RetryBaseDelay)
	setDuration(flagTimeout, &cfg.RequestTimeout, jc.RequestTimeout)

	if jc.RetryAttempts != nil && !changed(flagRetries) {
		cfg.RetryAttempts = *jc.RetryAttempts
	}
	if jc.Concurrency != 0 && !changed(flagConcurrency) {
		cfg.Concurrency = jc.Concurrency
	}
	if jc.Verbose != nil && !changed(flagVerbose) {
		cfg.Verbose = *jc.Verbose
	}
	return nil
}
