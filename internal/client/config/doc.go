// Package config defines the memoria CLI runtime settings.
//
// Values come from built-in defaults, then an optional JSON file
// (--config/-c), then command-line flags. A flag set explicitly on the
// command line always wins over the JSON file.
package config
