// Package config loads runtime configuration for the CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-u string     API base URL
//	-s string     credential storage: memory or sqlite
//	-d string     SQLite database path
//	-t duration   request timeout
//	-l string     log level
//
// # JSON schema
//
// The file may contain comments and trailing commas. Durations are strings
// like "5s" or integer nanoseconds:
//
//	{
//	  // local backend
//	  "server_url": "http://localhost:8080/api",
//	  "storage": "sqlite",
//	  "db_path": "/home/ann/.config/vmsclient/credentials.db",
//	  "request_timeout": "5s",
//	  "log_level": "info",
//	}
//
// The resulting Config is validated; LoadConfig reports the first invalid
// field. Environment variables are not read.
package config
