package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/vmsclient/internal/flagx"
)

var knownFlags = []string{"-u", "-s", "-d", "-t", "-l"}

// parseFlags overlays cfg with command-line flags.
//
// Supported flags:
//
//	-u string     API base URL
//	-s string     credential storage: memory or sqlite
//	-d string     SQLite database path
//	-t duration   request timeout, e.g. 5s
//	-l string     log level
//
// args are filtered with flagx.FilterArgs first, so flags owned by other
// layers (such as -c) do not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("vmsclient", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "u", cfg.ServerURL, "API base URL")
	fs.StringVar(&cfg.Storage, "s", cfg.Storage, "credential storage: memory or sqlite")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "SQLite database path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
