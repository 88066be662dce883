package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the API, e.g. "http://localhost:8080/api".
//   - Storage: where credentials live, "memory" (this run only) or "sqlite".
//   - DBPath: SQLite file used when Storage is "sqlite".
//   - RequestTimeout: per-request HTTP timeout.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL      string
	Storage        string
	DBPath         string
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080/api"
	c.Storage = StorageSQLite
	c.DBPath = defaultDBPath()
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServerURL, validation.Required, is.URL),
		validation.Field(&c.Storage, validation.Required, validation.In(StorageMemory, StorageSQLite)),
		validation.Field(&c.DBPath, validation.By(c.requireDBPath)),
		validation.Field(&c.RequestTimeout, validation.Min(time.Millisecond)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
	)
}

// requireDBPath rejects an empty DBPath when credentials go to SQLite.
func (c Config) requireDBPath(any) error {
	if c.Storage == StorageSQLite && c.DBPath == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// LoadConfig constructs a Config from args (os.Args[1:] in production):
// defaults first, then the JSON file named by -c/-config if any, then
// flags. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "vmsclient.db"
	}
	return filepath.Join(dir, "vmsclient", "credentials.db")
}
