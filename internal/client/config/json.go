package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vmsclient/internal/flagx"
	"github.com/dmitrijs2005/vmsclient/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration, so "5s" and integer nanoseconds both work.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	Storage        string         `json:"storage"`
	DBPath         string         `json:"db_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c or -config. Comments
// and trailing commas are allowed. Keys that are absent keep their current
// value.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.Storage != "" {
		cfg.Storage = jc.Storage
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
