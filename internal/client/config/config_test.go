package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080/api", c.ServerURL)
	assert.Equal(t, StorageSQLite, c.Storage)
	assert.NotEmpty(t, c.DBPath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "warn", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// staging backend
		"server_url": "https://vms.example.org/api",
		"storage": "memory",
		"request_timeout": "3s",
	}`), 0o600))

	cfg, err := LoadConfig([]string{"-c", path, "-t", "7s", "-l", "debug", "stray", "-x"})
	require.NoError(t, err)

	assert.Equal(t, "https://vms.example.org/api", cfg.ServerURL, "from file")
	assert.Equal(t, StorageMemory, cfg.Storage, "from file")
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout, "flag beats file")
	assert.Equal(t, "debug", cfg.LogLevel, "from flag")
}

func TestLoadConfig_Flags(t *testing.T) {
	cfg, err := LoadConfig([]string{"-u", "http://127.0.0.1:9090/api", "-s", "sqlite", "-d", "/tmp/x.db"})
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9090/api", cfg.ServerURL)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

	tests := map[string][]string{
		"missing file":    {"-config", filepath.Join(dir, "absent.json")},
		"invalid json":    {"-c", bad},
		"bad duration":    {"-t", "soon"},
		"unknown storage": {"-s", "cookies"},
		"bad url":         {"-u", "not a url"},
		"bad log level":   {"-l", "loud"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfig(args)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestValidate_MemoryNeedsNoDBPath(t *testing.T) {
	c := Config{ServerURL: "http://localhost:8080/api", Storage: StorageMemory, RequestTimeout: time.Second}
	assert.NoError(t, c.Validate())

	c.Storage = StorageSQLite
	assert.Error(t, c.Validate())
}

func TestValidate_SQLiteWithDBPath(t *testing.T) {
	c := Config{ServerURL: "http://localhost:8080/api", Storage: StorageSQLite, DBPath: "/tmp/c.db", RequestTimeout: time.Second}
	assert.NoError(t, c.Validate())
}
