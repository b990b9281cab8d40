package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"http_addr":                       "www.example:3000",
		"grpc_addr":                       "www.example:50051",
		"storage":                         "memory",
		"database_dsn":                    "postgres://db",
		"secret_key":                      "my_secret_key",
		"access_token_validity_duration":  "10m",
		"refresh_token_validity_duration": "720h",
		"bcrypt_cost":                     12,
		"refresh_token_sweep_interval":    "30m",
		"log_level":                       "debug",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"authkeeper", "-config", full}

		cfg := &Config{}
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, "www.example:3000", cfg.HTTPAddr)
		assert.Equal(t, "www.example:50051", cfg.GRPCAddr)
		assert.Equal(t, "memory", cfg.Storage)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 10*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 720*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, 30*time.Minute, cfg.RefreshTokenSweepInterval)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "only-secret"})
		os.Args = []string{"authkeeper", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, "only-secret", cfg.SecretKey)
		assert.Equal(t, ":3000", cfg.HTTPAddr)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"authkeeper"}

		cfg := &Config{HTTPAddr: "defaults:1234", SecretKey: "key"}
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"authkeeper", "-config", bad}

		err := parseJson(&Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config file")
	})

	t.Run("missing file → error", func(t *testing.T) {
		os.Args = []string{"authkeeper", "-c", filepath.Join(dir, "nope.json")}

		err := parseJson(&Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})
}
