// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpress/quill/internal/config"
	"github.com/quillpress/quill/pkg/errutil"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load(newFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultIdentityAddr, cfg.IdentityAddr)
	assert.Equal(t, config.DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, config.DefaultRedisAddr, cfg.RedisAddr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.IdentityTLS)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
identity-addr: identity.example.com:443
identity-tls: true
request-timeout: 2s
store: redis
redis-addr: cache:6379
redis-db: 3
log-format: json
`)

	cfg, err := config.Load(newFlags(t), path)
	require.NoError(t, err)

	assert.Equal(t, "identity.example.com:443", cfg.IdentityAddr)
	assert.True(t, cfg.IdentityTLS)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, config.StoreRedis, cfg.Store)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "identity-addr: from-file:5000\nstore: memory\n")

	cfg, err := config.Load(newFlags(t, "--identity-addr", "from-flag:5000", "--request-timeout", "750ms"), path)
	require.NoError(t, err)

	assert.Equal(t, "from-flag:5000", cfg.IdentityAddr)
	assert.Equal(t, config.StoreMemory, cfg.Store)
	assert.Equal(t, 750*time.Millisecond, cfg.RequestTimeout)
}

func TestLoad_DefaultFileFromXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "quill"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quill", "config.yaml"), []byte("store: memory\n"), 0o600))

	cfg, err := config.Load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := config.Load(newFlags(t), filepath.Join(t.TempDir(), "missing.yaml"))
		errutil.AssertErrorCode(t, err, config.CodeInvalid)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := config.Load(newFlags(t), writeConfig(t, "store: [unterminated\n"))
		errutil.AssertErrorCode(t, err, config.CodeInvalid)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := config.Load(newFlags(t, "--store", "postgres"), writeConfig(t, ""))
		errutil.AssertErrorCode(t, err, config.CodeInvalid)
		assert.Contains(t, err.Error(), "store must be")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			IdentityAddr:   config.DefaultIdentityAddr,
			RequestTimeout: time.Second,
			Store:          config.StoreSQLite,
			RedisAddr:      config.DefaultRedisAddr,
			LogFormat:      "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"missing identity address", func(c *config.Config) { c.IdentityAddr = "" }, "identity-addr is required"},
		{"negative timeout", func(c *config.Config) { c.RequestTimeout = -time.Second }, "request-timeout must not be negative"},
		{"unknown store", func(c *config.Config) { c.Store = "etcd" }, "store must be"},
		{"redis without address", func(c *config.Config) { c.Store = config.StoreRedis; c.RedisAddr = "" }, "redis-addr is required"},
		{"negative redis db", func(c *config.Config) { c.Store = config.StoreRedis; c.RedisDB = -1 }, "redis-db must not be negative"},
		{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }, "log-format must be"},
		{"ca without tls", func(c *config.Config) { c.IdentityCA = "/tmp/ca.pem" }, "identity-ca requires identity-tls"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			errutil.AssertErrorCode(t, err, config.CodeInvalid)
		})
	}
}

func TestSchema(t *testing.T) {
	data, err := config.Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, config.SchemaID, doc["$id"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"identity-addr", "request-timeout", "store", "redis-addr", "log-format", "metrics-addr"} {
		assert.Contains(t, props, key)
	}
	store, ok := props["store"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"sqlite", "redis", "memory"}, store["enum"])
}

func TestConfig_YAMLLoadsBack(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load(newFlags(t, "--store=redis", "--redis-db=2", "--request-timeout=1500ms"), "")
	require.NoError(t, err)

	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "request-timeout: 1.5s")

	loaded, err := config.Load(newFlags(t), writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
