// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package config loads Quill's settings from the config file and command-line
// flags. Flags set on the command line override the file; the file overrides
// flag defaults.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/quillpress/quill/internal/xdg"
)

// CodeInvalid marks configuration that fails validation or cannot be read.
const CodeInvalid = "CONFIG_INVALID"

// Session store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Default values for flags.
const (
	DefaultIdentityAddr   = "localhost:5000"
	DefaultRequestTimeout = 5 * time.Second
	DefaultStore          = StoreSQLite
	DefaultRedisAddr      = "localhost:6379"
	DefaultLogFormat      = "text"
)

// Config holds Quill's settings.
type Config struct {
	IdentityAddr   string        `koanf:"identity-addr" json:"identity-addr" jsonschema:"description=Identity service gRPC address,default=localhost:5000"`
	IdentityTLS    bool          `koanf:"identity-tls" json:"identity-tls" jsonschema:"description=Use TLS for the identity service"`
	IdentityCA     string        `koanf:"identity-ca" json:"identity-ca,omitempty" jsonschema:"description=PEM file of CAs trusted for the identity service (default: system roots)"`
	RequestTimeout time.Duration `koanf:"request-timeout" json:"request-timeout" jsonschema:"type=string,description=Deadline for each identity service call (e.g. 5s),default=5s"`
	Store          string        `koanf:"store" json:"store" jsonschema:"enum=sqlite,enum=redis,enum=memory,default=sqlite"`
	SQLitePath     string        `koanf:"sqlite-path" json:"sqlite-path,omitempty" jsonschema:"description=Session database file (default: XDG state dir)"`
	RedisAddr      string        `koanf:"redis-addr" json:"redis-addr,omitempty" jsonschema:"description=Redis address for the redis store,default=localhost:6379"`
	RedisDB        int           `koanf:"redis-db" json:"redis-db,omitempty" jsonschema:"minimum=0"`
	LogFormat      string        `koanf:"log-format" json:"log-format" jsonschema:"enum=json,enum=text,default=text"`
	LogFile        string        `koanf:"log-file" json:"log-file,omitempty" jsonschema:"description=Log destination; - for stderr (default: XDG state dir)"`
	MetricsAddr    string        `koanf:"metrics-addr" json:"metrics-addr,omitempty" jsonschema:"description=Metrics and health HTTP address (empty = disabled)"`
}

// RegisterFlags adds every configuration flag to flags with its default.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("identity-addr", DefaultIdentityAddr, "identity service gRPC address")
	flags.Bool("identity-tls", false, "use TLS for the identity service")
	flags.String("identity-ca", "", "PEM file of CAs trusted for the identity service")
	flags.Duration("request-timeout", DefaultRequestTimeout, "deadline for each identity service call")
	flags.String("store", DefaultStore, "session store backend (sqlite, redis or memory)")
	flags.String("sqlite-path", "", "session database file (default: XDG_STATE_HOME/quill/session.db)")
	flags.String("redis-addr", DefaultRedisAddr, "redis address for the redis store")
	flags.Int("redis-db", 0, "redis database number")
	flags.String("log-format", DefaultLogFormat, "log format (json or text)")
	flags.String("log-file", "", "log file, - for stderr (default: XDG_STATE_HOME/quill/quill.log)")
	flags.String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
}

// Load reads path, then layers flags on top. An empty path means the default
// config file, which may be absent; an explicit path must exist.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		var err error
		path, err = xdg.ConfigFile()
		if err != nil {
			path = ""
		}
	}

	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.Code(CodeInvalid).With("path", path).Wrapf(err, "failed to read config file")
			}
		case explicit || !errors.Is(statErr, fs.ErrNotExist):
			return nil, oops.Code(CodeInvalid).With("path", path).Wrapf(statErr, "failed to read config file")
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code(CodeInvalid).Wrapf(err, "failed to load flags")
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code(CodeInvalid).Wrapf(err, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := oops.Code(CodeInvalid)

	if c.IdentityAddr == "" {
		return invalid.Errorf("identity-addr is required")
	}
	if c.RequestTimeout < 0 {
		return invalid.With("request-timeout", c.RequestTimeout).Errorf("request-timeout must not be negative")
	}
	switch c.Store {
	case StoreSQLite, StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return invalid.Errorf("redis-addr is required for the redis store")
		}
		if c.RedisDB < 0 {
			return invalid.With("redis-db", c.RedisDB).Errorf("redis-db must not be negative")
		}
	default:
		return invalid.With("store", c.Store).Errorf("store must be 'sqlite', 'redis' or 'memory', got %q", c.Store)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return invalid.With("log-format", c.LogFormat).Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.IdentityCA != "" && !c.IdentityTLS {
		return invalid.Errorf("identity-ca requires identity-tls")
	}
	return nil
}

// YAML renders the configuration in config file form.
func (c *Config) YAML() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to encode configuration")
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, oops.Wrapf(err, "failed to encode configuration")
	}
	values["request-timeout"] = c.RequestTimeout.String()

	out, err := yaml.Parser().Marshal(values)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to encode configuration")
	}
	return out, nil
}
