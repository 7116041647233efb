package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/config"
	quillgrpc "github.com/quillpress/quill/internal/grpc"
	"github.com/quillpress/quill/internal/logging"
	"github.com/quillpress/quill/internal/observability"
	"github.com/quillpress/quill/internal/session"
	"github.com/quillpress/quill/internal/xdg"
)

// Gateway is an identity service client that holds a connection.
type Gateway interface {
	auth.Gateway
	Close() error
}

// ObservabilityServer serves metrics and health probes.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Metrics() *observability.Metrics
}

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// GatewayFactory creates the identity service client.
	// Default: quillgrpc.NewClient
	GatewayFactory func(cfg *config.Config, logger *slog.Logger) (Gateway, error)

	// KVFactory opens the session backend selected by cfg.Store.
	// Default: openKV
	KVFactory func(ctx context.Context, cfg *config.Config) (session.KV, error)

	// LogWriterFactory opens the log destination.
	// Default: openLogWriter
	LogWriterFactory func(cfg *config.Config) (io.WriteCloser, error)

	// ObservabilityServerFactory creates the metrics server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, opts ...observability.ServerOption) ObservabilityServer
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.GatewayFactory == nil {
		out.GatewayFactory = newGRPCGateway
	}
	if out.KVFactory == nil {
		out.KVFactory = openKV
	}
	if out.LogWriterFactory == nil {
		out.LogWriterFactory = openLogWriter
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, opts ...observability.ServerOption) ObservabilityServer {
			return observability.NewServer(addr, opts...)
		}
	}
	return &out
}

func newGRPCGateway(cfg *config.Config, logger *slog.Logger) (Gateway, error) {
	clientCfg := quillgrpc.ClientConfig{
		Address:        cfg.IdentityAddr,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	}
	if cfg.IdentityTLS {
		serverName, _, err := net.SplitHostPort(cfg.IdentityAddr)
		if err != nil {
			serverName = ""
		}
		tlsConfig, err := quillgrpc.LoadClientTLS(cfg.IdentityCA, serverName)
		if err != nil {
			return nil, err
		}
		clientCfg.TLSConfig = tlsConfig
	}
	return quillgrpc.NewClient(clientCfg)
}

func openKV(ctx context.Context, cfg *config.Config) (session.KV, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return session.NewMemoryKV(), nil
	case config.StoreRedis:
		return session.OpenRedis(ctx, &redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB}, session.DefaultRedisPrefix)
	default:
		path := cfg.SQLitePath
		if path == "" {
			var err error
			if path, err = xdg.SessionDBPath(); err != nil {
				return nil, err
			}
		}
		if err := xdg.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		return session.OpenSQLite(ctx, path)
	}
}

func openLogWriter(cfg *config.Config) (io.WriteCloser, error) {
	path := cfg.LogFile
	if path == "" {
		var err error
		if path, err = xdg.LogFile(); err != nil {
			return nil, err
		}
	}
	return logging.OpenFile(path)
}
