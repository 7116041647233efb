package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillpress/quill/internal/config"
	"github.com/quillpress/quill/internal/logging"
	"github.com/quillpress/quill/internal/session"
	"github.com/quillpress/quill/pkg/errutil"
)

// runtime holds what a command needs once configuration is loaded.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	gateway Gateway
	store   *session.Store
	closers []func() error
}

// setup loads configuration and opens logging, the session store and,
// when withGateway is set, the identity service client.
func (o *rootOptions) setup(ctx context.Context, cmd *cobra.Command, withGateway bool) (rt *runtime, err error) {
	rt = &runtime{}
	defer func() {
		if err != nil {
			_ = rt.Close()
			rt = nil
		}
	}()

	if rt.cfg, err = config.Load(cmd.Flags(), o.configFile); err != nil {
		return rt, err
	}

	logWriter, err := o.deps.LogWriterFactory(rt.cfg)
	if err != nil {
		return rt, err
	}
	rt.closers = append(rt.closers, logWriter.Close)
	rt.logger = logging.Setup("quill", version, rt.cfg.LogFormat, logWriter).With("command", cmd.Name())

	kv, err := o.deps.KVFactory(ctx, rt.cfg)
	if err != nil {
		return rt, err
	}
	rt.store, err = session.Open(ctx, kv, session.WithLogger(rt.logger))
	if err != nil {
		_ = kv.Close()
		return rt, err
	}
	rt.closers = append(rt.closers, rt.store.Close)

	if withGateway {
		if rt.gateway, err = o.deps.GatewayFactory(rt.cfg, rt.logger); err != nil {
			return rt, err
		}
		rt.closers = append(rt.closers, rt.gateway.Close)
	}

	rt.logger.DebugContext(ctx, "command started",
		"store", rt.cfg.Store,
		"identity_addr", rt.cfg.IdentityAddr,
	)
	return rt, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// shutdown closes rt and logs what failed to close.
func (rt *runtime) shutdown() {
	if err := rt.Close(); err != nil {
		errutil.LogWarn(rt.logger, "failed to release resources", err, "event", "shutdown_failed")
	}
}
