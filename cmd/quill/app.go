package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillpress/quill/internal/console"
	"github.com/quillpress/quill/internal/observability"
	"github.com/quillpress/quill/internal/orchestrator"
	"github.com/quillpress/quill/internal/router"
	"github.com/quillpress/quill/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

// newAppCmd creates the app subcommand.
func newAppCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "app",
		Short: "Open the interactive console",
		Long: `Open the interactive console. It starts at the home view, which shows
the logged-in user or offers to log in or sign up.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd, opts)
		},
	}
}

func runApp(cmd *cobra.Command, opts *rootOptions) error {
	ctx := contextOf(cmd)
	rt, err := opts.setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	var metrics *observability.Metrics
	if rt.cfg.MetricsAddr != "" {
		srv := opts.deps.ObservabilityServerFactory(rt.cfg.MetricsAddr,
			observability.WithLogger(rt.logger),
			observability.WithReadiness(gatewayReady(rt.gateway)),
		)
		errCh, err := srv.Start()
		if err != nil {
			return err
		}
		go func() {
			for serveErr := range errCh {
				errutil.LogError(rt.logger, "metrics server failed", serveErr)
			}
		}()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			_ = srv.Stop(stopCtx)
		}()
		metrics = srv.Metrics()
	}

	term := console.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
	r := router.New(router.WithLogger(rt.logger))

	orch, err := orchestrator.New(rt.gateway, rt.store, r, term,
		orchestrator.WithLogger(rt.logger),
		orchestrator.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	views, err := console.NewViews(term, orch, rt.gateway, r,
		console.WithLogger(rt.logger),
		console.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	if err := views.Register(r); err != nil {
		return err
	}

	rt.logger.InfoContext(ctx, "console started", "event", "console_started", "state", orch.State().String())
	r.Navigate(router.RouteHome)
	return r.Run(ctx)
}

// gatewayReady reports readiness from the gateway's connection when it
// exposes one.
func gatewayReady(gw Gateway) observability.ReadinessChecker {
	return func() bool {
		if r, ok := gw.(interface{ Ready() bool }); ok {
			return r.Ready()
		}
		return true
	}
}
