package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"spacetraveling/internal/config"
	"spacetraveling/internal/render"
	"spacetraveling/internal/scheduler"
	"spacetraveling/internal/server"
)

const scheduledBuildTimeout = 5 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the site, then serve it with on-demand page generation",
	Long: `Build the site once, then serve it over HTTP. Detail pages missing from
the build are generated on first request and revalidated in the background.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.builder.Build(ctx); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	srv := server.New(a.store, a.renderer, a.registry, server.Config{
		Addr:        cfg.Server.Addr,
		OutputDir:   cfg.Site.OutputDir,
		Revalidate:  cfg.Site.Revalidate,
		Placeholder: cfg.Site.Fallback == config.FallbackPlaceholder,
		Stylesheet:  render.Stylesheet(),
	}, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	if cfg.Site.RebuildInterval > 0 {
		sched := scheduler.NewScheduler(a.builder, cfg.Site.RebuildInterval, scheduledBuildTimeout, logger)
		g.Go(func() error {
			if err := sched.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		a.store.Wait()
		return err
	})

	return g.Wait()
}
