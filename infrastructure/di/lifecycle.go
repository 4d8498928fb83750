package di

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Background runs the hub, the session sweeper and the enabled exporters
// until ctx is done. It is what a server process needs besides HTTP.
func (c *Container) Background(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.Hub.Run(ctx) })
	g.Go(func() error { return c.Sessions.Run(ctx, c.Config.SessionSweepInterval) })
	if c.Publisher != nil {
		g.Go(func() error { return c.Publisher.Run(ctx) })
	}
	if c.CloudWatch != nil {
		g.Go(func() error { return c.CloudWatch.Run(ctx, c.Config.MetricsFlushPeriod) })
	}
	if limiter := c.Router.Limiter(); limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					limiter.Cleanup()
				}
			}
		})
	}
	return g.Wait()
}

// Serve runs the HTTP server and the background workers until ctx is
// done, then shuts everything down within the configured timeout.
func (c *Container) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              c.Config.ServerAddress,
		Handler:           c.Router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	g.Go(func() error {
		c.Logger.Info("Starting server",
			zap.String("address", c.Config.ServerAddress),
			zap.String("environment", c.Config.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return c.Background(bgCtx) })
	g.Go(func() error {
		<-gctx.Done()
		c.Logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Config.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		c.Sessions.Shutdown(shutdownCtx)
		stopBackground()
		return err
	})

	return g.Wait()
}
