package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serve runs the http server and the hub until ctx is cancelled or a
// SIGINT/SIGTERM arrives, then shuts both down gracefully.
func (app *application) serve(ctx context.Context) error {
	app.Server = &http.Server{
		Addr:         app.Config.Addr(),
		Handler:      app.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("Starting server", zap.String("address", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return app.Hub.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		// Hijacked websocket connections are not tracked by the server.
		app.Shutdown()

		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	app.Logger.Info("Server stopped gracefully")
	return nil
}
