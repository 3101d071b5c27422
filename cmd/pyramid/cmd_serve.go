package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	httpadapter "svw.info/pyramid/internal/adapters/http"
	"svw.info/pyramid/internal/infrastructure/telemetry"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP/JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	gin.SetMode(gin.ReleaseMode)
	h := httpadapter.New(a.uc, httpadapter.Defaults{
		Parity:   a.cfg.Game.Parity,
		AutoNext: a.cfg.Game.AutoNext,
	}, a.limiter())
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpadapter.NewRouter(h, a.logger),
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Exporter: a.cfg.Tracing.Exporter,
		Endpoint: a.cfg.Tracing.Endpoint,
		Insecure: a.cfg.Tracing.Insecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			a.logger.Warn("flushing traces", "err", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", addr,
			"levels", a.cfg.Game.DefaultLevels, "parity", a.cfg.Game.Parity, "session_ttl", a.cfg.Sessions.TTL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
