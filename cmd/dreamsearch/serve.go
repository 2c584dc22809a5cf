package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/dreamsearch/handler"
	"github.com/Protocol-Lattice/dreamsearch/internal/config"
	"github.com/Protocol-Lattice/dreamsearch/internal/logging"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /render and the /live websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			timeout, _ := cfg.Shutdown()

			logger := opts.logger
			if !cmd.Flags().Changed("log-level") {
				if logger, err = logging.New(cfg.LogLevel); err != nil {
					return err
				}
				defer logger.Sync()
			}

			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
			}

			h := handler.New(
				handler.WithLogger(logger),
				handler.WithReadLimit(cfg.ReadLimit),
				handler.WithDefaultStyle(cfg.Style),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, ln, h.Routes(), timeout, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the config file)")
	return cmd
}

// runServer serves on ln until ctx is done, then shuts down gracefully
// within timeout.
func runServer(ctx context.Context, ln net.Listener, h http.Handler, timeout time.Duration, logger *zap.Logger) error {
	logger = logging.Default(logger).Named("server")
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	<-errCh
	logger.Info("server stopped")
	return nil
}
