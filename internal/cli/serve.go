package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kPratik07/Bank-referral-system/internal/api"
	"github.com/kPratik07/Bank-referral-system/internal/metrics"
	"github.com/kPratik07/Bank-referral-system/internal/referral"
	"github.com/kPratik07/Bank-referral-system/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr       string // overrides REFERRAL_HTTP_ADDR
	CORSOrigin string // overrides REFERRAL_CORS_ORIGIN
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the account API over HTTP",
		Long: `Serve the account API over HTTP until interrupted.

Routes:
  POST /accounts       create one account
  POST /accounts/bulk  create a batch atomically
  GET  /accounts       list the ledger
  GET  /health         ledger reachability
  GET  /metrics        Prometheus metrics`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(commandContext(cmd), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address, overrides REFERRAL_HTTP_ADDR")
	cmd.Flags().StringVar(&opts.CORSOrigin, "cors-origin", "", "Access-Control-Allow-Origin value, overrides REFERRAL_CORS_ORIGIN")

	return cmd
}

// runServe serves until ctx is canceled, then drains in-flight requests.
func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.Config()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Addr != "" {
		cfg.HTTPAddr = opts.Addr
	}
	if opts.CORSOrigin != "" {
		cfg.CORSOrigin = opts.CORSOrigin
	}
	logger := opts.Logger(cmd.ErrOrStderr(), cfg)

	handle := store.NewHandle(cfg.StoreOptions())
	defer func() {
		if err := handle.Close(); err != nil {
			logger.Error("close ledger", "error", err)
		}
	}()
	if err := handle.Ping(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}

	collector := metrics.NewCollector(metrics.DefaultNamespace)
	svc := referral.NewService(handle,
		referral.WithLogger(logger),
		referral.WithRecorder(collector),
	)
	server := api.NewServer(api.Options{
		Service:    svc,
		Health:     handle,
		Logger:     logger,
		Metrics:    collector,
		CORSOrigin: cfg.CORSOrigin,
	})

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("listen on %s", cfg.HTTPAddr), err)
	}

	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(lis)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", lis.Addr())
	logger.Info("server started", "addr", lis.Addr().String(), "driver", cfg.DBDriver)

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return WrapExitError(ExitCommandError, "server failed", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitCommandError, "shutdown", err)
	}
	<-serveErr
	logger.Info("server stopped")
	return nil
}
