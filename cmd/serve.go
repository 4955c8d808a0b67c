package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ip-lookup/internal/config"
	"ip-lookup/internal/logger"
	"ip-lookup/internal/lookup"
	"ip-lookup/internal/systemstatus"
	"ip-lookup/internal/web"
	"ip-lookup/middleware"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", ":"+a.cfg.Port)
			if err != nil {
				return err
			}
			return serve(ctx, a.cfg, ln)
		},
	}
}

// serve runs the API on ln until ctx is done, then drains in-flight requests
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	repo, err := openCachedStore(ctx, cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer repo.Close()

	res, closeResolver, err := openResolver(cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer closeResolver()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	go limiter.Run(ctx)

	lookupService := lookup.NewLookupService(repo, res)
	statusService := systemstatus.NewSystemStatusService(repo, systemstatus.Info{
		Version:      version(),
		DatabaseType: string(cfg.DatabaseType),
		ResolverType: string(cfg.ResolverType),
		CacheEnabled: cfg.RedisAddr != "",
	})

	server := &http.Server{
		Handler: web.SetupRoutes(web.Handlers{
			Lookup:      lookup.NewLookupHandlers(lookupService),
			Status:      systemstatus.NewSystemStatusHandlers(statusService),
			RateLimiter: limiter,
			CORSOrigin:  cfg.CORSAllowedOrigin,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server_started",
			zap.String("addr", ln.Addr().String()),
			zap.String("database", string(cfg.DatabaseType)),
			zap.String("resolver", string(cfg.ResolverType)),
		)
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.L().Info("server_stopped")
	return nil
}
