package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"task-marketplace.com/task-marketplace/internal/auth"
	httpapi "task-marketplace.com/task-marketplace/internal/http"
	"task-marketplace.com/task-marketplace/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task marketplace HTTP API and the completion crediting pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		cfg := rt.cfg

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool := services.NewPoolService(rt.store, cfg.Workers, cfg.QueueSize, cfg.PollInterval(), cfg.PollBatchSize, rt.logger)

		issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
		taskService := services.NewTaskService(rt.store, rt.locker, pool, rt.logger)
		userService := services.NewUserService(rt.store, issuer, rt.logger)

		e := httpapi.NewServer(httpapi.NewHandler(taskService, userService), httpapi.Options{
			RateLimitPerMinute: cfg.RateLimit,
			AllowedOrigins:     cfg.CORSAllowedOrigins,
			Issuer:             issuer,
			Logger:             rt.logger,
			TrustProxy:         cfg.TrustProxy,
		})

		serverErr := make(chan error, 1)
		go func() {
			rt.logger.Info("HTTP server listening", "addr", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-serverErr:
			pool.Shutdown(context.Background())
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			rt.logger.Error("HTTP server shutdown failed", "error", err)
		}
		pool.Shutdown(shutdownCtx)

		rt.logger.Info("HTTP server and worker pool shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
