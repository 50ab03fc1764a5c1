package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"equiprent/internal/app"
	"equiprent/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.App.Env == "dev" || cfg.App.Env == "local" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	deps := app.Deps{Config: cfg, DB: db, Log: log}
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, rate limiter will fail open", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		deps.Limiter = middleware.NewRedisCounter(rdb, "equiprent:rl")
	}

	a := app.New(deps)
	if err := a.Bootstrap(ctx, cfg, log); err != nil {
		return err
	}

	var sweeperDone <-chan struct{}
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	if cfg.Sweeper.Enabled {
		sweeperDone = a.Sweeper.Start(sweepCtx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// hijacked feed sockets are not tracked by Shutdown
	a.Hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	cancelSweep()
	if sweeperDone != nil {
		<-sweeperDone
	}
	log.Info("server stopped")
	return nil
}
