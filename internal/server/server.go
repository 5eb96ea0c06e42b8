// Package server boots the fitbody API: configuration, storage backends,
// background workers and the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/changyuyeo/fitbody/app/jobs"
	"github.com/changyuyeo/fitbody/app/routes"
	"github.com/changyuyeo/fitbody/config"
	"github.com/changyuyeo/fitbody/pkg/cache"
	"github.com/changyuyeo/fitbody/pkg/database"
	"github.com/changyuyeo/fitbody/pkg/event"
	"github.com/changyuyeo/fitbody/pkg/logger"
	"github.com/changyuyeo/fitbody/pkg/metrics"
	"github.com/changyuyeo/fitbody/pkg/middleware"
	"github.com/changyuyeo/fitbody/pkg/queue"
	"github.com/changyuyeo/fitbody/pkg/reqid"
	"github.com/changyuyeo/fitbody/pkg/router"
	"github.com/changyuyeo/fitbody/pkg/schedule"
	"github.com/changyuyeo/fitbody/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// Start boots every subsystem and serves HTTP until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck

	// Request logs are batched into a capped collection; the console
	// handler keeps working regardless.
	mongoLogs := logger.EnableMongo(database.Collection("logs"))
	defer mongoLogs.Close()

	// Redis is optional: a failed connect degrades the cache to a no-op
	// and keeps the queue on the in-memory driver.
	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err)
	}

	storage.Connect()

	jobs.RegisterAll()
	queue.UseCollection(database.Collection("failed_jobs"))
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	queue.StartWorkers(workerCtx, 2)

	registerListeners()
	registerSchedule()
	schedule.Start(workerCtx)

	r := router.New()
	r.Use(
		reqid.Middleware(),
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(120, time.Minute),
		metrics.Middleware(),
	)
	routes.RegisterAPI(r, database.DB)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fitbody API listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	// Drain listeners fired by the last requests before the queue workers
	// that deliver their jobs go away.
	event.Wait()
	stopWorkers()
	return nil
}
