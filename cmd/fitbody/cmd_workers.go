package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/changyuyeo/fitbody/app/jobs"
	"github.com/changyuyeo/fitbody/pkg/cache"
	"github.com/changyuyeo/fitbody/pkg/logger"
	"github.com/changyuyeo/fitbody/pkg/queue"

	"github.com/changyuyeo/fitbody/config"
	"github.com/changyuyeo/fitbody/pkg/database"
)

var queueWorkersFlag int

// fitbody queue:work — standalone worker process, useful when the queue
// driver is Redis and jobs are shared with the API process.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		if err := cache.Connect(); err != nil {
			logger.Warn("redis unavailable, using in-memory queue", "error", err)
		}

		jobs.RegisterAll()
		queue.UseCollection(database.Collection("failed_jobs"))
		if config.QueueDriver() == "redis" && cache.RDB != nil {
			queue.SetDriver(queue.NewRedisDriver(cache.RDB))
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\nQueue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
