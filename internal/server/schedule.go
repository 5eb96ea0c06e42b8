package server

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/changyuyeo/fitbody/app/repositories"
	"github.com/changyuyeo/fitbody/app/services"
	"github.com/changyuyeo/fitbody/pkg/cache"
	"github.com/changyuyeo/fitbody/pkg/database"
	"github.com/changyuyeo/fitbody/pkg/logger"
	"github.com/changyuyeo/fitbody/pkg/schedule"
	"github.com/changyuyeo/fitbody/pkg/workerpool"
)

// warmedCategories are the catalogue pages re-cached ahead of expiry so
// the first request after a TTL lapse does not pay the Mongo round-trip.
var warmedCategories = []string{"", "nutrition", "equipment"}

const logRetention = 30 * 24 * time.Hour

// registerSchedule sets up the recurring maintenance tasks. The scheduler
// itself is started by Start once boot completes.
func registerSchedule() {
	catalog := services.NewCatalogService(repositories.NewProductRepository(database.DB), cache.Redis{})
	pool := workerpool.New(len(warmedCategories))

	schedule.Every(4).Minutes().Name("catalog-cache-warm").WithoutOverlapping().Run(func() {
		for _, category := range warmedCategories {
			c := category
			err := pool.Submit(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if _, err := catalog.List(ctx, c, 1, 20); err != nil {
					logger.Warn("cache warm failed", "category", c, "error", err)
				}
			})
			if err != nil {
				logger.Warn("cache warm skipped", "category", c, "error", err)
			}
		}
	})

	schedule.Cron("30 3 * * *").Name("log-purge").Run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		cutoff := time.Now().Add(-logRetention)
		res, err := database.Collection("logs").DeleteMany(ctx, bson.M{
			"time": bson.M{"$lt": cutoff},
		})
		if err != nil {
			logger.Error("log purge failed", "error", err)
			return
		}
		logger.Info("log purge complete", "deleted", res.DeletedCount)
	})
}
