package server

import (
	"github.com/changyuyeo/fitbody/app/jobs"
	"github.com/changyuyeo/fitbody/pkg/event"
	"github.com/changyuyeo/fitbody/pkg/logger"
	"github.com/changyuyeo/fitbody/pkg/queue"
)

// registerListeners subscribes the side effects that hang off domain
// events. Listeners run after the triggering write has committed, so none
// of them can fail a purchase.
func registerListeners() {
	event.Listen("purchase.recorded", func(payload interface{}) {
		data, ok := payload.(map[string]interface{})
		if !ok {
			return
		}
		email, _ := data["email"].(string)
		title, _ := data["title"].(string)
		if email == "" {
			return
		}
		if err := queue.Dispatch(jobs.OrderConfirmationJob{Email: email, Items: []string{title}}); err != nil {
			logger.Error("order confirmation dispatch failed", "error", err, "email", email)
		}
	})

	event.Listen("cart.checked_out", func(payload interface{}) {
		data, ok := payload.(map[string]interface{})
		if !ok {
			return
		}
		email, _ := data["email"].(string)
		titles, _ := data["titles"].([]string)
		logger.Info("cart checked out", "user_id", data["user_id"], "items", len(titles), "total", data["total"])
		if email == "" || len(titles) == 0 {
			return
		}
		if err := queue.Dispatch(jobs.OrderConfirmationJob{Email: email, Items: titles}); err != nil {
			logger.Error("order confirmation dispatch failed", "error", err, "email", email)
		}
	})

	event.Listen("user.registered", func(payload interface{}) {
		data, ok := payload.(map[string]interface{})
		if !ok {
			return
		}
		logger.Info("user registered", "user_id", data["user_id"])
	})
}
