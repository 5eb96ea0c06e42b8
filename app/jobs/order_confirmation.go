// Package jobs holds the queued background jobs dispatched by the API.
package jobs

import (
	"fmt"

	"github.com/changyuyeo/fitbody/pkg/mail"
	"github.com/changyuyeo/fitbody/pkg/queue"
)

// OrderConfirmationJob emails a purchase confirmation. It is dispatched
// after the purchase has been committed, so a mail failure never blocks or
// undoes the sale.
type OrderConfirmationJob struct {
	Email string   `json:"email"`
	Items []string `json:"items"`
}

func (j OrderConfirmationJob) Handle() error {
	body := "<h2>Thanks for your order!</h2><ul>"
	for _, item := range j.Items {
		body += "<li>" + item + "</li>"
	}
	body += "</ul>"

	return mail.To(j.Email).
		Subject(fmt.Sprintf("Your fitbody order (%d items)", len(j.Items))).
		Body(body).
		Send()
}

// RegisterAll makes every job constructible by its type name so queue
// workers can decode persisted payloads.
func RegisterAll() {
	queue.Register("jobs.OrderConfirmationJob", func() queue.Job { return &OrderConfirmationJob{} })
}
