// Package notify fans one domain event out to a set of recipients
// across a fixed channel list. Every (recipient, channel) delivery is
// attempted independently; a failure is logged and never stops the
// rest of the fan-out or rolls back the transition that produced the
// event. Delivery is at-least-once.
package notify

import (
	"context"

	"github.com/msalazar/tanda-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Event is one domain event about a payment.
type Event struct {
	Type    models.EventType
	Payment *models.Payment
}

// Channel delivers an event to a single recipient.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, event Event, recipient models.User) error
}

// Dispatcher fans events out across its channels.
type Dispatcher struct {
	channels []Channel
	log      *logrus.Logger
}

// NewDispatcher creates a dispatcher with a fixed, ordered channel list.
func NewDispatcher(log *logrus.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels, log: log}
}

// Dispatch attempts delivery of the event to every recipient on every
// channel and returns the number of successful deliveries.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event, recipients []models.User) int {
	delivered := 0
	for _, recipient := range recipients {
		for _, ch := range d.channels {
			if err := ch.Deliver(ctx, event, recipient); err != nil {
				d.log.WithFields(logrus.Fields{
					"event":   event.Type,
					"payment": event.Payment.ID,
					"user":    recipient.ID,
					"channel": ch.Name(),
				}).Errorf("delivery failed: %v", err)
				continue
			}
			delivered++
		}
	}
	return delivered
}
