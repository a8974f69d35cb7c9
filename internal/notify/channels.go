package notify

import (
	"context"
	"fmt"

	"github.com/msalazar/tanda-service/internal/models"
	"github.com/msalazar/tanda-service/internal/utils/email"
)

// MailChannel renders an event as a plain-text mail and sends it.
type MailChannel struct {
	sender *email.Sender
}

// NewMailChannel creates the mail channel on top of an SMTP sender.
func NewMailChannel(sender *email.Sender) *MailChannel {
	return &MailChannel{sender: sender}
}

func (c *MailChannel) Name() string { return "mail" }

// Deliver sends the event mail to the recipient's address.
func (c *MailChannel) Deliver(_ context.Context, event Event, recipient models.User) error {
	subject, lines := renderMail(event)
	return c.sender.SendEventMail(recipient.Email, subject, lines...)
}

func renderMail(event Event) (string, []string) {
	amount := fmt.Sprintf("Monto: $%.2f", event.Payment.AmountSnapshot)
	switch event.Type {
	case models.EventPaymentValidated:
		return "Pago validado", []string{
			"Tu pago ha sido validado por el administrador.",
			amount,
		}
	default:
		return "Comprobante cargado", []string{
			"Se ha cargado un comprobante de pago.",
			amount,
		}
	}
}

// Recorder persists notification rows.
type Recorder interface {
	CreateNotification(n *models.Notification) error
}

// DatabaseChannel persists the event as a notification row for the
// recipient.
type DatabaseChannel struct {
	recorder Recorder
}

// NewDatabaseChannel creates the database channel on top of a store.
func NewDatabaseChannel(recorder Recorder) *DatabaseChannel {
	return &DatabaseChannel{recorder: recorder}
}

func (c *DatabaseChannel) Name() string { return "database" }

// Deliver writes the persisted record of the event.
func (c *DatabaseChannel) Deliver(_ context.Context, event Event, recipient models.User) error {
	return c.recorder.CreateNotification(&models.Notification{
		UserID:    recipient.ID,
		EventType: event.Type,
		PaymentID: event.Payment.ID,
		Status:    event.Payment.Status,
	})
}
