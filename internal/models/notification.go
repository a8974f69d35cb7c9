package models

import "time"

// EventType identifies a domain event fanned out by the dispatcher.
type EventType string

const (
	EventPaymentUploaded  EventType = "payment_uploaded"
	EventPaymentValidated EventType = "payment_validated"
)

// Notification is the persisted (database channel) record of one
// delivered event for one recipient.
type Notification struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	EventType EventType     `json:"event_type"`
	PaymentID int64         `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
