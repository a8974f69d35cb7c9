package repository

import (
	"fmt"

	"github.com/msalazar/tanda-service/internal/models"
)

// CreateNotification persists a delivered event for one recipient
// (the dispatcher's database channel).
func (r *Repository) CreateNotification(n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, event_type, payment_id, status, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, n.UserID, n.EventType, n.PaymentID, n.Status).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (r *Repository) ListNotifications(userID int64) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, event_type, payment_id, status, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventType, &n.PaymentID, &n.Status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// RecordMessage logs the outcome of one outbound message attempt for a
// payment under a named job.
func (r *Repository) RecordMessage(paymentID int64, job, outcome string) error {
	query := `
		INSERT INTO message_log (payment_id, job, outcome, sent_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)`
	if _, err := r.db.Exec(query, paymentID, job, outcome); err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}
	return nil
}

// HasMessageSent reports whether a payment already received a
// successful message from the given job. Used by one-shot reminders.
func (r *Repository) HasMessageSent(paymentID int64, job string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM message_log
			WHERE payment_id = $1 AND job = $2 AND outcome = 'sent'
		)`
	if err := r.db.QueryRow(query, paymentID, job).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check message log: %w", err)
	}
	return exists, nil
}
