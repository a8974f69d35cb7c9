package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/msalazar/tanda-service/internal/models"
)

const paymentColumns = `id, tanda_id, participant_id, recipient_user_id, due_date, amount_snapshot,
	status, receipt_path, reject_reason, validated_at, rejected_at, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.TandaID, &p.ParticipantID, &p.RecipientUserID, &p.DueDate, &p.AmountSnapshot,
		&p.Status, &p.ReceiptPath, &p.RejectReason, &p.ValidatedAt, &p.RejectedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindPaymentByID retrieves a payment by id
func (r *Repository) FindPaymentByID(id int64) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)
	p, err := scanPayment(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return p, nil
}

// TransitionToUploaded moves a payment from pending to uploaded and
// stores the receipt reference. The status precondition is part of the
// UPDATE itself so two racing callers cannot both win.
func (r *Repository) TransitionToUploaded(id int64, receiptPath string) (*models.Payment, error) {
	query := fmt.Sprintf(`
		UPDATE payments
		SET status = $1, receipt_path = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = $4
		RETURNING %s`, paymentColumns)
	p, err := scanPayment(r.db.QueryRow(query, models.StatusUploaded, receiptPath, id, models.StatusPending))
	if err == sql.ErrNoRows {
		return nil, r.transitionFailure(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}
	return p, nil
}

// TransitionToValidated moves a payment from uploaded to validated and
// stamps validated_at, atomically against concurrent validations.
func (r *Repository) TransitionToValidated(id int64) (*models.Payment, error) {
	query := fmt.Sprintf(`
		UPDATE payments
		SET status = $1, validated_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = $3
		RETURNING %s`, paymentColumns)
	p, err := scanPayment(r.db.QueryRow(query, models.StatusValidated, id, models.StatusUploaded))
	if err == sql.ErrNoRows {
		return nil, r.transitionFailure(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate payment: %w", err)
	}
	return p, nil
}

// TransitionToRejected moves a payment from uploaded to rejected,
// stamps rejected_at and stores the audit reason.
func (r *Repository) TransitionToRejected(id int64, reason string) (*models.Payment, error) {
	query := fmt.Sprintf(`
		UPDATE payments
		SET status = $1, reject_reason = $2, rejected_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = $4
		RETURNING %s`, paymentColumns)
	p, err := scanPayment(r.db.QueryRow(query, models.StatusRejected, reason, id, models.StatusUploaded))
	if err == sql.ErrNoRows {
		return nil, r.transitionFailure(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject payment: %w", err)
	}
	return p, nil
}

// transitionFailure distinguishes a missing payment from a state
// machine violation after a conditional update matched no row.
func (r *Repository) transitionFailure(id int64) error {
	var status models.PaymentStatus
	err := r.db.QueryRow(`SELECT status FROM payments WHERE id = $1`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return models.ErrPaymentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read payment status: %w", err)
	}
	return fmt.Errorf("payment %d is %s: %w", id, status, models.ErrInvalidTransition)
}

// ListPendingByDueDate returns the pending payments due on the given
// date, joined with the participant's user for messaging.
func (r *Repository) ListPendingByDueDate(date time.Time) ([]models.DuePayment, error) {
	query := `
		SELECT p.id, p.tanda_id, p.due_date, p.amount_snapshot, u.id, u.first_name, u.phone
		FROM payments p
		JOIN tanda_participants tp ON tp.id = p.participant_id
		JOIN users u ON u.id = tp.user_id
		WHERE p.status = $1 AND p.due_date = $2
		ORDER BY p.id`
	rows, err := r.db.Query(query, models.StatusPending, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}
	defer rows.Close()

	var due []models.DuePayment
	for rows.Next() {
		var d models.DuePayment
		if err := rows.Scan(&d.PaymentID, &d.TandaID, &d.DueDate, &d.AmountSnapshot, &d.UserID, &d.FirstName, &d.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan pending payment: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// ListUploaded returns payments awaiting validation, newest due first.
func (r *Repository) ListUploaded() ([]models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE status = $1 ORDER BY due_date DESC`, paymentColumns)
	rows, err := r.db.Query(query, models.StatusUploaded)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploaded payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// PotForTanda sums the validated contributions of a tanda.
func (r *Repository) PotForTanda(tandaID int64) (float64, error) {
	var pot float64
	query := `
		SELECT COALESCE(SUM(amount_snapshot), 0)
		FROM payments
		WHERE tanda_id = $1 AND status = $2`
	if err := r.db.QueryRow(query, tandaID, models.StatusValidated).Scan(&pot); err != nil {
		return 0, fmt.Errorf("failed to compute pot: %w", err)
	}
	return pot, nil
}
