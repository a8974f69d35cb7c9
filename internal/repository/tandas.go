package repository

import (
	"database/sql"
	"fmt"

	"github.com/msalazar/tanda-service/internal/models"
)

// CreateTanda creates a new tanda in the database
func (r *Repository) CreateTanda(tanda *models.Tanda) error {
	query := `
		INSERT INTO tandas (name, amount, frequency, participants_count, start_date, delivery_date, payment_mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query,
		tanda.Name, tanda.Amount, tanda.Frequency, tanda.ParticipantsCount,
		tanda.StartDate, tanda.DeliveryDate, tanda.PaymentMode).
		Scan(&tanda.ID, &tanda.CreatedAt, &tanda.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tanda: %w", err)
	}
	return nil
}

// FindTandaByID retrieves a tanda by id
func (r *Repository) FindTandaByID(id int64) (*models.Tanda, error) {
	tanda := &models.Tanda{}
	query := `
		SELECT id, name, amount, frequency, participants_count, start_date, delivery_date, payment_mode, created_at, updated_at
		FROM tandas
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&tanda.ID, &tanda.Name, &tanda.Amount, &tanda.Frequency, &tanda.ParticipantsCount,
		&tanda.StartDate, &tanda.DeliveryDate, &tanda.PaymentMode, &tanda.CreatedAt, &tanda.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tanda not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tanda: %w", err)
	}
	return tanda, nil
}

// AddParticipant inserts a membership row. The unique constraints on
// (tanda_id, position) and (tanda_id, user_id) reject duplicates.
func (r *Repository) AddParticipant(p *models.Participant) error {
	query := `
		INSERT INTO tanda_participants (tanda_id, user_id, position, is_winner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, p.TandaID, p.UserID, p.Position, p.IsWinner).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// ListParticipants returns a tanda's participants ordered by position.
func (r *Repository) ListParticipants(tandaID int64) ([]models.Participant, error) {
	query := `
		SELECT id, tanda_id, user_id, position, is_winner, created_at, updated_at
		FROM tanda_participants
		WHERE tanda_id = $1
		ORDER BY position`
	rows, err := r.db.Query(query, tandaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.TandaID, &p.UserID, &p.Position, &p.IsWinner, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// FindParticipantByID retrieves a participant by id
func (r *Repository) FindParticipantByID(id int64) (*models.Participant, error) {
	p := &models.Participant{}
	query := `
		SELECT id, tanda_id, user_id, position, is_winner, created_at, updated_at
		FROM tanda_participants
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&p.ID, &p.TandaID, &p.UserID, &p.Position, &p.IsWinner, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("participant not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

// MarkWinner flags a participant as having received the pot. The flag
// is only ever set, never cleared.
func (r *Repository) MarkWinner(participantID int64) error {
	query := `
		UPDATE tanda_participants
		SET is_winner = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	if _, err := r.db.Exec(query, participantID); err != nil {
		return fmt.Errorf("failed to mark winner: %w", err)
	}
	return nil
}

// CreatePayments inserts the planned payment rows in one transaction
// so a half-written schedule is never visible.
func (r *Repository) CreatePayments(payments []models.Payment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO payments (tanda_id, participant_id, recipient_user_id, due_date, amount_snapshot, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	for i := range payments {
		p := &payments[i]
		err := tx.QueryRow(query, p.TandaID, p.ParticipantID, p.RecipientUserID, p.DueDate, p.AmountSnapshot, p.Status).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payments: %w", err)
	}
	return nil
}
