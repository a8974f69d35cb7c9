package models

import "time"

// PaymentStatus is the state of one expected contribution.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusUploaded  PaymentStatus = "uploaded"
	StatusValidated PaymentStatus = "validated"
	StatusRejected  PaymentStatus = "rejected"
)

// CanTransition reports whether the state machine allows moving from
// the current status to the target. Pending only reaches Uploaded;
// Uploaded reaches Validated or Rejected; both of those are terminal.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusUploaded
	case StatusUploaded:
		return to == StatusValidated || to == StatusRejected
	}
	return false
}

// Terminal reports whether no further transition can leave the status.
func (s PaymentStatus) Terminal() bool {
	return s == StatusValidated || s == StatusRejected
}

// Payment is one expected contribution event for one participant on
// one due date within a tanda. AmountSnapshot is fixed at creation
// time; later edits to the tanda do not mutate it.
type Payment struct {
	ID              int64         `json:"id"`
	TandaID         int64         `json:"tanda_id"`
	ParticipantID   int64         `json:"participant_id"`
	RecipientUserID *int64        `json:"recipient_user_id,omitempty"`
	DueDate         time.Time     `json:"due_date"`
	AmountSnapshot  float64       `json:"amount_snapshot"`
	Status          PaymentStatus `json:"status"`
	ReceiptPath     *string       `json:"receipt_path,omitempty"`
	RejectReason    *string       `json:"reject_reason,omitempty"`
	ValidatedAt     *time.Time    `json:"validated_at,omitempty"`
	RejectedAt      *time.Time    `json:"rejected_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// SetAmountSnapshot assigns the snapshotted amount, clamped to >= 0.
func (p *Payment) SetAmountSnapshot(amount float64) {
	p.AmountSnapshot = ClampAmount(amount)
}

// DuePayment is a pending payment joined with the contact details the
// reminder jobs need to message the participant.
type DuePayment struct {
	PaymentID      int64
	TandaID        int64
	DueDate        time.Time
	AmountSnapshot float64
	UserID         int64
	FirstName      string
	Phone          string
}
