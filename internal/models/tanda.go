package models

import "time"

// Frequency is the contribution cadence of a tanda.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Valid reports whether the frequency is one of the known cadences.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// PaymentMode describes how money flows inside a tanda.
type PaymentMode string

const (
	// ModeIntermediary routes funds through an operator; every
	// participant pays every cycle, including the cycle's recipient.
	ModeIntermediary PaymentMode = "intermediary"
	// ModeDirect has participants pay the cycle's recipient directly;
	// the recipient does not pay themself that cycle.
	ModeDirect PaymentMode = "direct"
)

// Tanda represents a rotating savings group.
type Tanda struct {
	ID                int64       `json:"id"`
	Name              string      `json:"name"`
	Amount            float64     `json:"amount"`
	Frequency         Frequency   `json:"frequency"`
	ParticipantsCount int         `json:"participants_count"`
	StartDate         time.Time   `json:"start_date"`
	DeliveryDate      time.Time   `json:"delivery_date"`
	PaymentMode       PaymentMode `json:"payment_mode"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// ClampAmount normalizes a money amount: negative input is stored as
// zero, never rejected.
func ClampAmount(amount float64) float64 {
	if amount < 0 {
		return 0
	}
	return amount
}

// SetAmount assigns the per-cycle contribution amount, clamped to >= 0.
func (t *Tanda) SetAmount(amount float64) {
	t.Amount = ClampAmount(amount)
}
