package models

import "time"

// Participant is the membership of one user in one tanda. Position is
// 1-based and unique within the tanda; it fixes when the participant
// receives the pot.
type Participant struct {
	ID        int64     `json:"id"`
	TandaID   int64     `json:"tanda_id"`
	UserID    int64     `json:"user_id"`
	Position  int       `json:"position"`
	IsWinner  bool      `json:"is_winner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
