package models

import (
	"strings"
	"time"
	"unicode"
)

// Role values recognized by the role gate.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account in the system.
type User struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	SecondLastName string    `json:"second_last_name,omitempty"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	PostalCode     string    `json:"postal_code"`
	State          string    `json:"state"`
	Municipality   string    `json:"municipality"`
	Colony         string    `json:"colony"`
	Role           string    `json:"role"`
	PasswordHash   string    `json:"-"` // Not serialized
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SetPhone stores the phone number sanitized to E.164 form.
func (u *User) SetPhone(phone string) {
	u.Phone = SanitizePhone(phone)
}

// SanitizePhone strips everything but digits, keeping a single leading
// "+" when present.
func SanitizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
