package models

import "errors"

var (
	// ErrInvalidTransition is returned when a payment status change
	// violates the state machine, including when a concurrent caller
	// already won the transition.
	ErrInvalidTransition = errors.New("invalid payment status transition")

	// ErrParticipantCountMismatch is returned by the planner when the
	// tanda's participants_count does not match its participant rows.
	ErrParticipantCountMismatch = errors.New("participant count does not match tanda configuration")

	// ErrPaymentNotFound is returned when a payment id resolves to no row.
	ErrPaymentNotFound = errors.New("payment not found")
)
