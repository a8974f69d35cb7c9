package service

import (
	"context"
	"fmt"

	"github.com/msalazar/tanda-service/internal/models"
	"github.com/msalazar/tanda-service/internal/notify"
)

// SubmitReceipt moves a pending payment to uploaded and stores the
// receipt reference, then notifies the participant, the cycle's
// recipient (direct mode) and every administrator. Dispatch failures
// never unwind the transition.
func (s *Service) SubmitReceipt(ctx context.Context, paymentID int64, receiptPath string) (*models.Payment, error) {
	payment, err := s.store.TransitionToUploaded(paymentID, receiptPath)
	if err != nil {
		return nil, err
	}

	recipients, err := s.uploadedRecipients(payment)
	if err != nil {
		s.log.Errorf("Failed to resolve recipients for payment %d: %v", payment.ID, err)
	}
	s.notifier.Dispatch(ctx, notify.Event{Type: models.EventPaymentUploaded, Payment: payment}, recipients)

	s.log.Infof("Receipt uploaded for payment %d", payment.ID)
	return payment, nil
}

// ValidatePayment moves an uploaded payment to validated and stamps
// validated_at. Of two racing validations only one can win; the loser
// gets models.ErrInvalidTransition.
func (s *Service) ValidatePayment(ctx context.Context, paymentID int64) (*models.Payment, error) {
	payment, err := s.store.TransitionToValidated(paymentID)
	if err != nil {
		return nil, err
	}

	if user, err := s.payerUser(payment); err != nil {
		s.log.Errorf("Failed to resolve payer for payment %d: %v", payment.ID, err)
	} else {
		s.notifier.Dispatch(ctx, notify.Event{Type: models.EventPaymentValidated, Payment: payment}, []models.User{*user})
	}

	s.log.Infof("Payment %d validated", payment.ID)
	return payment, nil
}

// RejectPayment moves an uploaded payment to rejected, stamps
// rejected_at and stores the reason for audit.
func (s *Service) RejectPayment(_ context.Context, paymentID int64, reason string) (*models.Payment, error) {
	if reason == "" {
		return nil, fmt.Errorf("a rejection reason is required")
	}
	payment, err := s.store.TransitionToRejected(paymentID, reason)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Payment %d rejected: %s", payment.ID, reason)
	return payment, nil
}

// uploadedRecipients resolves who hears about an uploaded receipt: the
// paying participant's user, the cycle recipient when the payment
// carries one, and all administrators. Duplicates collapse to one
// delivery per user.
func (s *Service) uploadedRecipients(payment *models.Payment) ([]models.User, error) {
	var recipients []models.User
	seen := map[int64]bool{}

	add := func(u *models.User) {
		if u == nil || seen[u.ID] {
			return
		}
		seen[u.ID] = true
		recipients = append(recipients, *u)
	}

	payer, err := s.payerUser(payment)
	if err != nil {
		return recipients, err
	}
	add(payer)

	if payment.RecipientUserID != nil {
		recipient, err := s.store.FindUserByID(*payment.RecipientUserID)
		if err != nil {
			return recipients, err
		}
		add(recipient)
	}

	admins, err := s.store.ListAdmins()
	if err != nil {
		return recipients, err
	}
	for i := range admins {
		add(&admins[i])
	}
	return recipients, nil
}

func (s *Service) payerUser(payment *models.Payment) (*models.User, error) {
	participant, err := s.store.FindParticipantByID(payment.ParticipantID)
	if err != nil {
		return nil, err
	}
	return s.store.FindUserByID(participant.UserID)
}
