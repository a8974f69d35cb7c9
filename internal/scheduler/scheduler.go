// Package scheduler runs the daily reminder sweeps over the payment
// ledger. Each job is a pure function of an injected reference date so
// tests can simulate any day; the cron entries only bind them to the
// wall clock.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/msalazar/tanda-service/internal/config"
	"github.com/msalazar/tanda-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job names, also used as the message-log discriminator.
const (
	JobReminder   = "tandas:reminder"
	JobCollection = "tandas:collection"
	JobLateAlert  = "tandas:late-alert"
)

// Message outcomes recorded per send attempt.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Messenger sends one outbound text to a phone number. Implementations
// must honor the context deadline.
type Messenger interface {
	SendText(ctx context.Context, phone, message string) error
}

// Ledger is the read-and-log surface the jobs need. The sweeps never
// mutate payment state.
type Ledger interface {
	ListPendingByDueDate(date time.Time) ([]models.DuePayment, error)
	RecordMessage(paymentID int64, job, outcome string) error
	HasMessageSent(paymentID int64, job string) (bool, error)
}

// Scheduler owns the three daily jobs.
type Scheduler struct {
	ledger       Ledger
	messenger    Messenger
	log          *logrus.Logger
	reminderDays int
	repeat       bool
	sendTimeout  time.Duration
	cron         *cron.Cron
}

// New creates a scheduler from configuration.
func New(ledger Ledger, messenger Messenger, log *logrus.Logger, cfg *config.Config) *Scheduler {
	return &Scheduler{
		ledger:       ledger,
		messenger:    messenger,
		log:          log,
		reminderDays: cfg.ReminderDays,
		repeat:       cfg.ReminderRepeat,
		sendTimeout:  cfg.SendTimeout,
	}
}

// Start registers the cron entries and begins ticking. Collection runs
// at 08:00, reminder at 09:00, late-alert at 10:00, daily.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	entries := []struct {
		spec string
		run  func(time.Time) error
	}{
		{"0 8 * * *", s.RunCollection},
		{"0 9 * * *", s.RunReminder},
		{"0 10 * * *", s.RunLateAlert},
	}
	for _, e := range entries {
		run := e.run
		if _, err := s.cron.AddFunc(e.spec, func() {
			if err := run(time.Now()); err != nil {
				s.log.Errorf("scheduled job failed: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("failed to register cron entry %q: %w", e.spec, err)
		}
	}
	s.cron.Start()
	s.log.Info("Reminder scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunReminder notifies participants whose payment is due in
// reminderDays days (advance notice).
func (s *Scheduler) RunReminder(ref time.Time) error {
	target := ref.AddDate(0, 0, s.reminderDays)
	return s.sweep(JobReminder, target, func(d models.DuePayment) string {
		return fmt.Sprintf("Recordatorio: tu próxima vuelta es el %s.", d.DueDate.Format("02/01/2006"))
	})
}

// RunCollection notifies participants whose payment is due today.
func (s *Scheduler) RunCollection(ref time.Time) error {
	return s.sweep(JobCollection, ref, func(models.DuePayment) string {
		return "Hoy corresponde tu pago. Sube tu comprobante desde el panel de usuario."
	})
}

// RunLateAlert notifies participants whose payment was due yesterday
// and is still pending.
func (s *Scheduler) RunLateAlert(ref time.Time) error {
	target := ref.AddDate(0, 0, -1)
	return s.sweep(JobLateAlert, target, func(models.DuePayment) string {
		return "Detectamos retraso en tu pago. Por favor ponte al corriente."
	})
}

// sweep selects the pending payments due on the target date and sends
// one message per payment. Sends are isolated: a failure is recorded
// and the loop moves on. Order within a run carries no meaning.
func (s *Scheduler) sweep(job string, due time.Time, message func(models.DuePayment) string) error {
	due = atMidnight(due)
	payments, err := s.ledger.ListPendingByDueDate(due)
	if err != nil {
		return fmt.Errorf("%s: failed to select payments: %w", job, err)
	}

	sent, failed := 0, 0
	for _, p := range payments {
		if !s.repeat {
			already, err := s.ledger.HasMessageSent(p.PaymentID, job)
			if err != nil {
				s.log.Errorf("%s: message log check failed for payment %d: %v", job, p.PaymentID, err)
			} else if already {
				continue
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
		err := s.messenger.SendText(ctx, p.Phone, message(p))
		cancel()

		outcome := OutcomeSent
		if err != nil {
			outcome = OutcomeFailed
			failed++
			s.log.WithFields(logrus.Fields{
				"job":     job,
				"payment": p.PaymentID,
				"phone":   p.Phone,
			}).Errorf("send failed: %v", err)
		} else {
			sent++
		}
		if logErr := s.ledger.RecordMessage(p.PaymentID, job, outcome); logErr != nil {
			s.log.Errorf("%s: failed to record message for payment %d: %v", job, p.PaymentID, logErr)
		}
	}

	s.log.Infof("%s: %d matched, %d sent, %d failed", job, len(payments), sent, failed)
	return nil
}

func atMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
