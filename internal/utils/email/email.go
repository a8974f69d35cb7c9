package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/msalazar/tanda-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendEventMail sends a plain-text mail with the given subject and
// body lines to one recipient.
func (s *Sender) SendEventMail(to, subject string, lines ...string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject

	body := ""
	for _, line := range lines {
		body += line + "\n"
	}
	body += "\nSaludos,\nEquipo Tandas"
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// send delivers the mail over SMTP with a bounded wait, so one stuck
// connection cannot stall a whole dispatch batch.
func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- e.Send(addr, auth)
	}()
	select {
	case err := <-errc:
		return err
	case <-time.After(s.cfg.SendTimeout):
		return fmt.Errorf("smtp send timed out after %s", s.cfg.SendTimeout)
	}
}
