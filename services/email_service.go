package services

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/dateshub/dateshub-api/config"
)

// EmailResult reports the outcome of a single send. Email delivery is
// best-effort: callers record the result but never fail the primary
// operation over it.
type EmailResult struct {
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// EmailService delivers a single transactional email
type EmailService interface {
	Send(to, subject, html string) error
}

// SMTPEmailService implements EmailService over an SMTP relay using gomail
type SMTPEmailService struct {
	dialer *gomail.Dialer
	from   string
}

var emailServiceInstance EmailService

// InitEmailService initializes the SMTP email service from configuration.
// Returns nil when SMTP is not configured; the dispatcher degrades to
// skipped results in that case.
func InitEmailService(cfg *config.Config) EmailService {
	if !cfg.EmailConfigured() {
		log.Info("SMTP not configured, email delivery disabled")
		emailServiceInstance = nil
		return nil
	}

	emailServiceInstance = &SMTPEmailService{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.EmailFrom,
	}
	return emailServiceInstance
}

// GetEmailService returns the initialized email service instance (nil when disabled)
func GetEmailService() EmailService {
	return emailServiceInstance
}

// SetEmailService sets the email service instance (primarily for testing)
func SetEmailService(service EmailService) {
	emailServiceInstance = service
}

// Send delivers one HTML email through the configured SMTP relay
func (s *SMTPEmailService) Send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
