// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Config holds the SMTP connection settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("mailer: missing SMTP host")
	}
	if c.Port == 0 {
		return fmt.Errorf("mailer: missing SMTP port")
	}
	if c.From == "" {
		return fmt.Errorf("mailer: missing sender address")
	}
	return nil
}

// Email represents an outbound message
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// Mailer sends email through a single SMTP dialer
type Mailer struct {
	config Config
	dialer *gomail.Dialer
}

// New creates a Mailer from the given configuration
func New(cfg Config) (*Mailer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Mailer{
		config: cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

// Send delivers a single email
func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("mailer: no recipients specified")
	}

	msg := gomail.NewMessage()
	m.setEmailMessage(msg, email)

	return m.dialer.DialAndSend(msg)
}

// SendOtp delivers a verification passcode to a single address. The ctx is
// accepted for interface symmetry; gomail has no cancellation hook.
func (m *Mailer) SendOtp(_ context.Context, to, code string) error {
	return m.Send(Email{
		To:      []string{to},
		Subject: "Verify Your Email",
		Body:    fmt.Sprintf("Your OTP Code is: %s", code),
	})
}

func (m *Mailer) setEmailMessage(msg *gomail.Message, email Email) {
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}
}
