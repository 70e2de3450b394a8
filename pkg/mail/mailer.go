package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/go-mail/mail/v2"
)

// ErrSMTPDisabled signals that SMTP delivery is disabled via configuration.
var ErrSMTPDisabled = errors.New("smtp: delivery disabled")

// Message represents an outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Mailer defines behaviour for sending email messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSettings capture the runtime configuration required by the SMTP mailer.
type SMTPSettings struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
	Timeout  time.Duration
}

type smtpMailer struct {
	cfg    SMTPSettings
	dialer *gomail.Dialer
}

// NewSMTPMailer validates the settings and returns a Mailer backed by an SMTP dialer.
func NewSMTPMailer(cfg SMTPSettings) (Mailer, error) {
	if cfg.Enabled {
		if strings.TrimSpace(cfg.Host) == "" {
			return nil, errors.New("smtp: host is required")
		}
		if cfg.Port <= 0 {
			return nil, errors.New("smtp: port must be positive")
		}
		if strings.TrimSpace(cfg.From) == "" {
			return nil, errors.New("smtp: from address is required")
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = cfg.Timeout
	dialer.StartTLSPolicy = gomail.OpportunisticStartTLS
	if cfg.UseTLS {
		dialer.StartTLSPolicy = gomail.MandatoryStartTLS
	}

	return &smtpMailer{cfg: cfg, dialer: dialer}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if !m.cfg.Enabled {
		return ErrSMTPDisabled
	}

	recipients := uniqueAddresses(msg.To)
	if len(recipients) == 0 {
		return errors.New("smtp: at least one recipient is required")
	}

	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = m.cfg.From
	}

	outbound := gomail.NewMessage()
	outbound.SetHeader("From", from)
	outbound.SetHeader("To", recipients...)
	outbound.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		outbound.SetBody("text/html", msg.Body)
	} else {
		outbound.SetBody("text/plain", msg.Body)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(outbound)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: send: %w", err)
		}
		return nil
	}
}

func uniqueAddresses(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}
