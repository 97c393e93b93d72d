// Package notify delivers outbound messages such as password reset links.
package notify

import (
	"fmt"
	"strings"
	"sync"

	"gopkg.in/gomail.v2"

	"mediumish/internal/logger"
)

// Notifier sends one message to one recipient. A returned error means the
// single delivery attempt failed; callers do not retry.
type Notifier interface {
	Send(to, subject, body string) error
}

// SMTPConfig configures SMTPNotifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// dialer is the part of *gomail.Dialer used here.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends plain-text mail through an SMTP relay.
type SMTPNotifier struct {
	from   string
	dialer dialer
	log    *logger.Logger
}

func NewSMTPNotifier(cfg SMTPConfig, log *logger.Logger) (*SMTPNotifier, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("SMTP host is not configured")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid SMTP port: %d", cfg.Port)
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	if from == "" {
		return nil, fmt.Errorf("email from address is not configured")
	}
	return &SMTPNotifier{
		from:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    log,
	}, nil
}

func (n *SMTPNotifier) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	if n.log != nil {
		n.log.Infow("mail_sent", "to", to, "subject", subject)
	}
	return nil
}

// LogNotifier writes messages to the log instead of sending them. It is used
// when no SMTP relay is configured and in tests, where Sent exposes what
// would have been delivered.
type LogNotifier struct {
	log *logger.Logger

	mu   sync.Mutex
	sent []Message
}

// Message is a notification captured by LogNotifier.
type Message struct {
	To      string
	Subject string
	Body    string
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(to, subject, body string) error {
	n.mu.Lock()
	n.sent = append(n.sent, Message{To: to, Subject: subject, Body: body})
	n.mu.Unlock()

	if n.log != nil {
		n.log.Infow("mail_not_sent_no_smtp", "to", to, "subject", subject, "body", body)
	}
	return nil
}

// Sent returns a copy of all captured messages.
func (n *LogNotifier) Sent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Message, len(n.sent))
	copy(out, n.sent)
	return out
}
