package mail

import (
	"context"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/ryan-gang/smtp-to-kindle/internal/logger"
)

// Envelope is one e-book addressed to one reader
type Envelope struct {
	Subject    string
	From       string
	To         string
	Filename   string
	Attachment []byte
}

// Server holds the SMTP relay and the credentials used to log in to it
type Server struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// MailSender defines the interface for sending emails
type MailSender interface {
	Send(ctx context.Context, server Server, env Envelope) error
}

// Dialer is the part of gomail.Dialer the sender uses
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailSender implements MailSender using SMTP with STARTTLS
type SMTPMailSender struct {
	logger    logger.LoggerInterface
	newDialer func(server Server) Dialer
}

// NewSMTPMailSender creates a new SMTP mail sender
func NewSMTPMailSender(log logger.LoggerInterface) *SMTPMailSender {
	return &SMTPMailSender{logger: log, newDialer: NewDialer}
}
