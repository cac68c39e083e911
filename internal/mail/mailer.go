package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	gomail "gopkg.in/mail.v2"

	"github.com/ryan-gang/smtp-to-kindle/internal/util"
)

const (
	BodyText       = "Document attached for Kindle."
	AttachmentType = "application/octet-stream"
)

// NewDialer returns a gomail dialer that insists on STARTTLS.
// Implicit TLS is never used, even on port 465.
func NewDialer(server Server) Dialer {
	dialer := gomail.NewDialer(server.Host, server.Port, server.Username, server.Password)
	dialer.SSL = false
	dialer.StartTLSPolicy = gomail.MandatoryStartTLS
	dialer.TLSConfig = &tls.Config{ServerName: server.Host}
	if server.Timeout > 0 {
		dialer.Timeout = server.Timeout
	}
	// gomail skips login when AUTH is not advertised; credentials must never be ignored
	if server.Username != "" {
		dialer.Auth = newRequiredAuth(server)
	}
	return dialer
}

// NewMessage builds a plain text message carrying the attachment
func NewMessage(env Envelope) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", env.From)
	msg.SetHeader("To", env.To)
	msg.SetHeader("Subject", env.Subject)

	msg.SetBody("text/plain", BodyText)

	data := env.Attachment
	msg.Attach(env.Filename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}),
		gomail.SetHeader(map[string][]string{
			"Content-Type": {AttachmentType},
		}),
	)
	return msg
}

func (s *SMTPMailSender) Send(ctx context.Context, server Server, env Envelope) error {
	if len(env.Attachment) == 0 {
		return util.Errorf(util.MailError, "attaching file", "attachment %s is empty", env.Filename)
	}
	if err := ctx.Err(); err != nil {
		return util.Wrap(util.MailError, "sending mail", err)
	}

	msg := NewMessage(env)
	dialer := s.newDialer(server)

	s.logger.Infof("Attempting to connect to %s:%d and send '%s'", server.Host, server.Port, env.Filename)
	if err := dialer.DialAndSend(msg); err != nil {
		s.logger.Errorf("Sending '%s' to %s failed: %v", env.Filename, env.To, err)
		return util.Wrap(util.MailError, "sending mail", err)
	}

	s.logger.Infof("Mailed %s (%d bytes) to %s", env.Filename, len(env.Attachment), env.To)
	return nil
}

// String hides the password when a server is printed
func (s Server) String() string {
	return fmt.Sprintf("%s@%s:%d", s.Username, s.Host, s.Port)
}
