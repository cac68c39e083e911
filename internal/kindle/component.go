// Package kindle turns an HTML text into a single chapter EPUB and mails it
// to a Kindle address, reporting the outcome as a status message.
package kindle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ryan-gang/smtp-to-kindle/internal/epubgen"
	"github.com/ryan-gang/smtp-to-kindle/internal/logger"
	"github.com/ryan-gang/smtp-to-kindle/internal/mail"
	"github.com/ryan-gang/smtp-to-kindle/internal/metrics"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
)

const (
	EpubMimeType  = "application/epub+zip"
	successFormat = "Successfully sent '%s' to %s"
	failurePrefix = "Failed to send to Kindle: "
)

var ErrEmptyEpub = errors.New("Created EPUB file is empty. Attachment failed.")

// Result is the outcome of one delivery. Message is what the caller sees.
type Result struct {
	OK      bool
	Message string
	Err     error
}

// Category is the error context of a failed delivery, empty on success
func (r Result) Category() util.ErrorContext {
	return util.ContextOf(r.Err)
}

// Component runs deliveries one after another
type Component struct {
	builder     epubgen.EpubBuilder
	sender      mail.MailSender
	logger      logger.LoggerInterface
	metrics     *metrics.DeliveryMetrics
	mailTimeout time.Duration

	mu     sync.Mutex
	status string
}

func NewComponent(builder epubgen.EpubBuilder, sender mail.MailSender, log logger.LoggerInterface) *Component {
	return &Component{
		builder: builder,
		sender:  sender,
		logger:  log,
		metrics: metrics.NewDeliveryMetrics(),
	}
}

// SetMailTimeout bounds the SMTP dial; zero keeps the mail library default
func (c *Component) SetMailTimeout(d time.Duration) {
	c.mailTimeout = d
}

// Status returns the message of the last delivery
func (c *Component) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Run binds the named input values and delivers, returning the status message
func (c *Component) Run(ctx context.Context, values map[string]string) string {
	return c.Deliver(ctx, Bind(values)).Message
}

// Deliver builds the book and mails it. Every failure, a panic included,
// comes back as a failed Result.
func (c *Component) Deliver(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	log := c.logger.With("title", req.Title, "kindle_email", req.KindleEmail)

	defer func() {
		if r := recover(); r != nil {
			res = c.fail(log, fmt.Errorf("unexpected error: %v", r), start)
		}
		c.mu.Lock()
		c.status = res.Message
		c.mu.Unlock()
	}()

	if err := req.Validate(); err != nil {
		return c.fail(log, err, start)
	}
	port, _ := req.Port()

	data, err := c.build(req)
	if err != nil {
		return c.fail(log, err, start)
	}

	server := mail.Server{
		Host:     req.SMTPServer,
		Port:     port,
		Username: req.SenderEmail,
		Password: req.AppPassword,
		Timeout:  c.mailTimeout,
	}
	envelope := mail.Envelope{
		Subject:    req.Title,
		From:       req.SenderEmail,
		To:         req.KindleEmail,
		Filename:   req.Filename(),
		Attachment: data,
	}
	if err := c.sender.Send(ctx, server, envelope); err != nil {
		return c.fail(log, err, start)
	}

	c.metrics.RecordSuccess(time.Since(start))
	msg := fmt.Sprintf(successFormat, req.Filename(), req.KindleEmail)
	log.Info(msg)
	return Result{OK: true, Message: msg}
}

// build produces the EPUB bytes and checks they are a usable container
func (c *Component) build(req Request) ([]byte, error) {
	data, err := c.builder.Build(epubgen.Book{
		Title:   req.Title,
		Author:  req.Author,
		Content: req.Content,
	})
	if err != nil {
		return nil, err
	}
	c.metrics.RecordEpubSize(len(data))

	if len(data) == 0 {
		return nil, util.Wrap(util.EpubError, "checking epub", ErrEmptyEpub)
	}
	if mt := mimetype.Detect(data); !mt.Is(EpubMimeType) {
		return nil, util.Errorf(util.EpubError, "checking epub", "created file is %s, not %s", mt.String(), EpubMimeType)
	}
	return data, nil
}

func (c *Component) fail(log logger.LoggerInterface, err error, start time.Time) Result {
	c.metrics.RecordFailure(string(util.ContextOf(err)), time.Since(start))
	log.Errorf("Delivery failed: %v", err)
	return Result{Message: failurePrefix + err.Error(), Err: err}
}
