package kindle

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
)

// Request is one delivery: a book and where to send it
type Request struct {
	Author      string `json:"author" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content" validate:"required"`
	KindleEmail string `json:"kindle_email" validate:"required"`
	SenderEmail string `json:"sender_email" validate:"required"`
	AppPassword string `json:"app_password" validate:"required"`
	SMTPServer  string `json:"smtp_server" validate:"required"`
	SMTPPort    string `json:"smtp_port" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Bind builds a request from named input values, filling defaults for missing ones
func Bind(values map[string]string) Request {
	get := func(name string) string {
		return values[name]
	}
	return Request{
		Author:      get(InputAuthor),
		Title:       get(InputTitle),
		Content:     get(InputContent),
		KindleEmail: get(InputKindleEmail),
		SenderEmail: get(InputSenderEmail),
		AppPassword: get(InputAppPassword),
		SMTPServer:  get(InputSMTPServer),
		SMTPPort:    get(InputSMTPPort),
	}.WithDefaults()
}

// WithDefaults fills empty fields that have a schema default
func (r Request) WithDefaults() Request {
	if r.SMTPServer == "" {
		r.SMTPServer = defaultValue(InputSMTPServer)
	}
	if r.SMTPPort == "" {
		r.SMTPPort = defaultValue(InputSMTPPort)
	}
	return r
}

// Filename is the attachment name, derived from the title
func (r Request) Filename() string {
	return r.Title + ".epub"
}

// Port parses the SMTP port
func (r Request) Port() (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(r.SMTPPort))
	if err != nil {
		return 0, util.Errorf(util.ValidationError, "validating request", "smtp_port %q is not a number", r.SMTPPort)
	}
	if port < 1 || port > 65535 {
		return 0, util.Errorf(util.ValidationError, "validating request", "smtp_port %d must be between 1 and 65535", port)
	}
	return port, nil
}

// Validate reports missing fields and a malformed port before any work is done
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return util.Wrap(util.ValidationError, "validating request", err)
		}
		missing := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			missing = append(missing, fe.Field())
		}
		return util.Errorf(util.ValidationError, "validating request", "missing required input: %s", strings.Join(missing, ", "))
	}
	_, err := r.Port()
	return err
}
