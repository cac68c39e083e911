package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_NilError(t *testing.T) {
	assert.NoError(t, Wrap(MailError, "sending mail", nil))
}

func TestWrap_FormatsContextAndOperation(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(MailError, "sending mail", cause)

	assert.Equal(t, "Mail error: sending mail - connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestContextOf(t *testing.T) {
	err := Errorf(ValidationError, "validating request", "smtp_port %q is not a number", "abc")
	wrapped := fmt.Errorf("delivery: %w", err)

	assert.Equal(t, ValidationError, ContextOf(wrapped))
	assert.Equal(t, ErrorContext(""), ContextOf(errors.New("plain")))
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "digest", FileStem("/tmp/spool/digest.html"))
	assert.Equal(t, "notes.v2", FileStem("notes.v2.htm"))
	assert.Equal(t, ".hidden", FileStem(".hidden"))
}
