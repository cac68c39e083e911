package mail

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"
)

var ErrAuthUnsupported = errors.New("SMTP AUTH extension not supported by server")

// requiredAuth logs in with whichever mechanism the server offers and fails
// when it offers none. Mechanism choice follows gomail's own.
type requiredAuth struct {
	username string
	password string
	host     string
	chosen   smtp.Auth
}

func newRequiredAuth(server Server) *requiredAuth {
	return &requiredAuth{username: server.Username, password: server.Password, host: server.Host}
}

func offers(mechanisms []string, name string) bool {
	for _, m := range mechanisms {
		if m == name {
			return true
		}
	}
	return false
}

func (a *requiredAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if len(server.Auth) == 0 {
		return "", nil, ErrAuthUnsupported
	}

	switch {
	case offers(server.Auth, "CRAM-MD5"):
		a.chosen = smtp.CRAMMD5Auth(a.username, a.password)
	case offers(server.Auth, "LOGIN") && !offers(server.Auth, "PLAIN"):
		a.chosen = &loginAuth{username: a.username, password: a.password, host: a.host}
	default:
		a.chosen = smtp.PlainAuth("", a.username, a.password, a.host)
	}
	return a.chosen.Start(server)
}

func (a *requiredAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	return a.chosen.Next(fromServer, more)
}

// loginAuth implements the LOGIN mechanism, which net/smtp lacks
type loginAuth struct {
	username string
	password string
	host     string
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, errors.New("unencrypted connection")
	}
	if server.Name != a.host {
		return "", nil, errors.New("wrong host name")
	}
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch {
	case bytes.Equal(fromServer, []byte("Username:")):
		return []byte(a.username), nil
	case bytes.Equal(fromServer, []byte("Password:")):
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("unexpected server challenge: %s", fromServer)
	}
}
