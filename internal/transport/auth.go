package transport

import (
	"errors"
	"fmt"
	"net/smtp"
	"slices"
	"strings"

	"github.com/emersion/go-sasl"
)

var errNoAuthMechanism = errors.New("server offers no supported AUTH mechanism")

// saslAuth adapts go-sasl clients to net/smtp. It picks the mechanism from
// what the server advertises and fails when nothing usable is offered, so
// credentials are never silently dropped.
type saslAuth struct {
	username string
	password string
	client   sasl.Client
}

func newAuth(username, password string) *saslAuth {
	return &saslAuth{username: username, password: password}
}

func (a *saslAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	offered := make([]string, 0, len(server.Auth))
	for _, m := range server.Auth {
		offered = append(offered, strings.ToUpper(m))
	}

	switch {
	case slices.Contains(offered, sasl.Plain):
		a.client = sasl.NewPlainClient("", a.username, a.password)
	case slices.Contains(offered, sasl.Login):
		a.client = sasl.NewLoginClient(a.username, a.password)
	default:
		return "", nil, fmt.Errorf("%w (offered %q)", errNoAuthMechanism, strings.Join(server.Auth, " "))
	}
	return a.client.Start()
}

func (a *saslAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	return a.client.Next(fromServer)
}
