// Package transport turns a resolved connection into a relay handle that
// submits messages to a fixed upstream SMTP server.
package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/idna"
	gomail "gopkg.in/mail.v2"

	"github.com/ryan-gang/smtp-client/internal/config"
	"github.com/ryan-gang/smtp-client/internal/util"
)

// DefaultTimeout bounds dialing and each SMTP command when the caller
// supplies no deadline.
const DefaultTimeout = 10 * time.Second

// Message is what a Transport submits: an envelope plus a renderable body.
type Message interface {
	io.WriterTo
	Envelope() (from string, rcpts []string)
}

// Reply is the server's answer to a submission.
type Reply struct {
	Code  int
	Lines []string
}

// Positive reports a 2xx positive completion reply.
func (r Reply) Positive() bool { return r.Code >= 200 && r.Code < 300 }

// Detail joins the reply lines for display.
func (r Reply) Detail() string { return strings.Join(r.Lines, "; ") }

// Mode describes the connection security a Transport will use.
type Mode string

const (
	ModeWrapper Mode = "wrapper"
	ModeNone    Mode = "none"
)

type options struct {
	timeout   time.Duration
	localName string
	rootCAs   *x509.CertPool
}

// Option configures a Transport.
type Option func(*options)

// WithTimeout sets the dial and command timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLocalName sets the name sent in EHLO.
func WithLocalName(name string) Option {
	return func(o *options) { o.localName = name }
}

// WithRootCAs replaces the system roots used to verify the server.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(o *options) { o.rootCAs = pool }
}

// Transport is a reusable relay handle. It holds no open connection; every
// Send dials, submits and quits.
type Transport struct {
	dialer   gomail.Dialer
	mode     Mode
	timeout  time.Duration
	username string
	password string
}

// New prepares a Transport for conn without touching the network.
func New(conn config.Connection, opts ...Option) (*Transport, error) {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	d := gomail.NewDialer(conn.Host, int(conn.Port), "", "")
	d.Timeout = o.timeout
	d.LocalName = o.localName
	d.RetryFailure = false

	t := &Transport{timeout: o.timeout}
	if conn.TLS {
		tlsConfig, err := tlsParameters(conn.Host, o.rootCAs)
		if err != nil {
			return nil, util.NewError(util.TlsSetupFailed, "", err)
		}
		d.Host = tlsConfig.ServerName
		d.SSL = true
		d.TLSConfig = tlsConfig
		t.mode = ModeWrapper
	} else {
		d.SSL = false
		d.StartTLSPolicy = gomail.NoStartTLS
		t.mode = ModeNone
	}

	if conn.HasCredentials() {
		t.username, t.password = conn.Username, conn.Password
	}

	t.dialer = *d
	return t, nil
}

// Addr returns the host:port the Transport relays to.
func (t *Transport) Addr() string {
	return net.JoinHostPort(t.dialer.Host, strconv.Itoa(t.dialer.Port))
}

// Mode returns the connection security mode.
func (t *Transport) Mode() Mode { return t.mode }

// Authenticated reports whether credentials are attached.
func (t *Transport) Authenticated() bool { return t.username != "" }

// Send submits msg. A reply from the server, positive or not, is returned
// with a nil error; network, TLS and protocol failures are
// TransportSendFailed. ctx's deadline caps the dialer timeout.
func (t *Transport) Send(ctx context.Context, msg Message) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, util.NewError(util.TransportSendFailed, "", err)
	}

	// Auth state is per connection, so each send works on its own copy.
	d := t.dialer
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		// The dialer reads a zero timeout as no timeout at all.
		if remaining <= 0 {
			return Reply{}, util.NewError(util.TransportSendFailed, "", context.DeadlineExceeded)
		}
		if remaining < d.Timeout {
			d.Timeout = remaining
		}
	}
	if t.username != "" {
		// Set explicitly so a server without usable AUTH fails the send.
		d.Auth = newAuth(t.username, t.password)
	}

	sc, err := d.Dial()
	if err != nil {
		return classify(err)
	}

	from, rcpts := msg.Envelope()
	if err := sc.Send(from, rcpts, msg); err != nil {
		_ = sc.Close()
		return classify(err)
	}
	// A failed QUIT does not undo delivery.
	_ = sc.Close()

	// net/smtp only completes DATA on an exact 250.
	return Reply{Code: 250}, nil
}

func classify(err error) (Reply, error) {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return Reply{Code: protoErr.Code, Lines: strings.Split(protoErr.Msg, "\n")}, nil
	}
	return Reply{}, util.NewError(util.TransportSendFailed, "", err)
}

func tlsParameters(host string, roots *x509.CertPool) (*tls.Config, error) {
	serverName := host
	if net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return nil, fmt.Errorf("invalid server name %q: %w", host, err)
		}
		serverName = ascii
	}
	if roots == nil {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("loading system roots: %w", err)
		}
		roots = pool
	}
	return &tls.Config{
		ServerName: serverName,
		RootCAs:    roots,
		MinVersion: tls.VersionTLS12,
	}, nil
}
