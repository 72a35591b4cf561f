// Package smtptest runs an in-process SMTP server for tests.
package smtptest

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"io"
	"math/big"
	"net"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Options configures a Server.
type Options struct {
	// TLS wraps the listener in TLS from the first byte.
	TLS bool
	// Username and Password, when set, advertise AUTH PLAIN and require it
	// before MAIL.
	Username string
	Password string
	// Mechanisms overrides the advertised AUTH mechanisms, PLAIN by default.
	Mechanisms []string
	// RejectRcpt and RejectData make the server refuse those commands.
	RejectRcpt *smtp.SMTPError
	RejectData *smtp.SMTPError
}

// Received is one accepted message.
type Received struct {
	// Hostname is the name the client gave in EHLO.
	Hostname string
	From     string
	To       []string
	Data     []byte
}

// Server is a running test SMTP server bound to 127.0.0.1.
type Server struct {
	Host string
	Port int

	opts  Options
	srv   *smtp.Server
	roots *x509.CertPool

	mu       sync.Mutex
	messages []Received
}

// NewServer starts a Server and stops it when the test ends.
func NewServer(t testing.TB, opts Options) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("smtptest: listen: %v", err)
	}

	s := &Server{opts: opts}
	if opts.TLS {
		cert, err := selfSignedCert()
		if err != nil {
			t.Fatalf("smtptest: %v", err)
		}
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			t.Fatalf("smtptest: %v", err)
		}
		s.roots = x509.NewCertPool()
		s.roots.AddCert(leaf)
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
	}

	addr := ln.Addr().(*net.TCPAddr)
	s.Host = addr.IP.String()
	s.Port = addr.Port

	s.srv = smtp.NewServer(&backend{s: s})
	s.srv.Domain = "localhost"
	s.srv.AllowInsecureAuth = true
	s.srv.ReadTimeout = 10 * time.Second
	s.srv.WriteTimeout = 10 * time.Second

	go func() { _ = s.srv.Serve(ln) }()
	t.Cleanup(func() { _ = s.srv.Close() })
	return s
}

// RootCAs returns a pool trusting the server certificate, nil without TLS.
func (s *Server) RootCAs() *x509.CertPool { return s.roots }

// Messages returns a copy of everything accepted so far.
func (s *Server) Messages() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Received, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Server) record(r Received) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, r)
}

type backend struct {
	s *Server
}

func (b *backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &session{s: b.s, hostname: c.Hostname()}, nil
}

type session struct {
	s        *Server
	hostname string
	authed   bool
	from     string
	to       []string
}

var errAuthRequired = &smtp.SMTPError{
	Code:         530,
	EnhancedCode: smtp.EnhancedCode{5, 7, 0},
	Message:      "Authentication required",
}

var errUnknownMechanism = &smtp.SMTPError{
	Code:         504,
	EnhancedCode: smtp.EnhancedCode{5, 7, 4},
	Message:      "Unsupported authentication mechanism",
}

var errBadCredentials = &smtp.SMTPError{
	Code:         535,
	EnhancedCode: smtp.EnhancedCode{5, 7, 8},
	Message:      "Authentication credentials invalid",
}

func (s *session) AuthMechanisms() []string {
	if s.s.opts.Username == "" {
		return nil
	}
	if len(s.s.opts.Mechanisms) > 0 {
		return s.s.opts.Mechanisms
	}
	return []string{sasl.Plain}
}

func (s *session) Auth(mech string) (sasl.Server, error) {
	check := func(username, password string) error {
		if username != s.s.opts.Username || password != s.s.opts.Password {
			return errBadCredentials
		}
		s.authed = true
		return nil
	}
	if !slices.Contains(s.AuthMechanisms(), mech) {
		return nil, errUnknownMechanism
	}
	switch mech {
	case sasl.Plain:
		return sasl.NewPlainServer(func(_, username, password string) error {
			return check(username, password)
		}), nil
	case sasl.Login:
		return sasl.NewLoginServer(check), nil
	}
	return nil, errUnknownMechanism
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	if s.s.opts.Username != "" && !s.authed {
		return errAuthRequired
	}
	s.from = from
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	if s.s.opts.RejectRcpt != nil {
		return s.s.opts.RejectRcpt
	}
	s.to = append(s.to, to)
	return nil
}

func (s *session) Data(r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	if s.s.opts.RejectData != nil {
		return s.s.opts.RejectData
	}
	s.s.record(Received{Hostname: s.hostname, From: s.from, To: append([]string(nil), s.to...), Data: buf.Bytes()})
	return nil
}

func (s *session) Reset() {
	s.from = ""
	s.to = nil
}

func (s *session) Logout() error { return nil }

// selfSignedCert generates an in-memory ECDSA P-256 certificate for
// localhost and 127.0.0.1.
func selfSignedCert() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "localhost"},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	if len(der) == 0 {
		return tls.Certificate{}, errors.New("empty certificate")
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
