package mail

import (
	"context"
	"strconv"

	"github.com/ryan-gang/smtp-client/internal/config"
	"github.com/ryan-gang/smtp-client/internal/message"
	"github.com/ryan-gang/smtp-client/internal/transport"
	"github.com/ryan-gang/smtp-client/internal/util"
)

// Request holds the arguments of one send. Nil pointers fall back to the
// configured defaults.
type Request struct {
	Subject string
	Body    string
	HTML    bool
	From    *string
	To      []string
	Cc      []string
	Bcc     []string
	KeepBcc bool

	Server   *string
	Port     *int
	TLS      *bool
	Username *string
	Password *string
}

// Result is the outcome of a send the server accepted.
type Result struct {
	Succeeded bool
	Code      string
	Detail    string
}

func (r Request) overrides() config.Overrides {
	return config.Overrides{
		Server:   r.Server,
		Port:     r.Port,
		TLS:      r.TLS,
		Username: r.Username,
		Password: r.Password,
	}
}

// Send resolves the connection, builds the message and submits it. Local
// failures are reported before any connection is made. A reply outside
// the 2xx class is an SmtpRejected error.
func (s *SMTPMailSender) Send(ctx context.Context, req Request) (Result, error) {
	conn, err := s.resolver.Resolve(req.overrides())
	if err != nil {
		return Result{}, err
	}

	defaultFrom, _ := s.resolver.From(nil)
	var from string
	if req.From != nil {
		from = *req.From
	}
	msg, err := message.Build(message.Input{
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.HTML,
		From:    from,
		To:      req.To,
		Cc:      req.Cc,
		Bcc:     req.Bcc,
		KeepBcc: req.KeepBcc,
	}, defaultFrom)
	if err != nil {
		return Result{}, err
	}

	tr, err := transport.New(conn, s.opts...)
	if err != nil {
		return Result{}, err
	}

	s.log.Debug("sending mail",
		"addr", tr.Addr(),
		"tls", tr.Mode(),
		"auth", tr.Authenticated(),
		"to", len(msg.To()),
		"cc", len(msg.Cc()),
		"bcc", len(msg.Bcc()),
	)

	reply, err := tr.Send(ctx, msg)
	if err != nil {
		s.log.Debug("send failed", "addr", tr.Addr(), "err", err)
		return Result{}, err
	}

	code := strconv.Itoa(reply.Code)
	if !reply.Positive() {
		s.log.Debug("server rejected mail", "code", code, "detail", reply.Detail())
		return Result{}, &util.Error{Kind: util.SmtpRejected, Code: code, Detail: reply.Detail()}
	}

	s.log.Info("mail accepted", "code", code)
	return Result{Succeeded: true, Code: code, Detail: reply.Detail()}, nil
}
