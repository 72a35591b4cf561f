package mail

import (
	"context"

	"github.com/ryan-gang/smtp-client/internal/config"
	"github.com/ryan-gang/smtp-client/internal/logger"
	"github.com/ryan-gang/smtp-client/internal/transport"
)

// MailSender defines the interface for sending emails
type MailSender interface {
	Send(ctx context.Context, req Request) (Result, error)
}

// SMTPMailSender implements MailSender using SMTP
type SMTPMailSender struct {
	resolver *config.Resolver
	log      logger.LoggerInterface
	opts     []transport.Option
}

// Option configures an SMTPMailSender.
type Option func(*SMTPMailSender)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logger.LoggerInterface) Option {
	return func(s *SMTPMailSender) { s.log = l }
}

// WithTransportOptions passes opts to every transport the sender creates.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(s *SMTPMailSender) { s.opts = append(s.opts, opts...) }
}

// NewSMTPMailSender creates a new SMTP mail sender reading defaults from cfg
func NewSMTPMailSender(cfg config.Provider, opts ...Option) *SMTPMailSender {
	s := &SMTPMailSender{
		resolver: config.NewResolver(cfg),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
