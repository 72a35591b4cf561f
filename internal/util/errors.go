package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Kind classifies a failure so callers can tell configuration problems
// from network problems.
type Kind string

const (
	MissingConfig         Kind = "MissingConfig"
	InvalidConfig         Kind = "InvalidConfig"
	IncompleteCredentials Kind = "IncompleteCredentials"
	TlsSetupFailed        Kind = "TlsSetupFailed"
	MissingFrom           Kind = "MissingFrom"
	MissingRecipients     Kind = "MissingRecipients"
	InvalidAddress        Kind = "InvalidAddress"
	TransportSendFailed   Kind = "TransportSendFailed"
	SmtpRejected          Kind = "SmtpRejected"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrMissingConfig         = &Error{Kind: MissingConfig}
	ErrInvalidConfig         = &Error{Kind: InvalidConfig}
	ErrIncompleteCredentials = &Error{Kind: IncompleteCredentials}
	ErrTlsSetupFailed        = &Error{Kind: TlsSetupFailed}
	ErrMissingFrom           = &Error{Kind: MissingFrom}
	ErrMissingRecipients     = &Error{Kind: MissingRecipients}
	ErrInvalidAddress        = &Error{Kind: InvalidAddress}
	ErrTransportSendFailed   = &Error{Kind: TransportSendFailed}
	ErrSmtpRejected          = &Error{Kind: SmtpRejected}
)

// Error is the single error type returned by the send pipeline.
type Error struct {
	Kind Kind
	// Field names the config key or address list at fault.
	Field string
	// Value holds the offending raw text (InvalidAddress).
	Value string
	// Code and Detail carry the server reply (SmtpRejected).
	Code   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	switch e.Kind {
	case MissingConfig:
		fmt.Fprintf(&b, ": SMTP %s not provided and no default configured", e.Field)
	case InvalidConfig:
		fmt.Fprintf(&b, ": invalid %s", e.Field)
	case IncompleteCredentials:
		b.WriteString(": username and password must be provided together")
	case TlsSetupFailed:
		b.WriteString(": failed to create TLS parameters")
	case MissingFrom:
		b.WriteString(": From address not provided and no default configured")
	case MissingRecipients:
		b.WriteString(": at least one to address is required")
	case InvalidAddress:
		fmt.Fprintf(&b, ": invalid %s address %q", e.Field, e.Value)
	case TransportSendFailed:
		b.WriteString(": failed to send email")
	case SmtpRejected:
		fmt.Fprintf(&b, ": SMTP error %s: %s", e.Code, e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match on Kind alone so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError builds an *Error for kind and field, wrapping cause.
func NewError(kind Kind, field string, cause error) *Error {
	return &Error{Kind: kind, Field: field, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

var red = color.New(color.FgRed)

// FormatError creates a standardized error message with context
func FormatError(operation string, err error) string {
	return fmt.Sprintf("error: %s - %v", operation, err)
}

// LogError prints an error using the standard format
func LogError(operation string, err error) {
	red.Println(FormatError(operation, err))
}
