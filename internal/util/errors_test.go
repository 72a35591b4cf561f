package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "missing config names field",
			err:  NewError(MissingConfig, "server", nil),
			want: "MissingConfig: SMTP server not provided and no default configured",
		},
		{
			name: "invalid config wraps cause",
			err:  NewError(InvalidConfig, "port", errors.New("out of range")),
			want: "InvalidConfig: invalid port: out of range",
		},
		{
			name: "invalid address names list and segment",
			err:  &Error{Kind: InvalidAddress, Field: "cc", Value: "not-an-address"},
			want: `InvalidAddress: invalid cc address "not-an-address"`,
		},
		{
			name: "rejection carries code and text",
			err:  &Error{Kind: SmtpRejected, Code: "550", Detail: "5.1.1 No such user"},
			want: "SmtpRejected: SMTP error 550: 5.1.1 No such user",
		},
		{
			name: "missing from",
			err:  NewError(MissingFrom, "from", nil),
			want: "MissingFrom: From address not provided and no default configured",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_IsAndKindOf(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := fmt.Errorf("sending: %w", NewError(TransportSendFailed, "", cause))

	assert.ErrorIs(t, err, ErrTransportSendFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSmtpRejected)
	assert.Equal(t, TransportSendFailed, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(cause))
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	got := FormatError("sending mail", NewError(MissingRecipients, "to", nil))
	assert.Equal(t, "error: sending mail - MissingRecipients: at least one to address is required", got)
}
