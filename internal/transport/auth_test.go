package transport

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaslAuth_Start(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		offered  []string
		wantMech string
		wantErr  bool
	}{
		{name: "plain preferred", offered: []string{"LOGIN", "PLAIN"}, wantMech: "PLAIN"},
		{name: "login fallback", offered: []string{"LOGIN", "CRAM-MD5"}, wantMech: "LOGIN"},
		{name: "case insensitive", offered: []string{"plain"}, wantMech: "PLAIN"},
		{name: "nothing advertised", offered: nil, wantErr: true},
		{name: "only unsupported", offered: []string{"XOAUTH2"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newAuth("user", "secret")
			mech, _, err := a.Start(&smtp.ServerInfo{Name: "localhost", Auth: tt.offered})
			if tt.wantErr {
				assert.ErrorIs(t, err, errNoAuthMechanism)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMech, mech)
		})
	}
}

func TestSaslAuth_LoginExchange(t *testing.T) {
	t.Parallel()

	a := newAuth("user", "secret")
	mech, ir, err := a.Start(&smtp.ServerInfo{Auth: []string{"LOGIN"}})
	require.NoError(t, err)
	assert.Equal(t, "LOGIN", mech)
	assert.Equal(t, "user", string(ir))

	resp, err := a.Next([]byte("Password:"), true)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(resp))

	resp, err = a.Next(nil, false)
	assert.NoError(t, err)
	assert.Nil(t, resp)
}
