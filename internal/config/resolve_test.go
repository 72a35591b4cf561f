package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryan-gang/smtp-client/internal/config"
	"github.com/ryan-gang/smtp-client/internal/util"
)

func ptr[T any](v T) *T { return &v }

func TestResolve_HardDefaults(t *testing.T) {
	t.Parallel()

	r := config.NewResolver(config.Map{config.KeyServer: "smtp.example.com"})
	conn, err := r.Resolve(config.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, config.Connection{Host: "smtp.example.com", Port: 587, TLS: true}, conn)
	assert.False(t, conn.HasCredentials())
}

func TestResolve_OverrideWins(t *testing.T) {
	t.Parallel()

	defaults := config.Map{
		config.KeyServer:   "default.example.com",
		config.KeyPort:     "not-a-number",
		config.KeyTLS:      "garbage",
		config.KeyUsername: "default-user",
		config.KeyPassword: "default-pass",
	}
	r := config.NewResolver(defaults)

	conn, err := r.Resolve(config.Overrides{
		Server:   ptr("127.0.0.1"),
		Port:     ptr(2525),
		TLS:      ptr(false),
		Username: ptr("me"),
		Password: ptr("secret"),
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", conn.Host)
	assert.Equal(t, uint16(2525), conn.Port)
	assert.False(t, conn.TLS)
	assert.Equal(t, "me", conn.Username)
	assert.Equal(t, "secret", conn.Password)
}

func TestResolve_ProviderValues(t *testing.T) {
	t.Parallel()

	r := config.NewResolver(config.Map{
		config.KeyServer:   " mail.example.com ",
		config.KeyPort:     "465",
		config.KeyTLS:      "off",
		config.KeyUsername: "user",
		config.KeyPassword: "pass",
	})
	conn, err := r.Resolve(config.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, config.Connection{
		Host:     "mail.example.com",
		Port:     465,
		TLS:      false,
		Username: "user",
		Password: "pass",
	}, conn)
	assert.True(t, conn.HasCredentials())
}

func TestResolve_MissingServer(t *testing.T) {
	t.Parallel()

	for name, p := range map[string]config.Provider{
		"nil provider":   nil,
		"empty provider": config.Map{},
		"blank value":    config.Map{config.KeyServer: "   "},
	} {
		name, p := name, p
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := config.NewResolver(p).Resolve(config.Overrides{})
			require.Error(t, err)
			assert.ErrorIs(t, err, util.ErrMissingConfig)

			var e *util.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "server", e.Field)
			assert.Contains(t, err.Error(), "server")
		})
	}
}

func TestResolve_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		defaults  config.Map
		overrides config.Overrides
		field     string
	}{
		{"port not numeric", config.Map{config.KeyPort: "abc"}, config.Overrides{}, "port"},
		{"port too large", config.Map{config.KeyPort: "70000"}, config.Overrides{}, "port"},
		{"port zero", config.Map{config.KeyPort: "0"}, config.Overrides{}, "port"},
		{"port negative override", config.Map{}, config.Overrides{Port: ptr(-1)}, "port"},
		{"port override too large", config.Map{}, config.Overrides{Port: ptr(65536)}, "port"},
		{"tls not boolean", config.Map{config.KeyTLS: "maybe"}, config.Overrides{}, "tls"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.defaults[config.KeyServer] = "smtp.example.com"
			_, err := config.NewResolver(tt.defaults).Resolve(tt.overrides)
			require.Error(t, err)
			assert.ErrorIs(t, err, util.ErrInvalidConfig)

			var e *util.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestResolve_TLSForms(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"true": true, "TRUE": true, "1": true, "on": true, "yes": true,
		"false": false, "0": false, "off": false, "no": false, "F": false,
	}
	for raw, want := range tests {
		raw, want := raw, want
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			r := config.NewResolver(config.Map{config.KeyServer: "h", config.KeyTLS: raw})
			conn, err := r.Resolve(config.Overrides{})
			require.NoError(t, err)
			assert.Equal(t, want, conn.TLS)
		})
	}
}

func TestResolve_IncompleteCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		defaults  config.Map
		overrides config.Overrides
	}{
		{"username only override", config.Map{}, config.Overrides{Username: ptr("u")}},
		{"password only override", config.Map{}, config.Overrides{Password: ptr("p")}},
		{"username only default", config.Map{config.KeyUsername: "u"}, config.Overrides{}},
		{"password only default", config.Map{config.KeyPassword: "p"}, config.Overrides{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.defaults[config.KeyServer] = "smtp.example.com"
			_, err := config.NewResolver(tt.defaults).Resolve(tt.overrides)
			assert.ErrorIs(t, err, util.ErrIncompleteCredentials)
		})
	}
}

func TestResolve_CredentialsMixSources(t *testing.T) {
	t.Parallel()

	r := config.NewResolver(config.Map{
		config.KeyServer:   "smtp.example.com",
		config.KeyPassword: "from-registry",
	})
	conn, err := r.Resolve(config.Overrides{Username: ptr("from-call")})
	require.NoError(t, err)
	assert.Equal(t, "from-call", conn.Username)
	assert.Equal(t, "from-registry", conn.Password)
}

func TestResolver_From(t *testing.T) {
	t.Parallel()

	none := config.NewResolver(config.Map{})
	_, ok := none.From(nil)
	assert.False(t, ok)

	withDefault := config.NewResolver(config.Map{config.KeyFrom: "default@example.com"})
	from, ok := withDefault.From(nil)
	assert.True(t, ok)
	assert.Equal(t, "default@example.com", from)

	from, ok = withDefault.From(ptr("override@example.com"))
	assert.True(t, ok)
	assert.Equal(t, "override@example.com", from)
}
