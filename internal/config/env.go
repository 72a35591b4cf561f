package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envSettings keeps every value as a raw string; parsing belongs to the
// Resolver so that a bad SMTP_PORT surfaces as InvalidConfig("port").
type envSettings struct {
	Server   *string `env:"SMTP_SERVER"`
	Port     *string `env:"SMTP_PORT"`
	TLS      *string `env:"SMTP_TLS"`
	Username *string `env:"SMTP_USERNAME"`
	Password *string `env:"SMTP_PASSWORD"`
	From     *string `env:"SMTP_FROM"`
}

// EnvProvider is a snapshot of the SMTP_* environment variables taken at
// construction time.
type EnvProvider struct {
	values Map
}

// LoadEnv loads the optional dotenv files (existing variables win, missing
// files are ignored) and then snapshots the process environment.
func LoadEnv(dotenvFiles ...string) (*EnvProvider, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return ParseEnv(nil)
}

// ParseEnv snapshots the given environment, or the process environment
// when environ is nil.
func ParseEnv(environ map[string]string) (*EnvProvider, error) {
	var s envSettings
	if err := env.ParseWithOptions(&s, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	values := Map{}
	for k, v := range map[Key]*string{
		KeyServer:   s.Server,
		KeyPort:     s.Port,
		KeyTLS:      s.TLS,
		KeyUsername: s.Username,
		KeyPassword: s.Password,
		KeyFrom:     s.From,
	} {
		if v != nil {
			values[k] = *v
		}
	}
	return &EnvProvider{values: values}, nil
}

// Lookup implements Provider.
func (p *EnvProvider) Lookup(key Key) (string, bool) {
	return p.values.Lookup(key)
}
