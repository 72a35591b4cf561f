// Package config resolves SMTP connection settings from per-call overrides,
// a process-wide Provider and hard-coded defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ryan-gang/smtp-client/internal/util"
)

const (
	DefaultPort uint16 = 587
	DefaultTLS         = true
)

// Overrides holds per-call values. A nil field defers to the Provider.
type Overrides struct {
	Server   *string
	Port     *int
	TLS      *bool
	Username *string
	Password *string
}

// Connection is a complete, validated set of connection parameters.
type Connection struct {
	Host     string
	Port     uint16
	TLS      bool
	Username string
	Password string
}

// HasCredentials reports whether a username/password pair is attached.
func (c Connection) HasCredentials() bool {
	return c.Username != ""
}

// Resolver merges Overrides with the defaults of an injected Provider.
type Resolver struct {
	defaults Provider
}

// NewResolver returns a Resolver reading defaults from p. A nil p means
// no process-wide defaults.
func NewResolver(p Provider) *Resolver {
	return &Resolver{defaults: p}
}

// Resolve produces a Connection or a MissingConfig, InvalidConfig or
// IncompleteCredentials error. It performs no I/O.
func (r *Resolver) Resolve(o Overrides) (Connection, error) {
	var conn Connection

	host, ok, _ := resolve(o.Server, r.defaults, KeyServer, parseString, nil)
	if !ok || strings.TrimSpace(host) == "" {
		return Connection{}, util.NewError(util.MissingConfig, string(KeyServer), nil)
	}
	conn.Host = strings.TrimSpace(host)

	def := int(DefaultPort)
	port, _, err := resolve(o.Port, r.defaults, KeyPort, parsePort, &def)
	if err == nil {
		err = checkPort(port)
	}
	if err != nil {
		return Connection{}, util.NewError(util.InvalidConfig, string(KeyPort), err)
	}
	conn.Port = uint16(port)

	tlsDefault := DefaultTLS
	conn.TLS, _, err = resolve(o.TLS, r.defaults, KeyTLS, parseBool, &tlsDefault)
	if err != nil {
		return Connection{}, util.NewError(util.InvalidConfig, string(KeyTLS), err)
	}

	username, hasUser, _ := resolve(o.Username, r.defaults, KeyUsername, parseString, nil)
	password, hasPass, _ := resolve(o.Password, r.defaults, KeyPassword, parseString, nil)
	hasUser = hasUser && username != ""
	hasPass = hasPass && password != ""
	if hasUser != hasPass {
		return Connection{}, util.NewError(util.IncompleteCredentials, "", nil)
	}
	if hasUser {
		conn.Username, conn.Password = username, password
	}

	return conn, nil
}

// From resolves the sender address: override, then the provider's
// from_address. ok is false when neither is set.
func (r *Resolver) From(override *string) (string, bool) {
	from, ok, _ := resolve(override, r.defaults, KeyFrom, parseString, nil)
	return from, ok && strings.TrimSpace(from) != ""
}

// resolve applies the three-tier precedence shared by every setting:
// override, then the provider value run through parse, then def.
// ok is false when all three tiers are empty.
func resolve[T any](override *T, p Provider, key Key, parse func(string) (T, error), def *T) (value T, ok bool, err error) {
	if override != nil {
		return *override, true, nil
	}
	if p != nil {
		if raw, found := p.Lookup(key); found {
			value, err = parse(strings.TrimSpace(raw))
			if err != nil {
				return value, false, err
			}
			return value, true, nil
		}
	}
	if def != nil {
		return *def, true, nil
	}
	return value, false, nil
}

func parseString(s string) (string, error) { return s, nil }

func parsePort(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%q is not a port number: %w", s, err)
	}
	return int(n), nil
}

func checkPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// parseBool accepts strconv's forms plus on/off and yes/no.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New(strconv.Quote(s) + " is not a boolean")
	}
	return b, nil
}
