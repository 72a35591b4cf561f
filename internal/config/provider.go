package config

import (
	"fmt"
	"strings"
)

// Key names a process-wide default in the settings registry.
type Key string

const (
	KeyServer   Key = "server"
	KeyPort     Key = "port"
	KeyTLS      Key = "tls"
	KeyUsername Key = "username"
	KeyPassword Key = "password"
	KeyFrom     Key = "from_address"
)

// Keys lists every recognised key in display order.
var Keys = []Key{KeyServer, KeyPort, KeyTLS, KeyUsername, KeyPassword, KeyFrom}

// ParseKey accepts a key name as written in the registry.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if string(k) == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown setting %q", s)
}

// Provider supplies process-wide defaults. Implementations must be safe for
// concurrent reads; the send path never writes through a Provider.
type Provider interface {
	Lookup(key Key) (string, bool)
}

// Map is a fixed, in-memory Provider.
type Map map[Key]string

// Lookup implements Provider. Blank values count as absent.
func (m Map) Lookup(key Key) (string, bool) {
	v, ok := m[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
