// Package address parses and validates email addresses and comma-separated
// address lists.
package address

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/ryan-gang/smtp-client/internal/util"
)

// Address is a validated local-part@domain value.
type Address struct {
	addr string
}

// Parse validates s as a bare addr-spec. Display names and angle brackets
// are rejected.
func Parse(s string) (Address, error) {
	parsed, err := mail.ParseAddress(s)
	if err != nil {
		return Address{}, err
	}
	if parsed.Name != "" || parsed.Address != s {
		return Address{}, errors.New("expected a bare local-part@domain address")
	}
	return Address{addr: parsed.Address}, nil
}

func (a Address) String() string { return a.addr }

// Domain returns the part after the last '@'.
func (a Address) Domain() string {
	return a.addr[strings.LastIndexByte(a.addr, '@')+1:]
}

// IsZero reports whether a was never successfully parsed.
func (a Address) IsZero() bool { return a.addr == "" }

// List is an ordered sequence of validated addresses.
type List []Address

// Strings returns the addresses in order.
func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, a := range l {
		out[i] = a.String()
	}
	return out
}

// String joins the addresses with ", " as they appear in a header.
func (l List) String() string {
	return strings.Join(l.Strings(), ", ")
}

// ParseStrings validates every entry of raw, trimming surrounding
// whitespace. A nil or empty slice yields an empty list. field names the
// list (to, cc, bcc, from) in the returned InvalidAddress error.
func ParseStrings(field string, raw []string) (List, error) {
	list := make(List, 0, len(raw))
	for _, segment := range raw {
		segment = strings.TrimSpace(segment)
		a, err := Parse(segment)
		if err != nil {
			return nil, &util.Error{Kind: util.InvalidAddress, Field: field, Value: segment, Err: err}
		}
		list = append(list, a)
	}
	return list, nil
}

// Split breaks a comma-separated string into segments. Blank input yields
// nil, so a present-but-blank list behaves like an absent one.
func Split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// ParseList splits a comma-separated string and validates each segment.
// Blank input is an empty list, not an error.
func ParseList(field, raw string) (List, error) {
	return ParseStrings(field, Split(raw))
}
