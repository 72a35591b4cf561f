// Package message assembles outgoing email messages from validated
// addresses and renders them in RFC 5322 form.
package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gomail "gopkg.in/mail.v2"

	"github.com/ryan-gang/smtp-client/internal/address"
	"github.com/ryan-gang/smtp-client/internal/util"
)

// Input is the caller-facing description of a message. Address lists are
// structured; use address.Split for comma-separated strings.
type Input struct {
	Subject string
	Body    string
	HTML    bool
	// From overrides the default sender when non-empty.
	From string
	To   []string
	Cc   []string
	Bcc  []string
	// KeepBcc renders a visible Bcc header. By default Bcc recipients only
	// appear in the envelope.
	KeepBcc bool
}

// Build validates in and assembles a Message. defaultFrom is used when
// in.From is empty.
func Build(in Input, defaultFrom string) (*Message, error) {
	rawFrom := strings.TrimSpace(in.From)
	if rawFrom == "" {
		rawFrom = strings.TrimSpace(defaultFrom)
	}
	if rawFrom == "" {
		return nil, util.NewError(util.MissingFrom, "from", nil)
	}
	from, err := address.Parse(rawFrom)
	if err != nil {
		return nil, &util.Error{Kind: util.InvalidAddress, Field: "from", Value: rawFrom, Err: err}
	}

	to, err := address.ParseStrings("to", in.To)
	if err != nil {
		return nil, err
	}
	if len(to) == 0 {
		return nil, util.NewError(util.MissingRecipients, "to", nil)
	}
	cc, err := address.ParseStrings("cc", in.Cc)
	if err != nil {
		return nil, err
	}
	bcc, err := address.ParseStrings("bcc", in.Bcc)
	if err != nil {
		return nil, err
	}

	m := &Message{
		msg:     gomail.NewMessage(),
		from:    from,
		to:      to,
		cc:      cc,
		bcc:     bcc,
		keepBcc: in.KeepBcc && len(bcc) > 0,
		html:    in.HTML,
		body:    in.Body,
	}

	m.msg.SetHeader("From", from.String())
	m.msg.SetHeader("To", to.Strings()...)
	if len(cc) > 0 {
		m.msg.SetHeader("Cc", cc.Strings()...)
	}
	m.msg.SetHeader("Subject", in.Subject)
	m.msg.SetDateHeader("Date", time.Now())
	m.msg.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), from.Domain()))

	if in.HTML {
		m.msg.SetBody("text/html", in.Body)
	} else {
		m.encoding = plainEncoding(in.Body)
		m.msg.SetHeader("Content-Transfer-Encoding", m.encoding)
	}

	return m, nil
}
