package message

import (
	"bytes"
	"io"
	"net/mail"
	"strings"

	"gopkg.in/alexcesaro/quotedprintable.v3"
	gomail "gopkg.in/mail.v2"

	"github.com/ryan-gang/smtp-client/internal/address"
)

const (
	encoding7bit            = "7bit"
	encodingQuotedPrintable = "quoted-printable"
	maxLineLength           = 998
)

// Message is a built, immutable email ready for submission. It implements
// io.WriterTo so it can be handed straight to an SMTP DATA writer.
type Message struct {
	msg      *gomail.Message
	from     address.Address
	to       address.List
	cc       address.List
	bcc      address.List
	keepBcc  bool
	html     bool
	body     string
	encoding string
}

// From returns the sender.
func (m *Message) From() address.Address { return m.from }

// To returns the primary recipients.
func (m *Message) To() address.List { return m.to }

// Cc returns the carbon-copy recipients.
func (m *Message) Cc() address.List { return m.cc }

// Bcc returns the blind-copy recipients.
func (m *Message) Bcc() address.List { return m.bcc }

// Body returns the body exactly as supplied.
func (m *Message) Body() string { return m.body }

// Envelope returns the SMTP envelope: the sender and every distinct
// recipient from To, Cc and Bcc in that order.
func (m *Message) Envelope() (string, []string) {
	seen := make(map[string]struct{}, len(m.to)+len(m.cc)+len(m.bcc))
	rcpts := make([]string, 0, len(m.to)+len(m.cc)+len(m.bcc))
	for _, list := range []address.List{m.to, m.cc, m.bcc} {
		for _, a := range list {
			if _, dup := seen[a.String()]; dup {
				continue
			}
			seen[a.String()] = struct{}{}
			rcpts = append(rcpts, a.String())
		}
	}
	return m.from.String(), rcpts
}

// WriteTo renders the message. The mail library always strips Bcc, so a
// kept Bcc header is written here ahead of its output; plain bodies are
// written here too so that no Content-Type header is emitted for them.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if m.keepBcc {
		if _, err := io.WriteString(cw, "Bcc: "+m.bcc.String()+"\r\n"); err != nil {
			return cw.n, err
		}
	}
	if _, err := m.msg.WriteTo(cw); err != nil {
		return cw.n, err
	}
	if !m.html {
		if _, err := io.WriteString(cw, "\r\n"); err != nil {
			return cw.n, err
		}
		if err := writePlainBody(cw, m.body, m.encoding); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

// Bytes returns the rendered message.
func (m *Message) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = m.WriteTo(&buf)
	return buf.Bytes()
}

// Header returns the rendered header block, parsed.
func (m *Message) Header() mail.Header {
	parsed, err := mail.ReadMessage(bytes.NewReader(m.Bytes()))
	if err != nil {
		return mail.Header{}
	}
	return parsed.Header
}

func plainEncoding(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if len(line) > maxLineLength {
			return encodingQuotedPrintable
		}
	}
	for i := 0; i < len(body); i++ {
		if body[i] >= 0x80 || body[i] == 0 {
			return encodingQuotedPrintable
		}
	}
	return encoding7bit
}

func writePlainBody(w io.Writer, body, encoding string) error {
	if encoding == encodingQuotedPrintable {
		qp := quotedprintable.NewWriter(w)
		if _, err := io.WriteString(qp, body); err != nil {
			return err
		}
		return qp.Close()
	}
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	_, err := io.WriteString(w, strings.ReplaceAll(normalized, "\n", "\r\n"))
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
