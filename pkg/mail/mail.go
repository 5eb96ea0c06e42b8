// Package mail sends transactional email over SMTP.
//
//	mail.To("user@example.com").
//	    Subject("Your order is confirmed").
//	    Body("<h1>Thanks!</h1>").
//	    Send()
//
// Connection settings come from MAIL_HOST, MAIL_PORT, MAIL_USERNAME,
// MAIL_PASSWORD, MAIL_FROM and MAIL_FROM_NAME. Port 465 uses implicit
// TLS; anything else goes through net/smtp's STARTTLS negotiation.
package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/changyuyeo/fitbody/config"
)

// Message is an outgoing HTML email under construction.
type Message struct {
	to      []string
	subject string
	html    string
}

// To starts a message addressed to the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses}
}

// Subject sets the subject line.
func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets the HTML body.
func (m *Message) Body(html string) *Message {
	m.html = html
	return m
}

// Send delivers the message through the configured SMTP relay.
func (m *Message) Send() error {
	username := config.Get("MAIL_USERNAME", "")
	if username == "" {
		return fmt.Errorf("mail: MAIL_USERNAME not configured")
	}

	host := config.Get("MAIL_HOST", "smtp.mailtrap.io")
	port := config.Get("MAIL_PORT", "587")
	from := config.Get("MAIL_FROM", "no-reply@fitbody.shop")

	auth := smtp.PlainAuth("", username, config.Get("MAIL_PASSWORD", ""), host)
	raw := m.compose(from)

	if port == "465" {
		return m.deliverTLS(host, port, auth, from, raw)
	}
	return smtp.SendMail(host+":"+port, auth, from, m.to, raw)
}

func (m *Message) compose(from string) []byte {
	sender := fmt.Sprintf("%s <%s>", config.Get("MAIL_FROM_NAME", "fitbody"), from)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", m.subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(m.html)
	return []byte(b.String())
}

// deliverTLS handles relays that expect a TLS connection from the first
// byte instead of STARTTLS.
func (m *Message) deliverTLS(host, port string, auth smtp.Auth, from string, raw []byte) error {
	conn, err := tls.Dial("tcp", host+":"+port, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: tls dial %s: %w", host, err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit() //nolint:errcheck

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range m.to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close() //nolint:errcheck
		return err
	}
	return w.Close()
}
