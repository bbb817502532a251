package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers plain text mail through an SMTP relay.
type Sender struct {
	Host     string
	Port     string
	From     string
	Password string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender returns a Sender for the given relay.
func NewSender(host, port, from, password string) *Sender {
	return &Sender{Host: host, Port: port, From: from, Password: password, send: smtp.SendMail}
}

// SendEmail sends a plain text email using SMTP.
func (s *Sender) SendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)

	msg := []byte("From: " + s.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + sanitizeHeader(subject) + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body + "\r\n")

	address := s.Host + ":" + s.Port

	send := s.send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(address, auth, s.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// sanitizeHeader keeps user text from injecting extra headers.
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
