package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmailBuildsMessage(t *testing.T) {
	s := NewSender("smtp.example.com", "587", "noreply@memome.app", "secret")
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, s.SendEmail("ann@example.com", "Dentist\r\nBcc: x@example.com", "body"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"ann@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Dentist  Bcc: x@example.com\r\n")
	assert.NotContains(t, gotMsg, "\r\nBcc:")
}

func TestSendEmailWrapsFailure(t *testing.T) {
	s := NewSender("smtp.example.com", "587", "noreply@memome.app", "secret")
	boom := errors.New("relay down")
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := s.SendEmail("ann@example.com", "s", "b")
	assert.ErrorIs(t, err, boom)
}
