package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/pkg/config"
)

func testMailer() *SMTPMailer {
	return NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 2525, From: "standup-bot@example.com"}, nil)
}

func TestBuildMessage_Multipart(t *testing.T) {
	msg, err := testMailer().buildMessage(services.Email{
		To:      []string{"pm@example.com", "lead@example.com"},
		Subject: "[Apollo] Daily Standup Summary - 2025-03-04",
		HTML:    "<p>Minutes</p>",
		Text:    "Minutes",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "pm@example.com")
	assert.Contains(t, out, "lead@example.com")
	assert.Contains(t, out, "Daily Standup Summary")
	assert.Contains(t, out, "multipart/alternative")
	assert.Contains(t, out, "text/html")
	assert.Contains(t, out, "text/plain")
}

func TestBuildMessage_Errors(t *testing.T) {
	_, err := testMailer().buildMessage(services.Email{Subject: "x", Text: "y"})
	assert.ErrorIs(t, err, errNoRecipients)

	_, err = testMailer().buildMessage(services.Email{To: []string{"not an address"}, Text: "y"})
	assert.Error(t, err)
}

func TestSend_NoRecipients(t *testing.T) {
	err := testMailer().Send(context.Background(), services.Email{Subject: "x"})
	assert.ErrorIs(t, err, errNoRecipients)
}
