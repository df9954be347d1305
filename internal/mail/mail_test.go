package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestActivationMessage(t *testing.T) {
	msg, err := ActivationMessage(LinkData{
		Email:    "ann@example.com",
		Protocol: "https",
		Domain:   "geoblog.test",
		UID:      "MQ",
		Token:    "abc-123",
	})
	require.NoError(t, err)

	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, activationSubject, msg.Subject)
	assert.Contains(t, msg.Body, "https://geoblog.test/activate/MQ/abc-123/")
}

func TestResetMessage(t *testing.T) {
	msg, err := ResetMessage(LinkData{
		Email:    "ann@example.com",
		Protocol: "http",
		Domain:   "localhost:8080",
		UID:      "Mg",
		Token:    "t-1",
	})
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "http://localhost:8080/change-password/Mg/t-1/")
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.Send(context.Background(), Message{To: "x@example.com", Subject: "hi", Body: "body"}))

	entries := logs.FilterMessage("mail").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "x@example.com", entries[0].ContextMap()["to"])
}

func TestSMTPMailer_CanceledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 1, From: "noreply@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Send(ctx, Message{To: "x@example.com"}), context.Canceled)
}
