package testutil

import (
	"context"
	"sync"

	"github.com/yukikurage/geoblog/internal/mail"
)

// RecordingMailer keeps sent messages in memory. Err, when set, is returned
// from Send instead of recording. Hold, when set, makes Send wait until it
// is closed.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	Err  error
	Hold chan struct{}
}

func (m *RecordingMailer) Send(_ context.Context, msg mail.Message) error {
	if m.Hold != nil {
		<-m.Hold
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *RecordingMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

// Last returns the most recent message.
func (m *RecordingMailer) Last() (mail.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mail.Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}
