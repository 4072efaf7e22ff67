package mailer

import (
	"go.uber.org/zap"
)

// Message is a plain-text outgoing notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers notification messages. Implementations must not block the
// caller on delivery failures; lifecycle notifications are best effort.
type Mailer interface {
	Send(msg Message) error
}

// ConsoleMailer logs messages instead of delivering them. Used in development
// and tests.
type ConsoleMailer struct {
	logger *zap.Logger
}

// NewConsoleMailer builds a console-backed mailer.
func NewConsoleMailer(logger *zap.Logger) *ConsoleMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMailer{logger: logger}
}

// Send writes the message to the log.
func (m *ConsoleMailer) Send(msg Message) error {
	m.logger.Info("outgoing email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
