package notify

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"
)

// Message is one transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Notifier delivers a message. Implementations may block; callers that must not
// block go through a Dispatcher.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Enqueuer accepts messages for best-effort background delivery.
type Enqueuer interface {
	Enqueue(msg Message)
}

// Render wraps a headline into the HTML body used by every notification.
func Render(headline string) string {
	return fmt.Sprintf("<html><body><h1>%s</h1></body></html>", html.EscapeString(headline))
}

// NewMessage builds a message whose body is the rendered headline.
func NewMessage(to, subject, headline string) Message {
	return Message{To: to, Subject: subject, HTML: Render(headline)}
}

// LogNotifier only logs messages. Used when no email provider is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.log.Info("email notification (delivery disabled)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
