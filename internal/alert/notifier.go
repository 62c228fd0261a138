// Package alert handles sending operator notifications about terminal
// order outcomes and retraining results.
package alert

import "github.com/your-org/var-trade-bot/pkg/logger"

// Notifier is the interface for sending alert messages.
type Notifier interface {
	Send(message string) error
	Close() error
}

// NoOpNotifier is a notifier that does nothing. It is used when alerting
// is disabled.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Send does nothing and returns nil.
func (n *NoOpNotifier) Send(message string) error {
	return nil
}

// Close does nothing and returns nil.
func (n *NoOpNotifier) Close() error {
	return nil
}

// LogNotifier routes notifications to the application log. It is the
// default sink until a push channel is configured.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Send writes the message at info level.
func (n *LogNotifier) Send(message string) error {
	logger.Infof("ALERT: %s", message)
	return nil
}

// Close does nothing and returns nil.
func (n *LogNotifier) Close() error {
	return nil
}
