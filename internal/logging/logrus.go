package logging

import (
	"github.com/sirupsen/logrus"
)

// Logrus adapts a logrus logger to shopify.Logger.
type Logrus struct {
	entry *logrus.Entry
}

// NewLogrus wraps logger. A nil logger uses the logrus standard logger.
func NewLogrus(logger *logrus.Logger) *Logrus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Logrus{entry: logrus.NewEntry(logger)}
}

func (l *Logrus) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

func (l *Logrus) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

func (l *Logrus) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

func (l *Logrus) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Error(msg)
}
