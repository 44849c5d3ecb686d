// Package logger wraps a logrus.Logger behind a small Entry/Fields API so
// call sites attach structured fields (component, peer, key) instead of
// formatting strings, without pulling in framework-specific log adapters.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	log *logrus.Logger
}

// New builds a Logger writing JSON lines to w (logrus's default, os.Stderr,
// when w is nil).
func New(level logrus.Level, w *os.File) *Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{})

	if w != nil {
		l.SetOutput(w)
	}

	return &Logger{log: l}
}

// WithFields returns an Entry carrying component as a base field.
func (l *Logger) WithFields(component string, f Fields) *Entry {
	return &Entry{
		log:    l.log,
		fields: f.Add("component", component),
	}
}

type Entry struct {
	log    *logrus.Logger
	fields Fields
}

func (e *Entry) With(f Fields) *Entry {
	return &Entry{log: e.log, fields: e.fields.Merge(f)}
}

func (e *Entry) entry() *logrus.Entry {
	return e.log.WithFields(e.fields.logrus())
}

func (e *Entry) Debug(msg string) { e.entry().Debug(msg) }
func (e *Entry) Info(msg string)  { e.entry().Info(msg) }
func (e *Entry) Warn(msg string)  { e.entry().Warn(msg) }

func (e *Entry) Error(msg string, err error) {
	if err != nil {
		e.entry().WithError(err).Error(msg)
	} else {
		e.entry().Error(msg)
	}
}
