// Package logx provides structured, leveled logging for acsd on top of logrus.
package logx

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry with a fixed set of component fields and a
// key/value calling convention, so call sites read the same whether they
// log from the controller, the radio driver, or the API server.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a Logger at the given level, tagging every line with
// component. level is one of trace|debug|info|warn|error; an unrecognised
// value falls back to info.
func NewLogger(level, component string) *Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	base.SetLevel(parseLevel(level))
	return &Logger{entry: base.WithField("component", component)}
}

// NewLoggerOutput is NewLogger with an explicit writer, used to point the
// daemon at a log file instead of stderr.
func NewLoggerOutput(level, component string, out io.Writer) *Logger {
	l := NewLogger(level, component)
	l.entry.Logger.SetOutput(out)
	return l
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// With returns a child logger carrying an additional field, e.g.
// logger.With("channel", 6).Info("surveyed").
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) fields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}

func (l *Logger) Trace(msg string, kv ...interface{}) { l.entry.WithFields(l.fields(kv)).Trace(msg) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.entry.WithFields(l.fields(kv)).Debug(msg) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.entry.WithFields(l.fields(kv)).Info(msg) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.entry.WithFields(l.fields(kv)).Warn(msg) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.entry.WithFields(l.fields(kv)).Error(msg) }

// Discard returns a Logger that drops everything, for tests that don't
// want log noise but still need to satisfy a *Logger parameter.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: base.WithField("component", "test")}
}
