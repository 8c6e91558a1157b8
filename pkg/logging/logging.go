// Package logging wraps the teacher's own github.com/bhaskarblur/go-logcastle
// dependency behind a small facade so the rest of the service logs through
// one structured interface instead of depending on logcastle's API shape
// directly. JSONLogs (config.Env.JSONLogs) toggles its JSON encoder versus
// its console encoder.
package logging

import (
	"github.com/bhaskarblur/go-logcastle/logcastle"
)

// Field is one structured key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger is a per-service facade over a logcastle instance.
type Logger struct {
	service string
	backend *logcastle.Logger
}

// New builds a logger tagged with service, in JSON or console mode.
func New(service string, jsonOutput bool) *Logger {
	encoding := logcastle.EncodingConsole
	if jsonOutput {
		encoding = logcastle.EncodingJSON
	}
	backend := logcastle.NewLogger(logcastle.Config{
		Service:  service,
		Encoding: encoding,
	})
	return &Logger{service: service, backend: backend}
}

func (l *Logger) fields(fields []Field) []logcastle.Field {
	out := make([]logcastle.Field, len(fields))
	for i, f := range fields {
		out[i] = logcastle.Field{Key: f.Key, Value: f.Value}
	}
	return out
}

func (l *Logger) Debug(msg string, fields ...Field) { l.backend.Debug(msg, l.fields(fields)...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.backend.Info(msg, l.fields(fields)...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.backend.Warn(msg, l.fields(fields)...) }
func (l *Logger) Error(msg string, fields ...Field) { l.backend.Error(msg, l.fields(fields)...) }
