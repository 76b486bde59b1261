// Package logger wraps gookit/slog behind a minimal interface so that
// components receive their logger through their constructors instead of
// reaching for a package global.
package logger

import (
	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger is the minimal logging surface used across the application.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields is the common field map for structured log records.
type Fields map[string]any

// NewLogger builds a gookit/slog based logger emitting JSON records at the
// given level ("debug", "info", "warn", "error").
func NewLogger(level string) Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// WithFields attaches structured fields to a single record when the
// underlying implementation supports it, and degrades to the plain
// message otherwise.
func WithFields(l Logger, fields Fields) Logger {
	if lg, ok := l.(*slog.Logger); ok {
		return &recordLogger{r: lg.WithFields(slog.M(fields))}
	}
	return l
}

type recordLogger struct {
	r *slog.Record
}

func (l *recordLogger) Debug(args ...any)                 { l.r.Debug(args...) }
func (l *recordLogger) Info(args ...any)                  { l.r.Info(args...) }
func (l *recordLogger) Warn(args ...any)                  { l.r.Warn(args...) }
func (l *recordLogger) Error(args ...any)                 { l.r.Error(args...) }
func (l *recordLogger) Debugf(format string, args ...any) { l.r.Debugf(format, args...) }
func (l *recordLogger) Infof(format string, args ...any)  { l.r.Infof(format, args...) }
func (l *recordLogger) Warnf(format string, args ...any)  { l.r.Warnf(format, args...) }
func (l *recordLogger) Errorf(format string, args ...any) { l.r.Errorf(format, args...) }
