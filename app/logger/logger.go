package logger

import (
	"io"
	"os"
	"strings"

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

// Fields holds structured log attributes.
type Fields map[string]any

// Log is the global logger. It works at info level before Init is called.
var Log Logger = New("info", os.Stdout)

// Init replaces the global logger with one at the given level.
func Init(level string) {
	Log = New(level, os.Stdout)
}

// New builds a gookit/slog JSON logger writing to w at the given level.
// Unknown levels fall back to info.
func New(level string, w io.Writer) Logger {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	// custom fields are emitted as top-level keys next to these three
	h := handler.NewIOWriterHandler(w, levels)
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

func InfoWithFields(msg string, fields Fields) {
	if lg, ok := Log.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Info(msg)
		return
	}
	Log.Info(msg)
}

func DebugWithFields(msg string, fields Fields) {
	if lg, ok := Log.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Debug(msg)
		return
	}
	Log.Debug(msg)
}

func ErrorWithFields(msg string, fields Fields) {
	if lg, ok := Log.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Error(msg)
		return
	}
	Log.Error(msg)
}

// Badger adapts Log to the logger interface expected by BadgerDB.
type Badger struct{}

func (Badger) Errorf(format string, args ...any)   { Log.Errorf(format, args...) }
func (Badger) Warningf(format string, args ...any) { Log.Warnf(format, args...) }
func (Badger) Infof(format string, args ...any)    { Log.Debugf(format, args...) }
func (Badger) Debugf(format string, args ...any)   { Log.Debugf(format, args...) }
