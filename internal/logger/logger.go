package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger writing to stderr at the given level.
// Unknown levels fall back to info. stdout stays free for the MCP protocol.
func New(level string, json bool) *logrus.Logger {
	return NewWithOutput(os.Stderr, level, json)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(w io.Writer, level string, json bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))

	if json {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return l
}

// ParseLevel maps a config string to a logrus level.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything. Used by tests and the MCP
// tools, which report failures in their results instead.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
