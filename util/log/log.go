// Package log is a thin wrapper around logrus giving the rest of the
// daemon a small, stable logging surface independent of the backing
// library.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to a log line.
type Fields logrus.Fields

var std = logrus.New()

func init() {
	std.Out = os.Stderr
	std.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// SetLevel sets the minimum log level emitted by the standard logger.
// Valid values: "debug", "info", "warn", "error".
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	std.SetLevel(lvl)
	return nil
}

// Entry is a log line in progress, carrying a set of fields.
type Entry struct {
	e *logrus.Entry
}

// WithFields starts a log line carrying the given structured fields.
func WithFields(f Fields) *Entry {
	return &Entry{e: std.WithFields(logrus.Fields(f))}
}

func (en *Entry) Debug(args ...interface{})            { en.e.Debug(args...) }
func (en *Entry) Debugf(f string, args ...interface{})  { en.e.Debugf(f, args...) }
func (en *Entry) Info(args ...interface{})              { en.e.Info(args...) }
func (en *Entry) Infof(f string, args ...interface{})   { en.e.Infof(f, args...) }
func (en *Entry) Warn(args ...interface{})              { en.e.Warn(args...) }
func (en *Entry) Warnf(f string, args ...interface{})   { en.e.Warnf(f, args...) }
func (en *Entry) Error(args ...interface{})             { en.e.Error(args...) }
func (en *Entry) Errorf(f string, args ...interface{})  { en.e.Errorf(f, args...) }

// Debug logs at debug level on the standard logger.
func Debug(args ...interface{}) { std.Debug(args...) }

// Debugf logs a formatted message at debug level on the standard logger.
func Debugf(f string, args ...interface{}) { std.Debugf(f, args...) }

// Info logs at info level on the standard logger.
func Info(args ...interface{}) { std.Info(args...) }

// Infof logs a formatted message at info level on the standard logger.
func Infof(f string, args ...interface{}) { std.Infof(f, args...) }

// Warn logs at warn level on the standard logger.
func Warn(args ...interface{}) { std.Warn(args...) }

// Warnf logs a formatted message at warn level on the standard logger.
func Warnf(f string, args ...interface{}) { std.Warnf(f, args...) }

// Error logs at error level on the standard logger.
func Error(args ...interface{}) { std.Error(args...) }

// Errorf logs a formatted message at error level on the standard logger.
func Errorf(f string, args ...interface{}) { std.Errorf(f, args...) }

// Fatal logs at fatal level and terminates the process.
func Fatal(args ...interface{}) { std.Fatal(args...) }

// Fatalf logs a formatted fatal message and terminates the process.
func Fatalf(f string, args ...interface{}) { std.Fatalf(f, args...) }
