// Package logging provides the structured logger used by the kdbx4 codec
// to report non-secret diagnostics (cipher/KDF selection, group counts,
// Argon2 cost parameters). It never logs key material or protected values.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

var defaultLogger = New()

// Logger is the diagnostic logging surface used throughout the codec.
// A library must not terminate the host process on its own, so unlike a
// CLI-facing logger this intentionally has no Fatal/Panic level.
type Logger interface {
	Error(fmt string, a ...interface{})
	Warn(fmt string, a ...interface{})
	Info(fmt string, a ...interface{})
	Debug(fmt string, a ...interface{})
	Trace(fmt string, a ...interface{})

	WithFields(map[string]interface{}) Logger
	WithField(string, interface{}) Logger
	WithError(err error) Logger

	GetLevel() string
	SetLevel(string)

	SetOutputFormat(format string)
	SetCallerReporter()
}

type StandardLogger struct {
	logger *logrus.Logger
	fields map[string]interface{}
}

// New returns a new logger with logrus defaults (level Info, text output).
func New() *StandardLogger {
	return &StandardLogger{
		logger: logrus.New(),
	}
}

// GetRoot returns the package-level default logger.
func GetRoot() *StandardLogger {
	return defaultLogger
}

// SetOutput sets the underlying logrus output.
func (l *StandardLogger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// SetOutputFormat changes the logger format.
// available formats: text/json
func (l *StandardLogger) SetOutputFormat(format string) {
	var formatter logrus.Formatter

	switch strings.ToLower(format) {
	case "text":
		formatter = &logrus.TextFormatter{
			FullTimestamp:          true,
			DisableLevelTruncation: true,
			PadLevelText:           true,
			QuoteEmptyFields:       true,
		}
	case "json":
		formatter = &logrus.JSONFormatter{
			PrettyPrint: false,
		}
	default:
		return // using default logger format
	}

	l.logger.SetFormatter(formatter)
}

// SetCallerReporter adds the calling method as a field.
func (l *StandardLogger) SetCallerReporter() {
	l.logger.SetReportCaller(true)
}

// WithFields creates a new logger instance with the given default fields.
func (l *StandardLogger) WithFields(fields map[string]interface{}) Logger {
	cp := *l
	cp.fields = make(map[string]interface{})
	for k, v := range l.fields {
		cp.fields[k] = v
	}
	for k, v := range fields {
		cp.fields[k] = v
	}
	return &cp
}

// WithField creates a new logger instance with a single field.
func (l *StandardLogger) WithField(name string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{name: value})
}

// WithError adds an error as a single field to the logger.
func (l *StandardLogger) WithError(err error) Logger {
	return l.WithField("error", err)
}

// GetLevel returns the current logging level.
func (l *StandardLogger) GetLevel() string {
	return l.logger.GetLevel().String()
}

// SetLevel sets the logger level.
func (l *StandardLogger) SetLevel(level string) {
	switch level {
	case "error":
		l.logger.SetLevel(logrus.ErrorLevel)
	case "warn", "warning":
		l.logger.SetLevel(logrus.WarnLevel)
	case "info":
		l.logger.SetLevel(logrus.InfoLevel)
	case "debug":
		l.logger.SetLevel(logrus.DebugLevel)
	case "trace":
		l.logger.SetLevel(logrus.TraceLevel)
	case "null", "none":
		l.logger.SetOutput(io.Discard)
	default:
		l.Warn("unknown log level %v", level)
		l.logger.SetLevel(logrus.ErrorLevel)
	}
}

func (l *StandardLogger) Error(fmt string, a ...interface{}) {
	l.logger.WithFields(l.getFields()).Errorf(fmt, a...)
}

func (l *StandardLogger) Warn(fmt string, a ...interface{}) {
	l.logger.WithFields(l.getFields()).Warnf(fmt, a...)
}

func (l *StandardLogger) Info(fmt string, a ...interface{}) {
	l.logger.WithFields(l.getFields()).Infof(fmt, a...)
}

func (l *StandardLogger) Debug(fmt string, a ...interface{}) {
	l.logger.WithFields(l.getFields()).Debugf(fmt, a...)
}

func (l *StandardLogger) Trace(fmt string, a ...interface{}) {
	l.logger.WithFields(l.getFields()).Tracef(fmt, a...)
}

func (l *StandardLogger) getFields() map[string]interface{} {
	return l.fields
}
