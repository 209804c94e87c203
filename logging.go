package chatconnect

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Fields carries structured context for one log entry.
type Fields map[string]interface{}

// Logger is the logging port the connectors emit structured events through.
// Implementations must tolerate nil Fields. The core never places raw
// credential values into messages or fields; implementations may
// additionally mask configured sensitive field names as a second line of
// defense.
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)
}

// NopLogger discards everything. Useful as a default and in tests.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// defaultSensitiveFields are the field names masked by the zerolog adapter
// regardless of caller configuration.
var defaultSensitiveFields = []string{
	"access_key",
	"secret_key",
	"password",
	"token",
	"auth",
	"secret",
}

// ZerologLogger adapts a zerolog.Logger to the Logger port, masking
// sensitive field values before they reach the sink.
type ZerologLogger struct {
	logger    zerolog.Logger
	sensitive map[string]bool
}

// NewZerologLogger creates a Logger writing JSON lines to w (os.Stderr when
// nil), tagged with the given component name. Extra sensitive field names
// are merged with the defaults.
func NewZerologLogger(w io.Writer, component string, extraSensitive ...string) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}

	sensitive := make(map[string]bool, len(defaultSensitiveFields)+len(extraSensitive))
	for _, name := range defaultSensitiveFields {
		sensitive[name] = true
	}
	for _, name := range extraSensitive {
		sensitive[strings.ToLower(name)] = true
	}

	logger := zerolog.New(w).With().Timestamp().Str("component", component).Logger()

	return &ZerologLogger{
		logger:    logger,
		sensitive: sensitive,
	}
}

func (l *ZerologLogger) Debug(msg string, fields Fields) {
	l.emit(l.logger.Debug(), msg, fields)
}

func (l *ZerologLogger) Info(msg string, fields Fields) {
	l.emit(l.logger.Info(), msg, fields)
}

func (l *ZerologLogger) Warn(msg string, fields Fields) {
	l.emit(l.logger.Warn(), msg, fields)
}

func (l *ZerologLogger) Error(msg string, fields Fields) {
	l.emit(l.logger.Error(), msg, fields)
}

func (l *ZerologLogger) emit(event *zerolog.Event, msg string, fields Fields) {
	for key, value := range fields {
		if l.isSensitive(key) {
			event = event.Str(key, "****")
			continue
		}
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

func (l *ZerologLogger) isSensitive(key string) bool {
	key = strings.ToLower(key)
	if l.sensitive[key] {
		return true
	}
	// Substring match catches composed names like aws_secret_access_key.
	for name := range l.sensitive {
		if strings.Contains(key, name) {
			return true
		}
	}
	return false
}
