package logger

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Fields map[string]any

var base = newBase()

var sensitiveKeys = map[string]struct{}{
	"channelkey":     {},
	"channel_key":    {},
	"channelkeyhash": {},
	"authorization":  {},
	"password":       {},
	"privatekey":     {},
	"private_key":    {},
	"secretkey":      {},
	"secret_key":     {},
	"secret":         {},
}

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Configure sets the minimum level; unknown levels fall back to info.
func Configure(level string) {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	base.SetLevel(parsed)
}

// SetOutput redirects log output; nil restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	base.SetOutput(w)
}

func Info(message string, fields Fields) {
	entry(fields).Info(message)
}

func Warn(message string, fields Fields) {
	entry(fields).Warn(message)
}

func Error(message string, err error, fields Fields) {
	e := entry(fields)
	if err != nil {
		e = e.WithField("error", err.Error())
	}
	e.Error(message)
}

func SanitizePayload(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}

	return sanitizeValue(data)
}

func entry(fields Fields) *logrus.Entry {
	if len(fields) == 0 {
		return logrus.NewEntry(base)
	}

	sanitized, ok := sanitizeValue(map[string]any(fields)).(map[string]any)
	if !ok {
		return logrus.NewEntry(base)
	}
	return base.WithFields(logrus.Fields(sanitized))
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = "******"
				continue
			}
			out[key] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, sanitizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", ""))
	_, ok := sensitiveKeys[normalized]
	return ok
}
