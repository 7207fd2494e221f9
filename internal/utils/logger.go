package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// InitLogger installs a JSON slog logger as the process default.
func InitLogger(level string) *slog.Logger {
	return InitLoggerTo(os.Stdout, level)
}

// InitLoggerTo is InitLogger writing to w.
func InitLoggerTo(w io.Writer, level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		lvl.Set(slog.LevelDebug)
	case "WARN":
		lvl.Set(slog.LevelWarn)
	case "ERROR":
		lvl.Set(slog.LevelError)
	default:
		lvl.Set(slog.LevelInfo)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.Attr{Key: "timestamp", Value: slog.StringValue(t.Format(time.RFC3339))}
				}
			}
			return a
		},
	})

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log := slog.New(handler).With("hostname", hostname)
	slog.SetDefault(log)
	return log
}

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	slog.Info(message,
		"module", strings.ToUpper(module),
		"action", action,
		"request_id", strings.TrimSpace(requestID),
	)
}

// LogError is LogEvent at error level.
func LogError(requestID, module, action string, err error) {
	slog.Error(err.Error(),
		"module", strings.ToUpper(module),
		"action", action,
		"request_id", strings.TrimSpace(requestID),
	)
}
