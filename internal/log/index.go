package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/turbot/pipe-fittings/app_specific"

	"github.com/turbot/adfupgrade/internal/sanitize"
)

const (
	LevelTrace = slog.Level(-8)
	// LevelOff is above every level slog emits, so nothing passes it.
	LevelOff = slog.Level(100)
)

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrace {
			return slog.String(slog.LevelKey, "TRACE")
		}
		return a
	}
	if a.Key == slog.TimeKey || a.Key == slog.MessageKey {
		return a
	}

	sanitized := sanitize.Instance.SanitizeKeyValue(a.Key, a.Value.Any())
	return slog.Attr{
		Key:   a.Key,
		Value: slog.AnyValue(sanitized),
	}
}

func AdfUpgradeLogger() *slog.Logger {
	return LoggerWithLevelAndWriter(getLogLevel(), os.Stderr)
}

func LoggerWithLevelAndWriter(level slog.Leveler, w io.Writer) *slog.Logger {
	if level.Level() == LevelOff {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	}

	handlerOptions := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}
	return slog.New(slog.NewJSONHandler(w, handlerOptions))
}

func SetDefaultLogger() {
	slog.SetDefault(AdfUpgradeLogger())
}

func getLogLevel() slog.Leveler {
	return ParseLevel(os.Getenv(app_specific.EnvLogLevel))
}

// ParseLevel maps a level name to a slog level. Unknown names turn logging off.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelOff
	}
}
