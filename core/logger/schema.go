package logger

import (
	"log/slog"
	"strings"
)

// levelName clamps custom levels such as INFO+2 to the four standard names.
func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

// Outcome values a weather lookup or handler may report. Anything else is
// dropped from the line.
var outcomes = map[string]bool{
	"ok":         true,
	"fail":       true,
	"not_found":  true,
	"api_error":  true,
	"unexpected": true,
	"cancelled":  true,
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	return outcome, outcomes[outcome]
}

// defaultKeyOrder fixes the leading columns of every line: envelope, update
// identity, then the weather and transport fields. Other keys follow sorted.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "update_id", "user_id", "chat_id", "chat_type", "handler",
	"city", "outcome", "http_code", "duration_ms",
	"messages", "kb", "payload", "lang", "username",
	"service", "mode", "listen",
	"err", "err_code", "error_kind", "cause",
}
