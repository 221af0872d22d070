package logger

import (
	"bytes"
	"regexp"
	"strings"
)

const redacted = "<redacted>"

var (
	// bot tokens embedded in Telegram API URLs
	botTokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
	// OpenWeatherMap key in query strings
	appIDRe = regexp.MustCompile(`appid=[^&\s"]+`)
)

type redactor struct {
	secrets [][]byte
}

func newRedactor(secrets []string) *redactor {
	r := &redactor{}
	for _, s := range secrets {
		// very short values would mangle unrelated text
		if s = strings.TrimSpace(s); len(s) >= 4 {
			r.secrets = append(r.secrets, []byte(s))
		}
	}
	return r
}

func (r *redactor) apply(line []byte) []byte {
	if r == nil {
		return line
	}
	for _, s := range r.secrets {
		line = bytes.ReplaceAll(line, s, []byte(redacted))
	}
	line = botTokenRe.ReplaceAll(line, []byte("bot"+redacted))
	return appIDRe.ReplaceAll(line, []byte("appid="+redacted))
}

// Redact masks bot tokens and API keys in free text such as error messages
// that are shown to users rather than logged.
func Redact(s string, secrets ...string) string {
	return string(newRedactor(secrets).apply([]byte(s)))
}
