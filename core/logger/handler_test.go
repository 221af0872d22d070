package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestHandler(t *testing.T, format logFormat) (*slog.Logger, *bytes.Buffer, func()) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	done := func() {
		if err := aw.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	return slog.New(handler), buf, done
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, buf, done := newTestHandler(t, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "weather"), slog.LevelInfo, "lookup.done",
		slog.String("status", "OK"),
		slog.String("city", "Сочи"),
	)
	done()

	tokens := strings.Split(strings.TrimSpace(buf.String()), " ")
	expected := []string{"ts=", "level=INFO", "component=weather", "event=lookup.done", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "city=Сочи"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), buf.String())
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, buf, done := newTestHandler(t, formatJSON)
	ctx := WithRID(context.Background(), "rid-json")

	LogEvent(ctx, log.With("component", "weather"), slog.LevelError, "lookup.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("error_kind", "unexpected"),
	)
	done()

	line := strings.TrimSpace(buf.String())
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"weather"`, `"event":"lookup.failed"`, `"status":"fail"`, `"rid":"rid-json"`, `"err":"boom"`, `"error_kind":"unexpected"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	cases := []struct {
		format logFormat
		want   []string
		absent string
	}{
		{formatKV, []string{"rid=c.y.1k"}, "rid_full="},
		{formatJSON, []string{`"rid":"c.y.1k"`, `"rid_full":"12:34:56"`}, ""},
	}
	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			log, buf, done := newTestHandler(t, tc.format)
			LogEvent(WithRID(context.Background(), "12:34:56"), log, slog.LevelInfo, "rid.test")
			done()
			line := buf.String()
			for _, w := range tc.want {
				if !strings.Contains(line, w) {
					t.Fatalf("expected %s in %s", w, line)
				}
			}
			if tc.absent != "" && strings.Contains(line, tc.absent) {
				t.Fatalf("unexpected %s in %s", tc.absent, line)
			}
		})
	}
}

func TestStructuredHandlerDropsUnknownOutcome(t *testing.T) {
	log, buf, done := newTestHandler(t, formatKV)
	log.Info("x", "outcome", "weird", "component", "app")
	log.Info("y", "outcome", "NOT_FOUND", "component", "app")
	done()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.Contains(lines[0], "outcome=") {
		t.Fatalf("unknown outcome kept: %s", lines[0])
	}
	if !strings.Contains(lines[1], "outcome=not_found") {
		t.Fatalf("outcome not normalized: %s", lines[1])
	}
}

func TestLoggerQuietComponents(t *testing.T) {
	buf := &bytes.Buffer{}
	lg, err := New(Options{Format: "kv", Output: buf, Quiet: []string{"telebot"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	lg.Component("telebot").Info("poll.ok")
	lg.Component("telebot").Warn("poll.slow")
	lg.Component("weather").Info("lookup.done")
	if err := lg.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "poll.ok") {
		t.Fatalf("quiet component logged at INFO: %s", out)
	}
	for _, want := range []string{"event=poll.slow", "event=lookup.done"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}

func TestLoggerRedactsSecrets(t *testing.T) {
	buf := &bytes.Buffer{}
	lg, err := New(Options{Format: "json", Output: buf, Secrets: []string{"owm-secret-key"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	lg.Component("http.client").Warn("request.failed",
		"url", "https://api.telegram.org/bot123456:AAE-x_y/getUpdates",
		"query", "q=Sochi&appid=abcdef",
		"err", "key owm-secret-key rejected",
	)
	if err := lg.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out := buf.String()
	for _, leaked := range []string{"owm-secret-key", "AAE-x_y", "abcdef"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("secret %q leaked: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "bot"+redacted) || !strings.Contains(out, "appid="+redacted) {
		t.Fatalf("expected redaction markers in %s", out)
	}
}

func TestRedact(t *testing.T) {
	got := Redact("Get https://host/?q=x&appid=k1 with tok1234", "tok1234")
	want := "Get https://host/?q=x&appid=" + redacted + " with " + redacted
	if got != want {
		t.Fatalf("Redact = %q, want %q", got, want)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(parseRatioSpec("2/5"))
	allowed := 0
	for i := 0; i < 10; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 4 {
		t.Fatalf("allowed = %d, want 4", allowed)
	}
	if !newRatioSampler(0, 0).Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("Мос\x00ква\u200b!", 5); got != "Москв" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}
