package middleware

import (
	"log/slog"

	"github.com/m3rciful/weatherbot/core/logger"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Updates attaches the update context with the "tg" component logger and
// writes a sampled update.received debug line.
func Updates(lg *logger.Logger) tele.MiddlewareFunc {
	log := lg.Component("tg")
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ctx := tghelpers.Attach(c, log)
			if lg.ShouldSampleDebug() {
				logger.LogEvent(ctx, log, slog.LevelDebug, "update.received", receivedAttrs(c)...)
			}
			return next(c)
		}
	}
}

func receivedAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("kind", UpdateKind(c.Update())),
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil {
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}
	if t := c.Text(); t != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
	}
	return attrs
}

// UpdateKind labels an update for logs and the updates counter.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Message != nil && upd.Message.Text != "":
		if upd.Message.Text[0] == '/' {
			return "command"
		}
		return "text"
	case upd.Message != nil:
		return "message"
	case upd.Callback != nil:
		return "callback"
	case upd.EditedMessage != nil:
		return "edited_message"
	}
	return "other"
}
