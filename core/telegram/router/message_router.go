package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/weatherbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextRoute sends non-command text to the registry's text handler. Telebot
// delivers unregistered /commands here too; they are logged and left
// unanswered.
func TextRoute(reg *tg.Registry) tg.Route {
	return tg.Route{Endpoint: tele.OnText, Handler: func(c tele.Context) error {
		if strings.HasPrefix(c.Text(), "/") {
			skip(c, "unknown_command", time.Now())
			return nil
		}
		if h := reg.TextHandler(); h != nil {
			return handleWithSummary(c, "text", h)
		}
		skip(c, "unknown_text", time.Now())
		return nil
	}}
}
