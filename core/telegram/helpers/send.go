package helpers

import (
	"log/slog"

	"github.com/m3rciful/weatherbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// SendHTML replies in the current chat with HTML parse mode. The call is
// synchronous; failures are logged with the update context and returned.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if len(markup) > 0 && markup[0] != nil {
		opts.ReplyMarkup = markup[0]
	}
	if err := c.Send(text, opts); err != nil {
		ctx := BuildContext(c)
		logger.Warn(ctx, "send.fail",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return err
	}
	return nil
}
