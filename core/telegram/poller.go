package telegram

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// DefaultLongPollTimeout is used when no positive timeout is configured.
const DefaultLongPollTimeout = 10 * time.Second

// BuildPoller returns the long poller. Webhook mode is not supported.
func BuildPoller(timeoutSeconds int) *tele.LongPoller {
	timeout := DefaultLongPollTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout}
}
