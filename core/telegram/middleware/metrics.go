package middleware

import (
	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/metrics"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "reply_counters"

// replyCounters tracks what one update answered with.
type replyCounters struct {
	messages int
	keyboard bool
}

// countingContext counts successful Send and Reply calls.
type countingContext struct {
	tele.Context
	n *replyCounters
}

func (c countingContext) Send(what any, opts ...any) error {
	return c.count(c.Context.Send(what, opts...), opts)
}

func (c countingContext) Reply(what any, opts ...any) error {
	return c.count(c.Context.Reply(what, opts...), opts)
}

func (c countingContext) count(err error, opts []any) error {
	if err == nil {
		c.n.messages++
		c.n.keyboard = c.n.keyboard || hasKeyboard(opts)
	}
	return err
}

func hasKeyboard(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Messages counts updates by kind and replies per handler. Handlers run with
// a context whose replies feed GetCounters.
func Messages(m *metrics.Metrics) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			m.IncUpdate(UpdateKind(c.Update()))
			n := &replyCounters{}
			c.Set(countersKey, n)
			err := next(countingContext{Context: c, n: n})
			ctx, _ := tghelpers.ContextFrom(c)
			m.AddMessages(logger.HandlerFrom(ctx), n.messages)
			return err
		}
	}
}

// GetCounters returns how many messages the current update sent and whether
// any of them carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	if n, _ := c.Get(countersKey).(*replyCounters); n != nil {
		return n.messages, n.keyboard
	}
	return 0, false
}
