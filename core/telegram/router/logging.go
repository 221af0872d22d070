package router

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/netutil"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"
	"github.com/m3rciful/weatherbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summary describes one handled update for the handler.handled line.
// Empty status and outcome are derived from err.
type summary struct {
	handler string
	start   time.Time
	status  string
	outcome string
	err     error
}

func handleWithSummary(c tele.Context, handler string, fn tele.HandlerFunc) error {
	start := time.Now()
	tghelpers.WithHandler(c, handler)
	err := fn(c)
	logSummary(c, summary{handler: handler, start: start, err: err})
	return err
}

// skip records an update the router chose not to answer.
func skip(c tele.Context, handler string, start time.Time) {
	logSummary(c, summary{handler: handler, start: start, status: "skip", outcome: "ok"})
}

func logSummary(c tele.Context, s summary) {
	ctx := tghelpers.WithHandler(c, s.handler)
	if s.status == "" {
		s.status = logger.Status(s.err)
	}
	if s.outcome == "" {
		s.outcome = logger.Status(s.err)
	}
	msgs, kb := middleware.GetCounters(c)

	attrs := []slog.Attr{
		slog.String("status", s.status),
		slog.String("outcome", s.outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(s.start)),
	}
	if s.err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(s.err.Error(), 256)),
			slog.String("err_code", errorCode(s.err)),
		)
	}
	logger.Info(ctx, "handler.handled", attrs...)
}

// handlerName turns "/Weather" into "weather" for log and metric labels.
func handlerName(endpoint string) string {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(endpoint), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// errorCode classifies reply failures: Telegram API errors by code,
// transport failures by network kind.
func errorCode(err error) string {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return "TG_API_" + strconv.Itoa(apiErr.Code)
	}
	if kind := netutil.Kind(err); kind != netutil.KindUnknown && kind != "" {
		return "NET_" + strings.ToUpper(kind)
	}
	return "INTERNAL"
}
