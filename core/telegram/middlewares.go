package telegram

import (
	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/metrics"
	"github.com/m3rciful/weatherbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain: panic recovery,
// update logging with rid, then update and reply counters.
func DefaultMiddlewares(lg *logger.Logger, m *metrics.Metrics) []Middleware {
	return []Middleware{
		{Name: "recover", Use: middleware.Recover},
		{Name: "logger", Use: middleware.Updates(lg)},
		{Name: "metrics", Use: middleware.Messages(m)},
	}
}
