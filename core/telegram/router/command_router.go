package router

import (
	"log/slog"

	tg "github.com/m3rciful/weatherbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes binds every registered command, wrapped so each call ends
// with a handler.handled line.
func CommandRoutes(reg *tg.Registry, log *slog.Logger) []tg.Route {
	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for endpoint, cmd := range cmds {
		name, h := handlerName(endpoint), cmd.Handler
		routes = append(routes, tg.Route{
			Endpoint: endpoint,
			Handler: func(c tele.Context) error {
				return handleWithSummary(c, name, h)
			},
		})
	}
	if log != nil {
		log.Info("routes wired", slog.String("event", "tg.wire"), slog.Int("commands", len(routes)))
	}
	return routes
}
