// Package app composes the weather bot services from configuration.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/weatherbot/core/bootstrap"
	coreconfig "github.com/m3rciful/weatherbot/core/config"
	"github.com/m3rciful/weatherbot/core/metrics"
	"github.com/m3rciful/weatherbot/core/service"
	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/router"
	"github.com/m3rciful/weatherbot/core/telegram/state"
	"github.com/m3rciful/weatherbot/internal/handlers"
	"github.com/m3rciful/weatherbot/internal/health"
	"github.com/m3rciful/weatherbot/internal/weather"
)

// Services builds the service group: the Telegram bot in the foreground,
// health and optional metrics listeners in the background.
func Services(cfg *coreconfig.Config, infra *bootstrap.Result) (*service.Group, error) {
	return build(cfg, infra, tg.Options{})
}

// build lets tests override bot transport options such as Offline and Client.
func build(cfg *coreconfig.Config, infra *bootstrap.Result, botOpts tg.Options) (*service.Group, error) {
	if cfg == nil || infra == nil || infra.Logger == nil {
		return nil, fmt.Errorf("app: config and logger are required")
	}
	lg := infra.Logger

	loc, err := location(cfg.Weather.Timezone)
	if err != nil {
		return nil, err
	}
	client := weather.NewClient(weather.Options{
		BaseURL:  cfg.Weather.BaseURL,
		APIKey:   cfg.Weather.APIKey,
		Units:    cfg.Weather.Units,
		Lang:     cfg.Weather.Lang,
		Timeout:  cfg.WeatherTimeout(),
		Location: loc,
		Log:      lg.Component("weather"),
		Metrics:  infra.Metrics,
	})

	reg := tg.NewRegistry(lg.Component("tg"))
	handlers.New(client, state.NewMemoryStore()).Register(reg)

	botOpts.Token = cfg.Telegram.Token
	botOpts.LongPollTimeoutSeconds = cfg.Telegram.LongPollTimeoutSeconds
	botOpts.Registry = reg
	botOpts.Logger = lg
	botOpts.Middlewares = tg.DefaultMiddlewares(lg, infra.Metrics)
	botOpts.Routes = append(router.CommandRoutes(reg, lg.Component("tg")), router.TextRoute(reg))
	bot, err := tg.NewBot(botOpts)
	if err != nil {
		return nil, err
	}

	background := []service.Service{
		health.NewServer(cfg.Health.Host, cfg.Health.Port, lg.Component("health")),
	}
	if cfg.Metrics.Port > 0 {
		background = append(background,
			metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, infra.Metrics, lg.Component("metrics")))
	}

	return &service.Group{
		Foreground: bot,
		Background: background,
		Log:        lg.Component("app"),
	}, nil
}

func location(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("app: load timezone %q: %w", tz, err)
	}
	return loc, nil
}
