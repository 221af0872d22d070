// Package handlers implements the weather bot's chat commands.
package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m3rciful/weatherbot/core/logger"
	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/helpers"
	"github.com/m3rciful/weatherbot/core/telegram/keyboard"
	"github.com/m3rciful/weatherbot/core/telegram/state"
	"github.com/m3rciful/weatherbot/internal/weather"

	tele "gopkg.in/telebot.v4"
)

// PresetCities are offered on the /start keyboard, one per row.
var PresetCities = []string{"Москва", "Санкт-Петербург", "Сочи", "Игора"}

const (
	greeting    = "Привет! Выберите город из списка или введите свой:"
	missingCity = "❌ Укажите город после команды /weather"
	helpText    = "🤖 <b>Помощник погодного бота</b>\n\n" +
		"Доступные команды:\n" +
		"/start — открыть клавиатуру с городами\n" +
		"/help — показать эту справку\n" +
		"/weather &lt;город&gt; — погода в указанном городе\n\n" +
		"Вы также можете просто написать название города.\n\n" +
		"Пример:\n" +
		"/weather Москва"
)

// Lookuper fetches the weather for one city.
type Lookuper interface {
	Lookup(ctx context.Context, city string) weather.Result
}

// Handlers holds the dependencies shared by all chat handlers.
type Handlers struct {
	weather  Lookuper
	sessions state.Store
}

// New returns Handlers backed by lookup and sessions. A nil store gets an
// in-memory one.
func New(lookup Lookuper, sessions state.Store) *Handlers {
	if sessions == nil {
		sessions = state.NewMemoryStore()
	}
	return &Handlers{weather: lookup, sessions: sessions}
}

// Register adds the bot commands and the free-text handler to reg.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", tg.Command{Handler: h.Start, Description: "Открыть клавиатуру с городами"})
	reg.RegisterCommand("/help", tg.Command{Handler: h.Help, Description: "Показать справку"})
	reg.RegisterCommand("/weather", tg.Command{Handler: h.Weather, Description: "Погода в указанном городе"})
	reg.SetTextHandler(h.Text)
}

// Start shows the preset city keyboard. Arguments are ignored.
func (h *Handlers) Start(c tele.Context) error {
	return helpers.SendHTML(c, greeting, keyboard.Column(PresetCities...))
}

// Help sends the static usage text.
func (h *Handlers) Help(c tele.Context) error {
	return helpers.SendHTML(c, helpText)
}

// Weather handles /weather <city>; the arguments are joined with single spaces.
func (h *Handlers) Weather(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return helpers.SendHTML(c, missingCity)
	}
	city := strings.Join(args, " ")
	res := h.weather.Lookup(helpers.BuildContext(c), city)
	return helpers.SendHTML(c, weather.Render(res))
}

// Text treats the trimmed message as a city name and remembers it as the
// user's last city.
func (h *Handlers) Text(c tele.Context) error {
	city := strings.TrimSpace(c.Text())
	if city == "" {
		return nil
	}
	ctx := helpers.BuildContext(c)
	res := h.weather.Lookup(ctx, city)
	if err := helpers.SendHTML(c, weather.Render(res)); err != nil {
		return err
	}

	var userID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	h.sessions.SetLastCity(userID, city)
	logger.Info(ctx, "weather.requested",
		slog.Int64("user_id", userID),
		slog.String("city", logger.SanitizeLimit(city, 128)),
	)
	return nil
}
