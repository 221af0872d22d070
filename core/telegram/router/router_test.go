package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/teletest"

	tele "gopkg.in/telebot.v4"
)

func TestTextRouteSkipsCommands(t *testing.T) {
	calls := 0
	reg := tg.NewRegistry(nil)
	reg.SetTextHandler(func(c tele.Context) error {
		calls++
		return c.Send("ok")
	})
	route := TextRoute(reg)
	if route.Endpoint != tele.OnText {
		t.Fatalf("endpoint = %v", route.Endpoint)
	}

	unknown := teletest.NewText(1, "/unknown")
	if err := route.Handler(unknown); err != nil {
		t.Fatalf("unknown: %v", err)
	}
	if calls != 0 || len(unknown.Sent()) != 0 {
		t.Fatalf("unknown command must be ignored, calls=%d sent=%d", calls, len(unknown.Sent()))
	}

	city := teletest.NewText(1, "Сочи")
	if err := route.Handler(city); err != nil {
		t.Fatalf("text: %v", err)
	}
	if calls != 1 || city.LastText() != "ok" {
		t.Fatalf("calls=%d last=%q", calls, city.LastText())
	}
}

func TestCommandRoutesWrapHandlers(t *testing.T) {
	reg := tg.NewRegistry(nil)
	hit := ""
	reg.RegisterCommand("/help", tg.Command{Description: "help", Handler: func(tele.Context) error {
		hit = "help"
		return nil
	}})
	routes := CommandRoutes(reg, nil)
	if len(routes) != 1 || routes[0].Endpoint != "/help" {
		t.Fatalf("routes = %+v", routes)
	}
	if err := routes[0].Handler(teletest.NewText(1, "/help")); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if hit != "help" {
		t.Fatal("command handler not called")
	}
}

func TestHandlerName(t *testing.T) {
	if got := handlerName("/Weather Now"); got != "weather_now" {
		t.Fatalf("got %q", got)
	}
	if got := handlerName(" "); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}, "TG_API_403"},
		{fmt.Errorf("send: %w", context.DeadlineExceeded), "NET_TIMEOUT"},
		{errors.New("boom"), "INTERNAL"},
	}
	for _, tc := range cases {
		if got := errorCode(tc.err); got != tc.want {
			t.Errorf("errorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestTextRouteWithoutRegistry(t *testing.T) {
	c := teletest.NewText(1, "Сочи")
	if err := TextRoute(nil).Handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(c.Sent()) != 0 {
		t.Fatal("no reply expected")
	}
}
