package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// Options configures NewBot.
type Options struct {
	Token string
	// LongPollTimeoutSeconds defines the getUpdates window; 0 -> default
	LongPollTimeoutSeconds int
	Registry               *Registry
	Middlewares            []Middleware
	Routes                 []Route
	Logger                 *logger.Logger
	Client                 *http.Client
	// Offline skips the getMe call; used by tests.
	Offline bool
	// DisableWebhookCleanup keeps an existing webhook registration.
	DisableWebhookCleanup bool
	// Synchronous runs handlers on the dispatching goroutine.
	Synchronous bool
}

// Bot runs the Telegram long-poll loop as a service.
type Bot struct {
	bot     *tele.Bot
	reg     *Registry
	log     *slog.Logger
	timeout time.Duration
	cleanup bool

	mu       sync.Mutex
	running  bool
	done     chan struct{}
	stopOnce sync.Once
}

// NewBot builds the telebot instance and wires middlewares and routes.
func NewBot(opts Options) (*Bot, error) {
	log := opts.Logger.Component("tg")
	poller := BuildPoller(opts.LongPollTimeoutSeconds)
	client := opts.Client
	if client == nil {
		client = BuildHTTPClient(poller.Timeout, opts.Logger.Component("http.client"))
	}
	libLog := opts.Logger.Component("telebot")

	buildStart := time.Now()
	b, err := tele.NewBot(tele.Settings{
		Token:       opts.Token,
		Poller:      poller,
		Client:      client,
		Offline:     opts.Offline,
		Synchronous: opts.Synchronous,
		OnError: func(err error, c tele.Context) {
			ctx := context.Background()
			if c != nil {
				ctx = logger.WithUpdateMeta(ctx, c.Update().ID, senderID(c), chatID(c))
			}
			libLog.LogAttrs(ctx, slog.LevelError, "bot.error",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry(log)
	}
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			b.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		b.Handle(route.Endpoint, route.Handler)
	}

	log.Info("polling mode",
		slog.String("event", "mode"),
		slog.String("mode", "polling"),
		slog.Duration("duration", logger.Took(buildStart)),
	)

	return &Bot{
		bot:     b,
		reg:     reg,
		log:     log,
		timeout: poller.Timeout,
		cleanup: !opts.DisableWebhookCleanup,
		done:    make(chan struct{}),
	}, nil
}

// Name implements service.Service.
func (b *Bot) Name() string { return "telegram" }

// Tele exposes the underlying telebot instance.
func (b *Bot) Tele() *tele.Bot { return b.bot }

// Start removes a stale webhook, publishes the command menu and long-polls
// until Stop or ctx cancellation.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return errors.New("telegram: bot already started")
	}
	b.running = true
	b.mu.Unlock()
	defer close(b.done)

	if b.cleanup {
		if err := b.bot.RemoveWebhook(false); err != nil {
			b.log.Warn("failed to delete webhook",
				slog.String("event", "delete_webhook"),
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
	if err := InitBotCommands(b.bot, b.reg); err != nil {
		b.log.Warn("command menu not published",
			slog.String("event", "commands.publish"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}

	b.log.Info("bot started",
		slog.String("event", "start"),
		slog.String("mode", "polling"),
		slog.Duration("poll_timeout", b.timeout),
	)

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			b.stopPolling()
		case <-stopped:
		}
	}()
	b.bot.Start()
	close(stopped)
	return nil
}

// Stop ends the polling loop and waits for Start to return.
func (b *Bot) Stop(ctx context.Context) error {
	b.mu.Lock()
	running := b.running
	b.mu.Unlock()
	if !running {
		return nil
	}

	go b.stopPolling()
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stopPolling calls tele.Bot.Stop at most once; a second call would block
// forever on the already stopped loop.
func (b *Bot) stopPolling() {
	b.stopOnce.Do(b.bot.Stop)
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

func chatID(c tele.Context) int64 {
	if ch := c.Chat(); ch != nil {
		return ch.ID
	}
	return 0
}
