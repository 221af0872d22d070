package telegram

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/netutil"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	// long-poll requests hold the response for up to the poll timeout
	pollSlack = 20 * time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// Requests are not retried; failures surface to telebot's error handler.
func BuildHTTPClient(pollTimeout time.Duration, log *slog.Logger) *http.Client {
	if pollTimeout <= 0 {
		pollTimeout = DefaultLongPollTimeout
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   pollTimeout + pollSlack,
		Transport: &loggingTransport{base: transport, log: log},
	}
}

// loggingTransport records every Bot API call. URLs carry the bot token, so
// the component must stay behind the logger's redaction.
type loggingTransport struct {
	base http.RoundTripper
	log  *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	log := t.log
	if log == nil {
		log = slog.Default()
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		kind := netutil.Kind(err)
		if kind != netutil.KindCanceled {
			logger.LogEvent(req.Context(), log, slog.LevelWarn, "http.request",
				slog.String("status", "fail"),
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.String("err", err.Error()),
				slog.String("error_kind", kind),
				slog.Duration("duration", logger.Took(start)),
			)
		}
		return nil, err
	}
	logger.LogEvent(req.Context(), log, slog.LevelDebug, "http.request",
		slog.String("status", "ok"),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	)
	return resp, nil
}
