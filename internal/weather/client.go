// Package weather looks up current conditions at OpenWeatherMap.
package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/metrics"
	"github.com/m3rciful/weatherbot/core/netutil"
)

const currentWeatherPath = "/data/2.5/weather"

// Options configures NewClient.
type Options struct {
	BaseURL string
	APIKey  string
	Units   string
	Lang    string
	Timeout time.Duration
	// Location formats the sunset time; nil means time.Local.
	Location *time.Location
	Log      *slog.Logger
	Metrics  *metrics.Metrics
	// HTTPClient replaces resty's default client, mostly for tests.
	HTTPClient *http.Client
}

// Client performs one synchronous GET per lookup. Requests are never retried.
type Client struct {
	http    *resty.Client
	apiKey  string
	units   string
	lang    string
	loc     *time.Location
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	rc := resty.New()
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	}
	rc.SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{log: log})
	return &Client{
		http:    rc,
		apiKey:  opts.APIKey,
		units:   opts.Units,
		lang:    opts.Lang,
		loc:     loc,
		log:     log,
		metrics: opts.Metrics,
	}
}

// Lookup fetches the current weather for city. It never returns a Go error:
// every failure is a tagged LookupError inside the Result.
func (c *Client) Lookup(ctx context.Context, city string) Result {
	start := time.Now()
	res := c.lookup(ctx, city)
	took := time.Since(start)
	c.metrics.ObserveLookup(res.Outcome(), took)
	c.logResult(ctx, city, res, took)
	return res
}

func (c *Client) lookup(ctx context.Context, city string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = c.unexpected(city, fmt.Errorf("panic: %v", r))
		}
	}()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     city,
			"appid": c.apiKey,
			"units": c.units,
			"lang":  c.lang,
		}).
		Get(currentWeatherPath)
	if err != nil {
		return c.unexpected(city, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return Result{Err: &LookupError{Kind: NotFound, City: city, StatusCode: code, Status: resp.Status()}}
	case !resp.IsSuccess():
		return Result{Err: &LookupError{Kind: APIError, City: city, StatusCode: code, Status: resp.Status()}}
	}

	report, err := c.decode(city, resp.Body())
	if err != nil {
		return c.unexpected(city, err)
	}
	return Result{Report: report}
}

func (c *Client) unexpected(city string, err error) Result {
	return Result{Err: &LookupError{
		Kind:  Unexpected,
		City:  city,
		Cause: logger.Redact(err.Error(), c.apiKey),
		Err:   err,
	}}
}

type apiResponse struct {
	Weather []struct {
		Description *string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp      *json.Number `json:"temp"`
		Humidity  *json.Number `json:"humidity"`
		GrndLevel *json.Number `json:"grnd_level"`
	} `json:"main"`
	Wind *struct {
		Speed *json.Number `json:"speed"`
	} `json:"wind"`
	Sys *struct {
		Sunset *json.Number `json:"sunset"`
	} `json:"sys"`
}

// errMissingField reports a required payload field the provider left out.
type errMissingField string

func (e errMissingField) Error() string { return fmt.Sprintf("missing field %q", string(e)) }

func (c *Client) decode(city string, body []byte) (*Report, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var p apiResponse
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(p.Weather) == 0 {
		return nil, errMissingField("weather")
	}
	if p.Weather[0].Description == nil {
		return nil, errMissingField("weather.0.description")
	}
	if p.Main == nil {
		return nil, errMissingField("main")
	}
	if p.Main.Temp == nil {
		return nil, errMissingField("main.temp")
	}
	if p.Main.Humidity == nil {
		return nil, errMissingField("main.humidity")
	}
	if p.Wind == nil || p.Wind.Speed == nil {
		return nil, errMissingField("wind.speed")
	}
	if p.Sys == nil || p.Sys.Sunset == nil {
		return nil, errMissingField("sys.sunset")
	}

	sunset, err := p.Sys.Sunset.Int64()
	if err != nil {
		return nil, fmt.Errorf("invalid sys.sunset %q: %w", p.Sys.Sunset.String(), err)
	}
	pressure := PressureUnknown
	if p.Main.GrndLevel != nil {
		pressure = p.Main.GrndLevel.String()
	}

	return &Report{
		City:        city,
		Description: *p.Weather[0].Description,
		Temperature: p.Main.Temp.String(),
		Humidity:    p.Main.Humidity.String(),
		Pressure:    pressure,
		WindSpeed:   p.Wind.Speed.String(),
		Sunset:      time.Unix(sunset, 0).In(c.loc).Format("15:04"),
	}, nil
}

// logResult emits one line per lookup. Only APIError and Unexpected are errors;
// an unknown city is an ordinary user mistake.
func (c *Client) logResult(ctx context.Context, city string, res Result, took time.Duration) {
	attrs := []slog.Attr{
		slog.String("city", logger.SanitizeLimit(city, 128)),
		slog.String("outcome", res.Outcome()),
		slog.Duration("duration", logger.RoundMS(took)),
	}
	if res.Err == nil {
		logger.LogEvent(ctx, c.log, slog.LevelDebug, "weather.lookup", append(attrs, slog.String("status", "ok"))...)
		return
	}

	e := res.Err
	switch e.Kind {
	case NotFound:
		logger.LogEvent(ctx, c.log, slog.LevelInfo, "weather.lookup",
			append(attrs, slog.String("status", "ok"), slog.Int("http_code", e.StatusCode))...)
	case APIError:
		logger.LogEvent(ctx, c.log, slog.LevelError, "weather.lookup",
			append(attrs,
				slog.String("status", "fail"),
				slog.Int("http_code", e.StatusCode),
				slog.String("err", e.Status),
			)...)
	default:
		kind := netutil.Kind(e.Err)
		var missing errMissingField
		var syntaxErr *json.SyntaxError
		switch {
		case errors.As(e.Err, &missing):
			kind = "missing_field"
		case errors.As(e.Err, &syntaxErr):
			kind = "malformed_json"
		}
		logger.LogEvent(ctx, c.log, slog.LevelError, "weather.lookup",
			append(attrs,
				slog.String("status", "fail"),
				slog.String("err", e.Cause),
				slog.String("error_kind", kind),
			)...)
	}
}

// restyLogger routes resty's own diagnostics into slog. Errors are logged at
// WARN: the lookup itself already reports one ERROR per failure.
type restyLogger struct{ log *slog.Logger }

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Warn("resty", slog.String("err", strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn("resty", slog.String("err", strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug("resty", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, v...))))
}
