package weather

import (
	"fmt"

	"github.com/m3rciful/weatherbot/core/telegram/format"
)

// ErrorKind tags a failed lookup.
type ErrorKind int

const (
	// NotFound means the provider does not know the city (HTTP 404).
	NotFound ErrorKind = iota + 1
	// APIError is any other non-success HTTP status.
	APIError
	// Unexpected covers transport failures, malformed or incomplete payloads and panics.
	Unexpected
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case APIError:
		return "api_error"
	case Unexpected:
		return "unexpected"
	}
	return "unknown"
}

// Report is a successful lookup. Numeric fields keep the provider's number text.
type Report struct {
	City        string
	Description string
	Temperature string
	Humidity    string
	// Pressure is the ground-level pressure or PressureUnknown.
	Pressure  string
	WindSpeed string
	// Sunset is HH:MM in the client's location.
	Sunset string
}

// PressureUnknown is shown when the provider omits ground-level pressure.
const PressureUnknown = "н/д"

// LookupError describes a failed lookup.
type LookupError struct {
	Kind ErrorKind
	City string
	// Status is the HTTP status line for APIError, e.g. "503 Service Unavailable".
	Status     string
	StatusCode int
	// Cause is a user-safe description for Unexpected; secrets are already masked.
	Cause string
	Err   error
}

func (e *LookupError) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("weather: city %q not found", e.City)
	case APIError:
		return fmt.Sprintf("weather: api error for %q: %s", e.City, e.Status)
	}
	return fmt.Sprintf("weather: lookup %q failed: %s", e.City, e.Cause)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Result is exactly one of Report or Err.
type Result struct {
	Report *Report
	Err    *LookupError
}

// Outcome labels the result for logs and metrics.
func (r Result) Outcome() string {
	if r.Err != nil {
		return r.Err.Kind.String()
	}
	return "ok"
}

// Render produces the chat message for r in Telegram HTML.
func Render(r Result) string {
	if r.Err != nil {
		return renderError(r.Err)
	}
	if r.Report == nil {
		return renderError(&LookupError{Kind: Unexpected, Cause: "empty result"})
	}
	rep := r.Report
	return fmt.Sprintf("🌤 <b>Погода в %s</b>\n"+
		"Описание: %s\n"+
		"Температура: %s °C\n"+
		"Влажность: %s %%\n"+
		"Давление: %s гПа\n"+
		"Скорость ветра: %s м/с\n"+
		"Закат: %s",
		format.EscapeHTML(rep.City),
		format.EscapeHTML(rep.Description),
		rep.Temperature,
		rep.Humidity,
		rep.Pressure,
		rep.WindSpeed,
		rep.Sunset,
	)
}

func renderError(e *LookupError) string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("❌ Город '%s' не найден.", format.EscapeHTML(e.City))
	case APIError:
		return fmt.Sprintf("❌ Ошибка API: %s", format.EscapeHTML(e.Status))
	}
	return fmt.Sprintf("❌ Произошла ошибка: %s", format.EscapeHTML(e.Cause))
}
