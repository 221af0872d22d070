package metrics

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/weatherbot/core/service"
)

// NewServer returns the exposition listener serving GET /metrics.
func NewServer(host string, port int, m *Metrics, log *slog.Logger) *service.HTTPServer {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method("GET", "/metrics", m.Handler())
	return service.NewHTTPServer("metrics", fmt.Sprintf("%s:%d", host, port), r, log)
}
