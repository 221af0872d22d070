// Package health serves the liveness endpoints polled by the hosting platform.
package health

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/weatherbot/core/service"
)

const rootBody = "Бот запущен и работает!"

// Router exposes GET / and GET /health; every other path is a 404.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", root)
	r.Get("/health", healthz)
	return r
}

// NewServer returns the health listener bound to host:port.
func NewServer(host string, port int, log *slog.Logger) *service.HTTPServer {
	return service.NewHTTPServer("health", fmt.Sprintf("%s:%d", host, port), Router(), log)
}

func root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, rootBody)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
