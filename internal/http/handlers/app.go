package handlers

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"streamoverlay/internal/domain"
	"streamoverlay/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Overlays *service.OverlayService
	Store    Pinger
	Logger   zerolog.Logger
	// Dev exposes internal error text in 500 responses.
	Dev bool
}

func NewApp(overlays *service.OverlayService, store Pinger, logger zerolog.Logger, dev bool) *App {
	return &App{Overlays: overlays, Store: store, Logger: logger, Dev: dev}
}

// envelope is the body of every JSON response.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) ok(w http.ResponseWriter, code int, message string, data any) {
	a.json(w, code, envelope{Success: true, Message: message, Data: data})
}

// NotFound answers unmatched routes and methods.
func (a *App) NotFound(w http.ResponseWriter, _ *http.Request) {
	a.fail(w, http.StatusNotFound, "Route not found")
}

func (a *App) fail(w http.ResponseWriter, code int, message string) {
	a.json(w, code, envelope{Success: false, Message: message})
}

// internal writes a 500 whose error text is only revealed in development.
func (a *App) internal(w http.ResponseWriter, message string, err error) {
	a.json(w, http.StatusInternalServerError, envelope{
		Success: false,
		Message: message,
		Error:   ErrorText(err, a.Dev),
	})
}

// ErrorText is the client-facing text for an unexpected error.
func ErrorText(err error, dev bool) string {
	if dev && err != nil {
		return err.Error()
	}
	return "Something went wrong"
}
