package handlers

import (
	"context"
	"net/http"
	"time"
)

func (a *App) Root(w http.ResponseWriter, _ *http.Request) {
	a.ok(w, http.StatusOK, "Livestream Overlay API is running!", nil)
}

// Health pings the store with a short deadline.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.Store.Ping(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("store ping failed")
		a.json(w, http.StatusServiceUnavailable, envelope{
			Success: false,
			Message: "store unavailable",
			Error:   ErrorText(err, a.Dev),
		})
		return
	}
	a.ok(w, http.StatusOK, "ok", nil)
}
