package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"streamoverlay/internal/domain"
)

func (a *App) OverlaysList(w http.ResponseWriter, r *http.Request) {
	overlays, err := a.Overlays.List(r.Context())
	if err != nil {
		a.overlayError(w, err, "Failed to fetch overlays")
		return
	}
	count := len(overlays)
	a.json(w, http.StatusOK, envelope{Success: true, Data: overlays, Count: &count})
}

func (a *App) OverlaysGet(w http.ResponseWriter, r *http.Request) {
	overlay, err := a.Overlays.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.overlayError(w, err, "Failed to fetch overlay")
		return
	}
	a.ok(w, http.StatusOK, "", overlay)
}

func (a *App) OverlaysCreate(w http.ResponseWriter, r *http.Request) {
	fields, ok := a.decodeFields(w, r)
	if !ok {
		return
	}
	overlay, err := a.Overlays.Create(r.Context(), fields)
	if err != nil {
		a.overlayError(w, err, "Failed to create overlay")
		return
	}
	a.ok(w, http.StatusCreated, "Overlay created successfully", overlay)
}

func (a *App) OverlaysUpdate(w http.ResponseWriter, r *http.Request) {
	fields, ok := a.decodeFields(w, r)
	if !ok {
		return
	}
	overlay, err := a.Overlays.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		a.overlayError(w, err, "Failed to update overlay")
		return
	}
	a.ok(w, http.StatusOK, "Overlay updated successfully", overlay)
}

func (a *App) OverlaysToggle(w http.ResponseWriter, r *http.Request) {
	overlay, err := a.Overlays.ToggleVisibility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.overlayError(w, err, "Failed to toggle overlay visibility")
		return
	}
	state := "hidden"
	if overlay.IsVisible {
		state = "shown"
	}
	a.ok(w, http.StatusOK, "Overlay "+state+" successfully", overlay)
}

func (a *App) OverlaysDelete(w http.ResponseWriter, r *http.Request) {
	overlay, err := a.Overlays.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.overlayError(w, err, "Failed to delete overlay")
		return
	}
	a.ok(w, http.StatusOK, "Overlay deleted successfully", overlay)
}

// maxBodyBytes caps create and update bodies.
const maxBodyBytes = 100 << 10

// decodeFields reads a create or update body. An empty body decodes to no
// fields; unknown keys are ignored. Anything after the first JSON value is
// rejected.
func (a *App) decodeFields(w http.ResponseWriter, r *http.Request) (domain.OverlayFields, bool) {
	var fields domain.OverlayFields
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.fail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return fields, false
		}
		a.fail(w, http.StatusBadRequest, "Invalid JSON body")
		return fields, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, true
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&fields); err != nil {
		a.fail(w, http.StatusBadRequest, "Invalid JSON body")
		return fields, false
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		a.fail(w, http.StatusBadRequest, "Invalid JSON body")
		return fields, false
	}
	return fields, true
}

func (a *App) overlayError(w http.ResponseWriter, err error, message string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		a.json(w, http.StatusBadRequest, envelope{Success: false, Message: verr.Error(), Errors: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		a.fail(w, http.StatusNotFound, "Overlay not found")
	default:
		a.internal(w, message, err)
	}
}
