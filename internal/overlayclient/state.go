package overlayclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"streamoverlay/internal/domain"
)

// API is the subset of Client the Manager needs.
type API interface {
	List(ctx context.Context) ([]domain.Overlay, error)
	Create(ctx context.Context, fields domain.OverlayFields) (*domain.Overlay, error)
	Update(ctx context.Context, id string, fields domain.OverlayFields) (*domain.Overlay, error)
	ToggleVisibility(ctx context.Context, id string) (*domain.Overlay, error)
	Delete(ctx context.Context, id string) (*domain.Overlay, error)
}

var (
	ErrFormClosed         = errors.New("no form is open")
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
	ErrUnknownOverlay     = errors.New("overlay is not in the local list")
)

// ActionError is the user-facing failure of one editor action. The cause
// stays available through errors.As for APIError and TransportError.
type ActionError struct {
	Message string
	Err     error
}

func (e *ActionError) Error() string { return e.Message + ": " + e.Err.Error() }

func (e *ActionError) Unwrap() error { return e.Err }

type FormMode int

const (
	FormClosed FormMode = iota
	FormCreating
	FormEditing
)

// Form is the add/edit slot. Style fields left nil fall back to the
// server defaults on create and are left untouched on edit.
type Form struct {
	Mode      FormMode
	EditingID string
	Name      string
	Type      domain.OverlayType
	Content   string
	Position  domain.Position
	Size      domain.Size
	Style     domain.StyleFields
}

// Editor defaults for a new overlay. They differ from the server defaults
// so a fresh overlay is visible and readable on top of video.
var (
	editorPosition   = domain.Position{X: 50, Y: 50}
	editorSize       = domain.Size{Width: 200, Height: 40}
	editorColor      = "#ffffff"
	editorFontSize   = "16px"
	editorBackground = "rgba(0,0,0,0.5)"
)

func (f Form) fields() domain.OverlayFields {
	name, typ, content := f.Name, string(f.Type), f.Content
	x, y := f.Position.X, f.Position.Y
	w, h := f.Size.Width, f.Size.Height
	style := f.Style
	return domain.OverlayFields{
		Name:     &name,
		Type:     &typ,
		Content:  &content,
		Position: &domain.PositionFields{X: &x, Y: &y},
		Size:     &domain.SizeFields{Width: &w, Height: &h},
		Style:    &style,
	}
}

// Manager holds the editor's local copy of the overlays. Calls are not
// serialized against each other; each one applies its result when its
// response arrives, so the last response wins.
type Manager struct {
	api API
	log zerolog.Logger

	mu       sync.Mutex
	overlays []domain.Overlay
	dragging map[string]domain.Position
	form     Form
	err      error
}

func NewManager(api API, logger zerolog.Logger) *Manager {
	return &Manager{
		api:      api,
		log:      logger,
		overlays: []domain.Overlay{},
		dragging: map[string]domain.Position{},
	}
}

// Overlays returns the local list with any in-progress drag applied.
func (m *Manager) Overlays() []domain.Overlay {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Overlay, len(m.overlays))
	copy(out, m.overlays)
	for i := range out {
		if p, ok := m.dragging[out[i].ID]; ok {
			out[i].Position = p
		}
	}
	return out
}

// Err returns the last recorded failure, or nil.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Manager) ClearError() {
	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
}

// Load replaces the local list with the server's. On failure the previous
// list is kept and the error is recorded so the caller can offer a retry.
func (m *Manager) Load(ctx context.Context) error {
	overlays, err := m.api.List(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.fail("Failed to fetch overlays", err)
	}
	m.overlays = overlays
	m.dragging = map[string]domain.Position{}
	m.err = nil
	return nil
}

func (m *Manager) Form() Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// StartCreate opens an empty form seeded with the editor defaults.
func (m *Manager) StartCreate(t domain.OverlayType) {
	if t == "" {
		t = domain.DefaultOverlayType
	}
	color, fontSize, bg := editorColor, editorFontSize, editorBackground

	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = Form{
		Mode:     FormCreating,
		Type:     t,
		Position: editorPosition,
		Size:     editorSize,
		Style:    domain.StyleFields{Color: &color, FontSize: &fontSize, BackgroundColor: &bg},
	}
}

// StartEdit opens the form on a copy of a local overlay.
func (m *Manager) StartEdit(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrUnknownOverlay
	}
	o := m.overlays[i]
	s := o.Style
	m.form = Form{
		Mode:      FormEditing,
		EditingID: id,
		Name:      o.Name,
		Type:      o.Type,
		Content:   o.Content,
		Position:  o.Position,
		Size:      o.Size,
		Style: domain.StyleFields{
			Color:           &s.Color,
			FontSize:        &s.FontSize,
			FontFamily:      &s.FontFamily,
			BackgroundColor: &s.BackgroundColor,
			Opacity:         &s.Opacity,
		},
	}
	return nil
}

// SetField edits one form field. Nested fields use a dotted path such as
// "style.color" or "position.x".
func (m *Manager) SetField(path, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.form.Mode == FormClosed {
		return ErrFormClosed
	}

	f := &m.form
	switch path {
	case "name":
		f.Name = value
	case "type":
		f.Type = domain.OverlayType(value)
	case "content":
		f.Content = value
	case "position.x", "position.y", "size.width", "size.height", "style.opacity":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		switch path {
		case "position.x":
			f.Position.X = n
		case "position.y":
			f.Position.Y = n
		case "size.width":
			f.Size.Width = n
		case "size.height":
			f.Size.Height = n
		default:
			f.Style.Opacity = &n
		}
	case "style.color":
		f.Style.Color = &value
	case "style.fontSize":
		f.Style.FontSize = &value
	case "style.fontFamily":
		f.Style.FontFamily = &value
	case "style.backgroundColor":
		f.Style.BackgroundColor = &value
	default:
		return fmt.Errorf("unknown form field %q", path)
	}
	return nil
}

func (m *Manager) CancelForm() {
	m.mu.Lock()
	m.form = Form{}
	m.mu.Unlock()
}

// Submit sends the open form. On success the local list is updated and the
// form closes; on failure the form keeps the user's input.
func (m *Manager) Submit(ctx context.Context) (*domain.Overlay, error) {
	form := m.Form()

	switch form.Mode {
	case FormCreating:
		created, err := m.api.Create(ctx, form.fields())
		m.mu.Lock()
		defer m.mu.Unlock()
		if err != nil {
			return nil, m.fail("Failed to create overlay", err)
		}
		m.overlays = append(m.overlays, *created)
		m.form = Form{}
		m.err = nil
		return created, nil

	case FormEditing:
		updated, err := m.api.Update(ctx, form.EditingID, form.fields())
		m.mu.Lock()
		defer m.mu.Unlock()
		if err != nil {
			return nil, m.fail("Failed to update overlay", err)
		}
		m.replace(*updated)
		m.form = Form{}
		m.err = nil
		return updated, nil
	}
	return nil, ErrFormClosed
}

// Drag moves an overlay locally while a gesture is in progress. It never
// calls the server.
func (m *Manager) Drag(id string, p domain.Position) {
	m.mu.Lock()
	m.dragging[id] = p
	m.mu.Unlock()
}

// DragEnd persists the final position. If the update fails the overlay
// stays where it was dropped locally and the error is recorded.
func (m *Manager) DragEnd(ctx context.Context, id string, p domain.Position) error {
	m.Drag(id, p)

	x, y := p.X, p.Y
	updated, err := m.api.Update(ctx, id, domain.OverlayFields{
		Position: &domain.PositionFields{X: &x, Y: &y},
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.fail("Failed to update overlay", err)
	}
	delete(m.dragging, id)
	m.replace(*updated)
	return nil
}

// Position returns where the overlay is drawn locally.
func (m *Manager) Position(id string) (domain.Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.dragging[id]; ok {
		return p, true
	}
	if i := m.indexOf(id); i >= 0 {
		return m.overlays[i].Position, true
	}
	return domain.Position{}, false
}

func (m *Manager) ToggleVisibility(ctx context.Context, id string) error {
	updated, err := m.api.ToggleVisibility(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.fail("Failed to toggle visibility", err)
	}
	m.replace(*updated)
	return nil
}

// Delete asks confirm before calling the server. A nil confirm, or one that
// returns false, cancels the delete without a network call.
func (m *Manager) Delete(ctx context.Context, id string, confirm func(domain.Overlay) bool) error {
	m.mu.Lock()
	i := m.indexOf(id)
	var target domain.Overlay
	if i >= 0 {
		target = m.overlays[i]
	} else {
		target = domain.Overlay{ID: id}
	}
	m.mu.Unlock()

	if confirm == nil || !confirm(target) {
		return ErrDeleteNotConfirmed
	}

	_, err := m.api.Delete(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.fail("Failed to delete overlay", err)
	}
	if i := m.indexOf(id); i >= 0 {
		m.overlays = append(m.overlays[:i], m.overlays[i+1:]...)
	}
	delete(m.dragging, id)
	return nil
}

// fail records err as the current error. Callers hold m.mu.
func (m *Manager) fail(message string, err error) error {
	m.log.Warn().Err(err).Msg(message)
	m.err = &ActionError{Message: message, Err: err}
	return m.err
}

func (m *Manager) replace(o domain.Overlay) {
	if i := m.indexOf(o.ID); i >= 0 {
		m.overlays[i] = o
	}
}

func (m *Manager) indexOf(id string) int {
	for i := range m.overlays {
		if m.overlays[i].ID == id {
			return i
		}
	}
	return -1
}
