package domain

import (
	"strings"
	"time"
)

// OverlayType enumerates overlay kinds.
type OverlayType string

const (
	OverlayTypeText  OverlayType = "text"
	OverlayTypeLogo  OverlayType = "logo"
	OverlayTypeImage OverlayType = "image"
)

// Valid reports whether t is one of the supported overlay kinds.
func (t OverlayType) Valid() bool {
	switch t {
	case OverlayTypeText, OverlayTypeLogo, OverlayTypeImage:
		return true
	}
	return false
}

// Default field values applied when a create request omits them.
const (
	DefaultOverlayType     = OverlayTypeText
	DefaultPositionX       = 0
	DefaultPositionY       = 0
	DefaultWidth           = 100
	DefaultHeight          = 50
	DefaultColor           = "#ffffff"
	DefaultFontSize        = "16px"
	DefaultFontFamily      = "Arial"
	DefaultBackgroundColor = "transparent"
	DefaultOpacity         = 1.0
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Style struct {
	Color           string  `json:"color"`
	FontSize        string  `json:"fontSize"`
	FontFamily      string  `json:"fontFamily"`
	BackgroundColor string  `json:"backgroundColor"`
	Opacity         float64 `json:"opacity" validate:"gte=0,lte=1"`
}

// Overlay is a positioned, styled widget rendered on top of the video.
type Overlay struct {
	ID        string      `json:"id"`
	Name      string      `json:"name" validate:"required"`
	Type      OverlayType `json:"type" validate:"required,oneof=text logo image"`
	Content   string      `json:"content" validate:"required"`
	Position  Position    `json:"position"`
	Size      Size        `json:"size"`
	Style     Style       `json:"style"`
	IsVisible bool        `json:"isVisible"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// PositionFields is the optional form of Position.
type PositionFields struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// SizeFields is the optional form of Size.
type SizeFields struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// StyleFields is the optional form of Style.
type StyleFields struct {
	Color           *string  `json:"color,omitempty"`
	FontSize        *string  `json:"fontSize,omitempty"`
	FontFamily      *string  `json:"fontFamily,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	Opacity         *float64 `json:"opacity,omitempty"`
}

// OverlayFields enumerates every client-settable overlay field. It is the
// body of both create and update requests; a nil pointer means "not supplied".
type OverlayFields struct {
	Name      *string         `json:"name,omitempty"`
	Type      *string         `json:"type,omitempty"`
	Content   *string         `json:"content,omitempty"`
	Position  *PositionFields `json:"position,omitempty"`
	Size      *SizeFields     `json:"size,omitempty"`
	Style     *StyleFields    `json:"style,omitempty"`
	IsVisible *bool           `json:"isVisible,omitempty"`
}

// NewOverlay builds a complete overlay from create fields. Required fields
// must be present and non-blank; every other field falls back to its default.
func NewOverlay(f OverlayFields) (Overlay, error) {
	if blank(f.Name) || blank(f.Type) || blank(f.Content) {
		return Overlay{}, &ValidationError{Message: "Name, type, and content are required fields"}
	}

	o := Overlay{
		Type:      DefaultOverlayType,
		Position:  Position{X: DefaultPositionX, Y: DefaultPositionY},
		Size:      Size{Width: DefaultWidth, Height: DefaultHeight},
		Style:     DefaultStyle(),
		IsVisible: true,
	}
	applyFields(&o, f)
	if err := Validate(o); err != nil {
		return Overlay{}, err
	}
	return o, nil
}

// ApplyPatch merges the supplied fields into o and re-validates the result.
// Fields absent from the patch keep their current values.
func ApplyPatch(o Overlay, f OverlayFields) (Overlay, error) {
	for _, field := range []struct {
		name  string
		value *string
	}{{"name", f.Name}, {"type", f.Type}, {"content", f.Content}} {
		if field.value != nil && strings.TrimSpace(*field.value) == "" {
			return Overlay{}, &ValidationError{
				Message: field.name + " cannot be empty",
				Fields:  []FieldError{{Field: field.name, Tag: "required"}},
			}
		}
	}
	applyFields(&o, f)
	if err := Validate(o); err != nil {
		return Overlay{}, err
	}
	return o, nil
}

// DefaultStyle returns the style applied to overlays created without one.
func DefaultStyle() Style {
	return Style{
		Color:           DefaultColor,
		FontSize:        DefaultFontSize,
		FontFamily:      DefaultFontFamily,
		BackgroundColor: DefaultBackgroundColor,
		Opacity:         DefaultOpacity,
	}
}

func applyFields(o *Overlay, f OverlayFields) {
	if f.Name != nil {
		o.Name = strings.TrimSpace(*f.Name)
	}
	if f.Type != nil {
		o.Type = OverlayType(strings.TrimSpace(*f.Type))
	}
	if f.Content != nil {
		o.Content = *f.Content
	}
	if p := f.Position; p != nil {
		setFloat(&o.Position.X, p.X)
		setFloat(&o.Position.Y, p.Y)
	}
	if s := f.Size; s != nil {
		setFloat(&o.Size.Width, s.Width)
		setFloat(&o.Size.Height, s.Height)
	}
	if s := f.Style; s != nil {
		setString(&o.Style.Color, s.Color)
		setString(&o.Style.FontSize, s.FontSize)
		setString(&o.Style.FontFamily, s.FontFamily)
		setString(&o.Style.BackgroundColor, s.BackgroundColor)
		setFloat(&o.Style.Opacity, s.Opacity)
	}
	if f.IsVisible != nil {
		o.IsVisible = *f.IsVisible
	}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
