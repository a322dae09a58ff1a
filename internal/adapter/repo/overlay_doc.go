package repo

import (
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"streamoverlay/internal/domain"
)

// overlayDoc is the stored body of an overlay. The id and timestamps are
// owned by the store and kept outside the document where the backend allows.
type overlayDoc struct {
	Name      string             `json:"name"`
	Type      domain.OverlayType `json:"type"`
	Content   string             `json:"content"`
	Position  domain.Position    `json:"position"`
	Size      domain.Size        `json:"size"`
	Style     domain.Style       `json:"style"`
	IsVisible bool               `json:"isVisible"`
}

func docFromOverlay(o domain.Overlay) overlayDoc {
	return overlayDoc{
		Name:      o.Name,
		Type:      o.Type,
		Content:   o.Content,
		Position:  o.Position,
		Size:      o.Size,
		Style:     o.Style,
		IsVisible: o.IsVisible,
	}
}

func (d overlayDoc) overlay(id string, createdAt, updatedAt time.Time) domain.Overlay {
	return domain.Overlay{
		ID:        id,
		Name:      d.Name,
		Type:      d.Type,
		Content:   d.Content,
		Position:  d.Position,
		Size:      d.Size,
		Style:     d.Style,
		IsVisible: d.IsVisible,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func encodeOverlay(o domain.Overlay) ([]byte, error) {
	return json.Marshal(o)
}

func decodeOverlay(data []byte) (domain.Overlay, error) {
	var o domain.Overlay
	err := json.Unmarshal(data, &o)
	return o, err
}

// clock returns the current time truncated to microseconds so that stored
// and returned timestamps compare equal across every backend.
type clock func() time.Time

var lastStamp atomic.Int64

// systemClock is strictly increasing within the process, so two inserts in
// the same microsecond still order by creation.
func systemClock() time.Time {
	for {
		last := lastStamp.Load()
		now := time.Now().UnixMicro()
		if now <= last {
			now = last + 1
		}
		if lastStamp.CompareAndSwap(last, now) {
			return time.UnixMicro(now).UTC()
		}
	}
}
