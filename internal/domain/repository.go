package domain

import "context"

// OverlayRepository persists overlay documents. Implementations assign the
// id and timestamps and return ErrNotFound for unknown ids.
type OverlayRepository interface {
	// List returns every overlay, newest created first.
	List(ctx context.Context) ([]Overlay, error)
	Get(ctx context.Context, id string) (*Overlay, error)
	// Insert stores a new overlay and returns it with id, createdAt and updatedAt set.
	Insert(ctx context.Context, overlay Overlay) (*Overlay, error)
	// Replace overwrites the stored document with the same id and bumps updatedAt.
	Replace(ctx context.Context, overlay Overlay) (*Overlay, error)
	// Delete removes the overlay and returns the removed document.
	Delete(ctx context.Context, id string) (*Overlay, error)
}

// OverlayStore is an opened repository handle with an explicit lifecycle.
type OverlayStore interface {
	OverlayRepository
	Ping(ctx context.Context) error
	Close() error
}
