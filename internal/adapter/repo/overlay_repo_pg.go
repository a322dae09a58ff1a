package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"streamoverlay/internal/domain"
	"streamoverlay/internal/infra"
	"streamoverlay/internal/sqlinline"
)

// OverlayRepositoryPG implements domain.OverlayStore on a Postgres table of
// JSONB documents.
type OverlayRepositoryPG struct {
	sql   infra.SQLExecutor
	close func()
}

// NewOverlayRepositoryPG wraps an executor. closeFn releases the underlying
// pool and may be nil when the caller owns it.
func NewOverlayRepositoryPG(sql infra.SQLExecutor, closeFn func()) *OverlayRepositoryPG {
	return &OverlayRepositoryPG{sql: sql, close: closeFn}
}

// Migrate creates the overlay table and its secondary indexes.
func (r *OverlayRepositoryPG) Migrate(ctx context.Context) error {
	for _, stmt := range sqlinline.OverlaySchema {
		if _, err := r.sql.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate overlays: %w", err)
		}
	}
	return nil
}

func (r *OverlayRepositoryPG) List(ctx context.Context) ([]domain.Overlay, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListOverlays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overlays := make([]domain.Overlay, 0)
	for rows.Next() {
		var (
			id                   string
			raw                  []byte
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &raw, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		o, err := overlayFromRow(id, raw, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		overlays = append(overlays, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return overlays, nil
}

func (r *OverlayRepositoryPG) Get(ctx context.Context, id string) (*domain.Overlay, error) {
	var (
		rowID                string
		raw                  []byte
		createdAt, updatedAt time.Time
	)
	err := r.sql.QueryRow(ctx, sqlinline.QGetOverlay, id).Scan(&rowID, &raw, &createdAt, &updatedAt)
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o, err := overlayFromRow(rowID, raw, createdAt, updatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OverlayRepositoryPG) Insert(ctx context.Context, overlay domain.Overlay) (*domain.Overlay, error) {
	raw, err := json.Marshal(docFromOverlay(overlay))
	if err != nil {
		return nil, err
	}
	var (
		id                   string
		createdAt, updatedAt time.Time
	)
	if err := r.sql.QueryRow(ctx, sqlinline.QInsertOverlay, raw).Scan(&id, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	o := docFromOverlay(overlay).overlay(id, createdAt.UTC(), updatedAt.UTC())
	return &o, nil
}

func (r *OverlayRepositoryPG) Replace(ctx context.Context, overlay domain.Overlay) (*domain.Overlay, error) {
	raw, err := json.Marshal(docFromOverlay(overlay))
	if err != nil {
		return nil, err
	}
	var createdAt, updatedAt time.Time
	err = r.sql.QueryRow(ctx, sqlinline.QReplaceOverlay, overlay.ID, raw).Scan(&createdAt, &updatedAt)
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o := docFromOverlay(overlay).overlay(overlay.ID, createdAt.UTC(), updatedAt.UTC())
	return &o, nil
}

func (r *OverlayRepositoryPG) Delete(ctx context.Context, id string) (*domain.Overlay, error) {
	var (
		rowID                string
		raw                  []byte
		createdAt, updatedAt time.Time
	)
	err := r.sql.QueryRow(ctx, sqlinline.QDeleteOverlay, id).Scan(&rowID, &raw, &createdAt, &updatedAt)
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o, err := overlayFromRow(rowID, raw, createdAt, updatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OverlayRepositoryPG) Ping(ctx context.Context) error {
	var one int
	return r.sql.QueryRow(ctx, sqlinline.QPingOverlays).Scan(&one)
}

func (r *OverlayRepositoryPG) Close() error {
	if r.close != nil {
		r.close()
	}
	return nil
}

func overlayFromRow(id string, raw []byte, createdAt, updatedAt time.Time) (domain.Overlay, error) {
	var doc overlayDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Overlay{}, fmt.Errorf("decode overlay %s: %w", id, err)
	}
	return doc.overlay(id, createdAt.UTC(), updatedAt.UTC()), nil
}

var _ domain.OverlayStore = (*OverlayRepositoryPG)(nil)
