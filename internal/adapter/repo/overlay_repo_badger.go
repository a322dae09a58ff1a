package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"streamoverlay/internal/domain"
)

const overlayKeyPrefix = "overlay:"

var errBadgerClosed = errors.New("badger: database closed")

// OverlayRepositoryBadger implements domain.OverlayStore on an embedded
// badger database, one JSON document per key.
type OverlayRepositoryBadger struct {
	db  *badger.DB
	now clock
}

func NewOverlayRepositoryBadger(db *badger.DB) *OverlayRepositoryBadger {
	return &OverlayRepositoryBadger{db: db, now: systemClock}
}

func overlayKey(id string) []byte {
	return []byte(overlayKeyPrefix + id)
}

func (r *OverlayRepositoryBadger) List(ctx context.Context) ([]domain.Overlay, error) {
	overlays := make([]domain.Overlay, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(overlayKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			err := item.Value(func(val []byte) error {
				o, err := decodeOverlay(val)
				if err != nil {
					return fmt.Errorf("decode %s: %w", item.Key(), err)
				}
				overlays = append(overlays, o)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(overlays, func(i, j int) bool {
		if overlays[i].CreatedAt.Equal(overlays[j].CreatedAt) {
			return overlays[i].ID > overlays[j].ID
		}
		return overlays[i].CreatedAt.After(overlays[j].CreatedAt)
	})
	return overlays, nil
}

func (r *OverlayRepositoryBadger) Get(ctx context.Context, id string) (*domain.Overlay, error) {
	var o domain.Overlay
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		o, err = readOverlay(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OverlayRepositoryBadger) Insert(ctx context.Context, overlay domain.Overlay) (*domain.Overlay, error) {
	now := r.now()
	overlay.ID = uuid.NewString()
	overlay.CreatedAt = now
	overlay.UpdatedAt = now

	if err := r.write(overlay); err != nil {
		return nil, err
	}
	return &overlay, nil
}

func (r *OverlayRepositoryBadger) Replace(ctx context.Context, overlay domain.Overlay) (*domain.Overlay, error) {
	err := r.update(func(txn *badger.Txn) error {
		current, err := readOverlay(txn, overlay.ID)
		if err != nil {
			return err
		}
		overlay.CreatedAt = current.CreatedAt
		overlay.UpdatedAt = r.now()

		raw, err := encodeOverlay(overlay)
		if err != nil {
			return err
		}
		return txn.Set(overlayKey(overlay.ID), raw)
	})
	if err != nil {
		return nil, err
	}
	return &overlay, nil
}

func (r *OverlayRepositoryBadger) Delete(ctx context.Context, id string) (*domain.Overlay, error) {
	var deleted domain.Overlay
	err := r.update(func(txn *badger.Txn) error {
		var err error
		deleted, err = readOverlay(txn, id)
		if err != nil {
			return err
		}
		return txn.Delete(overlayKey(id))
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (r *OverlayRepositoryBadger) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errBadgerClosed
	}
	return nil
}

func (r *OverlayRepositoryBadger) Close() error {
	return r.db.Close()
}

func (r *OverlayRepositoryBadger) write(o domain.Overlay) error {
	raw, err := encodeOverlay(o)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(overlayKey(o.ID), raw)
	})
}

// maxConflictRetries bounds how often a read-write transaction is rerun
// after a concurrent commit touched the same key.
const maxConflictRetries = 1000

// update runs fn in a read-write transaction, rerunning it on
// badger.ErrConflict so the last writer wins instead of failing.
func (r *OverlayRepositoryBadger) update(fn func(*badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = r.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func readOverlay(txn *badger.Txn, id string) (domain.Overlay, error) {
	var o domain.Overlay
	item, err := txn.Get(overlayKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return o, domain.ErrNotFound
	}
	if err != nil {
		return o, err
	}
	err = item.Value(func(val []byte) error {
		var err error
		o, err = decodeOverlay(val)
		return err
	})
	return o, err
}

var _ domain.OverlayStore = (*OverlayRepositoryBadger)(nil)
