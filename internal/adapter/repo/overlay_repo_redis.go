package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"streamoverlay/internal/domain"
)

// OverlayRepositoryRedis implements domain.OverlayStore on redis. Each overlay
// is a JSON string under <prefix>:doc:<id>; a sorted set scored by creation
// time (microseconds) keeps the newest-first listing order.
type OverlayRepositoryRedis struct {
	client *redis.Client
	prefix string
	now    clock
}

func NewOverlayRepositoryRedis(client *redis.Client, prefix string) *OverlayRepositoryRedis {
	if prefix == "" {
		prefix = "overlays"
	}
	return &OverlayRepositoryRedis{client: client, prefix: prefix, now: systemClock}
}

func (r *OverlayRepositoryRedis) docKey(id string) string { return r.prefix + ":doc:" + id }

func (r *OverlayRepositoryRedis) indexKey() string { return r.prefix + ":by_created" }

func (r *OverlayRepositoryRedis) List(ctx context.Context) ([]domain.Overlay, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	overlays := make([]domain.Overlay, 0, len(ids))
	if len(ids) == 0 {
		return overlays, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Deleted between the index read and the fetch.
			continue
		}
		o, err := decodeOverlay([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("decode overlay %s: %w", ids[i], err)
		}
		overlays = append(overlays, o)
	}
	return overlays, nil
}

func (r *OverlayRepositoryRedis) Get(ctx context.Context, id string) (*domain.Overlay, error) {
	return r.get(ctx, r.client, id)
}

func (r *OverlayRepositoryRedis) get(ctx context.Context, c redis.Cmdable, id string) (*domain.Overlay, error) {
	raw, err := c.Get(ctx, r.docKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o, err := decodeOverlay(raw)
	if err != nil {
		return nil, fmt.Errorf("decode overlay %s: %w", id, err)
	}
	return &o, nil
}

func (r *OverlayRepositoryRedis) Insert(ctx context.Context, overlay domain.Overlay) (*domain.Overlay, error) {
	now := r.now()
	overlay.ID = uuid.NewString()
	overlay.CreatedAt = now
	overlay.UpdatedAt = now

	raw, err := encodeOverlay(overlay)
	if err != nil {
		return nil, err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.docKey(overlay.ID), raw, 0)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(now.UnixMicro()), Member: overlay.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &overlay, nil
}

func (r *OverlayRepositoryRedis) Replace(ctx context.Context, overlay domain.Overlay) (*domain.Overlay, error) {
	key := r.docKey(overlay.ID)
	var saved domain.Overlay
	err := r.watch(ctx, func(tx *redis.Tx) error {
		current, err := r.get(ctx, tx, overlay.ID)
		if err != nil {
			return err
		}
		saved = overlay
		saved.CreatedAt = current.CreatedAt
		saved.UpdatedAt = r.now()

		raw, err := encodeOverlay(saved)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *OverlayRepositoryRedis) Delete(ctx context.Context, id string) (*domain.Overlay, error) {
	key := r.docKey(id)
	var deleted *domain.Overlay
	err := r.watch(ctx, func(tx *redis.Tx) error {
		current, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, r.indexKey(), id)
			return nil
		})
		deleted = current
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// maxWatchRetries bounds how often a write is retried after another client
// changed the watched key before EXEC.
const maxWatchRetries = 1000

// watch runs fn in a WATCH transaction on key, rerunning it when the
// transaction aborts because the key changed. The last writer wins, as it
// does on the other stores.
func (r *OverlayRepositoryRedis) watch(ctx context.Context, fn func(*redis.Tx) error, key string) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("watch %s: %w", key, redis.TxFailedErr)
}

func (r *OverlayRepositoryRedis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *OverlayRepositoryRedis) Close() error {
	return r.client.Close()
}

var _ domain.OverlayStore = (*OverlayRepositoryRedis)(nil)
