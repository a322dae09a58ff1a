// Package service holds the overlay business rules: input normalization,
// validation, and the toggle transition. Every call maps to a single
// document operation on the repository.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"streamoverlay/internal/domain"
	"streamoverlay/internal/metrics"
)

type OverlayService struct {
	repo domain.OverlayRepository
	log  zerolog.Logger
}

func NewOverlayService(repo domain.OverlayRepository, logger zerolog.Logger) *OverlayService {
	return &OverlayService{repo: repo, log: logger.With().Str("component", "overlay_service").Logger()}
}

// List returns all overlays, newest first.
func (s *OverlayService) List(ctx context.Context) (overlays []domain.Overlay, err error) {
	defer s.record("list", &err)

	start := time.Now()
	overlays, err = s.repo.List(ctx)
	metrics.ObserveStore("list", time.Since(start))
	if err != nil {
		return nil, s.storeError("list overlays", err)
	}
	return overlays, nil
}

// Get returns one overlay. Ids that are not UUIDs are reported as not found.
func (s *OverlayService) Get(ctx context.Context, id string) (overlay *domain.Overlay, err error) {
	defer s.record("get", &err)
	return s.load(ctx, id)
}

// Create validates the fields, fills defaults and stores a new overlay.
func (s *OverlayService) Create(ctx context.Context, fields domain.OverlayFields) (overlay *domain.Overlay, err error) {
	defer s.record("create", &err)

	o, err := domain.NewOverlay(fields)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	overlay, err = s.repo.Insert(ctx, o)
	metrics.ObserveStore("insert", time.Since(start))
	if err != nil {
		return nil, s.storeError("create overlay", err)
	}
	s.log.Debug().Str("overlay_id", overlay.ID).Str("type", string(overlay.Type)).Msg("overlay created")
	return overlay, nil
}

// Update merges the supplied fields into the stored overlay.
func (s *OverlayService) Update(ctx context.Context, id string, fields domain.OverlayFields) (overlay *domain.Overlay, err error) {
	defer s.record("update", &err)

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	patched, err := domain.ApplyPatch(*current, fields)
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, "update overlay", patched)
}

// ToggleVisibility flips isVisible. The read and the write are separate
// store calls with no lock between them, so two concurrent toggles of the
// same overlay can both observe the same prior state and one flip is lost.
func (s *OverlayService) ToggleVisibility(ctx context.Context, id string) (overlay *domain.Overlay, err error) {
	defer s.record("toggle", &err)

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	current.IsVisible = !current.IsVisible
	return s.replace(ctx, "toggle overlay", *current)
}

// Delete removes the overlay and returns what was removed.
func (s *OverlayService) Delete(ctx context.Context, id string) (overlay *domain.Overlay, err error) {
	defer s.record("delete", &err)

	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	start := time.Now()
	overlay, err = s.repo.Delete(ctx, id)
	metrics.ObserveStore("delete", time.Since(start))
	if err != nil {
		return nil, s.storeError("delete overlay", err)
	}
	return overlay, nil
}

func (s *OverlayService) load(ctx context.Context, id string) (*domain.Overlay, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	start := time.Now()
	o, err := s.repo.Get(ctx, id)
	metrics.ObserveStore("get", time.Since(start))
	if err != nil {
		return nil, s.storeError("get overlay", err)
	}
	return o, nil
}

func (s *OverlayService) replace(ctx context.Context, op string, o domain.Overlay) (*domain.Overlay, error) {
	start := time.Now()
	saved, err := s.repo.Replace(ctx, o)
	metrics.ObserveStore("replace", time.Since(start))
	if err != nil {
		return nil, s.storeError(op, err)
	}
	return saved, nil
}

// storeError passes ErrNotFound through and wraps everything else so the
// cause is logged here and never shown to clients outside development.
func (s *OverlayService) storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	s.log.Error().Err(err).Str("op", op).Msg("overlay store failure")
	return &domain.StoreError{Op: op, Err: err}
}

func (s *OverlayService) record(op string, errp *error) {
	metrics.RecordOperation(op, outcome(*errp))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	}
	return "error"
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
