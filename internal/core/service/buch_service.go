package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
)

// BuchService implements the catalog use cases on top of a version-checked store.
type BuchService struct {
	repo      ports.BuchRepository
	validator *BuchValidator
	notifier  ports.CreationNotifier
	logger    zerolog.Logger
}

func NewBuchService(repo ports.BuchRepository, notifier ports.CreationNotifier, logger zerolog.Logger) *BuchService {
	return &BuchService{
		repo:      repo,
		validator: NewBuchValidator(),
		notifier:  notifier,
		logger:    logger,
	}
}

// FindByID returns domain.ErrBuchNotFound for unknown ids.
func (s *BuchService) FindByID(ctx context.Context, id string) (*domain.Buch, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrBuchNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// Find returns all buecher matching filter, sorted by title.
func (s *BuchService) Find(ctx context.Context, filter ports.BuchFilter) ([]*domain.Buch, error) {
	filter.Title = strings.TrimSpace(filter.Title)
	return s.repo.Find(ctx, filter)
}

// Create validates b, assigns a fresh id and persists it with version 0.
// The title pre-check only shortens the common path; the store's unique
// index decides races between concurrent creates.
func (s *BuchService) Create(ctx context.Context, b *domain.Buch) (*domain.Buch, error) {
	if err := s.validator.Validate(b, true); err != nil {
		return nil, err
	}

	if err := s.checkTitle(ctx, b.Title, ""); err != nil {
		return nil, err
	}

	stored := *b
	stored.ID = uuid.NewString()
	stored.Version = 0
	stored.NormalizeKeywords()

	if err := s.repo.Create(ctx, &stored); err != nil {
		if !errors.Is(err, domain.ErrTitelExists) {
			s.logger.Error().Err(err).Str("title", stored.Title).Msg("failed to create buch")
		}
		return nil, err
	}

	s.logger.Info().Str("buch_id", stored.ID).Str("title", stored.Title).Msg("buch created")

	if s.notifier != nil {
		s.notifier.Enqueue(domain.BuchCreated{
			ID:        stored.ID,
			Title:     stored.Title,
			CreatedAt: stored.CreatedAt,
		})
	}

	return &stored, nil
}

// Update applies b if the stored version is at least the supplied one. The
// store increments the version by one on success.
func (s *BuchService) Update(ctx context.Context, b *domain.Buch, version *string) (*domain.Buch, error) {
	if version == nil {
		return nil, domain.ErrVersionMissing
	}
	v, err := parseVersion(*version)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(b, false); err != nil {
		return nil, err
	}

	if err := s.checkTitle(ctx, b.Title, b.ID); err != nil {
		return nil, err
	}

	changes := *b
	changes.NormalizeKeywords()

	updated, err := s.repo.UpdateIfVersion(ctx, &changes, v)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			s.logger.Info().Str("buch_id", b.ID).Int("version", v).Msg("update rejected by version check")
		}
		return nil, err
	}

	s.logger.Info().Str("buch_id", updated.ID).Int("version", updated.Version).Msg("buch updated")
	return updated, nil
}

// Remove deletes the buch with id. Unknown ids are a no-op.
func (s *BuchService) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove buch: %w", err)
	}
	s.logger.Info().Str("buch_id", id).Msg("buch removed")
	return nil
}

// checkTitle fails with domain.ErrTitelExists when a buch other than ownID
// already holds title.
func (s *BuchService) checkTitle(ctx context.Context, title, ownID string) error {
	existing, err := s.repo.FindByTitle(ctx, title)
	switch {
	case errors.Is(err, domain.ErrBuchNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check title: %w", err)
	case existing.ID != ownID:
		return domain.ErrTitelExists
	}
	return nil
}

func parseVersion(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrVersionInvalid, raw)
	}
	return v, nil
}
