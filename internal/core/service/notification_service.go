package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, buchID string) (bool, error)
	Mark(ctx context.Context, buchID string) error
}

type notificationService struct {
	notifier ports.Notifier
	dedup    DedupChecker
	log      zerolog.Logger
}

// NewNotificationService returns a NotificationService that sends each
// creation event at most once per dedup window.
func NewNotificationService(notifier ports.Notifier, dedup DedupChecker, log zerolog.Logger) ports.NotificationService {
	return &notificationService{notifier: notifier, dedup: dedup, log: log}
}

// Process deduplicates and delivers a single creation event.
func (s *notificationService) Process(ctx context.Context, event domain.BuchCreated) error {
	// 1. Idempotency check. A failing dedup store never blocks delivery.
	isDup, err := s.dedup.IsDuplicate(ctx, event.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("buch_id", event.ID).Msg("dedup check failed, sending anyway")
	} else if isDup {
		s.log.Debug().Str("buch_id", event.ID).Msg("duplicate notification skipped")
		return nil
	}

	// 2. Mark before sending so a redelivered event does not mail twice.
	if markErr := s.dedup.Mark(ctx, event.ID); markErr != nil {
		s.log.Warn().Err(markErr).Str("buch_id", event.ID).Msg("failed to set dedup key")
	}

	// 3. Deliver.
	if err := s.notifier.NotifyCreated(ctx, event); err != nil {
		return fmt.Errorf("notify created %s: %w", event.ID, err)
	}

	s.log.Info().Str("buch_id", event.ID).Str("title", event.Title).Msg("creation notification sent")
	return nil
}
