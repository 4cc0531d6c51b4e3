package ports

import (
	"context"

	"github.com/hska/buch-catalog/internal/core/domain"
)

// CreationNotifier accepts creation events without blocking the caller.
type CreationNotifier interface {
	Enqueue(event domain.BuchCreated)
}

// Notifier delivers a single creation notification.
type Notifier interface {
	NotifyCreated(ctx context.Context, event domain.BuchCreated) error
}

// NotificationService processes one dequeued creation event.
type NotificationService interface {
	Process(ctx context.Context, event domain.BuchCreated) error
}
