package ports

import (
	"context"

	"github.com/hska/buch-catalog/internal/core/domain"
)

// BuchFilter carries the optional search criteria. Empty fields are ignored.
type BuchFilter struct {
	Title     string // case-insensitive substring
	Kind      domain.Kind
	Publisher domain.Publisher
	Keywords  []string // all must be present
}

// BuchRepository is the catalog store adapter.
type BuchRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Buch, error)
	FindByTitle(ctx context.Context, title string) (*domain.Buch, error)
	Find(ctx context.Context, filter BuchFilter) ([]*domain.Buch, error)
	// Create stores b with version 0. A duplicate title yields domain.ErrTitelExists.
	Create(ctx context.Context, b *domain.Buch) error
	// UpdateIfVersion applies b when the stored version is >= minVersion and
	// increments the version by one in the same atomic write. It returns the
	// stored result, or domain.ErrVersionConflict when no record matched.
	UpdateIfVersion(ctx context.Context, b *domain.Buch, minVersion int) (*domain.Buch, error)
	// Delete removes the record; a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// BuchService defines the catalog use cases.
type BuchService interface {
	FindByID(ctx context.Context, id string) (*domain.Buch, error)
	Find(ctx context.Context, filter BuchFilter) ([]*domain.Buch, error)
	Create(ctx context.Context, b *domain.Buch) (*domain.Buch, error)
	// Update requires the version the client last saw; nil means none was sent.
	Update(ctx context.Context, b *domain.Buch, version *string) (*domain.Buch, error)
	Remove(ctx context.Context, id string) error
}
