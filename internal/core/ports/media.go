package ports

import (
	"context"
	"io"
)

// Media is a stored attachment. Callers must close Body.
type Media struct {
	ContentType string
	Length      int64
	Body        io.ReadCloser
}

// MediaStore persists one binary attachment per buch id.
type MediaStore interface {
	// Save replaces any attachment already stored for id.
	Save(ctx context.Context, id, contentType string, r io.Reader) error
	// Open returns domain.ErrMediaNotFound when nothing is stored for id.
	Open(ctx context.Context, id string) (*Media, error)
}

// MediaService uploads and downloads attachments of existing buecher.
type MediaService interface {
	Upload(ctx context.Context, id, contentType string, r io.Reader) error
	Download(ctx context.Context, id string) (*Media, error)
}
