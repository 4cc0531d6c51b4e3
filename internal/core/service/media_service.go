package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/hska/buch-catalog/internal/core/ports"
)

// MediaService stores one attachment per existing buch.
type MediaService struct {
	buecher ports.BuchRepository
	store   ports.MediaStore
	log     zerolog.Logger
}

func NewMediaService(buecher ports.BuchRepository, store ports.MediaStore, log zerolog.Logger) *MediaService {
	return &MediaService{buecher: buecher, store: store, log: log}
}

// Upload replaces the attachment of buch id. Unknown ids yield domain.ErrBuchNotFound.
func (s *MediaService) Upload(ctx context.Context, id, contentType string, r io.Reader) error {
	if _, err := s.buecher.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Save(ctx, id, contentType, r); err != nil {
		return fmt.Errorf("upload media: %w", err)
	}
	s.log.Info().Str("buch_id", id).Str("content_type", contentType).Msg("media stored")
	return nil
}

// Download opens the attachment of buch id. The caller closes the body.
func (s *MediaService) Download(ctx context.Context, id string) (*ports.Media, error) {
	if _, err := s.buecher.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Open(ctx, id)
}
