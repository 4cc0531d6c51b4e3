package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
)

const (
	mediaBucket        = "media"
	defaultContentType = "application/octet-stream"
)

// MediaStore keeps one GridFS file per buch, using the buch id as filename.
type MediaStore struct {
	bucket *gridfs.Bucket
}

func NewMediaStore(db *mongo.Database) (*MediaStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(mediaBucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &MediaStore{bucket: bucket}, nil
}

// Save uploads r and then removes older revisions stored under the same id.
func (s *MediaStore) Save(ctx context.Context, id, contentType string, r io.Reader) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})

	fileID, err := s.bucket.UploadFromStream(id, r, opts)
	if err != nil {
		return fmt.Errorf("upload media: %w", err)
	}
	return s.deleteOlder(ctx, id, fileID)
}

func (s *MediaStore) deleteOlder(ctx context.Context, id string, keep primitive.ObjectID) error {
	cur, err := s.bucket.Find(bson.M{"filename": id, "_id": bson.M{"$ne": keep}})
	if err != nil {
		return fmt.Errorf("find media revisions: %w", err)
	}

	var files []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &files); err != nil {
		return fmt.Errorf("decode media revisions: %w", err)
	}
	for _, f := range files {
		if err := s.bucket.Delete(f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete media revision: %w", err)
		}
	}
	return nil
}

// Open streams the latest revision stored for id.
func (s *MediaStore) Open(_ context.Context, id string) (*ports.Media, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrMediaNotFound
		}
		return nil, fmt.Errorf("open media: %w", err)
	}

	file := stream.GetFile()
	contentType, ok := file.Metadata.Lookup("contentType").StringValueOK()
	if !ok || contentType == "" {
		contentType = defaultContentType
	}

	return &ports.Media{
		ContentType: contentType,
		Length:      file.Length,
		Body:        stream,
	}, nil
}
