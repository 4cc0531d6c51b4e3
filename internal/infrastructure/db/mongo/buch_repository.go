package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
)

const collectionBuecher = "buecher"

// BuchRepository is the catalog store adapter. Every write that changes a
// buch goes through one atomic FindOneAndUpdate guarded by the version field.
type BuchRepository struct {
	col *mongo.Collection
}

func NewBuchRepository(db *mongo.Database) *BuchRepository {
	return &BuchRepository{col: db.Collection(collectionBuecher)}
}

// FindByID retrieves a buch by its id.
func (r *BuchRepository) FindByID(ctx context.Context, id string) (*domain.Buch, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByTitle retrieves the buch with exactly this title.
func (r *BuchRepository) FindByTitle(ctx context.Context, title string) (*domain.Buch, error) {
	return r.findOne(ctx, bson.M{"title": title})
}

func (r *BuchRepository) findOne(ctx context.Context, filter bson.M) (*domain.Buch, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Buch
	if err := r.col.FindOne(ctx, filter).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBuchNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Find returns the buecher matching filter sorted by title.
func (r *BuchRepository) Find(ctx context.Context, filter ports.BuchFilter) ([]*domain.Buch, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Title != "" {
		query["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Title), Options: "i"}
	}
	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}
	if filter.Publisher != "" {
		query["publisher"] = filter.Publisher
	}
	if len(filter.Keywords) > 0 {
		query["keywords"] = bson.M{"$all": filter.Keywords}
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find buecher: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.Buch, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode buecher: %w", err)
	}
	return out, nil
}

// Create inserts b with version 0 and fresh audit timestamps.
func (r *BuchRepository) Create(ctx context.Context, b *domain.Buch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	b.Version = 0
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrTitelExists
		}
		return fmt.Errorf("insert buch: %w", err)
	}
	return nil
}

// UpdateIfVersion replaces the mutable fields of b when the stored version is
// at least minVersion, incrementing the version in the same operation.
func (r *BuchRepository) UpdateIfVersion(ctx context.Context, b *domain.Buch, minVersion int) (*domain.Buch, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":     b.ID,
		"version": bson.M{"$gte": minVersion},
	}
	update := bson.M{
		"$set": bson.M{
			"title":      b.Title,
			"rating":     b.Rating,
			"kind":       b.Kind,
			"publisher":  b.Publisher,
			"price":      b.Price,
			"discount":   b.Discount,
			"available":  b.Available,
			"date":       b.Date,
			"email":      b.Email,
			"homepage":   b.Homepage,
			"keywords":   b.Keywords,
			"authors":    b.Authors,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Buch
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.ErrVersionConflict
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrTitelExists
	case err != nil:
		return nil, fmt.Errorf("update buch: %w", err)
	}
	return &updated, nil
}

// Delete removes the buch with id; deleting a missing id succeeds.
func (r *BuchRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete buch: %w", err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the buecher collection.
func (r *BuchRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "keywords", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
