package repository

import (
	"context"
	"errors"
	"fmt"
	courterrors "padelhub/internal/courts/errors"
	"padelhub/pkg/config"
	mongotx "padelhub/pkg/db/mongo"
	"padelhub/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Courts"
)

type mongoCourtRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type CourtRepository interface {
	Create(ctx context.Context, court *model.Court) error
	FindByID(ctx context.Context, id string) (*model.Court, error)
	FindAll(ctx context.Context, limit int, offset int64, activeOnly bool) ([]*model.Court, error)
	Count(ctx context.Context, activeOnly bool) (int64, error)
	Update(ctx context.Context, id string, court *model.Court) error
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
}

// nameCollation compares court names case-insensitively. The unique index on
// name is created with the same collation.
var nameCollation = &options.Collation{Locale: "en", Strength: 2}

func NewMongoCourtRepository(cfg *config.Config) CourtRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCourtRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoCourtRepository) Create(ctx context.Context, court *model.Court) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	court.CreatedAt = now
	court.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, court)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", courterrors.ErrDuplicateName, court.Name)
		}
		return fmt.Errorf("failed to create court: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		court.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCourtRepository) FindByID(ctx context.Context, id string) (*model.Court, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", courterrors.ErrInvalidID, id)
	}

	var court model.Court
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&court)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", courterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find court: %w", err)
	}
	return &court, nil
}

func (r *mongoCourtRepository) FindAll(ctx context.Context, limit int, offset int64, activeOnly bool) ([]*model.Court, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, listFilter(activeOnly), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts: %w", err)
	}
	defer cursor.Close(ctx)

	var courts []*model.Court
	if err = cursor.All(ctx, &courts); err != nil {
		return nil, fmt.Errorf("failed to decode courts: %w", err)
	}
	return courts, nil
}

func (r *mongoCourtRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, listFilter(activeOnly))
	if err != nil {
		return 0, fmt.Errorf("failed to count courts: %w", err)
	}
	return count, nil
}

func (r *mongoCourtRepository) Update(ctx context.Context, id string, court *model.Court) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", courterrors.ErrInvalidID, id)
	}

	court.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":              court.Name,
			"description":       court.Description,
			"hourly_rate_cents": court.HourlyRateCents,
			"is_active":         court.IsActive,
			"amenities":         court.Amenities,
			"updated_at":        court.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", courterrors.ErrDuplicateName, court.Name)
		}
		return fmt.Errorf("failed to update court: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", courterrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoCourtRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"name": name}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetCollation(nameCollation).SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check court name: %w", err)
	}
	return count > 0, nil
}

func listFilter(activeOnly bool) bson.M {
	if activeOnly {
		return bson.M{"is_active": true}
	}
	return bson.M{}
}
