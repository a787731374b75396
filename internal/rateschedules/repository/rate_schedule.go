package repository

import (
	"context"
	"errors"
	"fmt"
	scheduleerrors "padelhub/internal/rateschedules/errors"
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
	CollectionName = "Rate_schedules"
)

type mongoRateScheduleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type RateScheduleRepository interface {
	Create(ctx context.Context, sc *model.RateSchedule) error
	FindByID(ctx context.Context, id string) (*model.RateSchedule, error)
	FindByCourt(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error)
	Update(ctx context.Context, id string, sc *model.RateSchedule) error
	Delete(ctx context.Context, id string) error
}

func NewMongoRateScheduleRepository(cfg *config.Config) RateScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRateScheduleRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRateScheduleRepository) Create(ctx context.Context, sc *model.RateSchedule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	sc.CreatedAt = now
	sc.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, sc)
	if err != nil {
		return fmt.Errorf("failed to create rate schedule: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		sc.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRateScheduleRepository) FindByID(ctx context.Context, id string) (*model.RateSchedule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scheduleerrors.ErrInvalidID, id)
	}

	var sc model.RateSchedule
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&sc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduleerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rate schedule: %w", err)
	}
	return &sc, nil
}

// FindByCourt returns a court's schedules ordered by start time, then by
// creation so the oldest of two identical windows comes first.
func (r *mongoRateScheduleRepository) FindByCourt(ctx context.Context, courtID string, activeOnly bool) ([]*model.RateSchedule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"court_id": courtID}
	if activeOnly {
		filter["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "start_time", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rate schedules for court %s: %w", courtID, err)
	}
	defer cursor.Close(ctx)

	var schedules []*model.RateSchedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode rate schedules: %w", err)
	}
	return schedules, nil
}

func (r *mongoRateScheduleRepository) Update(ctx context.Context, id string, sc *model.RateSchedule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleerrors.ErrInvalidID, id)
	}

	sc.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":         sc.Name,
			"start_time":   sc.StartTime,
			"end_time":     sc.EndTime,
			"rate_cents":   sc.RateCents,
			"days_of_week": sc.DaysOfWeek,
			"is_active":    sc.IsActive,
			"updated_at":   sc.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update rate schedule: %w", err)
	}
	if result.MatchedCount == 0 {
		return scheduleerrors.ErrNotFound
	}
	return nil
}

func (r *mongoRateScheduleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete rate schedule: %w", err)
	}
	if result.DeletedCount == 0 {
		return scheduleerrors.ErrNotFound
	}
	return nil
}
