package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "padelhub/internal/bookings/repository"
	courtsrepo "padelhub/internal/courts/repository"
	"padelhub/internal/migrations/mongo/validators"
	ratesrepo "padelhub/internal/rateschedules/repository"
	"padelhub/internal/settings"
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
)

var (
	CourtsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: 1}},
			Options: options.Index().
				SetName("court_name_unique").
				SetUnique(true).
				SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	RateSchedulesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "court_id", Value: 1},
			{Key: "is_active", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	// The partial unique index is what makes double booking impossible: two
	// blocking bookings can never share court, date and start.
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "court_id", Value: 1},
				{Key: "booking_date", Value: 1},
				{Key: "start_time", Value: 1},
			},
			Options: options.Index().
				SetName("booking_slot_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": model.BlockingStatuses()},
				}),
		},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "booking_date", Value: -1},
			{Key: "start_time", Value: -1},
		}},
	}
)

type collectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	collections := []collectionDef{
		{Name: courtsrepo.CollectionName, Indexes: CourtsIndexes, Validator: validators.CourtValidator},
		{Name: ratesrepo.CollectionName, Indexes: RateSchedulesIndexes, Validator: validators.RateScheduleValidator},
		{Name: bookingsrepo.CollectionName, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: settings.CollectionName, Validator: validators.SettingsValidator},
	}

	for _, def := range collections {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	if err := seedSettings(ctx, db, log); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

// seedSettings writes the default for every key that has never been set.
// Existing values are left alone.
func seedSettings(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	now := time.Now().UTC().Truncate(time.Millisecond)

	values := settings.Defaults().Values()
	models := make([]mongo.WriteModel, 0, len(values))
	for key, value := range values {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": key}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{
				"value":       value,
				"description": settings.Description(key),
				"updated_at":  now,
			}}).
			SetUpsert(true))
	}

	result, err := db.Collection(settings.CollectionName).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return err
	}
	log.Info("Seeded default settings", "inserted", result.UpsertedCount)
	return nil
}
