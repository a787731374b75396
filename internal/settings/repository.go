package settings

import (
	"context"
	"fmt"
	"padelhub/pkg/config"
	"padelhub/pkg/logger"
	"padelhub/pkg/validation"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Settings"
)

// Entry is one stored key. Values keep their raw BSON form until decoded
// into the matching Settings field.
type Entry struct {
	Key         string        `bson:"_id"`
	Value       bson.RawValue `bson:"value"`
	Description string        `bson:"description,omitempty"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

type Repository interface {
	FindAll(ctx context.Context) ([]Entry, error)
	Upsert(ctx context.Context, values map[string]any) error
}

type mongoSettingsRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSettingsRepository(cfg *config.Config) Repository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSettingsRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSettingsRepository) FindAll(ctx context.Context) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find settings: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return entries, nil
}

func (r *mongoSettingsRepository) Upsert(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	models := make([]mongo.WriteModel, 0, len(values))
	for key, value := range values {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": key}).
			SetUpdate(bson.M{"$set": bson.M{
				"value":       value,
				"description": Description(key),
				"updated_at":  now,
			}}).
			SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

// FromEntries overlays stored values on the defaults. Unknown keys, values
// that do not decode and values out of range are skipped with a warning.
func FromEntries(entries []Entry, log *logger.Logger) Settings {
	s := Defaults()

	for _, e := range entries {
		var err error
		switch e.Key {
		case KeyMaxSlotsPerBooking:
			err = e.Value.Unmarshal(&s.MaxSlotsPerBooking)
		case KeyBookingAdvanceDays:
			err = e.Value.Unmarshal(&s.BookingAdvanceDays)
		case KeyCancellationHours:
			err = e.Value.Unmarshal(&s.CancellationHours)
		case KeyOperatingHours:
			var hours OperatingHours
			if err = e.Value.Unmarshal(&hours); err == nil {
				s.OperatingHours = hours
			}
		case KeySlotDuration:
			err = e.Value.Unmarshal(&s.SlotDurationMin)
		case KeyAutoConfirmBookings:
			err = e.Value.Unmarshal(&s.AutoConfirmBookings)
		case KeyMaintenanceMode:
			err = e.Value.Unmarshal(&s.MaintenanceMode)
		case KeyEmailNotifications:
			err = e.Value.Unmarshal(&s.EmailNotifications)
		default:
			continue
		}
		if err != nil && log != nil {
			log.Warn("Ignoring undecodable setting", "key", e.Key, "error", err)
		}
	}

	return resetInvalid(s, log)
}

// resetInvalid puts each out-of-range key back to its default. Operating
// hours and slot duration are checked together, so either one failing
// resets both.
func resetInvalid(s Settings, log *logger.Logger) Settings {
	errs, ok := s.Validate().(validation.ValidationErrors)
	if !ok || len(errs) == 0 {
		return s
	}

	d := Defaults()
	for _, e := range errs {
		if log != nil {
			log.Warn("Stored setting is invalid, using default", "key", e.Field, "error", e.Message)
		}
		switch e.Field {
		case KeyMaxSlotsPerBooking:
			s.MaxSlotsPerBooking = d.MaxSlotsPerBooking
		case KeyBookingAdvanceDays:
			s.BookingAdvanceDays = d.BookingAdvanceDays
		case KeyCancellationHours:
			s.CancellationHours = d.CancellationHours
		case KeyOperatingHours, KeySlotDuration:
			s.OperatingHours = d.OperatingHours
			s.SlotDurationMin = d.SlotDurationMin
		}
	}
	return s
}
