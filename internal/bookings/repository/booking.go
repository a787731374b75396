package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "padelhub/internal/bookings/errors"
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
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	InsertMany(ctx context.Context, bookings []*model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByCourtAndDate(ctx context.Context, courtID, bookingDate string, blockingOnly bool) ([]*model.Booking, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	UpdateStatus(ctx context.Context, id, from, to, notes string) (*model.Booking, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// InsertMany writes the bookings as one ordered batch. A duplicate key on
// the (court_id, booking_date, start_time) index of blocking bookings is
// reported as ErrSlotTaken.
func (r *mongoBookingRepository) InsertMany(ctx context.Context, bookings []*model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if len(bookings) == 0 {
		return nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(bookings))
	for _, b := range bookings {
		b.CreatedAt = now
		b.UpdatedAt = now
		docs = append(docs, b)
	}

	result, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", bookingserrors.ErrSlotTaken, err)
		}
		return fmt.Errorf("failed to insert bookings: %w", err)
	}

	for i, id := range result.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok && i < len(bookings) {
			bookings[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByCourtAndDate(ctx context.Context, courtID, bookingDate string, blockingOnly bool) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"court_id":     courtID,
		"booking_date": bookingDate,
	}
	if blockingOnly {
		filter["status"] = bson.M{"$in": model.BlockingStatuses()}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "start_time", Value: 1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings for court %s on %s: %w", courtID, bookingDate, err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{
			{Key: "booking_date", Value: -1},
			{Key: "start_time", Value: -1},
		}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings for user: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings for user: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a booking from one status to another and returns the
// updated document. It fails with ErrStatusChanged when the booking is no
// longer in status from. An empty notes leaves the stored notes untouched.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id, from, to, notes string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if notes != "" {
		set["notes"] = notes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": set},
		opts,
	).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s is no longer %s", bookingserrors.ErrStatusChanged, id, from)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", bookingserrors.ErrSlotTaken, err)
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
