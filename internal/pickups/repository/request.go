package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pickuperrors "curbside/internal/pickups/errors"
	"curbside/pkg/config"
	"curbside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Pickup_requests"
)

// RequestRepository is the document-store surface the slot manager needs:
// equality queries on date and (date, time), per-user history ordered by
// creation time descending, insert, and field patches. No multi-document
// transactions.
type RequestRepository interface {
	Insert(ctx context.Context, req *model.PickupRequest) error
	FindByID(ctx context.Context, id string) (*model.PickupRequest, error)
	FindByDate(ctx context.Context, date string) ([]*model.PickupRequest, error)
	FindByDateTime(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.PickupRequest, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	UpdateSchedule(ctx context.Context, id, date, timeLabel, status string) error
	Cancel(ctx context.Context, id string, meta model.CancelMeta) error
}

type mongoRequestRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRequestRepository(cfg *config.Config) RequestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRequestRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRequestRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRequestRepository) Insert(ctx context.Context, req *model.PickupRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	req.CreatedAt = now
	req.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to insert pickup request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRequestRepository) FindByID(ctx context.Context, id string) (*model.PickupRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pickuperrors.ErrInvalidID, id)
	}

	var req model.PickupRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pickuperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pickup request: %w", err)
	}

	return &req, nil
}

func (r *mongoRequestRepository) FindByDate(ctx context.Context, date string) ([]*model.PickupRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pickup requests by date: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.PickupRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode pickup requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) FindByDateTime(ctx context.Context, date, timeLabel string) ([]*model.PickupRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date": date,
		"time": timeLabel,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find pickup requests by slot: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.PickupRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode pickup requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.PickupRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pickup requests by user: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.PickupRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode pickup requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count pickup requests by user: %w", err)
	}

	return count, nil
}

func (r *mongoRequestRepository) UpdateSchedule(ctx context.Context, id, date, timeLabel, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", pickuperrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"date":       date,
			"time":       timeLabel,
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update pickup schedule: %w", err)
	}

	if result.MatchedCount == 0 {
		return pickuperrors.ErrNotFound
	}

	return nil
}

func (r *mongoRequestRepository) Cancel(ctx context.Context, id string, meta model.CancelMeta) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", pickuperrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"status":        model.StatusCancelled,
			"cancelled_by":  meta.CancelledBy,
			"cancelled_at":  now,
			"cancel_reason": meta.Reason,
			"updated_at":    now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to cancel pickup request: %w", err)
	}

	if result.MatchedCount == 0 {
		return pickuperrors.ErrNotFound
	}

	return nil
}
