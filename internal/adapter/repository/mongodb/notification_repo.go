package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

const notificationCollectionName = "notifications"

// NotificationRepository implements domain.NotificationRepository using MongoDB.
type NotificationRepository struct {
	collection *mongo.Collection
	counters   *Counters
	logger     *logger.Logger
}

// NewNotificationRepository creates a new MongoDB notification repository.
func NewNotificationRepository(db *mongo.Database, counters *Counters, log *logger.Logger) (*NotificationRepository, error) {
	collection := db.Collection(notificationCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Error("Failed to create indexes for notifications collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for notifications collection")
	}

	return &NotificationRepository{
		collection: collection,
		counters:   counters,
		logger:     log.Named("NotificationRepository"),
	}, nil
}

// Create inserts a new notification, assigning the next sequential id.
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	r.logger.Info("Creating notification in DB",
		zap.Int64("user_id", notification.UserID),
		zap.String("type", string(notification.Type)))

	id, err := r.counters.Next(ctx, notificationCollectionName)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	notification.ID = id

	now := time.Now().UTC()
	notification.CreatedAt = now
	notification.UpdatedAt = now

	_, err = r.collection.InsertOne(ctx, fromDomainNotification(notification))
	if err != nil {
		r.logger.Error("Failed to insert notification into DB", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

// ListByUser returns a page of the user's notifications.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[domain.Notification], error) {
	docs, err := paginate[notificationDocument](ctx, r.collection, bson.M{"user_id": userID}, page)
	if err != nil {
		r.logger.Error("Failed to list notifications from DB", zap.Error(err), zap.Int64("user_id", userID))
		return domain.Page[domain.Notification]{}, err
	}
	return domain.MapPage(docs, func(d notificationDocument) domain.Notification { return d.toDomain() }), nil
}

// MarkAllSeen stamps seenDate on every unseen notification of the user.
func (r *NotificationRepository) MarkAllSeen(ctx context.Context, userID int64, at time.Time) error {
	filter := bson.M{
		"user_id":   userID,
		"seen_date": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{"seen_date": at, "updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to mark notifications seen", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("db updatemany failed: %w", err)
	}
	r.logger.Debug("Marked notifications seen", zap.Int64("user_id", userID), zap.Int64("modified", result.ModifiedCount))
	return nil
}
