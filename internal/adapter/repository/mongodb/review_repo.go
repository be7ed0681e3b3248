package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

const reviewCollectionName = "reviews"

// ReviewRepository implements domain.ReviewRepository using MongoDB.
type ReviewRepository struct {
	collection *mongo.Collection
	counters   *Counters
	logger     *logger.Logger
}

// NewReviewRepository creates a new MongoDB review repository.
func NewReviewRepository(db *mongo.Database, counters *Counters, log *logger.Logger) (*ReviewRepository, error) {
	collection := db.Collection(reviewCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "restaurant_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Error("Failed to create indexes for reviews collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for reviews collection")
	}

	return &ReviewRepository{
		collection: collection,
		counters:   counters,
		logger:     log.Named("ReviewRepository"),
	}, nil
}

// Create inserts a new review, assigning the next sequential id.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	r.logger.Info("Creating review in DB",
		zap.Int64("restaurant_id", review.RestaurantID),
		zap.Int64("user_id", review.UserID),
		zap.Int32("rating", review.Rating))

	id, err := r.counters.Next(ctx, reviewCollectionName)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	review.ID = id

	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err = r.collection.InsertOne(ctx, fromDomainReview(review))
	if err != nil {
		r.logger.Error("Failed to insert review into DB", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

// GetByID retrieves a review by its id.
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var doc reviewDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get review by ID from DB", zap.Error(err), zap.Int64("review_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	review := doc.toDomain()
	return &review, nil
}

// Update modifies the mutable fields of a review. RestaurantID stays as
// created.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	r.logger.Info("Updating review in DB", zap.Int64("review_id", review.ID))

	review.UpdatedAt = time.Now().UTC()
	doc := fromDomainReview(review)

	update := bson.M{
		"$set": bson.M{
			"rating":     doc.Rating,
			"comment":    doc.Comment,
			"date":       doc.Date,
			"updated_at": doc.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		r.logger.Error("Failed to update review in DB", zap.Error(err), zap.Int64("review_id", doc.ID))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Info("Deleting review from DB", zap.Int64("review_id", id))
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete review from DB", zap.Error(err), zap.Int64("review_id", id))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns a page of reviews matching the filter.
func (r *ReviewRepository) List(ctx context.Context, filter domain.ReviewFilter, page domain.PageRequest) (domain.Page[domain.Review], error) {
	query := bson.M{}
	if filter.RestaurantID != 0 {
		query["restaurant_id"] = filter.RestaurantID
	}
	if filter.UserID != 0 {
		query["user_id"] = filter.UserID
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"comment": caseInsensitive(filter.Search)},
			bson.M{"reply": caseInsensitive(filter.Search)},
		}
	}

	docs, err := paginate[reviewDocument](ctx, r.collection, query, page)
	if err != nil {
		r.logger.Error("Failed to list reviews from DB", zap.Error(err))
		return domain.Page[domain.Review]{}, err
	}
	return domain.MapPage(docs, func(d reviewDocument) domain.Review { return d.toDomain() }), nil
}

// SetReply stamps the owner's reply and its date on a review.
func (r *ReviewRepository) SetReply(ctx context.Context, id int64, reply string, at time.Time) error {
	r.logger.Info("Setting reply on review in DB", zap.Int64("review_id", id))
	update := bson.M{
		"$set": bson.M{
			"reply":      reply,
			"reply_date": at,
			"updated_at": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearReply removes the reply, returning the review to pending state.
func (r *ReviewRepository) ClearReply(ctx context.Context, id int64) error {
	r.logger.Info("Clearing reply on review in DB", zap.Int64("review_id", id))
	update := bson.M{
		"$unset": bson.M{"reply": "", "reply_date": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindPendingByRestaurantIDs returns every unanswered review across the given
// restaurants, newest first.
func (r *ReviewRepository) FindPendingByRestaurantIDs(ctx context.Context, restaurantIDs []int64) ([]domain.Review, error) {
	if len(restaurantIDs) == 0 {
		return []domain.Review{}, nil
	}

	filter := bson.M{
		"restaurant_id": bson.M{"$in": restaurantIDs},
		"reply":         bson.M{"$exists": false},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to find pending reviews", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reviewDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	reviews := make([]domain.Review, 0, len(docs))
	for i := range docs {
		reviews = append(reviews, docs[i].toDomain())
	}
	return reviews, nil
}

// TopByRating returns the restaurant's single best (desc) or worst rated
// review, or nil when it has no reviews. Ties break on the newest date.
func (r *ReviewRepository) TopByRating(ctx context.Context, restaurantID int64, desc bool) (*domain.Review, error) {
	dir := 1
	if desc {
		dir = -1
	}
	opts := options.FindOne().SetSort(bson.D{
		{Key: "rating", Value: dir},
		{Key: "date", Value: -1},
	})

	var doc reviewDocument
	err := r.collection.FindOne(ctx, bson.M{"restaurant_id": restaurantID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	review := doc.toDomain()
	return &review, nil
}

// FindOwn returns the user's review of a restaurant, or nil when they have
// not reviewed it.
func (r *ReviewRepository) FindOwn(ctx context.Context, restaurantID, userID int64) (*domain.Review, error) {
	var doc reviewDocument
	err := r.collection.FindOne(ctx, bson.M{"restaurant_id": restaurantID, "user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	review := doc.toDomain()
	return &review, nil
}

// Recent returns up to limit newest reviews of a restaurant, optionally
// filtered by a case-insensitive comment/reply search.
func (r *ReviewRepository) Recent(ctx context.Context, restaurantID int64, search string, limit int64) ([]domain.Review, error) {
	filter := bson.M{"restaurant_id": restaurantID}
	if search != "" {
		filter["$or"] = bson.A{
			bson.M{"comment": caseInsensitive(search)},
			bson.M{"reply": caseInsensitive(search)},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to find recent reviews", zap.Error(err), zap.Int64("restaurant_id", restaurantID))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reviewDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	reviews := make([]domain.Review, 0, len(docs))
	for i := range docs {
		reviews = append(reviews, docs[i].toDomain())
	}
	return reviews, nil
}

// AverageByRestaurant computes the rating summary for one restaurant with the
// same grouping the listing pipeline uses. Zero values when it has no reviews.
func (r *ReviewRepository) AverageByRestaurant(ctx context.Context, restaurantID int64) (domain.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "restaurant_id", Value: restaurantID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$restaurant_id"},
			{Key: "avg_rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "review_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "pending_review_count", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.D{
					{Key: "if", Value: bson.D{{Key: "$gt", Value: bson.A{"$reply", nil}}}},
					{Key: "then", Value: 0},
					{Key: "else", Value: 1},
				}},
			}}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate rating summary", zap.Error(err), zap.Int64("restaurant_id", restaurantID))
		return domain.RatingSummary{}, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		AvgRating          float64 `bson:"avg_rating"`
		ReviewCount        int64   `bson:"review_count"`
		PendingReviewCount int64   `bson:"pending_review_count"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return domain.RatingSummary{}, fmt.Errorf("db cursor all for aggregate failed: %w", err)
	}
	if len(results) == 0 {
		return domain.RatingSummary{}, nil
	}
	return domain.RatingSummary{
		AvgRating:          results[0].AvgRating,
		ReviewCount:        results[0].ReviewCount,
		PendingReviewCount: results[0].PendingReviewCount,
	}, nil
}

// CountByUser returns how many reviews a user has written.
func (r *ReviewRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("db count failed: %w", err)
	}
	return count, nil
}

// DeleteByUser removes all reviews written by a user (user-deletion cascade).
func (r *ReviewRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("db deletemany failed: %w", err)
	}
	return result.DeletedCount, nil
}
