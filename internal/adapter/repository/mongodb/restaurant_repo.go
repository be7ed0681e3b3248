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

const restaurantCollectionName = "restaurants"

// RestaurantRepository implements domain.RestaurantRepository using MongoDB.
type RestaurantRepository struct {
	collection *mongo.Collection
	counters   *Counters
	logger     *logger.Logger
}

// NewRestaurantRepository creates a new MongoDB restaurant repository.
func NewRestaurantRepository(db *mongo.Database, counters *Counters, log *logger.Logger) (*RestaurantRepository, error) {
	collection := db.Collection(restaurantCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Error("Failed to create indexes for restaurants collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for restaurants collection")
	}

	return &RestaurantRepository{
		collection: collection,
		counters:   counters,
		logger:     log.Named("RestaurantRepository"),
	}, nil
}

// Create inserts a new restaurant, assigning the next sequential id.
func (r *RestaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	r.logger.Info("Creating restaurant in DB", zap.String("name", restaurant.Name), zap.Int64("owner_id", restaurant.UserID))

	id, err := r.counters.Next(ctx, restaurantCollectionName)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	restaurant.ID = id

	now := time.Now().UTC()
	restaurant.CreatedAt = now
	restaurant.UpdatedAt = now

	_, err = r.collection.InsertOne(ctx, fromDomainRestaurant(restaurant))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate name on restaurant creation", zap.String("name", restaurant.Name))
			return fmt.Errorf("%w: name is already taken", domain.ErrInvalidInput)
		}
		r.logger.Error("Failed to insert restaurant into DB", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

// GetByID retrieves a restaurant by its id.
func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*domain.Restaurant, error) {
	var doc restaurantDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get restaurant by ID from DB", zap.Error(err), zap.Int64("restaurant_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	restaurant := doc.toDomain()
	return &restaurant, nil
}

// Update modifies an existing restaurant.
func (r *RestaurantRepository) Update(ctx context.Context, restaurant *domain.Restaurant) error {
	r.logger.Info("Updating restaurant in DB", zap.Int64("restaurant_id", restaurant.ID))

	restaurant.UpdatedAt = time.Now().UTC()
	doc := fromDomainRestaurant(restaurant)

	update := bson.M{
		"$set": bson.M{
			"name":       doc.Name,
			"address":    doc.Address,
			"pic_url":    doc.PicURL,
			"updated_at": doc.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: name is already taken", domain.ErrInvalidInput)
		}
		r.logger.Error("Failed to update restaurant in DB", zap.Error(err), zap.Int64("restaurant_id", doc.ID))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a restaurant. Its reviews are deliberately left in place.
func (r *RestaurantRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Info("Deleting restaurant from DB", zap.Int64("restaurant_id", id))
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete restaurant from DB", zap.Error(err), zap.Int64("restaurant_id", id))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IsNameAvailable reports whether no other restaurant has this exact name.
func (r *RestaurantRepository) IsNameAvailable(ctx context.Context, name string, excludeID int64) (bool, error) {
	filter := bson.M{"name": name}
	if excludeID != 0 {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	err := r.collection.FindOne(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return true, nil
		}
		return false, fmt.Errorf("db findone failed: %w", err)
	}
	return false, nil
}

// CountByUser returns how many restaurants an owner has.
func (r *RestaurantRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("db count failed: %w", err)
	}
	return count, nil
}

// DeleteByUser removes all restaurants owned by a user (user-deletion cascade).
func (r *RestaurantRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("db deletemany failed: %w", err)
	}
	return result.DeletedCount, nil
}

// ListWithRatings runs the rating aggregation engine: pre-filter, review
// join with per-restaurant averages and pending counts, derived-field sort on
// the unrounded averages, the optional avgRating bucket filter, and a facet
// that slices the page and counts the filtered set in one execution.
func (r *RestaurantRepository) ListWithRatings(ctx context.Context, query domain.RestaurantQuery) (domain.Page[domain.RatedRestaurant], error) {
	r.logger.Debug("Listing restaurants with ratings",
		zap.String("name_search", query.NameSearch),
		zap.Int64("owner_id", query.OwnerID),
		zap.Int32("avg_rating", query.AvgRating))

	page := query.Page.Normalized()

	match := bson.M{}
	if query.NameSearch != "" {
		match["name"] = caseInsensitive(query.NameSearch)
	}
	if query.OwnerID != 0 {
		match["user_id"] = query.OwnerID
	}

	sort := page.Sort
	if len(sort) == 0 {
		sort = domain.SortSpec{{Field: "createdAt", Desc: true}}
	}

	afterMatch := bson.M{}
	if query.AvgRating != 0 {
		// Bucket semantics: avgRating=N admits averages in (N-1, N].
		afterMatch["avg_rating"] = bson.M{
			"$gt":  float64(query.AvgRating - 1),
			"$lte": float64(query.AvgRating),
		}
	}

	// A review with a reply has a string value, which sorts above null in
	// BSON comparison order; absent fields compare as null. The $cond below
	// therefore counts exactly the reviews without a reply.
	reviewGroup := bson.D{
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
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: reviewCollectionName},
			{Key: "let", Value: bson.D{{Key: "restaurant_id", Value: "$_id"}}},
			{Key: "as", Value: "reviews"},
			{Key: "pipeline", Value: mongo.Pipeline{
				{{Key: "$match", Value: bson.D{
					{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$$restaurant_id", "$restaurant_id"}}}},
				}}},
				{{Key: "$group", Value: reviewGroup}},
				{{Key: "$project", Value: bson.D{{Key: "_id", Value: false}}}},
			}},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$reviews"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "avg_rating", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$reviews.avg_rating", 0}}}},
			{Key: "review_count", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$reviews.review_count", 0}}}},
			{Key: "pending_review_count", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$reviews.pending_review_count", 0}}}},
			{Key: "_id", Value: true},
			{Key: "name", Value: true},
			{Key: "user_id", Value: true},
			{Key: "address", Value: true},
			{Key: "pic_url", Value: true},
			{Key: "created_at", Value: true},
		}}},
		// Sort runs on the full-precision averages; rounding happens on the
		// returned page only.
		{{Key: "$sort", Value: sortDocument(sort)}},
		{{Key: "$match", Value: afterMatch}},
		// Branch into two pipelines over the same filtered set: the page
		// slice and the total count.
		{{Key: "$facet", Value: bson.D{
			{Key: "items", Value: mongo.Pipeline{
				{{Key: "$skip", Value: page.Skip()}},
				{{Key: "$limit", Value: page.Limit}},
			}},
			{Key: "total", Value: mongo.Pipeline{
				{{Key: "$count", Value: "count"}},
			}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate restaurant ratings", zap.Error(err))
		return domain.Page[domain.RatedRestaurant]{}, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Items []ratedRestaurantDocument `bson:"items"`
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		r.logger.Error("Failed to decode rating aggregation result", zap.Error(err))
		return domain.Page[domain.RatedRestaurant]{}, fmt.Errorf("db cursor all for aggregate failed: %w", err)
	}

	items := []domain.RatedRestaurant{}
	var total int64
	if len(results) > 0 {
		for i := range results[0].Items {
			items = append(items, results[0].Items[i].toDomain())
		}
		if len(results[0].Total) > 0 {
			total = results[0].Total[0].Count
		}
	}

	return domain.NewPage(items, total, page.Page, page.Limit), nil
}
