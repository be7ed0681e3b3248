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

const userCollectionName = "users"

// UserRepository implements domain.UserRepository using MongoDB.
type UserRepository struct {
	collection *mongo.Collection
	counters   *Counters
	logger     *logger.Logger
}

// NewUserRepository creates a new MongoDB user repository.
func NewUserRepository(db *mongo.Database, counters *Counters, log *logger.Logger) (*UserRepository, error) {
	collection := db.Collection(userCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Error("Failed to create indexes for users collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for users collection")
	}

	return &UserRepository{
		collection: collection,
		counters:   counters,
		logger:     log.Named("UserRepository"),
	}, nil
}

// Create inserts a new user, assigning the next sequential id. The password
// must already be hashed by the caller.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.logger.Info("Creating user in DB", zap.String("email", user.Email), zap.String("role", string(user.Role)))

	id, err := r.counters.Next(ctx, userCollectionName)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	user.ID = id

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = r.collection.InsertOne(ctx, fromDomainUser(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate email on user creation", zap.String("email", user.Email))
			return fmt.Errorf("%w: email is already taken", domain.ErrInvalidInput)
		}
		r.logger.Error("Failed to insert user into DB", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id. The password hash is included; callers
// decide what to expose.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get user by ID from DB", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	user := doc.toDomain()
	return &user, nil
}

// GetByEmail retrieves a user by email, including the password hash for
// credential verification.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get user by email from DB", zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	user := doc.toDomain()
	return &user, nil
}

// Update modifies an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.logger.Info("Updating user in DB", zap.Int64("user_id", user.ID))

	user.UpdatedAt = time.Now().UTC()
	doc := fromDomainUser(user)

	update := bson.M{
		"$set": bson.M{
			"email":      doc.Email,
			"password":   doc.Password,
			"first_name": doc.FirstName,
			"last_name":  doc.LastName,
			"role":       doc.Role,
			"updated_at": doc.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: email is already taken", domain.ErrInvalidInput)
		}
		r.logger.Error("Failed to update user in DB", zap.Error(err), zap.Int64("user_id", doc.ID))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a user document. Cascading of owned data is orchestrated by
// the usecase layer.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.logger.Info("Deleting user from DB", zap.Int64("user_id", id))
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete user from DB", zap.Error(err), zap.Int64("user_id", id))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns a page of users matching the filter.
func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter, page domain.PageRequest) (domain.Page[domain.User], error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"email": caseInsensitive(filter.Search)},
			bson.M{"first_name": caseInsensitive(filter.Search)},
			bson.M{"last_name": caseInsensitive(filter.Search)},
		}
	}

	docs, err := paginate[userDocument](ctx, r.collection, query, page)
	if err != nil {
		r.logger.Error("Failed to list users from DB", zap.Error(err))
		return domain.Page[domain.User]{}, err
	}
	return domain.MapPage(docs, func(d userDocument) domain.User { return d.toDomain() }), nil
}

// IsEmailAvailable reports whether no other user has this email.
func (r *UserRepository) IsEmailAvailable(ctx context.Context, email string, excludeID int64) (bool, error) {
	filter := bson.M{"email": email}
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
