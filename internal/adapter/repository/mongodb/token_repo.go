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

const tokenCollectionName = "tokens"

// TokenRepository implements domain.TokenRepository using MongoDB. Refresh and
// reset-password tokens are persisted so they can be rotated and revoked.
type TokenRepository struct {
	collection *mongo.Collection
	counters   *Counters
	logger     *logger.Logger
}

// NewTokenRepository creates a new MongoDB token repository. Expired tokens
// are reaped by a TTL index on the expires field.
func NewTokenRepository(db *mongo.Database, counters *Counters, log *logger.Logger) (*TokenRepository, error) {
	collection := db.Collection(tokenCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Error("Failed to create indexes for tokens collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for tokens collection")
	}

	return &TokenRepository{
		collection: collection,
		counters:   counters,
		logger:     log.Named("TokenRepository"),
	}, nil
}

// Save persists a token, assigning the next sequential id.
func (r *TokenRepository) Save(ctx context.Context, token *domain.Token) error {
	id, err := r.counters.Next(ctx, tokenCollectionName)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	token.ID = id
	token.CreatedAt = time.Now().UTC()

	doc := tokenDocument{
		ID:          token.ID,
		Token:       token.Token,
		UserID:      token.UserID,
		Type:        token.Type,
		Expires:     token.Expires,
		Blacklisted: token.Blacklisted,
		CreatedAt:   token.CreatedAt,
	}

	_, err = r.collection.InsertOne(ctx, doc)
	if err != nil {
		r.logger.Error("Failed to insert token into DB", zap.Error(err), zap.String("type", string(token.Type)))
		return fmt.Errorf("db insert failed: %w", err)
	}
	return nil
}

// Find returns the non-blacklisted token matching the signed string, type and
// user, or ErrNotFound.
func (r *TokenRepository) Find(ctx context.Context, token string, typ domain.TokenType, userID int64) (*domain.Token, error) {
	filter := bson.M{
		"token":       token,
		"type":        typ,
		"user_id":     userID,
		"blacklisted": false,
	}

	var doc tokenDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find token in DB", zap.Error(err), zap.String("type", string(typ)))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	found := doc.toDomain()
	return &found, nil
}

// Delete removes a single token document.
func (r *TokenRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByToken removes the token matching the signed string. ErrNotFound
// means the token was never persisted or was already revoked.
func (r *TokenRepository) DeleteByToken(ctx context.Context, token string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"token": token})
	if err != nil {
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByUser removes all of a user's tokens, optionally limited to the
// given types. Used on logout, password reset and account deletion.
func (r *TokenRepository) DeleteByUser(ctx context.Context, userID int64, types ...domain.TokenType) (int64, error) {
	filter := bson.M{"user_id": userID}
	if len(types) > 0 {
		filter["type"] = bson.M{"$in": types}
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to delete tokens for user", zap.Error(err), zap.Int64("user_id", userID))
		return 0, fmt.Errorf("db deletemany failed: %w", err)
	}
	return result.DeletedCount, nil
}
