package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollectionName = "counters"

// Counters hands out sequential integer ids, one sequence per entity type.
// The increment-and-get runs as a single findOneAndUpdate so concurrent
// requests never observe the same value.
type Counters struct {
	collection *mongo.Collection
}

// NewCounters creates the shared id sequence store.
func NewCounters(db *mongo.Database) *Counters {
	return &Counters{collection: db.Collection(countersCollectionName)}
}

// Next returns the next id in the named sequence, starting at 1.
func (c *Counters) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := c.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("counter increment failed for %s: %w", name, err)
	}
	return doc.Seq, nil
}
