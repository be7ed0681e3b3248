package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
)

// documentFieldNames maps the JSON field names accepted in sort specs to the
// keys documents are stored under. Unknown fields pass through unchanged.
var documentFieldNames = map[string]string{
	"createdAt":          "created_at",
	"updatedAt":          "updated_at",
	"firstName":          "first_name",
	"lastName":           "last_name",
	"replyDate":          "reply_date",
	"seenDate":           "seen_date",
	"avgRating":          "avg_rating",
	"reviewCount":        "review_count",
	"pendingReviewCount": "pending_review_count",
	"_id":                "_id",
}

func documentField(name string) string {
	if mapped, ok := documentFieldNames[name]; ok {
		return mapped
	}
	return name
}

// sortDocument converts a parsed sort spec to a mongo sort document,
// preserving field order.
func sortDocument(spec domain.SortSpec) bson.D {
	sort := bson.D{}
	for _, f := range spec {
		dir := 1
		if f.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: documentField(f.Field), Value: dir})
	}
	return sort
}

// paginate is the shared find-with-paging used by every simple listing. It
// runs the page slice and the total count against the same filter, applies
// normalized page/limit defaults and wraps the result in the page envelope.
// The cursor decodes into plain documents, so results are read-only by
// construction.
func paginate[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, page domain.PageRequest) (domain.Page[T], error) {
	page = page.Normalized()

	findOptions := options.Find().
		SetSkip(page.Skip()).
		SetLimit(page.Limit)
	if len(page.Sort) > 0 {
		findOptions.SetSort(sortDocument(page.Sort))
	}

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return domain.Page[T]{}, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err = cursor.All(ctx, &items); err != nil {
		return domain.Page[T]{}, fmt.Errorf("db cursor all failed: %w", err)
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return domain.Page[T]{}, fmt.Errorf("db count failed: %w", err)
	}

	return domain.NewPage(items, total, page.Page, page.Limit), nil
}

// caseInsensitive builds a substring regex filter with special characters
// escaped.
func caseInsensitive(search string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
}
