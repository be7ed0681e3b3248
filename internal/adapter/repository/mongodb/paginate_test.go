package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
)

func TestSortDocument(t *testing.T) {
	spec := domain.SortSpec{
		{Field: "avgRating", Desc: true},
		{Field: "name"},
		{Field: "createdAt", Desc: true},
	}
	assert.Equal(t, bson.D{
		{Key: "avg_rating", Value: -1},
		{Key: "name", Value: 1},
		{Key: "created_at", Value: -1},
	}, sortDocument(spec))
}

func TestDocumentField(t *testing.T) {
	assert.Equal(t, "pending_review_count", documentField("pendingReviewCount"))
	assert.Equal(t, "_id", documentField("_id"))
	// Unknown names pass through so callers can sort on raw keys.
	assert.Equal(t, "rating", documentField("rating"))
}

func TestCaseInsensitive(t *testing.T) {
	assert.Equal(t, bson.M{"$regex": `Chez Nous`, "$options": "i"}, caseInsensitive("Chez Nous"))
	assert.Equal(t, bson.M{"$regex": `a\.b\*c\$`, "$options": "i"}, caseInsensitive("a.b*c$"))
}
