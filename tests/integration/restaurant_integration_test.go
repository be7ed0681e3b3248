package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoRepo "github.com/mamatela/restaurant-review-back-end/internal/adapter/repository/mongodb"
	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	platformLogger "github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

var (
	testDBClient       *mongo.Client
	testDB             *mongo.Database
	testRestaurantRepo *mongoRepo.RestaurantRepository
	testReviewRepo     *mongoRepo.ReviewRepository
	testLogger         *platformLogger.Logger
)

// TestMain starts a disposable MongoDB and wires the repositories against it.
func TestMain(m *testing.M) {
	testLogger = platformLogger.NewLogger()

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err = pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	mongoResource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "5.0",
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=root",
			"MONGO_INITDB_ROOT_PASSWORD=password",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}
	mongoURI := fmt.Sprintf("mongodb://root:password@%s/test_restaurants_db?authSource=admin", mongoResource.GetHostPort("27017/tcp"))

	if err := pool.Retry(func() error {
		var errRetry error
		testDBClient, errRetry = mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
		if errRetry != nil {
			return errRetry
		}
		return testDBClient.Ping(context.Background(), nil)
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}

	testDB = testDBClient.Database("test_restaurants_db")
	counters := mongoRepo.NewCounters(testDB)
	testRestaurantRepo, err = mongoRepo.NewRestaurantRepository(testDB, counters, testLogger)
	if err != nil {
		log.Fatalf("Could not create test restaurant repository: %s", err)
	}
	testReviewRepo, err = mongoRepo.NewReviewRepository(testDB, counters, testLogger)
	if err != nil {
		log.Fatalf("Could not create test review repository: %s", err)
	}

	code := m.Run()

	if err := pool.Purge(mongoResource); err != nil {
		log.Fatalf("Could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func clearCollections(t *testing.T) {
	t.Helper()
	for _, name := range []string{"restaurants", "reviews"} {
		_, err := testDB.Collection(name).DeleteMany(context.Background(), bson.M{})
		require.NoError(t, err, "Failed to clear %s collection", name)
	}
}

func seedRestaurant(t *testing.T, ownerID int64, name string) *domain.Restaurant {
	t.Helper()
	restaurant, err := domain.NewRestaurant(ownerID, name, "1 Test St")
	require.NoError(t, err)
	require.NoError(t, testRestaurantRepo.Create(context.Background(), restaurant))
	return restaurant
}

func seedReview(t *testing.T, userID, restaurantID int64, rating int32) *domain.Review {
	t.Helper()
	review, err := domain.NewReview(userID, restaurantID, rating, "seeded review", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, testReviewRepo.Create(context.Background(), review))
	return review
}

func TestListWithRatings_Aggregates(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()

	withReviews := seedRestaurant(t, 7, "Chez Nous")
	noReviews := seedRestaurant(t, 7, "Empty Plate")

	seedReview(t, 101, withReviews.ID, 5)
	seedReview(t, 102, withReviews.ID, 4)
	replied := seedReview(t, 103, withReviews.ID, 5)
	require.NoError(t, testReviewRepo.SetReply(ctx, replied.ID, "thank you", time.Now().UTC()))

	page, err := testRestaurantRepo.ListWithRatings(ctx, domain.RestaurantQuery{
		Page: domain.PageRequest{Sort: domain.SortSpec{{Field: "avgRating", Desc: true}}},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.TotalItems)

	rated := page.Items[0]
	assert.Equal(t, withReviews.ID, rated.ID)
	assert.InDelta(t, 14.0/3.0, rated.AvgRating, 0.0001)
	assert.Equal(t, int64(3), rated.ReviewCount)
	assert.Equal(t, int64(2), rated.PendingReviewCount)

	empty := page.Items[1]
	assert.Equal(t, noReviews.ID, empty.ID)
	assert.Equal(t, 0.0, empty.AvgRating)
	assert.Equal(t, int64(0), empty.ReviewCount)
	assert.Equal(t, int64(0), empty.PendingReviewCount)
}

func TestListWithRatings_AvgRatingBucket(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()

	high := seedRestaurant(t, 7, "High Scorer")
	seedReview(t, 101, high.ID, 5)
	seedReview(t, 102, high.ID, 4) // avg 4.5 -> bucket 5

	mid := seedRestaurant(t, 7, "Mid Scorer")
	seedReview(t, 103, mid.ID, 4) // avg 4.0 -> bucket 4

	exact := seedRestaurant(t, 7, "Exact Five")
	seedReview(t, 104, exact.ID, 5) // avg 5.0 -> bucket 5

	page, err := testRestaurantRepo.ListWithRatings(ctx, domain.RestaurantQuery{AvgRating: 5})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	ids := []int64{page.Items[0].ID, page.Items[1].ID}
	assert.Contains(t, ids, high.ID)
	assert.Contains(t, ids, exact.ID)

	page, err = testRestaurantRepo.ListWithRatings(ctx, domain.RestaurantQuery{AvgRating: 4})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mid.ID, page.Items[0].ID)
}

func TestListWithRatings_Pagination(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		seedRestaurant(t, 7, fmt.Sprintf("Venue %d", i))
	}

	page, err := testRestaurantRepo.ListWithRatings(ctx, domain.RestaurantQuery{
		Page: domain.PageRequest{Page: 2, Limit: 3, Sort: domain.SortSpec{{Field: "_id"}}},
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, int64(7), page.TotalItems)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Equal(t, int64(2), page.PageNumber)
	assert.True(t, page.HasPrevPage)
	assert.True(t, page.HasNextPage)

	last, err := testRestaurantRepo.ListWithRatings(ctx, domain.RestaurantQuery{
		Page: domain.PageRequest{Page: 3, Limit: 3, Sort: domain.SortSpec{{Field: "_id"}}},
	})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.HasNextPage)
}

func TestListWithRatings_OwnerAndNameFilter(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()

	mine := seedRestaurant(t, 7, "Pasta Palace")
	seedRestaurant(t, 8, "Pasta Corner")
	seedRestaurant(t, 7, "Burger Barn")

	page, err := testRestaurantRepo.ListWithRatings(ctx, domain.RestaurantQuery{OwnerID: 7, NameSearch: "pasta"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)
}

func TestRestaurantDeletePreservesReviews(t *testing.T) {
	clearCollections(t)
	ctx := context.Background()

	restaurant := seedRestaurant(t, 7, "Short Lived")
	review := seedReview(t, 101, restaurant.ID, 3)

	require.NoError(t, testRestaurantRepo.Delete(ctx, restaurant.ID))

	_, err := testRestaurantRepo.GetByID(ctx, restaurant.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	kept, err := testReviewRepo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, restaurant.ID, kept.RestaurantID)
}
