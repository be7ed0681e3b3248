package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

func newRestaurantUsecaseForTest(restaurantRepo *MockRestaurantRepository, reviewRepo *MockReviewRepository) *RestaurantUsecase {
	return NewRestaurantUsecase(restaurantRepo, reviewRepo, nil, nil, logger.NewLogger())
}

func TestCreateRestaurant(t *testing.T) {
	ctx := context.Background()
	owner := domain.Principal{UserID: 7, Role: domain.RoleOwner}

	t.Run("owner creates restaurant", func(t *testing.T) {
		restaurantRepo := new(MockRestaurantRepository)
		uc := newRestaurantUsecaseForTest(restaurantRepo, new(MockReviewRepository))

		restaurantRepo.On("IsNameAvailable", ctx, "Chez Nous", int64(0)).Return(true, nil)
		restaurantRepo.On("Create", ctx, mock.AnythingOfType("*domain.Restaurant")).Return(nil)

		restaurant, err := uc.CreateRestaurant(ctx, owner, "Chez Nous", "12 Rue Cler")
		require.NoError(t, err)
		assert.Equal(t, int64(7), restaurant.UserID)
		assert.Equal(t, "Chez Nous", restaurant.Name)
		restaurantRepo.AssertExpectations(t)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		uc := newRestaurantUsecaseForTest(new(MockRestaurantRepository), new(MockReviewRepository))
		_, err := uc.CreateRestaurant(ctx, domain.Principal{UserID: 3, Role: domain.RoleCustomer}, "Chez Nous", "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		restaurantRepo := new(MockRestaurantRepository)
		uc := newRestaurantUsecaseForTest(restaurantRepo, new(MockReviewRepository))
		restaurantRepo.On("IsNameAvailable", ctx, "Chez Nous", int64(0)).Return(false, nil)

		_, err := uc.CreateRestaurant(ctx, owner, "Chez Nous", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestListRestaurants(t *testing.T) {
	ctx := context.Background()

	t.Run("averages are rounded on the returned page", func(t *testing.T) {
		restaurantRepo := new(MockRestaurantRepository)
		uc := newRestaurantUsecaseForTest(restaurantRepo, new(MockReviewRepository))

		items := []domain.RatedRestaurant{
			{Restaurant: domain.Restaurant{ID: 1, Name: "A"}, AvgRating: 4.666666, ReviewCount: 3},
			{Restaurant: domain.Restaurant{ID: 2, Name: "B"}, AvgRating: 0, ReviewCount: 0},
		}
		restaurantRepo.On("ListWithRatings", ctx, mock.AnythingOfType("domain.RestaurantQuery")).
			Return(domain.NewPage(items, 2, 1, 10), nil)

		page, err := uc.ListRestaurants(ctx, domain.Principal{UserID: 3, Role: domain.RoleCustomer}, domain.RestaurantQuery{})
		require.NoError(t, err)
		assert.Equal(t, 4.67, page.Items[0].AvgRating)
		assert.Equal(t, 0.0, page.Items[1].AvgRating)
		assert.Equal(t, int64(0), page.Items[1].ReviewCount)
	})

	t.Run("owner only sees own venues", func(t *testing.T) {
		restaurantRepo := new(MockRestaurantRepository)
		uc := newRestaurantUsecaseForTest(restaurantRepo, new(MockReviewRepository))

		restaurantRepo.On("ListWithRatings", ctx, mock.MatchedBy(func(q domain.RestaurantQuery) bool {
			return q.OwnerID == 7
		})).Return(domain.NewPage([]domain.RatedRestaurant{
			{Restaurant: domain.Restaurant{ID: 1, UserID: 7}},
		}, 1, 1, 10), nil)

		_, err := uc.ListRestaurants(ctx, domain.Principal{UserID: 7, Role: domain.RoleOwner}, domain.RestaurantQuery{})
		require.NoError(t, err)
		restaurantRepo.AssertExpectations(t)
	})

	t.Run("empty result reads as not found", func(t *testing.T) {
		restaurantRepo := new(MockRestaurantRepository)
		uc := newRestaurantUsecaseForTest(restaurantRepo, new(MockReviewRepository))

		restaurantRepo.On("ListWithRatings", ctx, mock.AnythingOfType("domain.RestaurantQuery")).
			Return(domain.NewPage([]domain.RatedRestaurant{}, 0, 1, 10), nil)

		_, err := uc.ListRestaurants(ctx, domain.Principal{UserID: 3, Role: domain.RoleCustomer}, domain.RestaurantQuery{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("avgRating outside 1..5 is invalid", func(t *testing.T) {
		uc := newRestaurantUsecaseForTest(new(MockRestaurantRepository), new(MockReviewRepository))
		_, err := uc.ListRestaurants(ctx, domain.Principal{UserID: 3, Role: domain.RoleCustomer}, domain.RestaurantQuery{AvgRating: 6})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestUpdateRestaurantOwnership(t *testing.T) {
	ctx := context.Background()
	stored := &domain.Restaurant{ID: 1, Name: "A", UserID: 7}
	newName := "B"

	t.Run("other owner reads as not found", func(t *testing.T) {
		restaurantRepo := new(MockRestaurantRepository)
		uc := newRestaurantUsecaseForTest(restaurantRepo, new(MockReviewRepository))
		restaurantRepo.On("GetByID", ctx, int64(1)).Return(stored, nil)

		_, err := uc.UpdateRestaurant(ctx, domain.Principal{UserID: 8, Role: domain.RoleOwner}, 1, UpdateRestaurantInput{Name: &newName})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		restaurantRepo := new(MockRestaurantRepository)
		uc := newRestaurantUsecaseForTest(restaurantRepo, new(MockReviewRepository))
		restaurantRepo.On("GetByID", ctx, int64(1)).Return(stored, nil)

		_, err := uc.UpdateRestaurant(ctx, domain.Principal{UserID: 3, Role: domain.RoleCustomer}, 1, UpdateRestaurantInput{Name: &newName})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin can update any restaurant", func(t *testing.T) {
		restaurantRepo := new(MockRestaurantRepository)
		uc := newRestaurantUsecaseForTest(restaurantRepo, new(MockReviewRepository))
		fresh := *stored
		restaurantRepo.On("GetByID", ctx, int64(1)).Return(&fresh, nil)
		restaurantRepo.On("IsNameAvailable", ctx, "B", int64(1)).Return(true, nil)
		restaurantRepo.On("Update", ctx, mock.AnythingOfType("*domain.Restaurant")).Return(nil)

		updated, err := uc.UpdateRestaurant(ctx, domain.Principal{UserID: 1, Role: domain.RoleAdmin}, 1, UpdateRestaurantInput{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, "B", updated.Name)
	})
}

func TestOwnRestaurants(t *testing.T) {
	ctx := context.Background()
	owner := domain.Principal{UserID: 7, Role: domain.RoleOwner}

	restaurantRepo := new(MockRestaurantRepository)
	reviewRepo := new(MockReviewRepository)
	uc := newRestaurantUsecaseForTest(restaurantRepo, reviewRepo)

	items := []domain.RatedRestaurant{
		{Restaurant: domain.Restaurant{ID: 1, UserID: 7}, AvgRating: 3.333333, PendingReviewCount: 1},
		{Restaurant: domain.Restaurant{ID: 2, UserID: 7}, AvgRating: 5},
	}
	restaurantRepo.On("ListWithRatings", ctx, mock.MatchedBy(func(q domain.RestaurantQuery) bool {
		return q.OwnerID == 7 && q.NameSearch == ""
	})).Return(domain.NewPage(items, 2, 1, 10), nil)

	pending := []domain.Review{{ID: 9, RestaurantID: 1, Rating: 2, Comment: "meh"}}
	reviewRepo.On("FindPendingByRestaurantIDs", ctx, []int64{1, 2}).Return(pending, nil)

	result, err := uc.OwnRestaurants(ctx, owner, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3.33, result.Restaurants.Items[0].AvgRating)
	require.Len(t, result.PendingReviews, 1)
	assert.Equal(t, int64(9), result.PendingReviews[0].ID)
}

func TestOwnRestaurantsEmpty(t *testing.T) {
	ctx := context.Background()
	restaurantRepo := new(MockRestaurantRepository)
	reviewRepo := new(MockReviewRepository)
	uc := newRestaurantUsecaseForTest(restaurantRepo, reviewRepo)

	restaurantRepo.On("ListWithRatings", ctx, mock.AnythingOfType("domain.RestaurantQuery")).
		Return(domain.NewPage([]domain.RatedRestaurant{}, 0, 1, 10), nil)

	_, err := uc.OwnRestaurants(ctx, domain.Principal{UserID: 7, Role: domain.RoleOwner}, domain.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	reviewRepo.AssertNotCalled(t, "FindPendingByRestaurantIDs", ctx, []int64{})
}

func TestGetRestaurantDetails(t *testing.T) {
	ctx := context.Background()
	customer := domain.Principal{UserID: 3, Role: domain.RoleCustomer}

	restaurantRepo := new(MockRestaurantRepository)
	reviewRepo := new(MockReviewRepository)
	uc := newRestaurantUsecaseForTest(restaurantRepo, reviewRepo)

	restaurant := &domain.Restaurant{ID: 1, Name: "A", UserID: 7}
	best := &domain.Review{ID: 2, Rating: 5}
	worst := &domain.Review{ID: 3, Rating: 1}
	own := &domain.Review{ID: 4, UserID: 3, Rating: 4}

	restaurantRepo.On("GetByID", ctx, int64(1)).Return(restaurant, nil)
	reviewRepo.On("AverageByRestaurant", ctx, int64(1)).Return(domain.RatingSummary{AvgRating: 3.666666, ReviewCount: 3, PendingReviewCount: 2}, nil)
	reviewRepo.On("TopByRating", ctx, int64(1), true).Return(best, nil)
	reviewRepo.On("TopByRating", ctx, int64(1), false).Return(worst, nil)
	reviewRepo.On("FindOwn", ctx, int64(1), int64(3)).Return(own, nil)
	reviewRepo.On("Recent", ctx, int64(1), "", int64(5)).Return([]domain.Review{*best, *worst, *own}, nil)

	details, err := uc.GetRestaurantDetails(ctx, customer, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 3.67, details.Summary.AvgRating)
	assert.Equal(t, int64(2), details.Summary.PendingReviewCount)
	assert.Equal(t, best, details.BestReview)
	assert.Equal(t, worst, details.WorstReview)
	assert.Equal(t, own, details.OwnReview)
	assert.Len(t, details.RecentReviews, 3)
}
