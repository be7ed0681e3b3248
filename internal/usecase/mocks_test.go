package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockUserRepository) List(ctx context.Context, filter domain.UserFilter, page domain.PageRequest) (domain.Page[domain.User], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(domain.Page[domain.User]), args.Error(1)
}
func (m *MockUserRepository) IsEmailAvailable(ctx context.Context, email string, excludeID int64) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockRestaurantRepository struct{ mock.Mock }

func (m *MockRestaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	args := m.Called(ctx, restaurant)
	return args.Error(0)
}
func (m *MockRestaurantRepository) GetByID(ctx context.Context, id int64) (*domain.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Restaurant), args.Error(1)
}
func (m *MockRestaurantRepository) Update(ctx context.Context, restaurant *domain.Restaurant) error {
	args := m.Called(ctx, restaurant)
	return args.Error(0)
}
func (m *MockRestaurantRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockRestaurantRepository) IsNameAvailable(ctx context.Context, name string, excludeID int64) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}
func (m *MockRestaurantRepository) ListWithRatings(ctx context.Context, query domain.RestaurantQuery) (domain.Page[domain.RatedRestaurant], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.Page[domain.RatedRestaurant]), args.Error(1)
}
func (m *MockRestaurantRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockRestaurantRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockReviewRepository struct{ mock.Mock }

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
func (m *MockReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}
func (m *MockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
func (m *MockReviewRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockReviewRepository) List(ctx context.Context, filter domain.ReviewFilter, page domain.PageRequest) (domain.Page[domain.Review], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(domain.Page[domain.Review]), args.Error(1)
}
func (m *MockReviewRepository) SetReply(ctx context.Context, id int64, reply string, at time.Time) error {
	args := m.Called(ctx, id, reply, at)
	return args.Error(0)
}
func (m *MockReviewRepository) ClearReply(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockReviewRepository) FindPendingByRestaurantIDs(ctx context.Context, restaurantIDs []int64) ([]domain.Review, error) {
	args := m.Called(ctx, restaurantIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}
func (m *MockReviewRepository) TopByRating(ctx context.Context, restaurantID int64, desc bool) (*domain.Review, error) {
	args := m.Called(ctx, restaurantID, desc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}
func (m *MockReviewRepository) FindOwn(ctx context.Context, restaurantID, userID int64) (*domain.Review, error) {
	args := m.Called(ctx, restaurantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}
func (m *MockReviewRepository) Recent(ctx context.Context, restaurantID int64, search string, limit int64) ([]domain.Review, error) {
	args := m.Called(ctx, restaurantID, search, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}
func (m *MockReviewRepository) AverageByRestaurant(ctx context.Context, restaurantID int64) (domain.RatingSummary, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).(domain.RatingSummary), args.Error(1)
}
func (m *MockReviewRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockReviewRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotificationRepository struct{ mock.Mock }

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}
func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[domain.Notification], error) {
	args := m.Called(ctx, userID, page)
	return args.Get(0).(domain.Page[domain.Notification]), args.Error(1)
}
func (m *MockNotificationRepository) MarkAllSeen(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

type MockTokenRepository struct{ mock.Mock }

func (m *MockTokenRepository) Save(ctx context.Context, token *domain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *MockTokenRepository) Find(ctx context.Context, token string, typ domain.TokenType, userID int64) (*domain.Token, error) {
	args := m.Called(ctx, token, typ, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Token), args.Error(1)
}
func (m *MockTokenRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteByUser(ctx context.Context, userID int64, types ...domain.TokenType) (int64, error) {
	callArgs := make([]interface{}, 0, len(types)+2)
	callArgs = append(callArgs, ctx, userID)
	for _, t := range types {
		callArgs = append(callArgs, t)
	}
	args := m.Called(callArgs...)
	return args.Get(0).(int64), args.Error(1)
}

type MockTokenCache struct{ mock.Mock }

func (m *MockTokenCache) CacheToken(ctx context.Context, token string, userID int64, expires time.Time) {
	m.Called(ctx, token, userID, expires)
}
func (m *MockTokenCache) GetToken(ctx context.Context, token string) (int64, bool) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Bool(1)
}
func (m *MockTokenCache) InvalidateToken(ctx context.Context, token string) {
	m.Called(ctx, token)
}
