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

func TestListNotifications(t *testing.T) {
	ctx := context.Background()
	customer := domain.Principal{UserID: 3, Role: domain.RoleCustomer}

	t.Run("defaults to newest first", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		uc := NewNotificationUsecase(notificationRepo, logger.NewLogger())

		notificationRepo.On("ListByUser", ctx, int64(3), mock.MatchedBy(func(p domain.PageRequest) bool {
			return len(p.Sort) == 1 && p.Sort[0].Field == "createdAt" && p.Sort[0].Desc
		})).Return(domain.NewPage([]domain.Notification{{ID: 1, UserID: 3}}, 1, 1, 10), nil)

		page, err := uc.ListNotifications(ctx, customer, domain.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalItems)
		notificationRepo.AssertExpectations(t)
	})

	t.Run("empty feed reads as not found", func(t *testing.T) {
		notificationRepo := new(MockNotificationRepository)
		uc := NewNotificationUsecase(notificationRepo, logger.NewLogger())

		notificationRepo.On("ListByUser", ctx, int64(3), mock.AnythingOfType("domain.PageRequest")).
			Return(domain.NewPage([]domain.Notification{}, 0, 1, 10), nil)

		_, err := uc.ListNotifications(ctx, customer, domain.PageRequest{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMarkAllSeen(t *testing.T) {
	ctx := context.Background()
	notificationRepo := new(MockNotificationRepository)
	uc := NewNotificationUsecase(notificationRepo, logger.NewLogger())

	notificationRepo.On("MarkAllSeen", ctx, int64(3), mock.AnythingOfType("time.Time")).Return(nil)

	err := uc.MarkAllSeen(ctx, domain.Principal{UserID: 3, Role: domain.RoleCustomer})
	require.NoError(t, err)
	notificationRepo.AssertCalled(t, "MarkAllSeen", ctx, int64(3), mock.AnythingOfType("time.Time"))
}
