package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

// NotificationUsecase serves each user's in-app notification feed.
type NotificationUsecase struct {
	notificationRepo domain.NotificationRepository
	logger           *logger.Logger
}

// NewNotificationUsecase creates a new NotificationUsecase.
func NewNotificationUsecase(notificationRepo domain.NotificationRepository, log *logger.Logger) *NotificationUsecase {
	return &NotificationUsecase{
		notificationRepo: notificationRepo,
		logger:           log.Named("NotificationUsecase"),
	}
}

// ListNotifications returns a page of the caller's notifications, newest
// first. An empty feed reads as not found.
func (uc *NotificationUsecase) ListNotifications(ctx context.Context, p domain.Principal, page domain.PageRequest) (domain.Page[domain.Notification], error) {
	if err := domain.Authorize(p, domain.AllRoles, 0); err != nil {
		return domain.Page[domain.Notification]{}, err
	}
	if len(page.Sort) == 0 {
		page.Sort = domain.SortSpec{{Field: "createdAt", Desc: true}}
	}

	listed, err := uc.notificationRepo.ListByUser(ctx, p.UserID, page)
	if err != nil {
		return domain.Page[domain.Notification]{}, err
	}
	if len(listed.Items) == 0 {
		return domain.Page[domain.Notification]{}, fmt.Errorf("%w: no notifications found", domain.ErrNotFound)
	}
	return listed, nil
}

// MarkAllSeen stamps the caller's unseen notifications as seen.
func (uc *NotificationUsecase) MarkAllSeen(ctx context.Context, p domain.Principal) error {
	if err := domain.Authorize(p, domain.AllRoles, 0); err != nil {
		return err
	}
	uc.logger.Debug("Marking notifications seen", zap.Int64("user_id", p.UserID))
	return uc.notificationRepo.MarkAllSeen(ctx, p.UserID, time.Now().UTC())
}
