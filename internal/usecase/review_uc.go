package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/adapter/messaging/nats"
	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/metrics"
)

// ReviewUsecase implements review writing and the owner reply flow.
type ReviewUsecase struct {
	reviewRepo       domain.ReviewRepository
	restaurantRepo   domain.RestaurantRepository
	userRepo         domain.UserRepository
	notificationRepo domain.NotificationRepository
	natsPub          *nats.Publisher
	metrics          *metrics.MetricsManager
	logger           *logger.Logger
}

// NewReviewUsecase creates a new ReviewUsecase. natsPub and mm may be nil.
func NewReviewUsecase(
	reviewRepo domain.ReviewRepository,
	restaurantRepo domain.RestaurantRepository,
	userRepo domain.UserRepository,
	notificationRepo domain.NotificationRepository,
	natsPub *nats.Publisher,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *ReviewUsecase {
	return &ReviewUsecase{
		reviewRepo:       reviewRepo,
		restaurantRepo:   restaurantRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		natsPub:          natsPub,
		metrics:          mm,
		logger:           log.Named("ReviewUsecase"),
	}
}

// CreateReview posts a customer's review of a restaurant and notifies the
// restaurant's owner.
func (uc *ReviewUsecase) CreateReview(ctx context.Context, p domain.Principal, restaurantID int64, rating int32, comment string, date time.Time) (*domain.Review, error) {
	uc.logger.Info("Creating review",
		zap.Int64("restaurant_id", restaurantID),
		zap.Int64("principal_id", p.UserID),
		zap.Int32("rating", rating))

	if err := domain.Authorize(p, []domain.Role{domain.RoleCustomer}, 0); err != nil {
		return nil, err
	}

	restaurant, err := uc.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	review, err := domain.NewReview(p.UserID, restaurantID, rating, comment, date)
	if err != nil {
		return nil, fmt.Errorf("%w: rating must be between 0 and 5 and comment must not be empty", domain.ErrInvalidInput)
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.ReviewsCreatedTotal.Inc()
	}

	var customerFirstName string
	if author, err := uc.userRepo.GetByID(ctx, p.UserID); err == nil {
		customerFirstName = author.FirstName
	}
	uc.notify(ctx, domain.NewReviewNotification(review, restaurant, customerFirstName))

	uc.publish(ctx, nats.SubjectReviewCreated, map[string]interface{}{
		"review_id":     review.ID,
		"restaurant_id": review.RestaurantID,
		"user_id":       review.UserID,
		"rating":        review.Rating,
		"created_at":    review.CreatedAt.Format(time.RFC3339Nano),
	})

	uc.logger.Info("Review created", zap.Int64("review_id", review.ID))
	return review, nil
}

// GetReview returns a review. Non-admins can only read their own; a mismatch
// reads as not found.
func (uc *ReviewUsecase) GetReview(ctx context.Context, p domain.Principal, reviewID int64) (*domain.Review, error) {
	review, err := uc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.AllRoles, review.UserID); err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReviewInput holds the optional fields of a review update. The
// restaurant a review belongs to can never change.
type UpdateReviewInput struct {
	RestaurantID *int64
	Rating       *int32
	Comment      *string
	Date         *time.Time
}

// UpdateReview edits a review. Only the author (or an admin) may, and once
// the owner has replied the review is locked for its author.
func (uc *ReviewUsecase) UpdateReview(ctx context.Context, p domain.Principal, reviewID int64, input UpdateReviewInput) (*domain.Review, error) {
	uc.logger.Info("Updating review", zap.Int64("review_id", reviewID), zap.Int64("principal_id", p.UserID))

	review, err := uc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.AllRoles, review.UserID); err != nil {
		return nil, err
	}
	if input.RestaurantID != nil && *input.RestaurantID != review.RestaurantID {
		return nil, fmt.Errorf("%w: a review cannot be moved to another restaurant", domain.ErrInvalidInput)
	}
	if review.HasReply() && p.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: a review cannot be edited after the owner has replied", domain.ErrForbidden)
	}

	if input.Rating != nil {
		if *input.Rating < 0 || *input.Rating > 5 {
			return nil, fmt.Errorf("%w: rating must be between 0 and 5", domain.ErrInvalidInput)
		}
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		if *input.Comment == "" {
			return nil, fmt.Errorf("%w: comment must not be empty", domain.ErrInvalidInput)
		}
		review.Comment = *input.Comment
	}
	if input.Date != nil {
		review.Date = *input.Date
	}

	if err := uc.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review. Only the author (or an admin) may, and once
// the owner has replied the review is locked for its author.
func (uc *ReviewUsecase) DeleteReview(ctx context.Context, p domain.Principal, reviewID int64) error {
	uc.logger.Info("Deleting review", zap.Int64("review_id", reviewID), zap.Int64("principal_id", p.UserID))

	review, err := uc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.AllRoles, review.UserID); err != nil {
		return err
	}
	if review.HasReply() && p.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: a review cannot be deleted after the owner has replied", domain.ErrForbidden)
	}
	return uc.reviewRepo.Delete(ctx, reviewID)
}

// ListReviews returns a page of a restaurant's reviews, newest first unless
// the caller sorts otherwise. The search matches comments and replies. An
// empty result reads as not found.
func (uc *ReviewUsecase) ListReviews(ctx context.Context, p domain.Principal, filter domain.ReviewFilter, page domain.PageRequest) (domain.Page[domain.Review], error) {
	if err := domain.Authorize(p, domain.AllRoles, 0); err != nil {
		return domain.Page[domain.Review]{}, err
	}
	if len(page.Sort) == 0 {
		page.Sort = domain.SortSpec{{Field: "date", Desc: true}}
	}
	listed, err := uc.reviewRepo.List(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Review]{}, err
	}
	if len(listed.Items) == 0 {
		return domain.Page[domain.Review]{}, fmt.Errorf("%w: no reviews found", domain.ErrNotFound)
	}
	return listed, nil
}

// AddReply posts the owner's reply to a review of their restaurant and
// notifies the review's author. Replying again overwrites the existing reply
// and its date.
func (uc *ReviewUsecase) AddReply(ctx context.Context, p domain.Principal, reviewID int64, reply string) (*domain.Review, error) {
	uc.logger.Info("Adding reply", zap.Int64("review_id", reviewID), zap.Int64("principal_id", p.UserID))

	review, restaurant, err := uc.reviewForReply(ctx, p, reviewID)
	if err != nil {
		return nil, err
	}
	if reply == "" {
		return nil, fmt.Errorf("%w: reply must not be empty", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if err := uc.reviewRepo.SetReply(ctx, reviewID, reply, now); err != nil {
		return nil, err
	}
	review.Reply = reply
	review.ReplyDate = &now

	if uc.metrics != nil {
		uc.metrics.RepliesCreatedTotal.Inc()
	}
	uc.notify(ctx, domain.NewReplyNotification(review, restaurant))
	uc.publish(ctx, nats.SubjectReviewReplyAdded, map[string]interface{}{
		"review_id":     review.ID,
		"restaurant_id": review.RestaurantID,
		"user_id":       review.UserID,
	})
	return review, nil
}

// EditReply replaces the text of an existing reply. No new notification.
func (uc *ReviewUsecase) EditReply(ctx context.Context, p domain.Principal, reviewID int64, reply string) (*domain.Review, error) {
	review, _, err := uc.reviewForReply(ctx, p, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.HasReply() {
		return nil, fmt.Errorf("%w: review has no reply to edit", domain.ErrInvalidInput)
	}
	if reply == "" {
		return nil, fmt.Errorf("%w: reply must not be empty", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if err := uc.reviewRepo.SetReply(ctx, reviewID, reply, now); err != nil {
		return nil, err
	}
	review.Reply = reply
	review.ReplyDate = &now
	return review, nil
}

// DeleteReply removes the owner's reply, returning the review to pending.
func (uc *ReviewUsecase) DeleteReply(ctx context.Context, p domain.Principal, reviewID int64) error {
	review, _, err := uc.reviewForReply(ctx, p, reviewID)
	if err != nil {
		return err
	}
	if !review.HasReply() {
		return fmt.Errorf("%w: review has no reply to delete", domain.ErrInvalidInput)
	}
	return uc.reviewRepo.ClearReply(ctx, reviewID)
}

// reviewForReply loads the review and its restaurant and checks that the
// caller owns the restaurant. Other owners read the review as not found.
func (uc *ReviewUsecase) reviewForReply(ctx context.Context, p domain.Principal, reviewID int64) (*domain.Review, *domain.Restaurant, error) {
	review, err := uc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, nil, err
	}
	restaurant, err := uc.restaurantRepo.GetByID(ctx, review.RestaurantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: restaurant no longer exists", domain.ErrNotFound)
		}
		return nil, nil, err
	}
	if err := domain.Authorize(p, []domain.Role{domain.RoleOwner}, restaurant.UserID); err != nil {
		return nil, nil, err
	}
	return review, restaurant, nil
}

func (uc *ReviewUsecase) notify(ctx context.Context, notification *domain.Notification) {
	if uc.notificationRepo == nil {
		return
	}
	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		uc.logger.Warn("Failed to create notification", zap.Error(err), zap.String("type", string(notification.Type)))
		return
	}
	if uc.metrics != nil {
		uc.metrics.NotificationsCreatedTotal.Inc()
	}
	uc.publish(ctx, nats.SubjectNotificationCreated, map[string]interface{}{
		"notification_id": notification.ID,
		"user_id":         notification.UserID,
		"type":            notification.Type,
	})
}

func (uc *ReviewUsecase) publish(ctx context.Context, subject string, data map[string]interface{}) {
	if uc.natsPub == nil {
		return
	}
	if err := uc.natsPub.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.Error(err), zap.String("subject", subject))
	}
}
