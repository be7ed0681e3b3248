package domain

import (
	"fmt"
	"time"
)

// NotificationType tags the two kinds of notifications the platform produces.
type NotificationType string

const (
	NotificationNewReview NotificationType = "new_review"
	NotificationNewReply  NotificationType = "new_reply"
)

// Notification is an in-app message addressed to a single user.
type Notification struct {
	ID        int64            `json:"_id"`
	UserID    int64            `json:"user"`
	Type      NotificationType `json:"type"`
	Text      string           `json:"text"`
	ReviewID  int64            `json:"review,omitempty"`
	NavURL    string           `json:"navUrl,omitempty"`
	SeenDate  *time.Time       `json:"seenDate,omitempty"`
	ReadDate  *time.Time       `json:"readDate,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewReviewNotification addresses the restaurant's owner when a customer
// posts a review.
func NewReviewNotification(review *Review, restaurant *Restaurant, customerFirstName string) *Notification {
	if customerFirstName == "" {
		customerFirstName = "a customer"
	}
	return &Notification{
		Type:     NotificationNewReview,
		UserID:   restaurant.UserID,
		ReviewID: review.ID,
		NavURL:   fmt.Sprintf("/restaurants?_id=%d", restaurant.ID),
		Text:     fmt.Sprintf("%s got a new review from %s", restaurant.Name, customerFirstName),
	}
}

// NewReplyNotification addresses the review's author when the owner replies.
func NewReplyNotification(review *Review, restaurant *Restaurant) *Notification {
	return &Notification{
		Type:     NotificationNewReply,
		UserID:   review.UserID,
		ReviewID: review.ID,
		NavURL:   fmt.Sprintf("/restaurants?_id=%d", restaurant.ID),
		Text:     fmt.Sprintf("Your review of %s got a reply from the owner!", restaurant.Name),
	}
}
