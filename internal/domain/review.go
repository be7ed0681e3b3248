package domain

import (
	"strings"
	"time"
)

// Review is a customer's rating of a restaurant. A review without a reply is
// "pending" from the owner's point of view. RestaurantID is immutable after
// creation.
type Review struct {
	ID           int64      `json:"_id"`
	UserID       int64      `json:"user"`
	RestaurantID int64      `json:"restaurant"`
	Date         time.Time  `json:"date"`
	Rating       int32      `json:"rating"`
	Comment      string     `json:"comment"`
	Reply        string     `json:"reply,omitempty"`
	ReplyDate    *time.Time `json:"replyDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewReview validates and builds a review. Date defaults to now when zero.
func NewReview(userID, restaurantID int64, rating int32, comment string, date time.Time) (*Review, error) {
	if userID == 0 || restaurantID == 0 {
		return nil, ErrInvalidInput
	}
	if rating < 0 || rating > 5 {
		return nil, ErrInvalidInput
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrInvalidInput
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &Review{
		UserID:       userID,
		RestaurantID: restaurantID,
		Rating:       rating,
		Comment:      comment,
		Date:         date,
	}, nil
}

// HasReply reports whether the owner has replied to this review.
func (r *Review) HasReply() bool {
	return r.Reply != ""
}

// RatingSummary is the per-restaurant aggregate over its reviews. Zero values
// for a restaurant with no reviews.
type RatingSummary struct {
	AvgRating          float64 `json:"avgRating"`
	ReviewCount        int64   `json:"reviewCount"`
	PendingReviewCount int64   `json:"pendingReviewCount"`
}

// ReviewFilter holds parameters for querying reviews.
type ReviewFilter struct {
	RestaurantID int64
	UserID       int64
	Search       string // case-insensitive match against comment or reply
}
