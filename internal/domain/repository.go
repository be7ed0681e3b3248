package domain

import (
	"context"
	"time"
)

// UserRepository persists users. Implementations return ErrNotFound for
// missing users and assign sequential ids on Create.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByEmail returns the user including the password hash, for credential checks.
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter UserFilter, page PageRequest) (Page[User], error)
	// IsEmailAvailable reports whether no other user (excluding excludeID) has this email.
	IsEmailAvailable(ctx context.Context, email string, excludeID int64) (bool, error)
}

// RestaurantRepository persists restaurants and runs the rating aggregation.
type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *Restaurant) error
	GetByID(ctx context.Context, id int64) (*Restaurant, error)
	Update(ctx context.Context, restaurant *Restaurant) error
	Delete(ctx context.Context, id int64) error
	// IsNameAvailable reports whether no other restaurant (excluding excludeID) has this name.
	IsNameAvailable(ctx context.Context, name string, excludeID int64) (bool, error)
	// ListWithRatings joins each matching restaurant with its review aggregates,
	// sorts on the unrounded averages, applies the avgRating bucket filter and
	// pages the result. The page slice and the total count come from a single
	// query execution.
	ListWithRatings(ctx context.Context, query RestaurantQuery) (Page[RatedRestaurant], error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

// ReviewRepository persists reviews and their owner replies.
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ReviewFilter, page PageRequest) (Page[Review], error)
	SetReply(ctx context.Context, id int64, reply string, at time.Time) error
	ClearReply(ctx context.Context, id int64) error
	// FindPendingByRestaurantIDs returns all reviews without a reply across the
	// given restaurants.
	FindPendingByRestaurantIDs(ctx context.Context, restaurantIDs []int64) ([]Review, error)
	// TopByRating returns the single highest (desc) or lowest rated review of a
	// restaurant, or nil when it has none.
	TopByRating(ctx context.Context, restaurantID int64, desc bool) (*Review, error)
	// FindOwn returns the requesting user's review of a restaurant, or nil.
	FindOwn(ctx context.Context, restaurantID, userID int64) (*Review, error)
	// Recent returns up to limit newest reviews, optionally filtered by a
	// case-insensitive comment/reply search.
	Recent(ctx context.Context, restaurantID int64, search string, limit int64) ([]Review, error)
	// AverageByRestaurant computes the rating summary for one restaurant.
	AverageByRestaurant(ctx context.Context, restaurantID int64) (RatingSummary, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	ListByUser(ctx context.Context, userID int64, page PageRequest) (Page[Notification], error)
	// MarkAllSeen stamps seenDate on every unseen notification of the user.
	MarkAllSeen(ctx context.Context, userID int64, at time.Time) error
}

// TokenRepository persists refresh and reset-password tokens.
type TokenRepository interface {
	Save(ctx context.Context, token *Token) error
	// Find returns the non-blacklisted token document matching the signed
	// token string, type and user, or ErrNotFound.
	Find(ctx context.Context, token string, typ TokenType, userID int64) (*Token, error)
	Delete(ctx context.Context, id int64) error
	// DeleteByToken removes the document matching the signed token string,
	// or ErrNotFound when it was never persisted or already revoked.
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID int64, types ...TokenType) (int64, error)
}
