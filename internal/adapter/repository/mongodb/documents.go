package mongodb

import (
	"time"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
)

// Document types mirror the domain entities with bson tags. The domain stays
// free of storage concerns; all mapping happens here.

type userDocument struct {
	ID        int64       `bson:"_id"`
	Email     string      `bson:"email"`
	Password  string      `bson:"password"`
	FirstName string      `bson:"first_name,omitempty"`
	LastName  string      `bson:"last_name,omitempty"`
	Role      domain.Role `bson:"role"`
	CreatedAt time.Time   `bson:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

func (d *userDocument) toDomain() domain.User {
	return domain.User{
		ID:        d.ID,
		Email:     d.Email,
		Password:  d.Password,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Role:      d.Role,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *userDocument {
	return &userDocument{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type restaurantDocument struct {
	ID        int64     `bson:"_id"`
	Name      string    `bson:"name"`
	UserID    int64     `bson:"user_id"`
	Address   string    `bson:"address,omitempty"`
	PicURL    string    `bson:"pic_url,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d *restaurantDocument) toDomain() domain.Restaurant {
	return domain.Restaurant{
		ID:        d.ID,
		Name:      d.Name,
		UserID:    d.UserID,
		Address:   d.Address,
		PicURL:    d.PicURL,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func fromDomainRestaurant(r *domain.Restaurant) *restaurantDocument {
	return &restaurantDocument{
		ID:        r.ID,
		Name:      r.Name,
		UserID:    r.UserID,
		Address:   r.Address,
		PicURL:    r.PicURL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ratedRestaurantDocument is the shape produced by the rating aggregation
// pipeline; it is never inserted.
type ratedRestaurantDocument struct {
	ID                 int64     `bson:"_id"`
	Name               string    `bson:"name"`
	UserID             int64     `bson:"user_id"`
	Address            string    `bson:"address,omitempty"`
	PicURL             string    `bson:"pic_url,omitempty"`
	CreatedAt          time.Time `bson:"created_at"`
	AvgRating          float64   `bson:"avg_rating"`
	ReviewCount        int64     `bson:"review_count"`
	PendingReviewCount int64     `bson:"pending_review_count"`
}

func (d *ratedRestaurantDocument) toDomain() domain.RatedRestaurant {
	return domain.RatedRestaurant{
		Restaurant: domain.Restaurant{
			ID:        d.ID,
			Name:      d.Name,
			UserID:    d.UserID,
			Address:   d.Address,
			PicURL:    d.PicURL,
			CreatedAt: d.CreatedAt,
		},
		AvgRating:          d.AvgRating,
		ReviewCount:        d.ReviewCount,
		PendingReviewCount: d.PendingReviewCount,
	}
}

type reviewDocument struct {
	ID           int64      `bson:"_id"`
	UserID       int64      `bson:"user_id"`
	RestaurantID int64      `bson:"restaurant_id"`
	Date         time.Time  `bson:"date"`
	Rating       int32      `bson:"rating"`
	Comment      string     `bson:"comment"`
	Reply        string     `bson:"reply,omitempty"`
	ReplyDate    *time.Time `bson:"reply_date,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func (d *reviewDocument) toDomain() domain.Review {
	return domain.Review{
		ID:           d.ID,
		UserID:       d.UserID,
		RestaurantID: d.RestaurantID,
		Date:         d.Date,
		Rating:       d.Rating,
		Comment:      d.Comment,
		Reply:        d.Reply,
		ReplyDate:    d.ReplyDate,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func fromDomainReview(r *domain.Review) *reviewDocument {
	return &reviewDocument{
		ID:           r.ID,
		UserID:       r.UserID,
		RestaurantID: r.RestaurantID,
		Date:         r.Date,
		Rating:       r.Rating,
		Comment:      r.Comment,
		Reply:        r.Reply,
		ReplyDate:    r.ReplyDate,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type notificationDocument struct {
	ID        int64                   `bson:"_id"`
	UserID    int64                   `bson:"user_id"`
	Type      domain.NotificationType `bson:"type"`
	Text      string                  `bson:"text"`
	ReviewID  int64                   `bson:"review_id,omitempty"`
	NavURL    string                  `bson:"nav_url,omitempty"`
	SeenDate  *time.Time              `bson:"seen_date,omitempty"`
	ReadDate  *time.Time              `bson:"read_date,omitempty"`
	CreatedAt time.Time               `bson:"created_at"`
	UpdatedAt time.Time               `bson:"updated_at"`
}

func (d *notificationDocument) toDomain() domain.Notification {
	return domain.Notification{
		ID:        d.ID,
		UserID:    d.UserID,
		Type:      d.Type,
		Text:      d.Text,
		ReviewID:  d.ReviewID,
		NavURL:    d.NavURL,
		SeenDate:  d.SeenDate,
		ReadDate:  d.ReadDate,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func fromDomainNotification(n *domain.Notification) *notificationDocument {
	return &notificationDocument{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Text:      n.Text,
		ReviewID:  n.ReviewID,
		NavURL:    n.NavURL,
		SeenDate:  n.SeenDate,
		ReadDate:  n.ReadDate,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

type tokenDocument struct {
	ID          int64            `bson:"_id"`
	Token       string           `bson:"token"`
	UserID      int64            `bson:"user_id"`
	Type        domain.TokenType `bson:"type"`
	Expires     time.Time        `bson:"expires"`
	Blacklisted bool             `bson:"blacklisted"`
	CreatedAt   time.Time        `bson:"created_at"`
}

func (d *tokenDocument) toDomain() domain.Token {
	return domain.Token{
		ID:          d.ID,
		Token:       d.Token,
		UserID:      d.UserID,
		Type:        d.Type,
		Expires:     d.Expires,
		Blacklisted: d.Blacklisted,
		CreatedAt:   d.CreatedAt,
	}
}
