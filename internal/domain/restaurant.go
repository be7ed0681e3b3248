package domain

import (
	"math"
	"strings"
	"time"
)

// Restaurant is a venue created by an owner user. Name is globally unique.
type Restaurant struct {
	ID        int64     `json:"_id"`
	Name      string    `json:"name"`
	UserID    int64     `json:"user"`
	Address   string    `json:"address,omitempty"`
	PicURL    string    `json:"picUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewRestaurant validates and builds a restaurant for a given owner.
func NewRestaurant(ownerID int64, name, address string) (*Restaurant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if ownerID == 0 {
		return nil, ErrInvalidInput
	}
	return &Restaurant{
		Name:    name,
		UserID:  ownerID,
		Address: strings.TrimSpace(address),
	}, nil
}

// RatedRestaurant is a restaurant joined with its review aggregates. It is
// computed fresh on every query and never persisted.
type RatedRestaurant struct {
	Restaurant         `bson:",inline"`
	AvgRating          float64 `json:"avgRating"`
	ReviewCount        int64   `json:"reviewCount"`
	PendingReviewCount int64   `json:"pendingReviewCount"`
}

// RestaurantQuery drives the rating aggregation engine. NameSearch and
// OwnerID filter before the review join; AvgRating filters the joined result
// to the half-open bucket (AvgRating-1, AvgRating].
type RestaurantQuery struct {
	NameSearch string
	OwnerID    int64
	AvgRating  int32
	Page       PageRequest
}

// RoundTo rounds half away from zero to p decimal places, matching the
// rounding applied to returned averages.
func RoundTo(n float64, p int) float64 {
	pow := math.Pow(10, float64(p))
	return math.Round(n*pow) / pow
}
