package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/metrics"
)

// PictureStorage uploads a restaurant picture and returns its public URL.
type PictureStorage interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
}

// RestaurantUsecase implements restaurant management and the rated listing.
type RestaurantUsecase struct {
	restaurantRepo domain.RestaurantRepository
	reviewRepo     domain.ReviewRepository
	storage        PictureStorage
	metrics        *metrics.MetricsManager
	logger         *logger.Logger
}

// NewRestaurantUsecase creates a new RestaurantUsecase. storage and mm may be
// nil.
func NewRestaurantUsecase(
	restaurantRepo domain.RestaurantRepository,
	reviewRepo domain.ReviewRepository,
	storage PictureStorage,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *RestaurantUsecase {
	return &RestaurantUsecase{
		restaurantRepo: restaurantRepo,
		reviewRepo:     reviewRepo,
		storage:        storage,
		metrics:        mm,
		logger:         log.Named("RestaurantUsecase"),
	}
}

// CreateRestaurant registers a new venue for an owner.
func (uc *RestaurantUsecase) CreateRestaurant(ctx context.Context, p domain.Principal, name, address string) (*domain.Restaurant, error) {
	uc.logger.Info("Creating restaurant", zap.String("name", name), zap.Int64("principal_id", p.UserID))

	if err := domain.Authorize(p, []domain.Role{domain.RoleOwner}, 0); err != nil {
		return nil, err
	}

	restaurant, err := domain.NewRestaurant(p.UserID, name, address)
	if err != nil {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	available, err := uc.restaurantRepo.IsNameAvailable(ctx, restaurant.Name, 0)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("%w: name is already taken", domain.ErrInvalidInput)
	}

	if err := uc.restaurantRepo.Create(ctx, restaurant); err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.RestaurantsCreatedTotal.Inc()
	}
	return restaurant, nil
}

// GetRestaurant returns one restaurant by id.
func (uc *RestaurantUsecase) GetRestaurant(ctx context.Context, id int64) (*domain.Restaurant, error) {
	return uc.restaurantRepo.GetByID(ctx, id)
}

// ListRestaurants runs the rated listing. Owners only see their own venues;
// admins and customers see everything. Averages on the returned page are
// rounded to two decimals; sorting happened on the full-precision values. An
// empty result reads as not found.
func (uc *RestaurantUsecase) ListRestaurants(ctx context.Context, p domain.Principal, query domain.RestaurantQuery) (domain.Page[domain.RatedRestaurant], error) {
	if err := domain.Authorize(p, domain.AllRoles, 0); err != nil {
		return domain.Page[domain.RatedRestaurant]{}, err
	}
	if p.Role == domain.RoleOwner {
		query.OwnerID = p.UserID
	}
	if query.AvgRating < 0 || query.AvgRating > 5 {
		return domain.Page[domain.RatedRestaurant]{}, fmt.Errorf("%w: avgRating must be between 1 and 5", domain.ErrInvalidInput)
	}

	page, err := uc.restaurantRepo.ListWithRatings(ctx, query)
	if err != nil {
		return domain.Page[domain.RatedRestaurant]{}, err
	}
	if len(page.Items) == 0 {
		return domain.Page[domain.RatedRestaurant]{}, fmt.Errorf("%w: no restaurants found", domain.ErrNotFound)
	}
	for i := range page.Items {
		page.Items[i].AvgRating = domain.RoundTo(page.Items[i].AvgRating, 2)
	}
	return page, nil
}

// UpdateRestaurantInput holds the optional fields of a restaurant update.
type UpdateRestaurantInput struct {
	Name    *string
	Address *string
}

// UpdateRestaurant modifies a venue. Only its owner (or an admin) may; other
// owners read it as not found.
func (uc *RestaurantUsecase) UpdateRestaurant(ctx context.Context, p domain.Principal, id int64, input UpdateRestaurantInput) (*domain.Restaurant, error) {
	uc.logger.Info("Updating restaurant", zap.Int64("restaurant_id", id), zap.Int64("principal_id", p.UserID))

	restaurant, err := uc.restaurantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, []domain.Role{domain.RoleOwner}, restaurant.UserID); err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != restaurant.Name {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		available, err := uc.restaurantRepo.IsNameAvailable(ctx, *input.Name, id)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, fmt.Errorf("%w: name is already taken", domain.ErrInvalidInput)
		}
		restaurant.Name = *input.Name
	}
	if input.Address != nil {
		restaurant.Address = *input.Address
	}

	if err := uc.restaurantRepo.Update(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

// UploadPicture stores a picture for the restaurant and saves its URL.
func (uc *RestaurantUsecase) UploadPicture(ctx context.Context, p domain.Principal, id int64, fileName string, data []byte) (*domain.Restaurant, error) {
	restaurant, err := uc.restaurantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, []domain.Role{domain.RoleOwner}, restaurant.UserID); err != nil {
		return nil, err
	}
	if uc.storage == nil {
		return nil, fmt.Errorf("picture storage is not configured")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: picture file is empty", domain.ErrInvalidInput)
	}

	url, err := uc.storage.Upload(ctx, fileName, data)
	if err != nil {
		return nil, err
	}
	restaurant.PicURL = url
	if err := uc.restaurantRepo.Update(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

// DeleteRestaurant removes a venue. Reviews written for it stay behind so
// their authors keep their history.
func (uc *RestaurantUsecase) DeleteRestaurant(ctx context.Context, p domain.Principal, id int64) error {
	uc.logger.Info("Deleting restaurant", zap.Int64("restaurant_id", id), zap.Int64("principal_id", p.UserID))

	restaurant, err := uc.restaurantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, []domain.Role{domain.RoleOwner}, restaurant.UserID); err != nil {
		return err
	}
	return uc.restaurantRepo.Delete(ctx, id)
}

// OwnRestaurantsResult is the owner dashboard payload: the owner's rated
// venues plus every review across them still waiting for a reply.
type OwnRestaurantsResult struct {
	Restaurants    domain.Page[domain.RatedRestaurant] `json:"restaurants"`
	PendingReviews []domain.Review                     `json:"pendingReviews"`
}

// OwnRestaurants lists the caller's venues with their rating aggregates and
// collects the unanswered reviews across all of them. An owner without venues
// reads as not found.
func (uc *RestaurantUsecase) OwnRestaurants(ctx context.Context, p domain.Principal, page domain.PageRequest) (*OwnRestaurantsResult, error) {
	if err := domain.Authorize(p, []domain.Role{domain.RoleOwner}, 0); err != nil {
		return nil, err
	}

	listed, err := uc.restaurantRepo.ListWithRatings(ctx, domain.RestaurantQuery{
		OwnerID: p.UserID,
		Page:    page,
	})
	if err != nil {
		return nil, err
	}
	if len(listed.Items) == 0 {
		return nil, fmt.Errorf("%w: no restaurants found", domain.ErrNotFound)
	}

	ids := make([]int64, 0, len(listed.Items))
	for i := range listed.Items {
		listed.Items[i].AvgRating = domain.RoundTo(listed.Items[i].AvgRating, 2)
		ids = append(ids, listed.Items[i].ID)
	}

	pending, err := uc.reviewRepo.FindPendingByRestaurantIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &OwnRestaurantsResult{
		Restaurants:    listed,
		PendingReviews: pending,
	}, nil
}

// RestaurantDetails is the single-venue drill-down: the venue, its rating
// summary, its best and worst reviews, the caller's own review and the most
// recent reviews.
type RestaurantDetails struct {
	Restaurant    *domain.Restaurant   `json:"restaurant"`
	Summary       domain.RatingSummary `json:"summary"`
	BestReview    *domain.Review       `json:"bestReview,omitempty"`
	WorstReview   *domain.Review       `json:"worstReview,omitempty"`
	OwnReview     *domain.Review       `json:"ownReview,omitempty"`
	RecentReviews []domain.Review      `json:"recentReviews"`
}

const recentReviewsLimit = 5

// GetRestaurantDetails assembles the venue drill-down.
func (uc *RestaurantUsecase) GetRestaurantDetails(ctx context.Context, p domain.Principal, id int64, search string) (*RestaurantDetails, error) {
	if err := domain.Authorize(p, domain.AllRoles, 0); err != nil {
		return nil, err
	}

	restaurant, err := uc.restaurantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := uc.reviewRepo.AverageByRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}
	summary.AvgRating = domain.RoundTo(summary.AvgRating, 2)

	best, err := uc.reviewRepo.TopByRating(ctx, id, true)
	if err != nil {
		return nil, err
	}
	worst, err := uc.reviewRepo.TopByRating(ctx, id, false)
	if err != nil {
		return nil, err
	}
	own, err := uc.reviewRepo.FindOwn(ctx, id, p.UserID)
	if err != nil {
		return nil, err
	}
	recent, err := uc.reviewRepo.Recent(ctx, id, search, recentReviewsLimit)
	if err != nil {
		return nil, err
	}

	return &RestaurantDetails{
		Restaurant:    restaurant,
		Summary:       summary,
		BestReview:    best,
		WorstReview:   worst,
		OwnReview:     own,
		RecentReviews: recent,
	}, nil
}
