package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamatela/restaurant-review-back-end/internal/adapter/messaging/nats"
	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

// UserUsecase implements account management. Reads and writes of a user's own
// account are open to every role; listing, role changes and password changes
// are admin operations.
type UserUsecase struct {
	userRepo       domain.UserRepository
	restaurantRepo domain.RestaurantRepository
	reviewRepo     domain.ReviewRepository
	tokens         *TokenUsecase
	natsPub        *nats.Publisher
	logger         *logger.Logger
}

// NewUserUsecase creates a new UserUsecase.
func NewUserUsecase(
	userRepo domain.UserRepository,
	restaurantRepo domain.RestaurantRepository,
	reviewRepo domain.ReviewRepository,
	tokens *TokenUsecase,
	natsPub *nats.Publisher,
	log *logger.Logger,
) *UserUsecase {
	return &UserUsecase{
		userRepo:       userRepo,
		restaurantRepo: restaurantRepo,
		reviewRepo:     reviewRepo,
		tokens:         tokens,
		natsPub:        natsPub,
		logger:         log.Named("UserUsecase"),
	}
}

// GetUser returns a user. Non-admins can only read their own account; a
// mismatch reads as not found.
func (uc *UserUsecase) GetUser(ctx context.Context, p domain.Principal, userID int64) (*domain.User, error) {
	if err := domain.Authorize(p, domain.AllRoles, userID); err != nil {
		return nil, err
	}
	return uc.userRepo.GetByID(ctx, userID)
}

// ListUsers returns a page of users. Admin only.
func (uc *UserUsecase) ListUsers(ctx context.Context, p domain.Principal, filter domain.UserFilter, page domain.PageRequest) (domain.Page[domain.User], error) {
	if err := domain.Authorize(p, nil, 0); err != nil {
		return domain.Page[domain.User]{}, err
	}
	if filter.Role != "" && !filter.Role.IsValid() {
		return domain.Page[domain.User]{}, fmt.Errorf("%w: invalid role filter", domain.ErrInvalidInput)
	}
	return uc.userRepo.List(ctx, filter, page)
}

// UpdateUserInput holds the optional fields of a user update. Nil means
// "leave unchanged".
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *domain.Role
	Password  *string
}

// UpdateUser modifies a user. Non-admins can only update their own account
// and may not touch role or password. Role changes are guarded against
// leaving orphaned data: an owner with restaurants cannot become a customer,
// a customer with reviews cannot become an owner.
func (uc *UserUsecase) UpdateUser(ctx context.Context, p domain.Principal, userID int64, input UpdateUserInput) (*domain.User, error) {
	uc.logger.Info("Updating user", zap.Int64("user_id", userID), zap.Int64("principal_id", p.UserID))

	if err := domain.Authorize(p, domain.AllRoles, userID); err != nil {
		return nil, err
	}
	if (input.Role != nil || input.Password != nil) && p.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can change roles or passwords", domain.ErrForbidden)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
		}
		if email != user.Email {
			available, err := uc.userRepo.IsEmailAvailable(ctx, email, userID)
			if err != nil {
				return nil, err
			}
			if !available {
				return nil, fmt.Errorf("%w: email is already taken", domain.ErrInvalidInput)
			}
			user.Email = email
		}
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}

	if input.Role != nil && *input.Role != user.Role {
		newRole := *input.Role
		if !newRole.IsValid() {
			return nil, fmt.Errorf("%w: invalid role", domain.ErrInvalidInput)
		}
		if user.Role == domain.RoleOwner && newRole == domain.RoleCustomer {
			count, err := uc.restaurantRepo.CountByUser(ctx, userID)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, fmt.Errorf("%w: cannot demote an owner who still has restaurants", domain.ErrInvalidInput)
			}
		}
		if user.Role == domain.RoleCustomer && newRole == domain.RoleOwner {
			count, err := uc.reviewRepo.CountByUser(ctx, userID)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, fmt.Errorf("%w: cannot promote a customer who has written reviews", domain.ErrInvalidInput)
			}
		}
		user.Role = newRole
	}

	if input.Password != nil {
		if !domain.CheckPasswordRequirements(*input.Password) {
			return nil, fmt.Errorf("%w: password must be at least 8 characters and contain a letter and a number", domain.ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user and everything they own: their restaurants, their
// reviews and their tokens, in that order, then the account itself. Reviews
// left on their restaurants by other users stay behind.
func (uc *UserUsecase) DeleteUser(ctx context.Context, p domain.Principal, userID int64) error {
	uc.logger.Info("Deleting user with cascade", zap.Int64("user_id", userID), zap.Int64("principal_id", p.UserID))

	if err := domain.Authorize(p, domain.AllRoles, userID); err != nil {
		return err
	}
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	restaurants, err := uc.restaurantRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	reviews, err := uc.reviewRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := uc.tokens.RevokeUserTokens(ctx, userID); err != nil {
		return err
	}
	if err := uc.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	uc.logger.Info("User deleted",
		zap.Int64("user_id", userID),
		zap.Int64("restaurants_deleted", restaurants),
		zap.Int64("reviews_deleted", reviews))

	if uc.natsPub != nil {
		event := map[string]interface{}{
			"user_id":             userID,
			"restaurants_deleted": restaurants,
			"reviews_deleted":     reviews,
		}
		if err := uc.natsPub.Publish(ctx, nats.SubjectUserDeleted, event); err != nil {
			uc.logger.Warn("Failed to publish user.deleted event", zap.Error(err), zap.Int64("user_id", userID))
		}
	}
	return nil
}
