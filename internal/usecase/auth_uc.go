package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/mailer"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

// AuthUsecase handles registration, login and the password lifecycle.
type AuthUsecase struct {
	userRepo domain.UserRepository
	tokens   *TokenUsecase
	mailer   mailer.Mailer
	logger   *logger.Logger
}

// NewAuthUsecase creates a new AuthUsecase. mailSender may be nil; password
// reset then fails with an explicit error instead of silently dropping mail.
func NewAuthUsecase(userRepo domain.UserRepository, tokens *TokenUsecase, mailSender mailer.Mailer, log *logger.Logger) *AuthUsecase {
	return &AuthUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailSender,
		logger:   log.Named("AuthUsecase"),
	}
}

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// Register creates a new account and returns it with a fresh token pair.
// Admin accounts cannot be self-registered.
func (uc *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	uc.logger.Info("Registering user", zap.String("email", email), zap.String("role", string(input.Role)))

	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if !domain.CheckPasswordRequirements(input.Password) {
		return nil, nil, fmt.Errorf("%w: password must be at least 8 characters and contain a letter and a number", domain.ErrInvalidInput)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.IsValid() || role == domain.RoleAdmin {
		return nil, nil, fmt.Errorf("%w: invalid role", domain.ErrInvalidInput)
	}

	available, err := uc.userRepo.IsEmailAvailable(ctx, email, 0)
	if err != nil {
		return nil, nil, err
	}
	if !available {
		return nil, nil, fmt.Errorf("%w: email is already taken", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:     email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      role,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	authTokens, err := uc.tokens.GenerateAuthTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, authTokens, nil
}

// Login verifies credentials and returns the user with a fresh token pair.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, *domain.AuthTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	uc.logger.Info("Login attempt", zap.String("email", email))

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		uc.logger.Warn("Login failed: bad credentials", zap.String("email", email))
		return nil, nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}

	authTokens, err := uc.tokens.GenerateAuthTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, authTokens, nil
}

// Logout revokes the presented refresh token.
func (uc *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	_, err := uc.tokens.ConsumeRefreshToken(ctx, refreshToken)
	return err
}

// RefreshTokens rotates a refresh token into a fresh access/refresh pair.
func (uc *AuthUsecase) RefreshTokens(ctx context.Context, refreshToken string) (*domain.AuthTokens, error) {
	userID, err := uc.tokens.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return uc.tokens.GenerateAuthTokens(ctx, userID)
}

// ForgotPassword mails a reset link to the account's email. Unknown emails
// return ErrNotFound.
func (uc *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	uc.logger.Info("Forgot password requested", zap.String("email", email))

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	resetToken, err := uc.tokens.GenerateResetPasswordToken(ctx, user.ID)
	if err != nil {
		return err
	}
	if uc.mailer == nil {
		return fmt.Errorf("mailer is not configured")
	}
	if err := uc.mailer.SendResetPasswordEmail(user.Email, resetToken); err != nil {
		return err
	}
	return nil
}

// ResetPassword sets a new password from a valid reset token and revokes all
// of the user's refresh tokens.
func (uc *AuthUsecase) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if !domain.CheckPasswordRequirements(newPassword) {
		return fmt.Errorf("%w: password must be at least 8 characters and contain a letter and a number", domain.ErrInvalidInput)
	}

	userID, err := uc.tokens.ConsumeResetPasswordToken(ctx, resetToken)
	if err != nil {
		return err
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hash)
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := uc.tokens.RevokeUserTokens(ctx, userID, domain.TokenRefresh); err != nil {
		uc.logger.Warn("Failed to revoke refresh tokens after password reset", zap.Error(err), zap.Int64("user_id", userID))
	}
	uc.logger.Info("Password reset completed", zap.Int64("user_id", userID))
	return nil
}
