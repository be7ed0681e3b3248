package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

func newAuthUsecaseForTest(userRepo *MockUserRepository, tokenRepo *MockTokenRepository) *AuthUsecase {
	tokens := NewTokenUsecase(tokenRepo, nil, "test-secret", 30*time.Minute, 24*time.Hour, 10*time.Minute, logger.NewLogger())
	return NewAuthUsecase(userRepo, tokens, nil, logger.NewLogger())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a customer with a hashed password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tokenRepo := new(MockTokenRepository)
		uc := newAuthUsecaseForTest(userRepo, tokenRepo)

		userRepo.On("IsEmailAvailable", ctx, "nino@example.com", int64(0)).Return(true, nil)
		userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "nino@example.com" &&
				u.Role == domain.RoleCustomer &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("goodPassword1")) == nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 3
		}).Return(nil)
		tokenRepo.On("Save", ctx, mock.AnythingOfType("*domain.Token")).Return(nil)

		user, tokens, err := uc.Register(ctx, RegisterInput{
			Email:    "Nino@Example.com",
			Password: "goodPassword1",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), user.ID)
		assert.NotEmpty(t, tokens.Access.Token)
	})

	t.Run("weak password is rejected", func(t *testing.T) {
		uc := newAuthUsecaseForTest(new(MockUserRepository), new(MockTokenRepository))
		_, _, err := uc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "short1"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, _, err = uc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "allletters"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("admin role cannot be self-registered", func(t *testing.T) {
		uc := newAuthUsecaseForTest(new(MockUserRepository), new(MockTokenRepository))
		_, _, err := uc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "goodPassword1", Role: domain.RoleAdmin})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("taken email is rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		uc := newAuthUsecaseForTest(userRepo, new(MockTokenRepository))
		userRepo.On("IsEmailAvailable", ctx, "a@b.c", int64(0)).Return(false, nil)

		_, _, err := uc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "goodPassword1"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("goodPassword1"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: 3, Email: "nino@example.com", Password: string(hash), Role: domain.RoleCustomer}

	t.Run("valid credentials", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		tokenRepo := new(MockTokenRepository)
		uc := newAuthUsecaseForTest(userRepo, tokenRepo)

		userRepo.On("GetByEmail", ctx, "nino@example.com").Return(stored, nil)
		tokenRepo.On("Save", ctx, mock.AnythingOfType("*domain.Token")).Return(nil)

		user, tokens, err := uc.Login(ctx, "nino@example.com", "goodPassword1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), user.ID)
		assert.NotEmpty(t, tokens.Refresh.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		uc := newAuthUsecaseForTest(userRepo, new(MockTokenRepository))
		userRepo.On("GetByEmail", ctx, "nino@example.com").Return(stored, nil)

		_, _, err := uc.Login(ctx, "nino@example.com", "wrongPassword1")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown email reads as unauthorized", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		uc := newAuthUsecaseForTest(userRepo, new(MockTokenRepository))
		userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrNotFound)

		_, _, err := uc.Login(ctx, "ghost@example.com", "goodPassword1")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockTokenRepository)
	uc := newAuthUsecaseForTest(userRepo, tokenRepo)
	tokens := uc.tokens

	tokenRepo.On("Save", ctx, mock.AnythingOfType("*domain.Token")).Return(nil)
	resetToken, err := tokens.GenerateResetPasswordToken(ctx, 3)
	require.NoError(t, err)

	tokenRepo.On("Find", ctx, resetToken, domain.TokenResetPassword, int64(3)).
		Return(&domain.Token{ID: 5, Token: resetToken, UserID: 3, Type: domain.TokenResetPassword}, nil)
	tokenRepo.On("DeleteByUser", ctx, int64(3), domain.TokenResetPassword).Return(int64(1), nil)
	tokenRepo.On("DeleteByUser", ctx, int64(3), domain.TokenRefresh).Return(int64(2), nil)
	userRepo.On("GetByID", ctx, int64(3)).Return(&domain.User{ID: 3, Email: "a@b.c"}, nil)
	userRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("brandNewPass1")) == nil
	})).Return(nil)

	err = uc.ResetPassword(ctx, resetToken, "brandNewPass1")
	require.NoError(t, err)
	tokenRepo.AssertCalled(t, "DeleteByUser", ctx, int64(3), domain.TokenRefresh)
}
