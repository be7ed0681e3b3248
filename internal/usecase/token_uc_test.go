package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

func newTokenUsecaseForTest(tokenRepo *MockTokenRepository) *TokenUsecase {
	return NewTokenUsecase(tokenRepo, nil, "test-secret", 30*time.Minute, 24*time.Hour, 10*time.Minute, logger.NewLogger())
}

func TestGenerateAndVerifyAuthTokens(t *testing.T) {
	ctx := context.Background()
	tokenRepo := new(MockTokenRepository)
	uc := newTokenUsecaseForTest(tokenRepo)

	tokenRepo.On("Save", ctx, mock.MatchedBy(func(tok *domain.Token) bool {
		return tok.Type == domain.TokenRefresh && tok.UserID == 42
	})).Return(nil)

	tokens, err := uc.GenerateAuthTokens(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, tokens.Access.Token)
	require.NotEmpty(t, tokens.Refresh.Token)
	assert.True(t, tokens.Refresh.Expires.After(tokens.Access.Expires))

	userID, err := uc.Verify(tokens.Access.Token, domain.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	// An access token does not pass as a refresh token.
	_, err = uc.Verify(tokens.Access.Token, domain.TokenRefresh)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// A token signed with another secret is rejected.
	other := NewTokenUsecase(tokenRepo, nil, "other-secret", time.Minute, time.Hour, time.Minute, logger.NewLogger())
	_, err = other.Verify(tokens.Access.Token, domain.TokenAccess)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestConsumeRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid refresh token is single use", func(t *testing.T) {
		tokenRepo := new(MockTokenRepository)
		uc := newTokenUsecaseForTest(tokenRepo)
		tokenRepo.On("Save", ctx, mock.AnythingOfType("*domain.Token")).Return(nil)

		tokens, err := uc.GenerateAuthTokens(ctx, 42)
		require.NoError(t, err)

		tokenRepo.On("Find", ctx, tokens.Refresh.Token, domain.TokenRefresh, int64(42)).
			Return(&domain.Token{ID: 9, Token: tokens.Refresh.Token, UserID: 42, Type: domain.TokenRefresh}, nil)
		tokenRepo.On("Delete", ctx, int64(9)).Return(nil)

		userID, err := uc.ConsumeRefreshToken(ctx, tokens.Refresh.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
		tokenRepo.AssertCalled(t, "Delete", ctx, int64(9))
	})

	t.Run("revoked token is unauthorized", func(t *testing.T) {
		tokenRepo := new(MockTokenRepository)
		uc := newTokenUsecaseForTest(tokenRepo)
		tokenRepo.On("Save", ctx, mock.AnythingOfType("*domain.Token")).Return(nil)

		tokens, err := uc.GenerateAuthTokens(ctx, 42)
		require.NoError(t, err)

		tokenRepo.On("Find", ctx, tokens.Refresh.Token, domain.TokenRefresh, int64(42)).
			Return(nil, domain.ErrNotFound)

		_, err = uc.ConsumeRefreshToken(ctx, tokens.Refresh.Token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		uc := newTokenUsecaseForTest(new(MockTokenRepository))
		_, err := uc.ConsumeRefreshToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestConsumeRefreshTokenCache(t *testing.T) {
	ctx := context.Background()

	issue := func(t *testing.T, tokenRepo *MockTokenRepository, tokenCache *MockTokenCache) (*TokenUsecase, string) {
		t.Helper()
		uc := NewTokenUsecase(tokenRepo, tokenCache, "test-secret", 30*time.Minute, 24*time.Hour, 10*time.Minute, logger.NewLogger())
		tokenRepo.On("Save", ctx, mock.AnythingOfType("*domain.Token")).Return(nil)
		tokenCache.On("CacheToken", ctx, mock.AnythingOfType("string"), int64(42), mock.AnythingOfType("time.Time")).Return()
		tokens, err := uc.GenerateAuthTokens(ctx, 42)
		require.NoError(t, err)
		return uc, tokens.Refresh.Token
	}

	t.Run("cache hit skips the lookup", func(t *testing.T) {
		tokenRepo := new(MockTokenRepository)
		tokenCache := new(MockTokenCache)
		uc, refresh := issue(t, tokenRepo, tokenCache)

		tokenCache.On("GetToken", ctx, refresh).Return(int64(42), true)
		tokenRepo.On("DeleteByToken", ctx, refresh).Return(nil)
		tokenCache.On("InvalidateToken", ctx, refresh).Return()

		userID, err := uc.ConsumeRefreshToken(ctx, refresh)
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
		tokenRepo.AssertNotCalled(t, "Find", ctx, refresh, domain.TokenRefresh, int64(42))
		tokenCache.AssertCalled(t, "InvalidateToken", ctx, refresh)
	})

	t.Run("cache hit for a revoked token is unauthorized", func(t *testing.T) {
		tokenRepo := new(MockTokenRepository)
		tokenCache := new(MockTokenCache)
		uc, refresh := issue(t, tokenRepo, tokenCache)

		tokenCache.On("GetToken", ctx, refresh).Return(int64(42), true)
		tokenRepo.On("DeleteByToken", ctx, refresh).Return(domain.ErrNotFound)
		tokenCache.On("InvalidateToken", ctx, refresh).Return()

		_, err := uc.ConsumeRefreshToken(ctx, refresh)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		tokenCache.AssertCalled(t, "InvalidateToken", ctx, refresh)
	})

	t.Run("cache miss falls back to the repository", func(t *testing.T) {
		tokenRepo := new(MockTokenRepository)
		tokenCache := new(MockTokenCache)
		uc, refresh := issue(t, tokenRepo, tokenCache)

		tokenCache.On("GetToken", ctx, refresh).Return(int64(0), false)
		tokenRepo.On("Find", ctx, refresh, domain.TokenRefresh, int64(42)).
			Return(&domain.Token{ID: 9, Token: refresh, UserID: 42, Type: domain.TokenRefresh}, nil)
		tokenRepo.On("Delete", ctx, int64(9)).Return(nil)
		tokenCache.On("InvalidateToken", ctx, refresh).Return()

		userID, err := uc.ConsumeRefreshToken(ctx, refresh)
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
		tokenRepo.AssertCalled(t, "Delete", ctx, int64(9))
	})
}
