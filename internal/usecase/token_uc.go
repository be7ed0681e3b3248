package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
)

// TokenCache fronts refresh-token lookups with a fast store. A miss is not an
// error; the caller falls back to the token repository.
type TokenCache interface {
	CacheToken(ctx context.Context, token string, userID int64, expires time.Time)
	GetToken(ctx context.Context, token string) (int64, bool)
	InvalidateToken(ctx context.Context, token string)
}

// TokenUsecase issues and verifies JWTs. Access tokens are stateless; refresh
// and reset-password tokens are additionally persisted so they can be rotated
// and revoked. A Redis cache fronts refresh-token lookups when configured.
type TokenUsecase struct {
	tokenRepo  domain.TokenRepository
	tokenCache TokenCache
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	logger     *logger.Logger
}

// NewTokenUsecase creates a new TokenUsecase. tokenCache may be nil.
func NewTokenUsecase(
	tokenRepo domain.TokenRepository,
	tokenCache TokenCache,
	secret string,
	accessTTL, refreshTTL, resetTTL time.Duration,
	log *logger.Logger,
) *TokenUsecase {
	return &TokenUsecase{
		tokenRepo:  tokenRepo,
		tokenCache: tokenCache,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
		logger:     log.Named("TokenUsecase"),
	}
}

type tokenClaims struct {
	Type domain.TokenType `json:"type"`
	jwt.RegisteredClaims
}

func (uc *TokenUsecase) sign(userID int64, typ domain.TokenType, expires time.Time) (string, error) {
	claims := tokenClaims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(uc.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Verify parses a signed token and checks its signature, expiry and type.
// Returns the user id carried in the subject claim.
func (uc *TokenUsecase) Verify(tokenString string, typ domain.TokenType) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return uc.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || claims.Type != typ {
		return 0, fmt.Errorf("%w: invalid token type", domain.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("%w: invalid token subject", domain.ErrUnauthorized)
	}
	return userID, nil
}

// GenerateAuthTokens issues a fresh access/refresh pair and persists the
// refresh token.
func (uc *TokenUsecase) GenerateAuthTokens(ctx context.Context, userID int64) (*domain.AuthTokens, error) {
	now := time.Now().UTC()
	accessExpires := now.Add(uc.accessTTL)
	refreshExpires := now.Add(uc.refreshTTL)

	access, err := uc.sign(userID, domain.TokenAccess, accessExpires)
	if err != nil {
		return nil, err
	}
	refresh, err := uc.sign(userID, domain.TokenRefresh, refreshExpires)
	if err != nil {
		return nil, err
	}

	err = uc.tokenRepo.Save(ctx, &domain.Token{
		Token:   refresh,
		UserID:  userID,
		Type:    domain.TokenRefresh,
		Expires: refreshExpires,
	})
	if err != nil {
		uc.logger.Error("Failed to persist refresh token", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("%w: failed to persist refresh token: %v", domain.ErrRepository, err)
	}

	if uc.tokenCache != nil {
		uc.tokenCache.CacheToken(ctx, refresh, userID, refreshExpires)
	}

	return &domain.AuthTokens{
		Access:  domain.TokenWithExpiry{Token: access, Expires: accessExpires},
		Refresh: domain.TokenWithExpiry{Token: refresh, Expires: refreshExpires},
	}, nil
}

// ConsumeRefreshToken validates a refresh token against both the signature
// and the persisted document, then deletes the document (single use). A cache
// hit skips the lookup; the delete still arbitrates against revocation.
func (uc *TokenUsecase) ConsumeRefreshToken(ctx context.Context, refreshToken string) (int64, error) {
	userID, err := uc.Verify(refreshToken, domain.TokenRefresh)
	if err != nil {
		return 0, err
	}

	if uc.tokenCache != nil {
		if cachedID, ok := uc.tokenCache.GetToken(ctx, refreshToken); ok && cachedID == userID {
			err := uc.tokenRepo.DeleteByToken(ctx, refreshToken)
			if errors.Is(err, domain.ErrNotFound) {
				// Revoked out of band (password reset, account deletion)
				// while the cache entry was still live.
				uc.tokenCache.InvalidateToken(ctx, refreshToken)
				return 0, fmt.Errorf("%w: refresh token not found", domain.ErrUnauthorized)
			}
			if err != nil {
				return 0, err
			}
			uc.tokenCache.InvalidateToken(ctx, refreshToken)
			return userID, nil
		}
	}

	stored, err := uc.tokenRepo.Find(ctx, refreshToken, domain.TokenRefresh, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("Refresh token not found or revoked", zap.Int64("user_id", userID))
			return 0, fmt.Errorf("%w: refresh token not found", domain.ErrUnauthorized)
		}
		return 0, err
	}

	if err := uc.tokenRepo.Delete(ctx, stored.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	if uc.tokenCache != nil {
		uc.tokenCache.InvalidateToken(ctx, refreshToken)
	}
	return userID, nil
}

// GenerateResetPasswordToken issues and persists a short-lived reset token.
func (uc *TokenUsecase) GenerateResetPasswordToken(ctx context.Context, userID int64) (string, error) {
	expires := time.Now().UTC().Add(uc.resetTTL)
	reset, err := uc.sign(userID, domain.TokenResetPassword, expires)
	if err != nil {
		return "", err
	}
	err = uc.tokenRepo.Save(ctx, &domain.Token{
		Token:   reset,
		UserID:  userID,
		Type:    domain.TokenResetPassword,
		Expires: expires,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to persist reset token: %v", domain.ErrRepository, err)
	}
	return reset, nil
}

// ConsumeResetPasswordToken validates a reset token and revokes every reset
// token of the user.
func (uc *TokenUsecase) ConsumeResetPasswordToken(ctx context.Context, resetToken string) (int64, error) {
	userID, err := uc.Verify(resetToken, domain.TokenResetPassword)
	if err != nil {
		return 0, err
	}
	if _, err := uc.tokenRepo.Find(ctx, resetToken, domain.TokenResetPassword, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("%w: reset token not found", domain.ErrUnauthorized)
		}
		return 0, err
	}
	if _, err := uc.tokenRepo.DeleteByUser(ctx, userID, domain.TokenResetPassword); err != nil {
		return 0, err
	}
	return userID, nil
}

// RevokeUserTokens removes every persisted token of a user.
func (uc *TokenUsecase) RevokeUserTokens(ctx context.Context, userID int64, types ...domain.TokenType) error {
	_, err := uc.tokenRepo.DeleteByUser(ctx, userID, types...)
	return err
}
