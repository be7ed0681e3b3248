package domain

import "time"

// TokenType distinguishes persisted token documents. Access tokens are never
// stored; only refresh and reset-password tokens live in the database.
type TokenType string

const (
	TokenAccess        TokenType = "access"
	TokenRefresh       TokenType = "refresh"
	TokenResetPassword TokenType = "reset_password"
)

// Token is a persisted refresh or reset-password token.
type Token struct {
	ID          int64     `json:"_id"`
	Token       string    `json:"token"`
	UserID      int64     `json:"user"`
	Type        TokenType `json:"type"`
	Expires     time.Time `json:"expires"`
	Blacklisted bool      `json:"blacklisted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthTokens is the access/refresh pair returned on login and refresh.
type AuthTokens struct {
	Access  TokenWithExpiry `json:"access"`
	Refresh TokenWithExpiry `json:"refresh"`
}

// TokenWithExpiry pairs a signed token with its expiry timestamp.
type TokenWithExpiry struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
