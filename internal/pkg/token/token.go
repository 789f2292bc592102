// Package token issues and verifies the JWT pair used by the API: short-lived
// access tokens and longer-lived refresh tokens, both HMAC-signed with the
// server secret. Refresh tokens are only good for minting new access tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/subtrackhq/subtrack/internal/pkg/env"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the authenticated user and the token kind.
type Claims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(env.GetEnv("JWT_SECRET", "subtrack-dev-secret"))
}

func accessTTL() time.Duration {
	return time.Duration(env.GetEnvInt("JWT_ACCESS_TTL_MINUTES", 30)) * time.Minute
}

func refreshTTL() time.Duration {
	return time.Duration(env.GetEnvInt("JWT_REFRESH_TTL_HOURS", 24*7)) * time.Hour
}

// IssueAccessToken signs a short-lived token identifying the user.
func IssueAccessToken(userID uint) (string, error) {
	return issue(userID, TypeAccess, accessTTL())
}

// IssueRefreshToken signs a long-lived token usable only at /auth/refresh.
func IssueRefreshToken(userID uint) (string, error) {
	return issue(userID, TypeRefresh, refreshTTL())
}

func issue(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret())
}

// ParseAccessToken verifies an access token and returns the user it names.
func ParseAccessToken(raw string) (uint, error) {
	return parse(raw, TypeAccess)
}

// ParseRefreshToken verifies a refresh token and returns the user it names.
func ParseRefreshToken(raw string) (uint, error) {
	return parse(raw, TypeRefresh)
}

func parse(raw string, wantType string) (uint, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret(), nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
