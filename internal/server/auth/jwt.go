// Package auth issues and parses the signed session tokens handed to
// clients. A token names a session row (jti) and its owner; the row is the
// source of truth, the signature only keeps tokens unforgeable.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus the owning UserID. The session id
// travels as the registered "jti" claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// SessionID returns the session row id the token refers to.
func (c *Claims) SessionID() string { return c.ID }

func GenerateToken(userID, sessionID string, secretKey []byte, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseToken verifies signature and expiry. Expired tokens yield
// common.ErrSessionExpired, anything else unusable common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	return parse(tokenString, secretKey)
}

// ParseTokenIgnoringExpiry verifies only the signature. Used where an
// expired token is still a valid handle, e.g. logging out.
func ParseTokenIgnoringExpiry(tokenString string, secretKey []byte) (*Claims, error) {
	return parse(tokenString, secretKey, jwt.WithoutClaimsValidation())
}

func parse(tokenString string, secretKey []byte, opts ...jwt.ParserOption) (*Claims, error) {
	claims := &Claims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrSessionExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
