// Package auth implements the token codec: signing and verification of
// short-lived access tokens and long-lived refresh tokens.
//
// Access and refresh tokens are signed with distinct secrets and carry a
// class tag, so one can never be accepted where the other is expected.
package auth

import (
	"errors"
	"time"

	"github.com/akarpov87/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClass discriminates access tokens from refresh tokens.
type TokenClass string

const (
	ClassAccess  TokenClass = "access"
	ClassRefresh TokenClass = "refresh"
)

// Claims embeds the registered claims plus the subject's email and the
// token class.
type Claims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Class TokenClass `json:"class"`
}

// Identity is the verified payload of a token.
type Identity struct {
	UserID string
	Email  string
}

// Codec signs and verifies tokens. The zero value is unusable; construct
// with NewCodec.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewCodec builds a Codec with class-specific HMAC secrets.
func NewCodec(accessSecret, refreshSecret []byte) *Codec {
	return &Codec{accessSecret: accessSecret, refreshSecret: refreshSecret}
}

func (c *Codec) secretFor(class TokenClass) []byte {
	if class == ClassRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}

// Sign produces a signed token for the subject with expiry now+ttl.
func (c *Codec) Sign(userID, email string, class TokenClass, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes every minted token unique even within the same
			// second, so the stored token column can stay UNIQUE.
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
		Class: class,
	})

	return token.SignedString(c.secretFor(class))
}

// Verify checks signature, expiry, and class tag. It returns
// common.ErrTokenExpired for an expired token, common.ErrWrongTokenClass
// when the class tag does not match, and common.ErrInvalidToken otherwise.
func (c *Codec) Verify(tokenString string, expected TokenClass) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secretFor(expected), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Class != expected {
		return nil, common.ErrWrongTokenClass
	}

	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// DecodeExpiry extracts the expiry claim without verifying the signature.
// It exists so storage never computes an expiry of its own: the persisted
// row's expires_at always comes from the token payload.
func (c *Codec) DecodeExpiry(tokenString string) (time.Time, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, common.ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, common.ErrInvalidToken
	}
	return claims.ExpiresAt.Time, nil
}
