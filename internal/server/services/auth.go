// Package services contains server-side business logic. This file implements
// AuthService, which owns the token lifecycle: verifying credentials, minting
// access/refresh token pairs, rotating refresh tokens, and revoking them.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/akarpov87/authkeeper/internal/common"
	"github.com/akarpov87/authkeeper/internal/dbx"
	"github.com/akarpov87/authkeeper/internal/logging"
	"github.com/akarpov87/authkeeper/internal/server/auth"
	"github.com/akarpov87/authkeeper/internal/server/config"
	"github.com/akarpov87/authkeeper/internal/server/models"
	"github.com/akarpov87/authkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair bundles a short-lived access token, a long-lived refresh token,
// and the subject they were minted for.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// AuthService provides the token lifecycle operations:
//   - Login: verify credentials and mint a token pair
//   - Refresh: rotate a refresh token and mint a new pair
//   - Logout: revoke a refresh token
//   - ValidateAccessToken: resolve an access token to its subject
//
// A refresh-token row moves through one-way states only: ACTIVE on insert,
// then deleted by rotation/logout or garbage-collected after expiry. A row is
// never updated in place.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	logger      logging.Logger
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewAuthService constructs an AuthService using repositories and the codec.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		codec:       codec,
		logger:      logger.With("module", "auth_service"),
		accessTTL:   config.AccessTokenTTL,
		refreshTTL:  config.RefreshTokenTTL,
	}
}

// Login verifies the credentials and, on success, returns a new TokenPair.
// An unknown email and a wrong password produce the same
// common.ErrInvalidCredentials so account existence cannot be probed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, err
	}

	s.cleanupExpired(ctx)

	return pair, nil
}

// Refresh validates a refresh token, rotates it transactionally, and returns
// a fresh TokenPair. Every failure mode surfaces as
// common.ErrInvalidOrExpiredToken: presenting a consumed token twice must
// fail, and a storage failure mid-rotation fails closed rather than leaving
// the old token usable.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if _, err := s.codec.Verify(refreshToken, auth.ClassRefresh); err != nil {
		return nil, common.ErrInvalidOrExpiredToken
	}

	row, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidOrExpiredToken
		}
		return nil, common.ErrorInternal
	}
	// The signed payload already carries an expiry, but the stored row is
	// checked as well to guard against clock skew and storage tampering.
	if row.Expires.Before(time.Now()) {
		return nil, common.ErrInvalidOrExpiredToken
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, row.UserID)
	if err != nil {
		return nil, common.ErrInvalidOrExpiredToken
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).DeleteByID(ctx, row.ID); err != nil {
			return err
		}
		var issueErr error
		pair, issueErr = s.issueTokenPair(ctx, user, tx)
		return issueErr
	}); err != nil {
		s.logger.Warn(ctx, "refresh token rotation failed", "error", err)
		return nil, common.ErrInvalidOrExpiredToken
	}

	s.cleanupExpired(ctx)

	return pair, nil
}

// Logout revokes the refresh token. Revoking a token that was already
// deleted (or never existed) is not an error, so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return common.ErrMissingToken
	}
	if err := s.repomanager.RefreshTokens(s.db).DeleteByToken(ctx, refreshToken); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// ValidateAccessToken verifies an access token and resolves its subject.
// Access tokens are not individually revocable, so the user lookup is the
// only mitigation against acting on behalf of a deleted account within the
// token's remaining lifetime.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*models.User, error) {
	id, err := s.codec.Verify(accessToken, auth.ClassAccess)
	if err != nil {
		return nil, common.ErrInvalidOrExpiredToken
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// issueTokenPair mints both tokens and persists the refresh-token row on the
// given handle (pool or open transaction). The row's expiry is decoded from
// the signed token so storage never computes it independently.
func (s *AuthService) issueTokenPair(ctx context.Context, user *models.User, db dbx.DBTX) (*TokenPair, error) {
	access, err := s.codec.Sign(user.ID, user.Email, auth.ClassAccess, s.accessTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.codec.Sign(user.ID, user.Email, auth.ClassRefresh, s.refreshTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	expires, err := s.codec.DecodeExpiry(refresh)
	if err != nil {
		return nil, common.ErrorInternal
	}

	row := &models.RefreshToken{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		Token:   refresh,
		Expires: expires,
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, row); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// cleanupExpired opportunistically deletes expired refresh-token rows.
// Best-effort housekeeping: failures are logged and never fail the
// operation that triggered it.
func (s *AuthService) cleanupExpired(ctx context.Context) {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteExpiredBefore(ctx, time.Now())
	if err != nil {
		s.logger.Warn(ctx, "expired token cleanup failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug(ctx, "deleted expired refresh tokens", "count", n)
	}
}
