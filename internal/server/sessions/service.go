// Package sessions implements login, authentication, refresh and logout on
// top of the token manager and the revocation store.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/dmitrijs2005/semanticapi/internal/logging"
	"github.com/dmitrijs2005/semanticapi/internal/server/auth"
	"github.com/dmitrijs2005/semanticapi/internal/server/config"
	"github.com/dmitrijs2005/semanticapi/internal/server/revocation"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	tokens          *auth.TokenManager
	revoked         revocation.Store
	users           map[string][]byte
	revokeOnRefresh bool
	logger          logging.Logger
	now             func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(tokens *auth.TokenManager, revoked revocation.Store, cfg *config.Config, l logging.Logger) *Service {
	users := make(map[string][]byte, len(cfg.Users))
	for _, u := range cfg.Users {
		users[u.Username] = []byte(u.PasswordHash)
	}

	return &Service{
		tokens:          tokens,
		revoked:         revoked,
		users:           users,
		revokeOnRefresh: cfg.RevokeOnRefresh,
		logger:          l.With("module", "sessions"),
		now:             time.Now,
	}
}

// dummy returns a hash compared against when the user does not exist, so
// unknown names cost as much as wrong passwords.
func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("semanticapi-dummy"), bcrypt.DefaultCost)
		if err != nil {
			panic(err)
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Login checks the password and issues a token for username.
func (s *Service) Login(ctx context.Context, username string, password []byte) (string, error) {
	hash, ok := s.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), password)
		s.logger.Warn(ctx, "login for unknown user", "user", username)
		return "", common.ErrorUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword(hash, password); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Error(ctx, "bad password hash in config", "user", username, "error", err)
		}
		return "", common.ErrorUnauthorized
	}

	token, err := s.tokens.GenerateTokenForUser(username)
	if err != nil {
		s.logger.Error(ctx, "token generation failed", "error", err)
		return "", common.ErrorInternal
	}

	s.logger.Info(ctx, "logged in", "user", username)
	return token, nil
}

func (s *Service) checkRevoked(ctx context.Context, token string) error {
	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		s.logger.Error(ctx, "revocation lookup failed", "error", err)
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if revoked {
		return fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenRevoked)
	}
	return nil
}

// Authenticate returns the username of a valid, unrevoked token.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	if err := s.checkRevoked(ctx, token); err != nil {
		return "", err
	}
	return claims.Name, nil
}

// renewable verifies the signature of token and checks that it is neither
// revoked nor expired for longer than one token lifetime.
func (s *Service) renewable(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.VerifySignature(token)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && s.now().After(s.retainUntil(claims)) {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
	}
	if err := s.checkRevoked(ctx, token); err != nil {
		return nil, err
	}
	return claims, nil
}

// retainUntil is the last moment token can still be renewed, and so how long
// its revocation entry has to live.
func (s *Service) retainUntil(claims *auth.Claims) time.Time {
	return claims.ExpiresAt.Time.Add(s.tokens.Options().Duration())
}

// IsRefreshable reports whether a genuine, unrevoked token is inside its
// refresh window.
func (s *Service) IsRefreshable(ctx context.Context, token string) (bool, error) {
	if _, err := s.renewable(ctx, token); err != nil {
		return false, err
	}
	return s.tokens.IsRefreshable(token)
}

// Refresh replaces token when it is inside its refresh window. Outside the
// window the same token comes back with refreshed == false. The signature is
// always verified first. A token expired for less than one token lifetime can
// still be renewed. With RevokeOnRefresh the superseded token is revoked.
func (s *Service) Refresh(ctx context.Context, token string) (newToken string, refreshed bool, err error) {
	return s.refresh(ctx, token, s.revokeOnRefresh)
}

// Renew is Refresh without revocation of the superseded token. Requests
// already in flight with the old token keep working.
func (s *Service) Renew(ctx context.Context, token string) (newToken string, refreshed bool, err error) {
	return s.refresh(ctx, token, false)
}

func (s *Service) refresh(ctx context.Context, token string, revoke bool) (string, bool, error) {
	claims, err := s.renewable(ctx, token)
	if err != nil {
		return "", false, err
	}

	ok, err := s.tokens.IsRefreshable(token)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return token, false, nil
	}

	newToken, err := s.tokens.GenerateAndRefreshToken(token)
	if err != nil {
		s.logger.Error(ctx, "token refresh failed", "error", err)
		return "", false, common.ErrorInternal
	}

	if revoke && claims.ExpiresAt != nil {
		if err := s.revoked.Revoke(ctx, token, s.retainUntil(claims)); err != nil {
			s.logger.Error(ctx, "revoking superseded token failed", "error", err)
			return "", false, common.ErrorInternal
		}
	}

	s.logger.Debug(ctx, "token refreshed", "user", claims.Name)
	return newToken, true, nil
}

// Logout revokes a valid token for as long as it could still be renewed.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}

	if err := s.revoked.Revoke(ctx, token, s.retainUntil(claims)); err != nil {
		s.logger.Error(ctx, "revoke failed", "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "logged out", "user", claims.Name)
	return nil
}
