// Package auth issues and refreshes the HS256 session tokens handed to API
// clients.
//
// The three core operations (GenerateTokenForUser, IsRefreshable and
// GenerateAndRefreshToken) are pure functions of the injected options and
// the clock: no I/O, no shared mutable state, safe for concurrent use.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/dmitrijs2005/semanticapi/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest accepted HMAC key, in bytes. HS256 keys
// shorter than the hash output weaken the signature.
const MinKeyLength = 32

// NameClaim is the identity claim carrying the username.
const NameClaim = "name"

// Claims is the claim set of tokens issued by GenerateTokenForUser.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Option customises a TokenManager.
type Option func(*TokenManager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

type TokenManager struct {
	opts   config.JwtOptions
	key    []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenManager validates opts and returns a manager bound to them.
// A key shorter than MinKeyLength or a non-positive duration is a
// configuration error; callers should treat it as fatal.
func NewTokenManager(opts config.JwtOptions, options ...Option) (*TokenManager, error) {
	if len(opts.SecurityKey) < MinKeyLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", common.ErrInvalidSigningKey, MinKeyLength, len(opts.SecurityKey))
	}
	if opts.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d minutes", common.ErrInvalidDuration, opts.DurationMinutes)
	}

	m := &TokenManager{
		opts:   opts,
		key:    []byte(opts.SecurityKey),
		now:    time.Now,
		parser: jwt.NewParser(),
	}
	for _, o := range options {
		o(m)
	}
	return m, nil
}

// Options returns the options the manager was built with.
func (m *TokenManager) Options() config.JwtOptions {
	return m.opts
}

func (m *TokenManager) sign(claims jwt.Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (m *TokenManager) audience() jwt.ClaimStrings {
	if m.opts.Audience == "" {
		return nil
	}
	return jwt.ClaimStrings{m.opts.Audience}
}

// GenerateTokenForUser issues a token whose only identity claim is the
// username. The username is embedded as given, empty included.
func (m *TokenManager) GenerateTokenForUser(username string) (string, error) {
	now := m.now()

	return m.sign(Claims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.opts.Issuer,
			Audience:  m.audience(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.opts.Duration())),
		},
	})
}

// parseUnverified decodes the claims of token without checking its signature.
func (m *TokenManager) parseUnverified(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := m.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}

// IsRefreshable reports whether token expires in less than RefreshTime
// minutes. Expired tokens are refreshable too. The signature is not checked;
// callers that accept tokens from the outside must verify first.
func (m *TokenManager) IsRefreshable(token string) (bool, error) {
	claims, err := m.parseUnverified(token)
	if err != nil {
		return false, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if exp == nil {
		return false, fmt.Errorf("%w: missing exp claim", common.ErrInvalidToken)
	}

	return exp.Time.UTC().Sub(m.now().UTC()) < m.opts.RefreshWindow(), nil
}

// GenerateAndRefreshToken re-issues token with all of its claims kept, except
// issuer and audience (taken from the current options) and issued-at/expiry
// (reset to now). The old token is not invalidated.
func (m *TokenManager) GenerateAndRefreshToken(token string) (string, error) {
	claims, err := m.parseUnverified(token)
	if err != nil {
		return "", err
	}

	now := m.now()

	delete(claims, "nbf")
	delete(claims, "iss")
	delete(claims, "aud")
	if m.opts.Issuer != "" {
		claims["iss"] = m.opts.Issuer
	}
	if aud := m.audience(); aud != nil {
		claims["aud"] = aud
	}
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(m.opts.Duration()))

	return m.sign(claims)
}

func (m *TokenManager) keyFunc(*jwt.Token) (any, error) {
	return m.key, nil
}

// Verify fully validates token: HS256 signature, issuer, audience and expiry.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.opts.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.opts.Issuer))
	}
	if m.opts.Audience != "" {
		opts = append(opts, jwt.WithAudience(m.opts.Audience))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, m.keyFunc, opts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}

// VerifySignature checks the signature, issuer and audience of token but not
// its time claims. It guards refresh, which must accept expired tokens.
func (m *TokenManager) VerifySignature(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if m.opts.Issuer != "" && claims.Issuer != m.opts.Issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", common.ErrInvalidToken, claims.Issuer)
	}
	if m.opts.Audience != "" && !slices.Contains(claims.Audience, m.opts.Audience) {
		return nil, fmt.Errorf("%w: audience mismatch", common.ErrInvalidToken)
	}
	return claims, nil
}
