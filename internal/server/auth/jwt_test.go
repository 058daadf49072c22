package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/dmitrijs2005/semanticapi/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testOptions() config.JwtOptions {
	return config.JwtOptions{
		Issuer:          "semanticapi",
		Audience:        "opcua-ui",
		SecurityKey:     testKey,
		DurationMinutes: 60,
		RefreshTime:     5,
	}
}

// clock is a settable time source.
type clock struct{ now time.Time }

func newClock(at time.Time) *clock { return &clock{now: at} }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newManager(t *testing.T, c *clock) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testOptions(), WithClock(c.Now))
	require.NoError(t, err)
	return m
}

func decode(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	return claims
}

func TestNewTokenManager_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.JwtOptions)
		wantErr error
	}{
		{"short key", func(o *config.JwtOptions) { o.SecurityKey = "secretKey" }, common.ErrInvalidSigningKey},
		{"empty key", func(o *config.JwtOptions) { o.SecurityKey = "" }, common.ErrInvalidSigningKey},
		{"zero duration", func(o *config.JwtOptions) { o.DurationMinutes = 0 }, common.ErrInvalidDuration},
		{"negative duration", func(o *config.JwtOptions) { o.DurationMinutes = -5 }, common.ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.mutate(&opts)
			m, err := NewTokenManager(opts)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, m)
		})
	}
}

func TestGenerateTokenForUser_Claims(t *testing.T) {
	m := newManager(t, newClock(t0))

	for _, user := range []string{"alice", "bob@example.com", "", "ünïcödé user"} {
		tok, err := m.GenerateTokenForUser(user)
		require.NoError(t, err)

		parts := strings.Split(tok, ".")
		require.Len(t, parts, 3, "compact form is header.claims.signature")

		claims := decode(t, tok)
		assert.Equal(t, user, claims[NameClaim])
		assert.Equal(t, "semanticapi", claims["iss"])

		aud, err := claims.GetAudience()
		require.NoError(t, err)
		assert.Equal(t, jwt.ClaimStrings{"opcua-ui"}, aud)

		iat, err := claims.GetIssuedAt()
		require.NoError(t, err)
		exp, err := claims.GetExpirationTime()
		require.NoError(t, err)
		assert.Equal(t, 60*time.Minute, exp.Sub(iat.Time))
		assert.True(t, iat.Time.Equal(t0))
	}
}

func TestGenerateTokenForUser_HeaderIsHS256(t *testing.T) {
	m := newManager(t, newClock(t0))

	tok, err := m.GenerateTokenForUser("alice")
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Header["alg"])
	assert.Equal(t, "JWT", parsed.Header["typ"])
}

func TestGenerateTokenForUser_UsesRealClockByDefault(t *testing.T) {
	m, err := NewTokenManager(testOptions())
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	tok, err := m.GenerateTokenForUser("alice")
	require.NoError(t, err)

	exp, err := decode(t, tok).GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(time.Hour), exp.Time, 3*time.Second)
}

func TestIsRefreshable_Window(t *testing.T) {
	c := newClock(t0)
	m := newManager(t, c)

	tok, err := m.GenerateTokenForUser("alice")
	require.NoError(t, err)

	tests := []struct {
		elapsed time.Duration
		want    bool
	}{
		{0, false},
		{54 * time.Minute, false},
		{55 * time.Minute, false}, // exactly RefreshTime left: strict comparison
		{55*time.Minute + time.Second, true},
		{56 * time.Minute, true},
		{59 * time.Minute, true},
		{60 * time.Minute, true},
		{3 * time.Hour, true}, // already expired
	}

	for _, tt := range tests {
		c.now = t0.Add(tt.elapsed)
		got, err := m.IsRefreshable(tok)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "elapsed %s", tt.elapsed)
	}
}

func TestIsRefreshable_IgnoresSignature(t *testing.T) {
	c := newClock(t0)
	m := newManager(t, c)

	other, err := NewTokenManager(config.JwtOptions{
		SecurityKey:     "ffffffffffffffffffffffffffffffff",
		DurationMinutes: 1,
	}, WithClock(c.Now))
	require.NoError(t, err)

	forged, err := other.GenerateTokenForUser("mallory")
	require.NoError(t, err)

	got, err := m.IsRefreshable(forged)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestIsRefreshable_Malformed(t *testing.T) {
	m := newManager(t, newClock(t0))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"name": "x"}).SignedString([]byte(testKey))
	require.NoError(t, err)

	for _, in := range []string{"not-a-token", "", "a.b.c", "not.a.jwt", noExp} {
		got, err := m.IsRefreshable(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, common.ErrInvalidToken), "input %q: %v", in, err)
		assert.False(t, got)
	}
}

func TestGenerateAndRefreshToken_PreservesClaims(t *testing.T) {
	c := newClock(t0)
	m := newManager(t, c)

	orig, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"name":  "alice",
		"role":  "operator",
		"scope": []any{"read", "write"},
		"iss":   "semanticapi",
		"aud":   "opcua-ui",
		"iat":   t0.Unix(),
		"nbf":   t0.Unix(),
		"exp":   t0.Add(time.Hour).Unix(),
	}).SignedString([]byte(testKey))
	require.NoError(t, err)

	c.Advance(57 * time.Minute)
	refreshed, err := m.GenerateAndRefreshToken(orig)
	require.NoError(t, err)

	before, after := decode(t, orig), decode(t, refreshed)

	for k, v := range before {
		switch k {
		case "iat", "exp", "nbf", "aud":
		default:
			assert.Equal(t, v, after[k], "claim %q", k)
		}
	}
	assert.NotContains(t, after, "nbf")

	oldExp, _ := before.GetExpirationTime()
	newExp, _ := after.GetExpirationTime()
	assert.True(t, newExp.After(oldExp.Time), "new expiry must be later")
	assert.True(t, newExp.Time.Equal(c.now.Add(time.Hour)))

	iat, _ := after.GetIssuedAt()
	assert.True(t, iat.Time.Equal(c.now))

	_, err = m.Verify(refreshed)
	require.NoError(t, err)
}

func TestGenerateAndRefreshToken_TakesIssuerAndAudienceFromCurrentOptions(t *testing.T) {
	c := newClock(t0)
	old := newManager(t, c)

	tok, err := old.GenerateTokenForUser("alice")
	require.NoError(t, err)

	opts := testOptions()
	opts.Issuer = "semanticapi-v2"
	opts.Audience = "dashboard"
	m, err := NewTokenManager(opts, WithClock(c.Now))
	require.NoError(t, err)

	refreshed, err := m.GenerateAndRefreshToken(tok)
	require.NoError(t, err)

	claims, err := m.Verify(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, "semanticapi-v2", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"dashboard"}, claims.Audience)
}

func TestGenerateAndRefreshToken_RoundTripKeepsIdentity(t *testing.T) {
	c := newClock(t0)
	m := newManager(t, c)

	tok, err := m.GenerateTokenForUser("alice")
	require.NoError(t, err)

	c.Advance(58 * time.Minute)
	refreshed, err := m.GenerateAndRefreshToken(tok)
	require.NoError(t, err)
	assert.NotEqual(t, tok, refreshed)

	claims, err := m.Verify(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)

	// The superseded token stays valid until its own expiry.
	_, err = m.Verify(tok)
	require.NoError(t, err)
}

func TestGenerateAndRefreshToken_Malformed(t *testing.T) {
	m := newManager(t, newClock(t0))

	_, err := m.GenerateAndRefreshToken("not-a-token")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify(t *testing.T) {
	c := newClock(t0)
	m := newManager(t, c)

	tok, err := m.GenerateTokenForUser("alice")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		claims, err := m.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Name)
	})

	t.Run("tampered claims", func(t *testing.T) {
		parts := strings.Split(tok, ".")
		forgedClaims := base64.RawURLEncoding.EncodeToString(
			[]byte(`{"name":"admin","iss":"semanticapi","aud":"opcua-ui","exp":9999999999}`))
		_, err := m.Verify(parts[0] + "." + forgedClaims + "." + parts[2])
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		opts := testOptions()
		opts.SecurityKey = "ffffffffffffffffffffffffffffffff"
		other, err := NewTokenManager(opts, WithClock(c.Now))
		require.NoError(t, err)

		_, err = other.Verify(tok)
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		opts := testOptions()
		opts.Audience = "someone-else"
		other, err := NewTokenManager(opts, WithClock(c.Now))
		require.NoError(t, err)

		_, err = other.Verify(tok)
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"name": "alice", "iss": "semanticapi", "aud": "opcua-ui", "exp": t0.Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Verify(none)
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := newClock(t0.Add(2 * time.Hour))
		m2, err := NewTokenManager(testOptions(), WithClock(later.Now))
		require.NoError(t, err)

		_, err = m2.Verify(tok)
		require.ErrorIs(t, err, common.ErrInvalidToken)
		require.ErrorIs(t, err, common.ErrTokenExpired)
	})
}

func TestVerifySignature_AcceptsExpired(t *testing.T) {
	c := newClock(t0)
	m := newManager(t, c)

	tok, err := m.GenerateTokenForUser("alice")
	require.NoError(t, err)

	c.Advance(48 * time.Hour)

	claims, err := m.VerifySignature(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)

	_, err = m.VerifySignature("not-a-token")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	opts := testOptions()
	opts.Issuer = "other"
	other, err := NewTokenManager(opts, WithClock(c.Now))
	require.NoError(t, err)
	_, err = other.VerifySignature(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestTokenManager_ConcurrentUse(t *testing.T) {
	m, err := NewTokenManager(testOptions())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := m.GenerateTokenForUser("alice")
			if err != nil {
				errs <- err
				return
			}
			if _, err := m.IsRefreshable(tok); err != nil {
				errs <- err
				return
			}
			if _, err := m.GenerateAndRefreshToken(tok); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent call failed: %v", err)
	}
}
