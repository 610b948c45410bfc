package cart_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-token-gateway/cart"
	"github.com/jrsteele09/go-token-gateway/coordinator"
	"github.com/jrsteele09/go-token-gateway/internal/errors"
	"github.com/jrsteele09/go-token-gateway/upstream"
	"github.com/stretchr/testify/require"
)

const thirtyDays = 2592000

type testConfig struct {
	baseURL string
}

func (c testConfig) GetUpstreamBaseURL() string           { return c.baseURL }
func (c testConfig) GetUpstreamTimeout() time.Duration    { return time.Second }
func (c testConfig) GetUpstreamRefreshCookieName() string { return "refresh_token" }

func (testConfig) GetRefreshCookieName() string     { return "refresh_token" }
func (testConfig) GetCartCookieName() string        { return "cart_token" }
func (testConfig) GetAccessCookieName() string      { return "access_token" }
func (testConfig) GetCookieSameSite() http.SameSite { return http.SameSiteLaxMode }
func (testConfig) GetCookieSecure() bool            { return true }

type cartUpstream struct {
	calls     atomic.Int32
	mu        sync.Mutex
	cartToken string
	auth      string
}

func (u *cartUpstream) seen() (string, string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.cartToken, u.auth
}

// newIssuer starts a stub upstream answering status/body and returns an Issuer pointing at it.
func newIssuer(t *testing.T, status int, body string) (*cart.Issuer, *cartUpstream) {
	t.Helper()
	u := &cartUpstream{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		u.mu.Lock()
		u.cartToken = r.Header.Get(upstream.HeaderCartToken)
		u.auth = r.Header.Get("Authorization")
		u.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig{baseURL: srv.URL}
	return cart.NewIssuer(upstream.NewClient(cfg), coordinator.NewLocal(), cfg), u
}

func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	cart.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { cart.NowTimeFunc = time.Now })
}

func TestEnsureCartTokenUsesUpstreamExpiry(t *testing.T) {
	now := time.Now().UTC()
	expires := now.Add(3600 * time.Second).Format(time.RFC3339Nano)

	issuer, _ := newIssuer(t, http.StatusOK, `{"data":{"token":"CT1","expires_at":"`+expires+`"}}`)
	result := issuer.EnsureCartToken(context.Background(), "", "")

	require.True(t, result.OK)
	require.Equal(t, "CT1", result.Identity.Token)
	require.JSONEq(t, `"`+expires+`"`, string(result.Identity.ExpiresAtRaw))
	require.False(t, result.Reused)
	require.InDelta(t, 3600, result.MaxAge, 1)
	require.Equal(t, "cart_token", result.Cookie.Name)
	require.Equal(t, "CT1", result.Cookie.Value)
	require.Equal(t, result.MaxAge, result.Cookie.MaxAge)
	require.True(t, result.Cookie.HttpOnly)
	require.True(t, result.Cookie.Secure)
}

func TestEnsureCartTokenKeepsNumericExpiry(t *testing.T) {
	expires := time.Now().Add(2 * time.Hour).Unix()
	issuer, _ := newIssuer(t, http.StatusOK, `{"data":{"token":"CT1","expires_at":`+strconv.FormatInt(expires, 10)+`}}`)
	result := issuer.EnsureCartToken(context.Background(), "", "")

	require.True(t, result.OK)
	require.Equal(t, strconv.FormatInt(expires, 10), string(result.Identity.ExpiresAtRaw))
	require.NotNil(t, result.Identity.ExpiresAt)
	require.InDelta(t, 7200, result.MaxAge, 2)
}

func TestEnsureCartTokenUnparsableExpiryFallsBack(t *testing.T) {
	issuer, _ := newIssuer(t, http.StatusOK, `{"data":{"token":"CT1","expires_at":"not-a-date"}}`)
	result := issuer.EnsureCartToken(context.Background(), "", "")

	require.True(t, result.OK)
	require.Nil(t, result.Identity.ExpiresAt)
	require.Equal(t, thirtyDays, result.MaxAge)
	require.Equal(t, thirtyDays, result.Cookie.MaxAge)
}

func TestEnsureCartTokenForwardsExistingTokenAndBearer(t *testing.T) {
	bearer, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{Subject: "user-42"}).SignedString([]byte("k"))
	require.NoError(t, err)

	issuer, u := newIssuer(t, http.StatusOK, `{"token":"CT1"}`)
	result := issuer.EnsureCartToken(context.Background(), "CT1", bearer)

	require.True(t, result.OK)
	require.True(t, result.Reused)
	require.Equal(t, "user-42", result.Identity.BoundUserID)
	cartToken, auth := u.seen()
	require.Equal(t, "CT1", cartToken)
	require.Equal(t, "Bearer "+bearer, auth)
}

func TestEnsureCartTokenPrefersUpstreamUserID(t *testing.T) {
	issuer, _ := newIssuer(t, http.StatusOK, `{"data":{"token":"CT2","user_id":"u-9"}}`)
	result := issuer.EnsureCartToken(context.Background(), "CT1", "opaque-access")

	require.True(t, result.OK)
	require.False(t, result.Reused)
	require.Equal(t, "u-9", result.Identity.BoundUserID)
}

func TestEnsureCartTokenFailureIsForwarded(t *testing.T) {
	issuer, _ := newIssuer(t, http.StatusServiceUnavailable, `{"message":"cart service down"}`)
	result := issuer.EnsureCartToken(context.Background(), "CT1", "")

	require.False(t, result.OK)
	require.Equal(t, http.StatusServiceUnavailable, result.Status)
	require.Equal(t, `{"message":"cart service down"}`, string(result.ErrorBody))
	require.Equal(t, "application/json", result.ContentType)
	require.ErrorIs(t, result.Err, errors.ErrUpstreamRejected)
	require.Nil(t, result.Cookie)
}

func TestEnsureCartTokenMissingTokenIsSoftFailure(t *testing.T) {
	issuer, _ := newIssuer(t, http.StatusOK, `{"data":{}}`)
	result := issuer.EnsureCartToken(context.Background(), "", "")

	require.False(t, result.OK)
	require.Equal(t, http.StatusBadGateway, result.Status)
	require.ErrorIs(t, result.Err, errors.ErrMalformedUpstreamResponse)
	require.Nil(t, result.Cookie)
}

func TestEnsureCartTokenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	cfg := testConfig{baseURL: srv.URL}

	result := cart.NewIssuer(upstream.NewClient(cfg), coordinator.NewLocal(), cfg).EnsureCartToken(context.Background(), "", "")

	require.False(t, result.OK)
	require.Equal(t, http.StatusBadGateway, result.Status)
	require.ErrorIs(t, result.Err, errors.ErrUpstreamUnreachable)
	require.Nil(t, result.Cookie)
}

func TestMaxAge(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)

	in := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      int
	}{
		{name: "one hour", expiresAt: in(time.Hour), want: 3600},
		{name: "floors fractions", expiresAt: in(90*time.Second + 900*time.Millisecond), want: 90},
		{name: "missing", expiresAt: nil, want: thirtyDays},
		{name: "already expired", expiresAt: in(-time.Minute), want: thirtyDays},
		{name: "under a second", expiresAt: in(500 * time.Millisecond), want: thirtyDays},
		{name: "beyond thirty days is kept", expiresAt: in(60 * 24 * time.Hour), want: 5184000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, cart.MaxAge(tt.expiresAt, cart.NowTimeFunc()))
		})
	}
}
