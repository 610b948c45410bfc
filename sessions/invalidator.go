package sessions

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-token-gateway/cookies"
	"github.com/jrsteele09/go-token-gateway/internal/config"
	"github.com/jrsteele09/go-token-gateway/internal/errors"
	"github.com/jrsteele09/go-token-gateway/upstream"
	"github.com/rs/zerolog/log"
)

// Invalidator logs a browser out. The upstream revoke is best effort; the local clear always happens.
type Invalidator struct {
	upstream           upstream.Sender
	policy             cookies.Policy
	refreshCookieName  string
	upstreamCookieName string
}

func NewInvalidator(sender upstream.Sender, upstreamCfg config.UpstreamConfig, cookieCfg config.CookieConfig) *Invalidator {
	return &Invalidator{
		upstream:           sender,
		policy:             cookies.PolicyFromConfig(cookieCfg),
		refreshCookieName:  cookieCfg.GetRefreshCookieName(),
		upstreamCookieName: upstreamCfg.GetUpstreamRefreshCookieName(),
	}
}

// Logout revokes currentRefreshToken upstream when present and always returns a clearing cookie.
// Upstream failures are logged and swallowed so a backend fault never leaves a user looking logged in.
func (i *Invalidator) Logout(ctx context.Context, currentRefreshToken, bearerToken string) *LogoutResult {
	result := &LogoutResult{Cookie: i.policy.Clear(i.refreshCookieName)}
	if currentRefreshToken == "" {
		return result
	}

	result.UpstreamCalled = true
	headers := upstream.Headers{}.
		WithCookie(i.upstreamCookieName, currentRefreshToken).
		WithBearer(bearerToken)

	resp, err := i.upstream.Send(context.WithoutCancel(ctx), upstream.PathLogout, http.MethodPost, nil, headers)
	switch {
	case err != nil:
		result.UpstreamErr = err
		log.Warn().Err(err).Msg("upstream logout failed, clearing refresh cookie anyway")
	case !resp.IsSuccess():
		result.UpstreamErr = errors.Wrapf(errors.ErrUpstreamRejected, "logout status %d", resp.Status)
		log.Warn().Int("status", resp.Status).Msg("upstream rejected logout, clearing refresh cookie anyway")
	}
	return result
}
