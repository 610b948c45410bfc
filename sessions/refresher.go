package sessions

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-token-gateway/apimodel"
	"github.com/jrsteele09/go-token-gateway/cookies"
	"github.com/jrsteele09/go-token-gateway/coordinator"
	"github.com/jrsteele09/go-token-gateway/internal/config"
	"github.com/jrsteele09/go-token-gateway/internal/errors"
	"github.com/jrsteele09/go-token-gateway/upstream"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	msgNoRefreshToken      = "No refresh token"
	msgRefreshUnreachable  = "Unable to reach authentication service"
	msgRefreshMissingToken = "upstream refresh response did not include an access token"
)

// Refresher rotates the refresh token held in the browser cookie and mints access tokens.
type Refresher struct {
	upstream           upstream.Sender
	coordinator        coordinator.Coordinator
	policy             cookies.Policy
	refreshCookieName  string
	upstreamCookieName string
}

func NewRefresher(sender upstream.Sender, coord coordinator.Coordinator, upstreamCfg config.UpstreamConfig, cookieCfg config.CookieConfig) *Refresher {
	return &Refresher{
		upstream:           sender,
		coordinator:        coord,
		policy:             cookies.PolicyFromConfig(cookieCfg),
		refreshCookieName:  cookieCfg.GetRefreshCookieName(),
		upstreamCookieName: upstreamCfg.GetUpstreamRefreshCookieName(),
	}
}

// Refresh exchanges currentRefreshToken for a new access token.
//
// A failed upstream call never produces a cookie mutation: the failure may be transient, so the
// stored refresh token is kept. Concurrent calls with the same refresh token share one upstream call.
func (r *Refresher) Refresh(ctx context.Context, currentRefreshToken string) *RefreshResult {
	if currentRefreshToken == "" {
		return &RefreshResult{
			Status:    http.StatusUnauthorized,
			ErrorBody: upstream.MessageBody(msgNoRefreshToken),
			Err:       errors.ErrNoRefreshToken,
		}
	}

	// The upstream may rotate the token as soon as it sees the request, so the call runs to completion
	// even if the browser goes away.
	ctx = context.WithoutCancel(ctx)

	key := coordinator.Key("refresh", currentRefreshToken)
	resp, shared, err := r.coordinator.Do(ctx, key, func(ctx context.Context) (*upstream.Response, error) {
		headers := upstream.Headers{}.WithCookie(r.upstreamCookieName, currentRefreshToken)
		return r.upstream.Send(ctx, upstream.PathRefresh, http.MethodPost, apimodel.RefreshRequest{RefreshToken: currentRefreshToken}, headers)
	})
	if err != nil {
		log.Warn().Err(err).Msg("refresh failed, keeping refresh cookie")
		return &RefreshResult{
			Status:    http.StatusBadGateway,
			ErrorBody: upstream.MessageBody(msgRefreshUnreachable),
			Err:       err,
			Shared:    shared,
		}
	}

	if !resp.IsSuccess() {
		log.Info().Int("status", resp.Status).Bool("shared", shared).Msg("upstream rejected refresh, keeping refresh cookie")
		return &RefreshResult{
			Status:      resp.Status,
			ContentType: resp.ContentType(),
			ErrorBody:   resp.Body,
			Err:         errors.Wrapf(errors.ErrUpstreamRejected, "refresh status %d", resp.Status),
			Shared:      shared,
		}
	}

	payload := upstream.ParseTokenPayload(resp.Body)
	if payload.Token == "" {
		log.Warn().Int("status", resp.Status).Msg("upstream refresh response had no access token")
		return &RefreshResult{
			Status:    http.StatusBadGateway,
			ErrorBody: upstream.MessageBody(msgRefreshMissingToken),
			Err:       errors.ErrMalformedUpstreamResponse,
			Shared:    shared,
		}
	}

	result := &RefreshResult{
		OK:     true,
		Token:  r.token(payload),
		Status: http.StatusOK,
		Shared: shared,
	}
	if payload.RefreshToken != "" {
		result.Cookie = r.policy.Set(r.refreshCookieName, payload.RefreshToken, cookies.DefaultMaxAge)
	}
	return result
}

func (r *Refresher) token(payload upstream.TokenPayload) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  payload.Token,
		TokenType:    "Bearer",
		RefreshToken: payload.RefreshToken,
	}
}
