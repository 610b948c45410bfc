package cart

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/jrsteele09/go-token-gateway/cookies"
	"github.com/jrsteele09/go-token-gateway/coordinator"
	"github.com/jrsteele09/go-token-gateway/internal/config"
	"github.com/jrsteele09/go-token-gateway/internal/errors"
	"github.com/jrsteele09/go-token-gateway/token/jwt"
	"github.com/jrsteele09/go-token-gateway/upstream"
	"github.com/rs/zerolog/log"
)

const (
	msgCartUnreachable  = "Unable to reach cart service"
	msgCartMissingToken = "upstream cart response did not include a token"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Issuer issues or extends cart tokens. Every call goes to the upstream, even when the browser
// already holds a cart cookie, so the upstream decides whether to extend, replace or bind it.
type Issuer struct {
	upstream       upstream.Sender
	coordinator    coordinator.Coordinator
	policy         cookies.Policy
	cartCookieName string
}

func NewIssuer(sender upstream.Sender, coord coordinator.Coordinator, cookieCfg config.CookieConfig) *Issuer {
	return &Issuer{
		upstream:       sender,
		coordinator:    coord,
		policy:         cookies.PolicyFromConfig(cookieCfg),
		cartCookieName: cookieCfg.GetCartCookieName(),
	}
}

// EnsureCartToken asks the upstream for a cart token, forwarding the existing one (so it may be
// extended) and the access token (so the cart may be bound to the user).
func (i *Issuer) EnsureCartToken(ctx context.Context, existingCartToken, bearerToken string) *IssueResult {
	ctx = context.WithoutCancel(ctx)

	subject := jwt.Subject(bearerToken)
	resp, shared, err := i.coordinator.Do(ctx, coordinationKey(existingCartToken, bearerToken, subject), func(ctx context.Context) (*upstream.Response, error) {
		headers := upstream.Headers{}.
			WithCartToken(existingCartToken).
			WithBearer(bearerToken)
		return i.upstream.Send(ctx, upstream.PathCartToken, http.MethodPost, nil, headers)
	})
	if err != nil {
		log.Warn().Err(err).Msg("cart token request failed")
		return &IssueResult{
			Status:    http.StatusBadGateway,
			ErrorBody: upstream.MessageBody(msgCartUnreachable),
			Err:       err,
			Shared:    shared,
		}
	}

	if !resp.IsSuccess() {
		log.Info().Int("status", resp.Status).Msg("upstream rejected cart token request")
		return &IssueResult{
			Status:      resp.Status,
			ContentType: resp.ContentType(),
			ErrorBody:   resp.Body,
			Err:         errors.Wrapf(errors.ErrUpstreamRejected, "cart token status %d", resp.Status),
			Shared:      shared,
		}
	}

	payload := upstream.ParseTokenPayload(resp.Body)
	if payload.Token == "" {
		log.Warn().Int("status", resp.Status).Msg("upstream cart response had no token")
		return &IssueResult{
			Status:    http.StatusBadGateway,
			ErrorBody: upstream.MessageBody(msgCartMissingToken),
			Err:       errors.ErrMalformedUpstreamResponse,
			Shared:    shared,
		}
	}

	identity := Identity{
		Token:        payload.Token,
		ExpiresAt:    payload.ExpiresAt,
		ExpiresAtRaw: payload.ExpiresAtRaw,
		BoundUserID:  payload.UserID,
	}
	if identity.BoundUserID == "" {
		identity.BoundUserID = subject
	}

	maxAge := MaxAge(payload.ExpiresAt, NowTimeFunc())
	return &IssueResult{
		OK:       true,
		Identity: identity,
		Reused:   existingCartToken != "" && existingCartToken == payload.Token,
		MaxAge:   maxAge,
		Cookie:   i.policy.Set(i.cartCookieName, payload.Token, maxAge),
		Status:   http.StatusOK,
		Shared:   shared,
	}
}

// MaxAge is the cookie lifetime in whole seconds until expiresAt. A missing, past or
// sub-second expiry falls back to the 30-day default.
func MaxAge(expiresAt *time.Time, now time.Time) int {
	if expiresAt == nil {
		return cookies.DefaultMaxAge
	}
	seconds := math.Floor(expiresAt.Sub(now).Seconds())
	if seconds <= 0 {
		return cookies.DefaultMaxAge
	}
	if seconds > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(seconds)
}

// coordinationKey groups requests from the same browser identity. With neither a cart token nor an
// access token there is nothing that ties two requests to one browser, so they are not coordinated.
func coordinationKey(existingCartToken, bearerToken, subject string) string {
	if existingCartToken == "" && bearerToken == "" {
		return ""
	}
	identity := subject
	if identity == "" {
		identity = bearerToken
	}
	return coordinator.Key("cart", existingCartToken, identity)
}
