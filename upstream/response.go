package upstream

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Ordered lookup paths. The upstream answers either {data:{...}} or a flat object; the first match wins.
var (
	tokenPaths        = []string{"data.token", "token", "data.access_token", "access_token"}
	refreshTokenPaths = []string{"data.refresh_token", "refresh_token"}
	expiresAtPaths    = []string{"data.expires_at", "expires_at"}
	userIDPaths       = []string{"data.user_id", "user_id"}
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// TokenPayload holds the fields the gateway reads from refresh and cart responses.
type TokenPayload struct {
	Token        string
	RefreshToken string
	ExpiresAtRaw json.RawMessage // the JSON value as sent, so numbers stay numbers
	ExpiresAt    *time.Time      // nil when absent or unparsable
	UserID       string
}

// ParseTokenPayload extracts token fields from an upstream body. Invalid JSON yields an empty payload.
func ParseTokenPayload(body []byte) TokenPayload {
	var p TokenPayload
	if !gjson.ValidBytes(body) {
		return p
	}

	p.Token = firstString(body, tokenPaths)
	p.RefreshToken = firstString(body, refreshTokenPaths)
	p.UserID = firstString(body, userIDPaths)

	if r, ok := first(body, expiresAtPaths); ok {
		p.ExpiresAtRaw = json.RawMessage(r.Raw)
		p.ExpiresAt = parseTimestamp(r)
	}
	return p
}

func first(body []byte, paths []string) (gjson.Result, bool) {
	for _, path := range paths {
		r := gjson.GetBytes(body, path)
		if r.Exists() && r.Type != gjson.Null {
			return r, true
		}
	}
	return gjson.Result{}, false
}

func firstString(body []byte, paths []string) string {
	for _, path := range paths {
		r := gjson.GetBytes(body, path)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

// parseTimestamp accepts ISO 8601 strings or a number of unix seconds.
func parseTimestamp(r gjson.Result) *time.Time {
	switch r.Type {
	case gjson.Number:
		t := time.Unix(r.Int(), 0)
		return &t
	case gjson.String:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, r.Str); err == nil {
				return &t
			}
		}
	}
	return nil
}
