package sessions

import (
	"github.com/jrsteele09/go-token-gateway/cookies"
	"golang.org/x/oauth2"
)

// RefreshResult is the outcome of a refresh-token rotation.
//
// On success Token carries the new access token and, when the upstream rotated it, the new refresh
// token. Cookie is the refresh-cookie mutation to apply, or nil to leave the cookie untouched.
// On failure Status, ContentType and ErrorBody hold what should be forwarded to the browser.
type RefreshResult struct {
	OK          bool
	Token       *oauth2.Token
	Cookie      *cookies.Record
	Status      int
	ContentType string // set when ErrorBody is the upstream's own body; empty means JSON
	ErrorBody   []byte
	Err         error
	Shared      bool // produced by a concurrent caller's upstream call
}

// LogoutResult always clears the refresh cookie.
type LogoutResult struct {
	Cookie         *cookies.Record
	UpstreamCalled bool
	UpstreamErr    error
}
