package cart

import (
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-token-gateway/cookies"
)

// Identity is the anonymous or user-bound cart identity carried in the cart cookie.
type Identity struct {
	Token        string
	ExpiresAt    *time.Time
	ExpiresAtRaw json.RawMessage // upstream expires_at as sent, string or number
	BoundUserID  string
}

// IssueResult is the outcome of EnsureCartToken. Cookie is set only on success.
type IssueResult struct {
	OK          bool
	Identity    Identity
	Reused      bool
	MaxAge      int
	Cookie      *cookies.Record
	Status      int
	ContentType string // set when ErrorBody is the upstream's own body; empty means JSON
	ErrorBody   []byte
	Err         error
	Shared      bool
}
