// Package coordinator collapses concurrent upstream calls that share a coordination key into a
// single call whose result every waiting caller receives.
package coordinator

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/jrsteele09/go-token-gateway/upstream"
	"golang.org/x/crypto/blake2b"
)

// Func is the upstream call being coordinated.
type Func func(ctx context.Context) (*upstream.Response, error)

// Coordinator runs fn at most once per key at a time. The bool result reports whether the
// response was produced by another caller's execution.
type Coordinator interface {
	Do(ctx context.Context, key string, fn Func) (*upstream.Response, bool, error)
}

// Key derives a coordination key so raw token values never sit in the registry or in Redis.
// Empty parts are kept so ("a", "") and ("", "a") stay distinct.
func Key(parts ...string) string {
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
