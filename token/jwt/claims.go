package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("access token is not a JWT")

// AccessClaims are the access-token claims the gateway reads. The signature is NOT verified:
// the gateway only forwards the token, and the upstream remains the authority on its validity.
type AccessClaims struct {
	Subject   string
	ExpiresAt *time.Time
}

// ReadAccessClaims decodes an access token without verifying it. Opaque (non-JWT) tokens return ErrNotJWT.
func ReadAccessClaims(rawToken string) (*AccessClaims, error) {
	if strings.Count(rawToken, ".") != 2 {
		return nil, ErrNotJWT
	}

	var claims jwtlib.RegisteredClaims
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, &claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}

	ac := &AccessClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		ac.ExpiresAt = &exp
	}
	return ac, nil
}

// Subject returns the token's "sub" claim, or "" when it cannot be read.
func Subject(rawToken string) string {
	claims, err := ReadAccessClaims(rawToken)
	if err != nil {
		return ""
	}
	return claims.Subject
}
