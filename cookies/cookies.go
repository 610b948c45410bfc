// Package cookies models the gateway's credential cookies. Services return a *Record to describe a
// cookie mutation; the HTTP layer writes it. A nil *Record means the cookie stays as it is.
package cookies

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-token-gateway/internal/config"
)

// DefaultMaxAge is 30 days in seconds.
const DefaultMaxAge = int(config.DefaultCookieLifetime / time.Second)

type Record struct {
	Name     string
	Value    string
	MaxAge   int // seconds; 0 clears the cookie
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Path     string
}

// HTTPCookie converts the record. net/http treats MaxAge 0 as "unset", so a clearing record maps to -1 (Max-Age=0).
func (r *Record) HTTPCookie() *http.Cookie {
	maxAge := r.MaxAge
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     r.Name,
		Value:    r.Value,
		Path:     r.Path,
		MaxAge:   maxAge,
		HttpOnly: r.HttpOnly,
		Secure:   r.Secure,
		SameSite: r.SameSite,
	}
}

// Write applies the mutation. A nil record writes nothing.
func (r *Record) Write(w http.ResponseWriter) {
	if r == nil {
		return
	}
	http.SetCookie(w, r.HTTPCookie())
}

// Policy carries the attributes shared by every cookie the gateway sets.
type Policy struct {
	Secure   bool
	SameSite http.SameSite
	Path     string
}

func PolicyFromConfig(cfg config.CookieConfig) Policy {
	return Policy{
		Secure:   cfg.GetCookieSecure(),
		SameSite: cfg.GetCookieSameSite(),
		Path:     "/",
	}
}

func (p Policy) Set(name, value string, maxAge int) *Record {
	path := p.Path
	if path == "" {
		path = "/"
	}
	return &Record{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
		Path:     path,
	}
}

func (p Policy) Clear(name string) *Record {
	return p.Set(name, "", 0)
}

// Read returns the cookie value or "" when the request does not carry it.
func Read(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
