package upstream

import (
	"net/http"
)

// Headers are the extra headers for one upstream call. The upstream may read credentials from a
// cookie, a bearer header or both on the same endpoint, so both channels can be set together.
// The builders work on a nil Headers and return the value to keep using.
type Headers http.Header

// WithCookie appends name=value to the Cookie header. Empty values are skipped.
func (h Headers) WithCookie(name, value string) Headers {
	if value == "" {
		return h
	}
	cookie := (&http.Cookie{Name: name, Value: value}).String()
	if existing := http.Header(h).Get("Cookie"); existing != "" {
		cookie = existing + "; " + cookie
	}
	return h.set("Cookie", cookie)
}

func (h Headers) WithBearer(token string) Headers {
	if token == "" {
		return h
	}
	return h.set("Authorization", "Bearer "+token)
}

func (h Headers) WithCartToken(token string) Headers {
	if token == "" {
		return h
	}
	return h.set(HeaderCartToken, token)
}

func (h Headers) set(name, value string) Headers {
	if h == nil {
		h = Headers{}
	}
	http.Header(h).Set(name, value)
	return h
}

func (h Headers) apply(dst http.Header) {
	for name, values := range h {
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
