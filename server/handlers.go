package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-token-gateway/cookies"
	"github.com/jrsteele09/go-token-gateway/upstream"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON  = "application/json"
	msgInternalError = "Internal server error"
)

// HealthHandler reports liveness
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// writeJSON encodes v before touching the response, then applies the cookie mutations and writes the body.
// An encoding failure becomes a 500 with no cookie written.
func writeJSON(w http.ResponseWriter, status int, v any, mutations ...*cookies.Record) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode response")
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	for _, m := range mutations {
		m.Write(w)
	}
	writeRaw(w, status, contentTypeJSON, body)
}

// writeRaw writes body as is. An empty contentType means the body is the gateway's own JSON.
func writeRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType == "" {
		contentType = contentTypeJSON
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeRaw(w, status, contentTypeJSON, upstream.MessageBody(message))
}

// bearerToken returns the access token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
